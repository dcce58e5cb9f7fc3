package vocabulary

import (
	"bytes"
	"fmt"
	"text/template"

	"github.com/c360/semdash/errors"
)

// DefaultLimit is used when a screen does not set a row limit.
const DefaultLimit = 50

// QueryData is the data a query template is executed with.
type QueryData struct {
	Prefix     string
	Namespace  string
	PrefixDecl string
	Limit      int
}

// Template is a parsed query template.
type Template struct {
	name string
	tmpl *template.Template
}

// ParseQuery parses a query template. Templates reference {{.PrefixDecl}},
// {{.Prefix}}, {{.Namespace}} and {{.Limit}}.
func ParseQuery(name, text string) (*Template, error) {
	tmpl, err := template.New(name).Option("missingkey=error").Parse(text)
	if err != nil {
		return nil, errors.WrapInvalid(err, "Template", "ParseQuery", fmt.Sprintf("parse query %s", name))
	}
	return &Template{name: name, tmpl: tmpl}, nil
}

// Render executes the template for the ontology and row limit.
func (t *Template) Render(o Ontology, limit int) (string, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}

	var buf bytes.Buffer
	data := QueryData{
		Prefix:     o.Prefix,
		Namespace:  o.Namespace,
		PrefixDecl: o.PrefixDecl(),
		Limit:      limit,
	}
	if err := t.tmpl.Execute(&buf, data); err != nil {
		return "", errors.WrapInvalid(err, "Template", "Render", fmt.Sprintf("render query %s", t.name))
	}
	return buf.String(), nil
}

// RenderQuery parses and renders text in one step.
func RenderQuery(text string, o Ontology, limit int) (string, error) {
	t, err := ParseQuery("query", text)
	if err != nil {
		return "", err
	}
	return t.Render(o, limit)
}
