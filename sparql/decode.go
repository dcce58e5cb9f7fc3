package sparql

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"maps"
	"slices"

	"github.com/knakk/rdf"
	ksparql "github.com/knakk/sparql"

	"github.com/c360/semdash/errors"
)

// Decode reads a SPARQL 1.1 JSON results document. A body that is not a
// single JSON document or lacks results.bindings fails with a parse
// QueryError. A term of an unknown type, or an IRI or blank node label the
// rdf constructors reject, is left unbound and reported in ResultSet.Issues.
func Decode(r io.Reader) (*ResultSet, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.NewParseError(err, fmt.Sprintf("read body: %v", err))
	}
	// ParseJSON stops after the first value, so trailing bytes are checked here
	if !json.Valid(data) {
		return nil, errors.NewParseError(nil, "malformed JSON body: not a single JSON document")
	}

	res, err := ksparql.ParseJSON(bytes.NewReader(data))
	if err != nil {
		return nil, errors.NewParseError(err, fmt.Sprintf("malformed JSON body: %v", err))
	}
	if res.Results.Bindings == nil {
		return nil, errors.NewParseError(nil, "response is missing results.bindings")
	}

	rs := &ResultSet{
		Vars:     []string{},
		Bindings: make([]Binding, 0, len(res.Results.Bindings)),
	}
	if res.Head.Vars != nil {
		rs.Vars = res.Head.Vars
	}

	for i, row := range res.Results.Bindings {
		b := make(Binding, len(row))
		for _, name := range slices.Sorted(maps.Keys(row)) {
			wire := row[name]
			term, err := toTerm(wire.Type, wire.Value, wire.Lang, wire.DataType)
			if err != nil {
				rs.Issues = append(rs.Issues, errors.FieldError{
					Row:    i,
					Var:    name,
					Value:  wire.Value,
					Reason: err.Error(),
				})
				continue
			}
			b[name] = term
		}
		rs.Bindings = append(rs.Bindings, b)
	}

	return rs, nil
}

// toTerm builds a Term from the fields of one wire binding.
func toTerm(typ, value, lang, datatype string) (Term, error) {
	switch typ {
	case "uri":
		iri, err := rdf.NewIRI(value)
		if err != nil {
			return Term{}, fmt.Errorf("invalid IRI: %v", err)
		}
		return URI(iri.String()), nil
	case "bnode":
		blank, err := rdf.NewBlank(value)
		if err != nil {
			return Term{}, fmt.Errorf("blank node has no label")
		}
		return BNode(blank.String()), nil
	case "literal", "typed-literal":
		if lang != "" {
			return Term{Type: TermLiteral, Value: value, Lang: lang}, nil
		}
		if datatype == "" {
			return Literal(value), nil
		}
		dt, err := rdf.NewIRI(datatype)
		if err != nil {
			return Term{}, fmt.Errorf("invalid datatype IRI: %v", err)
		}
		lit := rdf.NewTypedLiteral(value, dt)
		return TypedLiteral(lit.String(), lit.DataType.String()), nil
	default:
		return Term{}, fmt.Errorf("unknown term type %q", typ)
	}
}
