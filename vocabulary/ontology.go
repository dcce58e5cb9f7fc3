package vocabulary

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/c360/semdash/errors"
)

// Default ontology of the crime dataset.
const (
	DefaultPrefix    = "smw"
	DefaultNamespace = "http://www.semanticweb.org/kruthi/ontologies/2024/11/untitled-ontology-13#"
)

// Local names of the crime ontology predicates and individuals used by the
// built-in screens.
const (
	HasLatitude     = "hasLatitudeDimension"
	HasLongitude    = "hasLongitudeDimension"
	HasLocation     = "hasLocation"
	LinkedToCode    = "linkedToCrimeCode"
	HasDescription  = "hasDescription"
	OccurredOn      = "occuredOn"
	HasArrestStatus = "hasArrestStatus"
	LocatedInCity   = "locatedInCity"
	Theft           = "THEFT"
)

var prefixPattern = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_-]*$`)

// Ontology is a namespace bound to the prefix used inside query bodies.
type Ontology struct {
	Prefix    string `json:"prefix" yaml:"prefix"`
	Namespace string `json:"namespace" yaml:"namespace"`
}

// DefaultOntology returns the crime dataset ontology.
func DefaultOntology() Ontology {
	return Ontology{Prefix: DefaultPrefix, Namespace: DefaultNamespace}
}

// Validate checks the ontology for errors
func (o Ontology) Validate() error {
	if !prefixPattern.MatchString(o.Prefix) {
		return errors.WrapInvalid(errors.ErrInvalidConfig, "Ontology", "Validate",
			fmt.Sprintf("invalid prefix %q", o.Prefix))
	}
	if !strings.HasPrefix(o.Namespace, "http://") && !strings.HasPrefix(o.Namespace, "https://") &&
		!strings.HasPrefix(o.Namespace, "urn:") {
		return errors.WrapInvalid(errors.ErrInvalidConfig, "Ontology", "Validate",
			fmt.Sprintf("namespace %q is not an absolute IRI", o.Namespace))
	}
	if !strings.HasSuffix(o.Namespace, "#") && !strings.HasSuffix(o.Namespace, "/") {
		return errors.WrapInvalid(errors.ErrInvalidConfig, "Ontology", "Validate",
			"namespace must end in '#' or '/'")
	}
	if strings.ContainsAny(o.Namespace, "<> \"{}|\\^`") {
		return errors.WrapInvalid(errors.ErrInvalidConfig, "Ontology", "Validate",
			"namespace contains characters not allowed in an IRI")
	}
	return nil
}

// PrefixDecl returns the SPARQL PREFIX declaration for the ontology.
//
// Example:
//
//	DefaultOntology().PrefixDecl()
//	// "PREFIX smw: <http://www.semanticweb.org/kruthi/ontologies/2024/11/untitled-ontology-13#>"
func (o Ontology) PrefixDecl() string {
	return fmt.Sprintf("PREFIX %s: <%s>", o.Prefix, o.Namespace)
}

// IRI expands a local name within the ontology namespace.
func (o Ontology) IRI(local string) string {
	return o.Namespace + local
}

// QName returns the prefixed form of a local name, e.g. "smw:THEFT".
func (o Ontology) QName(local string) string {
	return o.Prefix + ":" + local
}

// Contains reports whether iri lies in the ontology namespace.
func (o Ontology) Contains(iri string) bool {
	return o.Namespace != "" && strings.HasPrefix(iri, o.Namespace)
}
