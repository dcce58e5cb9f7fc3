package sparql

import "github.com/c360/semdash/errors"

// TermType tags the variant held by a Term. The zero value is TermUnbound so a
// Term looked up for a variable the row does not bind is modeled explicitly.
type TermType uint8

const (
	// TermUnbound means the variable has no value in this row.
	TermUnbound TermType = iota
	// TermURI is an IRI term.
	TermURI
	// TermLiteral is a plain, language-tagged or typed literal.
	TermLiteral
	// TermBNode is a blank node.
	TermBNode
)

// String returns the SPARQL-JSON wire name of the term type.
func (t TermType) String() string {
	switch t {
	case TermUnbound:
		return "unbound"
	case TermURI:
		return "uri"
	case TermLiteral:
		return "literal"
	case TermBNode:
		return "bnode"
	default:
		return "unknown"
	}
}

// Term is one RDF term from a result row.
type Term struct {
	Type     TermType
	Value    string
	Datatype string
	Lang     string
}

// Bound reports whether the term carries a value.
func (t Term) Bound() bool {
	return t.Type != TermUnbound
}

// URI builds an IRI term.
func URI(value string) Term { return Term{Type: TermURI, Value: value} }

// Literal builds a plain literal term.
func Literal(value string) Term { return Term{Type: TermLiteral, Value: value} }

// TypedLiteral builds a literal term with a datatype IRI.
func TypedLiteral(value, datatype string) Term {
	return Term{Type: TermLiteral, Value: value, Datatype: datatype}
}

// BNode builds a blank node term.
func BNode(id string) Term { return Term{Type: TermBNode, Value: id} }

// Binding is one result row: variable name to term. Variables the store left
// unbound are simply absent.
type Binding map[string]Term

// Lookup returns the term bound to name, or the unbound zero Term.
func (b Binding) Lookup(name string) Term {
	if b == nil {
		return Term{}
	}
	return b[name]
}

// ResultSet is the decoded response of one query execution.
type ResultSet struct {
	// Vars are the variable names declared in head.vars.
	Vars []string
	// Bindings are the result rows in the order returned by the store.
	Bindings []Binding
	// Issues are non-fatal problems found while decoding individual terms.
	Issues []errors.FieldError
}

// Len returns the number of rows.
func (rs *ResultSet) Len() int {
	if rs == nil {
		return 0
	}
	return len(rs.Bindings)
}

// DisplayRow maps variable names to display strings. It is the only row shape
// handed to presentation code.
type DisplayRow map[string]string
