package sparql

import "strings"

// LocalName returns the human-readable suffix of an IRI: the text after the
// last '#', else after the last '/', else the whole value.
func LocalName(iri string) string {
	if i := strings.LastIndexByte(iri, '#'); i >= 0 {
		return iri[i+1:]
	}
	if i := strings.LastIndexByte(iri, '/'); i >= 0 {
		return iri[i+1:]
	}
	return iri
}

// Normalize converts a term into its display string. Unbound terms become the
// empty string, IRIs their local name, literals and blank nodes their value.
func Normalize(t Term) string {
	switch t.Type {
	case TermUnbound:
		return ""
	case TermURI:
		return LocalName(t.Value)
	case TermLiteral, TermBNode:
		return t.Value
	default:
		return t.Value
	}
}

// NormalizeRow applies Normalize to each requested variable. Every variable
// appears in the result; unbound ones map to "".
func NormalizeRow(b Binding, vars []string) DisplayRow {
	row := make(DisplayRow, len(vars))
	for _, v := range vars {
		row[v] = Normalize(b.Lookup(v))
	}
	return row
}

// NormalizeAll normalizes every row of rs in order. When vars is empty the
// variables declared in the result head are used.
func NormalizeAll(rs *ResultSet, vars []string) []DisplayRow {
	if rs == nil {
		return []DisplayRow{}
	}
	if len(vars) == 0 {
		vars = rs.Vars
	}
	rows := make([]DisplayRow, 0, len(rs.Bindings))
	for _, b := range rs.Bindings {
		rows = append(rows, NormalizeRow(b, vars))
	}
	return rows
}
