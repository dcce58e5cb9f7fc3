package view

import (
	"strings"

	"github.com/c360/semdash/sparql"
)

// numericText normalizes a term and strips any prefix up to and including the
// last ':'. Some endpoints embed a namespace prefix such as "smw:34.05" in
// numeric literals.
func numericText(t sparql.Term) string {
	s := sparql.Normalize(t)
	if i := strings.LastIndexByte(s, ':'); i >= 0 {
		s = s[i+1:]
	}
	return strings.TrimSpace(s)
}
