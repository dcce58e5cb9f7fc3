package view

import "github.com/c360/semdash/sparql"

// Table normalizes each row of rs onto the requested columns, preserving the
// store's row order.
func Table(rs *sparql.ResultSet, vars []string) []sparql.DisplayRow {
	return sparql.NormalizeAll(rs, vars)
}
