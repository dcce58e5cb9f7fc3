package view

import (
	"fmt"
	"strconv"

	"github.com/c360/semdash/errors"
	"github.com/c360/semdash/sparql"
)

// Point is one chart series point.
type Point struct {
	Category string  `json:"category"`
	Value    float64 `json:"value"`
	// Flagged marks a value that was not an integer and was defaulted to 0.
	Flagged bool `json:"flagged,omitempty"`
}

// Series maps rows onto chart points. The value is parsed as an integer;
// a non-numeric or unbound value becomes 0, is flagged and reported.
func Series(rs *sparql.ResultSet, categoryVar, valueVar string) ([]Point, []errors.FieldError) {
	points := make([]Point, 0, rs.Len())
	var issues []errors.FieldError

	if rs == nil {
		return points, nil
	}

	for i, b := range rs.Bindings {
		p := Point{Category: sparql.Normalize(b.Lookup(categoryVar))}

		n, err := strconv.ParseInt(numericText(b.Lookup(valueVar)), 10, 64)
		if err != nil {
			p.Flagged = true
			issues = append(issues, fieldError(i, valueVar, b, fmt.Errorf("not an integer, defaulted to 0")))
		} else {
			p.Value = float64(n)
		}
		points = append(points, p)
	}

	return points, issues
}
