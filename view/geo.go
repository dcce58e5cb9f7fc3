package view

import (
	"fmt"
	"math"
	"strconv"

	"github.com/c360/semdash/errors"
	"github.com/c360/semdash/sparql"
)

// Marker is one map point.
type Marker struct {
	Label     string  `json:"label,omitempty"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Weight    float64 `json:"weight"`
}

// GeoOptions names the result variables the geospatial adapter reads.
type GeoOptions struct {
	LatitudeVar  string `json:"latitude_var,omitempty" yaml:"latitude_var,omitempty"`
	LongitudeVar string `json:"longitude_var,omitempty" yaml:"longitude_var,omitempty"`
	// WeightVar is optional; without it every marker weighs 1.
	WeightVar string `json:"weight_var,omitempty" yaml:"weight_var,omitempty"`
	// LabelVar is optional.
	LabelVar string `json:"label_var,omitempty" yaml:"label_var,omitempty"`
}

// DefaultGeoOptions matches the variables of the hotspots query.
func DefaultGeoOptions() GeoOptions {
	return GeoOptions{
		LatitudeVar:  "latitude",
		LongitudeVar: "longitude",
		WeightVar:    "crimeCount",
		LabelVar:     "location",
	}
}

func (o GeoOptions) withDefaults() GeoOptions {
	d := DefaultGeoOptions()
	if o.LatitudeVar == "" {
		o.LatitudeVar = d.LatitudeVar
	}
	if o.LongitudeVar == "" {
		o.LongitudeVar = d.LongitudeVar
	}
	return o
}

// Geo maps rows onto markers. A row whose latitude or longitude is unbound,
// not a float, not finite or out of range is dropped and reported. An
// unparsable weight defaults to 1 and is reported; the row is kept.
func Geo(rs *sparql.ResultSet, opts GeoOptions) ([]Marker, []errors.FieldError) {
	opts = opts.withDefaults()
	markers := make([]Marker, 0, rs.Len())
	var issues []errors.FieldError

	if rs == nil {
		return markers, nil
	}

	for i, b := range rs.Bindings {
		lat, err := coordinate(b.Lookup(opts.LatitudeVar), 90)
		if err != nil {
			issues = append(issues, fieldError(i, opts.LatitudeVar, b, err))
			continue
		}
		lon, err := coordinate(b.Lookup(opts.LongitudeVar), 180)
		if err != nil {
			issues = append(issues, fieldError(i, opts.LongitudeVar, b, err))
			continue
		}

		m := Marker{Latitude: lat, Longitude: lon, Weight: 1}
		if opts.LabelVar != "" {
			m.Label = sparql.Normalize(b.Lookup(opts.LabelVar))
		}
		if opts.WeightVar != "" {
			if t := b.Lookup(opts.WeightVar); t.Bound() {
				w, err := strconv.ParseFloat(numericText(t), 64)
				if err != nil || math.IsNaN(w) || math.IsInf(w, 0) || w < 0 {
					issues = append(issues, fieldError(i, opts.WeightVar, b, fmt.Errorf("weight is not a non-negative number, defaulted to 1")))
				} else {
					m.Weight = w
				}
			}
		}
		markers = append(markers, m)
	}

	return markers, issues
}

func coordinate(t sparql.Term, limit float64) (float64, error) {
	if !t.Bound() {
		return 0, fmt.Errorf("unbound")
	}
	v, err := strconv.ParseFloat(numericText(t), 64)
	if err != nil {
		return 0, fmt.Errorf("not a float")
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("not finite")
	}
	if v < -limit || v > limit {
		return 0, fmt.Errorf("outside ±%g", limit)
	}
	return v, nil
}

func fieldError(row int, name string, b sparql.Binding, err error) errors.FieldError {
	return errors.FieldError{
		Row:    row,
		Var:    name,
		Value:  b.Lookup(name).Value,
		Reason: err.Error(),
	}
}
