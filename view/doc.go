// Package view binds normalized SPARQL rows onto presentation shapes.
//
// Each adapter is a pure function of a ResultSet. Malformed fields never abort
// a pass: Geo drops rows whose coordinates do not parse, Series defaults
// non-numeric values to zero, and both return the FieldErrors they swallowed
// so the caller can count and log them. An empty result is a valid result.
//
// Classifier buckets counts into ordered severity tiers for map shading. The
// thresholds come from configuration:
//
//	c, _ := view.NewClassifier(view.SeverityConfig{Thresholds: []int{100, 50, 25}})
//	c.Classify(75).Level // 3
package view
