// Package vocabulary holds the ontology the dashboard queries are written
// against and renders the screen query templates.
//
// Query bodies never spell out the ontology namespace. They use the
// configured prefix and the {{.PrefixDecl}} declaration, so pointing the
// dashboard at a dataset published under a different namespace is a
// configuration change:
//
//	o := vocabulary.Ontology{Prefix: "ex", Namespace: "http://example.org/crime#"}
//	q, err := vocabulary.RenderQuery(vocabulary.HotspotsQuery, o, 500)
//
// Templates are Go text/template documents executed with QueryData. A
// template referencing an unknown field fails to render rather than
// producing an empty string.
package vocabulary
