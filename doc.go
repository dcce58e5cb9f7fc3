// Package semdash provides the core of a SPARQL-backed crime dashboard: it
// issues fixed queries against a triple store, normalizes the SPARQL-JSON
// results and binds them onto table, map and chart presentations.
//
// # Architecture
//
// Every screen follows the same path from query to presentation:
//
//	┌─────────────────────────────────────┐
//	│         Query templates             │  Ontology prefix,
//	│          (vocabulary)               │  LIMIT per screen
//	└─────────────────────────────────────┘
//	           ↓ rendered query text
//	┌─────────────────────────────────────┐
//	│         Query executor              │  POST application/sparql-query
//	│            (sparql)                 │  Network / HTTP / Parse errors
//	└─────────────────────────────────────┘
//	           ↓ ResultSet (typed terms)
//	┌─────────────────────────────────────┐
//	│           View binders              │  Table rows, geo markers,
//	│             (view)                  │  series points, severity tiers
//	└─────────────────────────────────────┘
//	           ↓ Presentation
//	┌─────────────────────────────────────┐
//	│       Dashboard and gateway         │  Per-screen lifecycle,
//	│   (dashboard, gateway/http)         │  JSON over HTTP
//	└─────────────────────────────────────┘
//
// A screen moves idle → pending → success or error. Starting a new render
// supersedes the pending one: its request is cancelled and a late response
// never replaces the newer presentation.
//
// Fields that cannot be bound (an unparsable coordinate, a fractional count)
// drop only the affected row or value. The presentation counts both the
// unusable fields and the rows left off a map. Field errors are also logged at
// debug level and exported as metrics.
//
// # Failure Policy
//
// Under the strict policy a failed query produces an error presentation with
// no rows. Under the fallback policy screens that carry a fallback dataset
// show those rows instead, still flagged as failed so the state is visible.
//
// # Packages
//
// Core:
//   - sparql: Result model, decoding, term normalization, query executor, lifecycle tracker
//   - view: Table, geospatial and series adapters plus the severity classifier
//   - vocabulary: Ontology namespace, query templates, XSD datatypes
//   - dashboard: Screens, presentations, refresh fan-out
//
// Infrastructure:
//   - config: Layered JSON/YAML configuration with schema validation and env overrides
//   - errors: Classified errors and query error kinds
//   - health: Per-screen health status and aggregation
//   - metric: Prometheus metrics registry
//   - gateway/http: HTTP routes, rate limiting, CORS, request IDs
//   - pkg/tlsutil: TLS for the endpoint client and the gateway listener
//
// Command:
//   - cmd/semdash: Server and one-shot screen rendering
package semdash
