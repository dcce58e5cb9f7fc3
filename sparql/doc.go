// Package sparql executes SPARQL queries against a SPARQL 1.1 endpoint and
// normalizes the JSON results into display values.
//
// An Executor posts a fixed query string to the configured endpoint:
//
//	POST /repositories/Vedanya
//	Content-Type: application/sparql-query
//	Accept: application/json
//
// and decodes the standard results document into a ResultSet. Each row is a
// Binding from variable name to Term. Term.Type is an explicit tag and its
// zero value, TermUnbound, stands for a variable the row does not bind, so
// lookups never need a nil check:
//
//	rs, err := exec.Execute(ctx, query)
//	if err != nil {
//	    return err // *errors.QueryError: network, http or parse
//	}
//	rows := sparql.NormalizeAll(rs, []string{"crm_cd_desc", "crime_year", "crimeCount"})
//
// Normalize turns IRIs into their local name and passes literals through
// unchanged. A Tracker enforces the per-view query lifecycle and discards the
// late result of a superseded call.
package sparql
