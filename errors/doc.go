// Package errors provides standardized error handling patterns for SemDash components.
//
// # Overview
//
// The package implements a three-class error classification (Transient, Invalid,
// Fatal) shared by every component, plus the query failure taxonomy used by the
// SPARQL executor and the view adapters.
//
// # Query Failures
//
// A query invocation fails with a *QueryError whose Kind names the stage:
//
//   - KindNetwork: transport failure (dial, TLS, timeout, cancellation)
//   - KindHTTP: non-2xx response, StatusCode is set
//   - KindParse: body is not a SPARQL-JSON results document
//
// Network and HTTP failures classify as Transient, parse failures as Invalid.
// All three abort the query and surface an error presentation; re-invoking the
// query is always allowed.
//
// A *FieldError describes one malformed field in one row. It is never returned
// from a query: adapters collect field errors, drop or default the row, and the
// caller counts them.
//
//	rs, err := executor.Execute(ctx, query)
//	if errors.IsHTTP(err) {
//	    logger.Warn("endpoint rejected query", "status", errors.StatusCode(err))
//	}
//
// # Error Wrapping Pattern
//
// All error wrapping follows the standardized format:
//
//	"component.method: action failed: %w"
//
// Three wrapper functions provide classification-aware wrapping:
//
//	errors.WrapTransient(err, "Component", "Method", "action")
//	errors.WrapInvalid(err, "Component", "Method", "action")
//	errors.WrapFatal(err, "Component", "Method", "action")
//
// The generic Wrap() function preserves the original error's classification.
//
// # Integration with errors.As/Is
//
// All error types support standard library error inspection. Context errors
// (context.DeadlineExceeded, context.Canceled) classify as Transient.
package errors
