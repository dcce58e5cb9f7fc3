package errors

import (
	"errors"
	"fmt"
)

// QueryKind identifies which stage of a query invocation failed.
type QueryKind int

const (
	// KindNetwork is a transport failure: dial, TLS, timeout or cancellation.
	KindNetwork QueryKind = iota
	// KindHTTP is a non-2xx response from the endpoint.
	KindHTTP
	// KindParse is a body that is not a SPARQL-JSON result document.
	KindParse
)

// String returns the taxonomy name of the kind.
func (k QueryKind) String() string {
	switch k {
	case KindNetwork:
		return "network"
	case KindHTTP:
		return "http"
	case KindParse:
		return "parse"
	default:
		return "unknown"
	}
}

// QueryError aborts a single query invocation. It carries a human-readable
// message and, for KindHTTP, the response status code.
type QueryError struct {
	Kind       QueryKind
	StatusCode int
	Message    string
	Err        error
}

// Error implements the error interface
func (qe *QueryError) Error() string {
	msg := qe.Message
	if msg == "" && qe.Err != nil {
		msg = qe.Err.Error()
	}
	if qe.Kind == KindHTTP && qe.StatusCode != 0 {
		return fmt.Sprintf("%s error (status %d): %s", qe.Kind, qe.StatusCode, msg)
	}
	return fmt.Sprintf("%s error: %s", qe.Kind, msg)
}

// Unwrap returns the underlying error
func (qe *QueryError) Unwrap() error {
	return qe.Err
}

// NewNetworkError reports a transport failure.
func NewNetworkError(err error, message string) *QueryError {
	return &QueryError{Kind: KindNetwork, Message: message, Err: err}
}

// NewHTTPError reports a non-success HTTP status.
func NewHTTPError(statusCode int, message string) *QueryError {
	return &QueryError{Kind: KindHTTP, StatusCode: statusCode, Message: message}
}

// NewParseError reports a body that could not be decoded as SPARQL-JSON.
func NewParseError(err error, message string) *QueryError {
	if err == nil {
		err = ErrParsingFailed
	}
	return &QueryError{Kind: KindParse, Message: message, Err: err}
}

// IsNetwork reports whether err is a network QueryError.
func IsNetwork(err error) bool {
	return queryKind(err) == KindNetwork
}

// IsHTTP reports whether err is an HTTP status QueryError.
func IsHTTP(err error) bool {
	return queryKind(err) == KindHTTP
}

// IsParse reports whether err is a parse QueryError.
func IsParse(err error) bool {
	return queryKind(err) == KindParse
}

// StatusCode returns the HTTP status carried by err, or 0.
func StatusCode(err error) int {
	var qe *QueryError
	if errors.As(err, &qe) {
		return qe.StatusCode
	}
	return 0
}

func queryKind(err error) QueryKind {
	var qe *QueryError
	if errors.As(err, &qe) {
		return qe.Kind
	}
	return -1
}

// FieldError describes one malformed field in one result row. It never aborts
// a query; the affected row is dropped or defaulted by the caller.
type FieldError struct {
	Row    int
	Var    string
	Value  string
	Reason string
}

// Error implements the error interface
func (fe *FieldError) Error() string {
	return fmt.Sprintf("row %d: field %q (%q): %s", fe.Row, fe.Var, fe.Value, fe.Reason)
}
