package sparql

import (
	"bytes"
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/c360/semdash/errors"
)

// Wire protocol constants for SPARQL 1.1 query via POST.
const (
	ContentTypeQuery = "application/sparql-query"
	AcceptJSON       = "application/json"
)

const (
	defaultTimeout          = 30 * time.Second
	defaultMaxResponseBytes = 32 << 20
	errorExcerptBytes       = 512
)

// Config holds the endpoint settings for an Executor.
type Config struct {
	// Endpoint is the absolute URL of the SPARQL query service, e.g.
	// "http://localhost:7200/repositories/Vedanya".
	Endpoint string
	// Timeout bounds a single invocation (default 30s).
	Timeout time.Duration
	// MaxResponseBytes caps the response body (default 32 MiB).
	MaxResponseBytes int64
	// Headers are sent with every request.
	Headers map[string]string
}

// Validate checks the configuration for errors
func (c *Config) Validate() error {
	if c.Endpoint == "" {
		return errors.WrapInvalid(errors.ErrMissingConfig, "Config", "Validate", "endpoint is required")
	}

	u, err := url.Parse(c.Endpoint)
	if err != nil {
		return errors.WrapInvalid(err, "Config", "Validate", "invalid endpoint URL")
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return errors.WrapInvalid(errors.ErrInvalidConfig, "Config", "Validate",
			fmt.Sprintf("endpoint scheme must be http or https, got %q", u.Scheme))
	}
	if u.Host == "" {
		return errors.WrapInvalid(errors.ErrInvalidConfig, "Config", "Validate", "endpoint host is required")
	}

	if c.Timeout < 0 {
		return errors.WrapInvalid(errors.ErrInvalidConfig, "Config", "Validate", "timeout cannot be negative")
	}
	if c.MaxResponseBytes < 0 {
		return errors.WrapInvalid(errors.ErrInvalidConfig, "Config", "Validate",
			"max_response_bytes cannot be negative")
	}

	for key := range c.Headers {
		switch http.CanonicalHeaderKey(key) {
		case "Content-Type", "Accept":
			return errors.WrapInvalid(errors.ErrInvalidConfig, "Config", "Validate",
				fmt.Sprintf("header %s is fixed by the wire protocol", key))
		}
	}

	return nil
}

// Executor sends SPARQL queries to one configured endpoint. Each call to
// Execute performs exactly one HTTP request; there is no retry and no caching.
type Executor struct {
	endpoint   string
	headers    map[string]string
	maxBytes   int64
	httpClient *http.Client
	logger     *slog.Logger
}

// Option configures an Executor.
type Option func(*Executor)

// WithHTTPClient replaces the HTTP client used for requests.
func WithHTTPClient(client *http.Client) Option {
	return func(e *Executor) {
		if client != nil {
			e.httpClient = client
		}
	}
}

// WithTLSConfig sets the TLS configuration used for https endpoints. The
// executor works on a copy of its client, so a client passed to
// WithHTTPClient is never modified. Its timeout and transport settings are
// kept.
func WithTLSConfig(tlsConfig *tls.Config) Option {
	return func(e *Executor) {
		if tlsConfig == nil {
			return
		}
		base, ok := e.httpClient.Transport.(*http.Transport)
		if !ok || base == nil {
			base = http.DefaultTransport.(*http.Transport)
		}
		transport := base.Clone()
		transport.TLSClientConfig = tlsConfig

		client := *e.httpClient
		client.Transport = transport
		e.httpClient = &client
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Executor) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// NewExecutor creates an Executor from validated configuration.
func NewExecutor(cfg Config, opts ...Option) (*Executor, error) {
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "Executor", "NewExecutor", "config validation")
	}

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = defaultTimeout
	}
	maxBytes := cfg.MaxResponseBytes
	if maxBytes == 0 {
		maxBytes = defaultMaxResponseBytes
	}

	e := &Executor{
		endpoint:   cfg.Endpoint,
		headers:    cfg.Headers,
		maxBytes:   maxBytes,
		httpClient: &http.Client{Timeout: timeout},
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.logger = e.logger.With("component", "sparql-executor")

	return e, nil
}

// Endpoint returns the configured endpoint URL.
func (e *Executor) Endpoint() string {
	return e.endpoint
}

// Execute posts query to the endpoint and decodes the SPARQL-JSON response.
// On failure it returns a *errors.QueryError and no ResultSet.
func (e *Executor) Execute(ctx context.Context, query string) (*ResultSet, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.endpoint, strings.NewReader(query))
	if err != nil {
		return nil, errors.NewNetworkError(err, "build request")
	}
	req.Header.Set("Content-Type", ContentTypeQuery)
	req.Header.Set("Accept", AcceptJSON)
	for key, value := range e.headers {
		req.Header.Set(key, value)
	}

	start := time.Now()
	resp, err := e.httpClient.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			err = ctxErr
		}
		e.logger.Debug("query transport failed", "endpoint", e.endpoint, "error", err)
		return nil, errors.NewNetworkError(err, fmt.Sprintf("request to endpoint failed: %v", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		excerpt, _ := io.ReadAll(io.LimitReader(resp.Body, errorExcerptBytes))
		// Drain the remainder so the connection can be reused.
		_, _ = io.Copy(io.Discard, resp.Body)
		msg := resp.Status
		if text := strings.TrimSpace(string(excerpt)); text != "" {
			msg = msg + ": " + text
		}
		e.logger.Debug("query rejected", "endpoint", e.endpoint, "status", resp.StatusCode)
		return nil, errors.NewHTTPError(resp.StatusCode, msg)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, e.maxBytes+1))
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			err = ctxErr
		}
		return nil, errors.NewNetworkError(err, fmt.Sprintf("read response body: %v", err))
	}
	if int64(len(body)) > e.maxBytes {
		return nil, errors.NewParseError(errors.ErrResponseTooBig,
			fmt.Sprintf("response body exceeds %d bytes", e.maxBytes))
	}

	rs, err := Decode(bytes.NewReader(body))
	if err != nil {
		return nil, err
	}

	e.logger.Debug("query completed",
		"endpoint", e.endpoint,
		"rows", rs.Len(),
		"issues", len(rs.Issues),
		"duration", time.Since(start))

	return rs, nil
}
