package http

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360/semdash/config"
	"github.com/c360/semdash/dashboard"
	"github.com/c360/semdash/errors"
	"github.com/c360/semdash/health"
	"github.com/c360/semdash/metric"
	"github.com/c360/semdash/sparql"
)

type querierFunc func(ctx context.Context, query string) (*sparql.ResultSet, error)

func (f querierFunc) Execute(ctx context.Context, query string) (*sparql.ResultSet, error) {
	return f(ctx, query)
}

// failingCity fails the cross-city query and answers everything else with one
// city row.
func failingCity(_ context.Context, query string) (*sparql.ResultSet, error) {
	if strings.Contains(query, "locatedInCity") {
		return nil, errors.NewHTTPError(http.StatusInternalServerError, "500 Internal Server Error")
	}
	return &sparql.ResultSet{
		Vars: []string{"location", "latitude", "longitude"},
		Bindings: []sparql.Binding{{
			"location":  sparql.URI("http://example.org/crime#Downtown"),
			"latitude":  sparql.Literal("34.05"),
			"longitude": sparql.Literal("-118.24"),
		}},
	}, nil
}

type fixture struct {
	gateway  *Gateway
	handler  http.Handler
	monitor  *health.Monitor
	registry *metric.MetricsRegistry
}

func newFixture(t *testing.T, cfg Config, q querierFunc) *fixture {
	t.Helper()

	monitor := health.NewMonitor()
	registry := metric.NewMetricsRegistry()

	d, err := dashboard.New(config.Default(), q,
		dashboard.WithHealth(monitor),
		dashboard.WithMetrics(registry.CoreMetrics()))
	require.NoError(t, err)

	g, err := NewGateway(cfg, d, WithHealth(monitor), WithMetrics(registry))
	require.NoError(t, err)

	return &fixture{gateway: g, handler: g.Handler(), monitor: monitor, registry: registry}
}

func (f *fixture) do(t *testing.T, method, target string, header http.Header) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, nil)
	for k, values := range header {
		for _, v := range values {
			req.Header.Add(k, v)
		}
	}
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func TestGetOrGenerateRequestID(t *testing.T) {
	tests := []struct {
		name          string
		headerValue   string
		shouldExtract bool
	}{
		{"extract existing request ID", "existing-request-id-12345", true},
		{"generate new request ID when header missing", "", false},
		{"replace oversized request ID", strings.Repeat("x", 200), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/test", nil)
			if tt.headerValue != "" {
				req.Header.Set(RequestIDHeader, tt.headerValue)
			}

			requestID := getOrGenerateRequestID(req)

			if tt.shouldExtract {
				if requestID != tt.headerValue {
					t.Errorf("expected to extract %q, got %q", tt.headerValue, requestID)
				}
			} else if len(requestID) != 36 {
				t.Errorf("expected generated UUID, got %q", requestID)
			}
		})
	}
}

func TestMapErrorToHTTPStatus(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected int
		message  string
	}{
		{"nil", nil, http.StatusInternalServerError, "internal server error"},
		{"unknown screen", errors.WrapInvalid(errors.ErrScreenNotFound, "Dashboard", "Screen", "x"), http.StatusNotFound, "screen not found"},
		{"superseded", errors.ErrSuperseded, http.StatusConflict, "render superseded by a newer request"},
		{"rate limited", errors.WrapTransient(errors.ErrRateLimited, "Gateway", "limited", "x"), http.StatusTooManyRequests, "rate limit exceeded"},
		{"deadline", errors.WrapTransient(context.DeadlineExceeded, "Dashboard", "RefreshAll", "x"), http.StatusGatewayTimeout, "request timeout"},
		{"invalid", errors.WrapInvalid(errors.ErrInvalidData, "X", "Y", "z"), http.StatusBadRequest, "invalid request"},
		{"transient", errors.WrapTransient(context.Canceled, "Dashboard", "RefreshAll", "x"), http.StatusServiceUnavailable, "service temporarily unavailable"},
		{"plain", fmt.Errorf("boom"), http.StatusInternalServerError, "internal server error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, mapErrorToHTTPStatus(tt.err))
			assert.Equal(t, tt.message, sanitizeError(tt.err))
		})
	}
}

func TestNewGateway_Errors(t *testing.T) {
	_, err := NewGateway(Config{}, nil)
	assert.True(t, errors.IsInvalid(err))

	d, err := dashboard.New(config.Default(), querierFunc(failingCity))
	require.NoError(t, err)
	_, err = NewGateway(Config{RateLimit: -1}, d)
	assert.True(t, errors.IsInvalid(err))

	// Request metrics can only be registered once per registry
	registry := metric.NewMetricsRegistry()
	_, err = NewGateway(Config{}, d, WithMetrics(registry))
	require.NoError(t, err)
	_, err = NewGateway(Config{}, d, WithMetrics(registry))
	assert.Error(t, err)
}

func TestGateway_ListScreens(t *testing.T) {
	f := newFixture(t, Config{}, failingCity)

	rec := f.do(t, http.MethodGet, "/api/screens", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var resp struct {
		Policy  string `json:"policy"`
		Screens []struct {
			Name  string `json:"name"`
			State string `json:"state"`
		} `json:"screens"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, config.PolicyStrict, resp.Policy)
	require.Len(t, resp.Screens, 4)
	assert.Equal(t, config.ScreenHotspots, resp.Screens[0].Name)
	assert.Equal(t, "idle", resp.Screens[0].State)
}

func TestGateway_RenderScreen(t *testing.T) {
	f := newFixture(t, Config{}, failingCity)

	rec := f.do(t, http.MethodGet, "/api/screens/crime_hotspots", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var p map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &p))
	assert.Equal(t, "success", p["state"])
	assert.Len(t, p["markers"], 1)
	assert.NotEmpty(t, rec.Header().Get(RequestIDHeader))
}

func TestGateway_RenderScreenQueryError(t *testing.T) {
	f := newFixture(t, Config{}, failingCity)

	rec := f.do(t, http.MethodGet, "/api/screens/cross_city", nil)
	require.Equal(t, http.StatusBadGateway, rec.Code)

	var p map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &p))
	assert.Equal(t, "error", p["state"])
	assert.Equal(t, float64(http.StatusInternalServerError), p["status_code"])
	assert.Equal(t, config.ScreenCrossCity, p["screen"])

	// The failed screen makes the dashboard unhealthy
	rec = f.do(t, http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestGateway_UnknownScreen(t *testing.T) {
	f := newFixture(t, Config{}, failingCity)

	rec := f.do(t, http.MethodGet, "/api/screens/burglary", http.Header{RequestIDHeader: {"req-42"}})
	require.Equal(t, http.StatusNotFound, rec.Code)

	resp := decode[errorResponse](t, rec)
	assert.Equal(t, "screen not found", resp.Error)
	assert.Equal(t, http.StatusNotFound, resp.Status)
	assert.Equal(t, "req-42", resp.RequestID)
	assert.Equal(t, "req-42", rec.Header().Get(RequestIDHeader))
}

func TestGateway_MethodNotAllowed(t *testing.T) {
	f := newFixture(t, Config{}, failingCity)

	rec := f.do(t, http.MethodGet, "/api/refresh", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)

	rec = f.do(t, http.MethodDelete, "/api/screens/crime_hotspots", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestGateway_Refresh(t *testing.T) {
	f := newFixture(t, Config{}, failingCity)

	rec := f.do(t, http.MethodPost, "/api/refresh", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Presentations []map[string]any `json:"presentations"`
		Failed        int              `json:"failed"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Len(t, resp.Presentations, 4)
	assert.Equal(t, 1, resp.Failed)
	assert.Len(t, f.monitor.AggregateHealth("semdash").SubStatuses, 4)
}

func TestGateway_Health(t *testing.T) {
	f := newFixture(t, Config{Version: "1.2.3"}, failingCity)

	rec := f.do(t, http.MethodGet, "/healthz", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, "1.2.3", body["version"])

	f.do(t, http.MethodGet, "/api/screens/crime_hotspots", nil)
	rec = f.do(t, http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestGateway_Metrics(t *testing.T) {
	f := newFixture(t, Config{}, failingCity)

	f.do(t, http.MethodGet, "/api/screens/crime_hotspots", nil)
	rec := f.do(t, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	body := rec.Body.String()
	assert.Contains(t, body, `semdash_query_total{outcome="success",screen="crime_hotspots"} 1`)
	assert.Contains(t, body, `semdash_http_requests_total{code="200",route="GET /api/screens/{name}"} 1`)
}

func TestGateway_RateLimit(t *testing.T) {
	f := newFixture(t, Config{RateLimit: 0.001, Burst: 2}, failingCity)

	assert.Equal(t, http.StatusOK, f.do(t, http.MethodGet, "/api/screens", nil).Code)
	assert.Equal(t, http.StatusOK, f.do(t, http.MethodGet, "/api/screens", nil).Code)

	rec := f.do(t, http.MethodGet, "/api/screens", nil)
	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "1", rec.Header().Get("Retry-After"))
	assert.Equal(t, "rate limit exceeded", decode[errorResponse](t, rec).Error)

	// Health and metrics are not rate limited
	assert.Equal(t, http.StatusOK, f.do(t, http.MethodGet, "/healthz", nil).Code)
	assert.Equal(t, http.StatusOK, f.do(t, http.MethodGet, "/metrics", nil).Code)
}

func TestGateway_CORS(t *testing.T) {
	f := newFixture(t, Config{CORSOrigins: []string{"http://localhost:3000"}}, failingCity)

	rec := f.do(t, http.MethodGet, "/api/screens", http.Header{"Origin": {"http://localhost:3000"}})
	assert.Equal(t, "http://localhost:3000", rec.Header().Get("Access-Control-Allow-Origin"))

	rec = f.do(t, http.MethodGet, "/api/screens", http.Header{"Origin": {"http://evil.example"}})
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, http.StatusOK, rec.Code)

	preflight := http.Header{
		"Origin":                        {"http://localhost:3000"},
		"Access-Control-Request-Method": {"POST"},
	}
	rec = f.do(t, http.MethodOptions, "/api/refresh", preflight)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Contains(t, rec.Header().Get("Access-Control-Allow-Methods"), "POST")

	preflight.Set("Origin", "http://evil.example")
	rec = f.do(t, http.MethodOptions, "/api/refresh", preflight)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestGateway_CORSWildcard(t *testing.T) {
	f := newFixture(t, Config{CORSOrigins: []string{"*"}}, failingCity)

	rec := f.do(t, http.MethodGet, "/healthz", http.Header{"Origin": {"http://anywhere.example"}})
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestGateway_RegisterWithPrefix(t *testing.T) {
	d, err := dashboard.New(config.Default(), querierFunc(failingCity))
	require.NoError(t, err)
	g, err := NewGateway(Config{}, d)
	require.NoError(t, err)

	mux := http.NewServeMux()
	g.RegisterHTTPHandlers("/dash/", mux)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/dash/api/screens", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	// Without a registry /metrics is not served
	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/dash/metrics", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
