// Package http serves the dashboard presentations as JSON over HTTP.
package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/time/rate"

	"github.com/c360/semdash/dashboard"
	"github.com/c360/semdash/errors"
	"github.com/c360/semdash/health"
	"github.com/c360/semdash/metric"
)

// Renderer is the dashboard surface the gateway serves. *dashboard.Dashboard
// satisfies it.
type Renderer interface {
	Policy() string
	Summaries() []dashboard.Summary
	Render(ctx context.Context, name string) (dashboard.Presentation, error)
	RefreshAll(ctx context.Context) ([]dashboard.Presentation, error)
}

// Config holds the gateway settings.
type Config struct {
	// RateLimit is the sustained request rate per second for /api routes.
	// Zero disables rate limiting.
	RateLimit   float64
	Burst       int
	CORSOrigins []string
	// Version is reported by /healthz.
	Version string
}

// Gateway is the HTTP front of the dashboard.
type Gateway struct {
	config   Config
	dash     Renderer
	monitor  *health.Monitor
	registry *metric.MetricsRegistry
	limiter  *rate.Limiter
	logger   *slog.Logger
	started  time.Time

	requests *prometheus.CounterVec
	latency  *prometheus.HistogramVec
}

// Option configures a Gateway.
type Option func(*Gateway)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(g *Gateway) { g.logger = logger }
}

// WithHealth serves /healthz from monitor.
func WithHealth(monitor *health.Monitor) Option {
	return func(g *Gateway) { g.monitor = monitor }
}

// WithMetrics serves /metrics from registry and records request metrics in it.
func WithMetrics(registry *metric.MetricsRegistry) Option {
	return func(g *Gateway) { g.registry = registry }
}

// NewGateway creates the gateway for dash.
func NewGateway(cfg Config, dash Renderer, opts ...Option) (*Gateway, error) {
	if dash == nil {
		return nil, errors.WrapInvalid(errors.ErrMissingConfig, "Gateway", "NewGateway", "dashboard is required")
	}
	if cfg.RateLimit < 0 {
		return nil, errors.WrapInvalid(errors.ErrInvalidConfig, "Gateway", "NewGateway", "rate limit cannot be negative")
	}

	g := &Gateway{
		config:  cfg,
		dash:    dash,
		logger:  slog.Default(),
		started: time.Now(),
	}
	for _, opt := range opts {
		opt(g)
	}

	if cfg.RateLimit > 0 {
		burst := cfg.Burst
		if burst < 1 {
			burst = 1
		}
		g.limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), burst)
	}

	if g.registry != nil {
		g.requests = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "semdash",
				Subsystem: "http",
				Name:      "requests_total",
				Help:      "Total number of HTTP requests by route and status code",
			},
			[]string{"route", "code"},
		)
		g.latency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "semdash",
				Subsystem: "http",
				Name:      "request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"route"},
		)
		if err := g.registry.Register("gateway", "http_requests_total", g.requests); err != nil {
			return nil, err
		}
		if err := g.registry.Register("gateway", "http_request_duration_seconds", g.latency); err != nil {
			return nil, err
		}
	}

	return g, nil
}

// Handler returns the gateway routes wrapped in the middleware chain.
func (g *Gateway) Handler() http.Handler {
	mux := http.NewServeMux()
	g.RegisterHTTPHandlers("", mux)
	return g.withRequestID(g.withLogging(g.withCORS(mux)))
}

// RegisterHTTPHandlers registers gateway routes with the HTTP mux
func (g *Gateway) RegisterHTTPHandlers(prefix string, mux *http.ServeMux) {
	prefix = strings.TrimSuffix(prefix, "/")

	mux.Handle("GET "+prefix+"/api/screens", g.limited(http.HandlerFunc(g.handleListScreens)))
	mux.Handle("GET "+prefix+"/api/screens/{name}", g.limited(http.HandlerFunc(g.handleRenderScreen)))
	mux.Handle("POST "+prefix+"/api/refresh", g.limited(http.HandlerFunc(g.handleRefresh)))
	mux.HandleFunc("GET "+prefix+"/healthz", g.handleHealth)
	if g.registry != nil {
		mux.Handle("GET "+prefix+"/metrics", g.registry.Handler())
	}
}

type screensResponse struct {
	Policy  string              `json:"policy"`
	Screens []dashboard.Summary `json:"screens"`
}

func (g *Gateway) handleListScreens(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, screensResponse{
		Policy:  g.dash.Policy(),
		Screens: g.dash.Summaries(),
	})
}

func (g *Gateway) handleRenderScreen(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")

	p, err := g.dash.Render(r.Context(), name)
	if err != nil {
		g.writeError(w, r, err)
		return
	}

	status := http.StatusOK
	if p.Failed() {
		status = http.StatusBadGateway
	}
	writeJSON(w, status, p)
}

type refreshResponse struct {
	Presentations []dashboard.Presentation `json:"presentations"`
	Failed        int                      `json:"failed"`
}

func (g *Gateway) handleRefresh(w http.ResponseWriter, r *http.Request) {
	out, err := g.dash.RefreshAll(r.Context())
	if err != nil {
		g.writeError(w, r, err)
		return
	}

	resp := refreshResponse{Presentations: out}
	for _, p := range out {
		if p.Failed() {
			resp.Failed++
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

type healthResponse struct {
	health.Status
	Version string        `json:"version,omitempty"`
	Uptime  time.Duration `json:"uptime"`
}

func (g *Gateway) handleHealth(w http.ResponseWriter, _ *http.Request) {
	status := health.NewHealthy("semdash", "No health monitor configured")
	if g.monitor != nil {
		status = g.monitor.AggregateHealth("semdash")
	}

	code := http.StatusOK
	if status.IsUnhealthy() {
		code = http.StatusServiceUnavailable
	}
	writeJSON(w, code, healthResponse{
		Status:  status,
		Version: g.config.Version,
		Uptime:  time.Since(g.started),
	})
}

func writeJSON(w http.ResponseWriter, statusCode int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		http.Error(w, `{"error":"internal server error","status":500}`, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_, _ = w.Write(data)
}
