package metric

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "semdash"

// Query outcomes recorded by RecordQuery
const (
	OutcomeSuccess    = "success"
	OutcomeNetwork    = "network_error"
	OutcomeHTTP       = "http_error"
	OutcomeParse      = "parse_error"
	OutcomeSuperseded = "superseded"
)

// Metrics contains the dashboard metrics
type Metrics struct {
	QueriesTotal     *prometheus.CounterVec
	QueryDuration    *prometheus.HistogramVec
	RowsReturned     *prometheus.HistogramVec
	FieldErrors      *prometheus.CounterVec
	FallbacksServed  *prometheus.CounterVec
	ScreenState      *prometheus.GaugeVec
	LastSuccess      *prometheus.GaugeVec
	HealthCheckState *prometheus.GaugeVec
}

// NewMetrics creates a new Metrics instance
func NewMetrics() *Metrics {
	return &Metrics{
		QueriesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "query",
				Name:      "total",
				Help:      "Total number of SPARQL queries by screen and outcome",
			},
			[]string{"screen", "outcome"},
		),

		QueryDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "query",
				Name:      "duration_seconds",
				Help:      "SPARQL query round-trip duration in seconds",
				Buckets:   []float64{.01, .05, .1, .25, .5, 1, 2.5, 5, 10, 30},
			},
			[]string{"screen"},
		),

		RowsReturned: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "query",
				Name:      "rows",
				Help:      "Number of solution rows per successful query",
				Buckets:   prometheus.ExponentialBuckets(1, 4, 8),
			},
			[]string{"screen"},
		),

		FieldErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "view",
				Name:      "field_errors_total",
				Help:      "Total number of fields that could not be bound, by screen and variable",
			},
			[]string{"screen", "var"},
		),

		FallbacksServed: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "view",
				Name:      "fallbacks_total",
				Help:      "Total number of presentations served from a fallback dataset",
			},
			[]string{"screen"},
		),

		ScreenState: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: "screen",
				Name:      "state",
				Help:      "Screen query state (0=idle, 1=pending, 2=success, 3=error)",
			},
			[]string{"screen"},
		),

		LastSuccess: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: "screen",
				Name:      "last_success_timestamp_seconds",
				Help:      "Unix time of the last successful render",
			},
			[]string{"screen"},
		),

		HealthCheckState: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: "health",
				Name:      "status",
				Help:      "Health check status (0=unhealthy, 1=degraded, 2=healthy)",
			},
			[]string{"screen"},
		),
	}
}

func (m *Metrics) collectors() []prometheus.Collector {
	return []prometheus.Collector{
		m.QueriesTotal,
		m.QueryDuration,
		m.RowsReturned,
		m.FieldErrors,
		m.FallbacksServed,
		m.ScreenState,
		m.LastSuccess,
		m.HealthCheckState,
	}
}

// RecordQuery records one finished query
func (m *Metrics) RecordQuery(screen, outcome string, duration time.Duration) {
	m.QueriesTotal.WithLabelValues(screen, outcome).Inc()
	if outcome != OutcomeSuperseded {
		m.QueryDuration.WithLabelValues(screen).Observe(duration.Seconds())
	}
}

// RecordRows records the row count of a successful query
func (m *Metrics) RecordRows(screen string, rows int) {
	m.RowsReturned.WithLabelValues(screen).Observe(float64(rows))
}

// RecordFieldError increments the field error counter
func (m *Metrics) RecordFieldError(screen, variable string) {
	m.FieldErrors.WithLabelValues(screen, variable).Inc()
}

// RecordFallback increments the fallback counter
func (m *Metrics) RecordFallback(screen string) {
	m.FallbacksServed.WithLabelValues(screen).Inc()
}

// RecordScreenState updates the screen state gauge
func (m *Metrics) RecordScreenState(screen string, state int) {
	m.ScreenState.WithLabelValues(screen).Set(float64(state))
}

// RecordSuccess stamps the last successful render time
func (m *Metrics) RecordSuccess(screen string, at time.Time) {
	m.LastSuccess.WithLabelValues(screen).Set(float64(at.Unix()))
}

// RecordHealthStatus updates the health gauge
func (m *Metrics) RecordHealthStatus(screen string, level int) {
	m.HealthCheckState.WithLabelValues(screen).Set(float64(level))
}
