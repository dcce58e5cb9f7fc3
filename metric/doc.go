// Package metric provides the Prometheus metrics of the dashboard.
//
// MetricsRegistry owns a private prometheus.Registry with the dashboard
// metrics (Metrics), the Go runtime and process collectors, and any
// collectors registered later through Register. Handler exposes it:
//
//	registry := metric.NewMetricsRegistry()
//	mux.Handle("GET /metrics", registry.Handler())
//
//	m := registry.CoreMetrics()
//	m.RecordQuery("crime_hotspots", metric.OutcomeSuccess, elapsed)
//
// Exported series, all prefixed semdash_:
//
//	query_total{screen,outcome}
//	query_duration_seconds{screen}
//	query_rows{screen}
//	view_field_errors_total{screen,var}
//	view_fallbacks_total{screen}
//	screen_state{screen}
//	screen_last_success_timestamp_seconds{screen}
//	health_status{screen}
package metric
