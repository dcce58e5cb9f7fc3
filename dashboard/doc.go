// Package dashboard renders the configured screens of the crime dashboard.
//
// Each Screen owns one query lifecycle (sparql.Tracker). Render sends the
// screen's query, binds the result onto the screen's kind (table rows, map
// markers with severity tiers, chart series) and keeps the resulting
// Presentation as the screen's last state. Starting a render while another
// is pending cancels the older call; its late result is discarded and the
// older Render returns errors.ErrSuperseded.
//
// Query failures never fail a render. They produce a presentation in the
// error state with a sanitized message and, for HTTP failures, the status
// code returned by the endpoint. Under the fallback policy a screen with a
// configured fallback dataset also carries those rows, marked Fallback.
//
//	exec, _ := sparql.NewExecutor(cfg.Endpoint.Executor())
//	d, err := dashboard.New(cfg, exec,
//		dashboard.WithMetrics(registry.CoreMetrics()),
//		dashboard.WithHealth(monitor))
//	p, err := d.Render(ctx, "crime_hotspots")
package dashboard
