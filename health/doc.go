// Package health tracks the health of each dashboard screen.
//
// Every render of a screen updates its entry in a Monitor:
//
//   - Healthy: the last query succeeded and every row was bound
//   - Degraded: the last query succeeded but rows were dropped or defaulted
//   - Unhealthy: the last query failed
//
// AggregateHealth folds the entries into one Status for the /healthz
// endpoint. Error text is passed through SanitizeErrorMessage before it is
// stored, so endpoint URLs, addresses and credentials never reach a health
// response:
//
//	monitor := health.NewMonitor()
//	monitor.Update("crime_hotspots", health.FromError("crime_hotspots", err))
//	agg := monitor.AggregateHealth("semdash")
//	if agg.IsUnhealthy() {
//		w.WriteHeader(http.StatusServiceUnavailable)
//	}
package health
