// Package config loads and validates the dashboard configuration.
//
// Configuration is assembled in layers:
//
//  1. Built-in defaults (Default): the four crime dashboard screens, the
//     default ontology and severity tiers, strict failure policy.
//  2. File layers, JSON (.json) or YAML (.yaml, .yml). Each layer is read with
//     size and nesting limits, checked against the embedded JSON Schema and
//     deep-merged over the previous result, so a file only needs the fields
//     it changes. Setting severity.thresholds replaces the whole severity
//     section. A screen with enabled: false is removed once every layer is
//     merged.
//  3. Environment overrides: SEMDASH_ENDPOINT_URL, SEMDASH_ENDPOINT_TIMEOUT,
//     SEMDASH_LISTEN_ADDR and SEMDASH_FAILURE_POLICY.
//  4. Config.Validate.
//
// Basic usage:
//
//	loader := config.NewLoader()
//	loader.AddLayer("configs/semdash.yaml")
//	cfg, err := loader.Load()
//	if err != nil {
//		return err
//	}
//
// Durations accept Go duration strings ("30s") or integer nanoseconds.
//
// A minimal YAML layer pointing the dashboard at another repository:
//
//	endpoint:
//	  url: https://graphdb.example.org/repositories/crime
//	  timeout: 10s
//	failure_policy: fallback
//	screens:
//	  crime_hotspots:
//	    limit: 200
//	  cross_city:
//	    enabled: false
package config
