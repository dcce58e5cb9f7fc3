package config

import (
	"sort"
	"time"

	"github.com/c360/semdash/view"
	"github.com/c360/semdash/vocabulary"
)

// DefaultEndpoint is the repository the dashboard was developed against.
const DefaultEndpoint = "http://localhost:7200/repositories/Vedanya"

// Default returns the built-in configuration: the four crime dashboard
// screens, strict failure policy and the default severity tiers.
func Default() *Config {
	return &Config{
		Endpoint: EndpointConfig{
			URL:              DefaultEndpoint,
			Timeout:          30 * time.Second,
			MaxResponseBytes: 32 << 20,
		},
		Ontology:      vocabulary.DefaultOntology(),
		Severity:      view.DefaultSeverityConfig(),
		FailurePolicy: PolicyStrict,
		Screens:       DefaultScreens(),
		Server: ServerConfig{
			ListenAddr:      ":8080",
			RateLimit:       20,
			Burst:           40,
			ShutdownTimeout: 10 * time.Second,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// DefaultScreens returns the built-in screens.
func DefaultScreens() map[string]ScreenConfig {
	monthly := []map[string]string{
		{"category": "Jan", "value": "12"},
		{"category": "Feb", "value": "19"},
		{"category": "Mar", "value": "3"},
		{"category": "Apr", "value": "5"},
		{"category": "May", "value": "2"},
	}

	return map[string]ScreenConfig{
		ScreenHotspots: {
			Title:   "Contextual Analysis of Crime Hotspots",
			Kind:    KindMap,
			Query:   vocabulary.HotspotsQuery,
			Columns: []string{"location", "latitude", "longitude", "crimeCount"},
			Limit:   500,
			Order:   1,
			Geo:     view.DefaultGeoOptions(),
		},
		ScreenTemporal: {
			Title:   "Temporal Analysis of Crime Trends",
			Kind:    KindTable,
			Query:   vocabulary.TemporalQuery,
			Columns: []string{"crm_cd_desc", "crime_year", "crimeCount"},
			Limit:   50,
			Order:   2,
		},
		ScreenPoliceImpact: {
			Title:       "Evaluating the Impact of Police Presence on Crime Reduction",
			Kind:        KindSeries,
			Query:       vocabulary.PoliceImpactQuery,
			Columns:     []string{"crimeType", "arrests"},
			Limit:       50,
			Order:       3,
			CategoryVar: "crimeType",
			ValueVar:    "arrests",
			Fallback:    renameFallback(monthly, "crimeType", "arrests"),
		},
		ScreenCrossCity: {
			Title:       "Cross-City Benchmarking of Crime Trends",
			Kind:        KindSeries,
			Query:       vocabulary.CrossCityQuery,
			Columns:     []string{"city", "crimeCount"},
			Limit:       50,
			Order:       4,
			CategoryVar: "city",
			ValueVar:    "crimeCount",
			Fallback:    renameFallback(monthly, "city", "crimeCount"),
		},
	}
}

func renameFallback(rows []map[string]string, category, value string) []map[string]string {
	out := make([]map[string]string, len(rows))
	for i, row := range rows {
		out[i] = map[string]string{category: row["category"], value: row["value"]}
	}
	return out
}

func sortScreens(names []string, screens map[string]ScreenConfig) {
	sort.Slice(names, func(i, j int) bool {
		oi, oj := screens[names[i]].Order, screens[names[j]].Order
		if oi != oj {
			return oi < oj
		}
		return names[i] < names[j]
	})
}
