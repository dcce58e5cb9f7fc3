package config

import (
	"encoding/json"
	"fmt"
	"net"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/c360/semdash/errors"
	"github.com/c360/semdash/pkg/tlsutil"
	"github.com/c360/semdash/sparql"
	"github.com/c360/semdash/view"
	"github.com/c360/semdash/vocabulary"
)

// Failure policies applied when a screen query fails
const (
	PolicyStrict   = "strict"   // error presentation only
	PolicyFallback = "fallback" // error presentation plus the screen's fallback rows
)

// Screen kinds
const (
	KindMap    = "map"
	KindTable  = "table"
	KindSeries = "series"
)

// Built-in screen names
const (
	ScreenHotspots     = "crime_hotspots"
	ScreenTemporal     = "temporal_analysis"
	ScreenPoliceImpact = "police_impact"
	ScreenCrossCity    = "cross_city"
)

// Config represents the complete application configuration
type Config struct {
	Endpoint      EndpointConfig          `json:"endpoint" yaml:"endpoint"`
	Ontology      vocabulary.Ontology     `json:"ontology" yaml:"ontology"`
	Severity      view.SeverityConfig     `json:"severity" yaml:"severity"`
	FailurePolicy string                  `json:"failure_policy" yaml:"failure_policy"`
	Screens       map[string]ScreenConfig `json:"screens" yaml:"screens"`
	Server        ServerConfig            `json:"server" yaml:"server"`
	Logging       LoggingConfig           `json:"logging" yaml:"logging"`
}

// EndpointConfig defines the SPARQL endpoint every screen queries
type EndpointConfig struct {
	URL              string            `json:"url" yaml:"url"`
	Timeout          time.Duration     `json:"timeout,omitempty" yaml:"timeout,omitempty"`
	MaxResponseBytes int64             `json:"max_response_bytes,omitempty" yaml:"max_response_bytes,omitempty"`
	Headers          map[string]string `json:"headers,omitempty" yaml:"headers,omitempty"`

	// TLS customizes verification of https endpoints
	TLS *tlsutil.ClientConfig `json:"tls,omitempty" yaml:"tls,omitempty"`
}

// Executor converts the endpoint settings into executor configuration.
func (e EndpointConfig) Executor() sparql.Config {
	return sparql.Config{
		Endpoint:         e.URL,
		Timeout:          e.Timeout,
		MaxResponseBytes: e.MaxResponseBytes,
		Headers:          e.Headers,
	}
}

// ScreenConfig defines one dashboard screen
type ScreenConfig struct {
	Title   string   `json:"title" yaml:"title"`
	Kind    string   `json:"kind" yaml:"kind"`
	Query   string   `json:"query" yaml:"query"` // text/template, see vocabulary.QueryData
	Columns []string `json:"columns,omitempty" yaml:"columns,omitempty"`
	Limit   int      `json:"limit,omitempty" yaml:"limit,omitempty"`
	Order   int      `json:"order,omitempty" yaml:"order,omitempty"`

	// Enabled set to false removes the screen, including a built-in one
	Enabled *bool `json:"enabled,omitempty" yaml:"enabled,omitempty"`

	// Map screens
	Geo view.GeoOptions `json:"geo,omitempty" yaml:"geo,omitempty"`

	// Series screens
	CategoryVar string `json:"category_var,omitempty" yaml:"category_var,omitempty"`
	ValueVar    string `json:"value_var,omitempty" yaml:"value_var,omitempty"`

	// Rows shown under the fallback policy when the query fails
	Fallback []map[string]string `json:"fallback,omitempty" yaml:"fallback,omitempty"`
}

// IsEnabled reports whether the screen is served. Screens are enabled unless
// switched off explicitly.
func (s ScreenConfig) IsEnabled() bool {
	return s.Enabled == nil || *s.Enabled
}

// ServerConfig defines the HTTP gateway
type ServerConfig struct {
	ListenAddr      string        `json:"listen_addr" yaml:"listen_addr"`
	RateLimit       float64       `json:"rate_limit,omitempty" yaml:"rate_limit,omitempty"` // requests per second, 0 disables
	Burst           int           `json:"burst,omitempty" yaml:"burst,omitempty"`
	CORSOrigins     []string      `json:"cors_origins,omitempty" yaml:"cors_origins,omitempty"`
	ShutdownTimeout time.Duration `json:"shutdown_timeout,omitempty" yaml:"shutdown_timeout,omitempty"`

	// TLS serves the gateway over https when set
	TLS *tlsutil.ServerConfig `json:"tls,omitempty" yaml:"tls,omitempty"`
}

// LoggingConfig defines log output
type LoggingConfig struct {
	Level  string `json:"level" yaml:"level"`
	Format string `json:"format" yaml:"format"`
}

// Clone creates a deep copy of the configuration
func (c *Config) Clone() *Config {
	if c == nil {
		return &Config{}
	}

	data, err := json.Marshal(c)
	if err != nil {
		copied := *c
		return &copied
	}

	var clone Config
	if err := json.Unmarshal(data, &clone); err != nil {
		copied := *c
		return &copied
	}
	return &clone
}

// ScreenNames returns enabled screen names sorted by Order, then name.
func (c *Config) ScreenNames() []string {
	names := make([]string, 0, len(c.Screens))
	for name, screen := range c.Screens {
		if screen.IsEnabled() {
			names = append(names, name)
		}
	}
	sortScreens(names, c.Screens)
	return names
}

// pruneDisabled drops screens a layer switched off.
func (c *Config) pruneDisabled() {
	for name, screen := range c.Screens {
		if !screen.IsEnabled() {
			delete(c.Screens, name)
		}
	}
}

// Validate checks if the config is valid
func (c *Config) Validate() error {
	exec := c.Endpoint.Executor()
	if err := exec.Validate(); err != nil {
		return errors.WrapInvalid(err, "Config", "Validate", "endpoint")
	}
	if c.Endpoint.TLS != nil {
		if err := c.Endpoint.TLS.Validate(); err != nil {
			return errors.WrapInvalid(err, "Config", "Validate", "endpoint tls")
		}
	}
	if err := c.Ontology.Validate(); err != nil {
		return errors.WrapInvalid(err, "Config", "Validate", "ontology")
	}
	if err := c.Severity.Validate(); err != nil {
		return errors.WrapInvalid(err, "Config", "Validate", "severity")
	}

	switch c.FailurePolicy {
	case PolicyStrict, PolicyFallback:
	default:
		return invalid(fmt.Sprintf("failure_policy %q must be %q or %q",
			c.FailurePolicy, PolicyStrict, PolicyFallback))
	}

	withFallback, enabled := 0, 0
	for name, screen := range c.Screens {
		if !screen.IsEnabled() {
			continue
		}
		enabled++
		if !isValidScreenName(name) {
			return invalid(fmt.Sprintf("screen name %q must be lowercase alphanumeric with underscores or dashes", name))
		}
		if err := screen.validate(); err != nil {
			return errors.WrapInvalid(err, "Config", "Validate", fmt.Sprintf("screen %s", name))
		}
		if len(screen.Fallback) > 0 {
			withFallback++
		}
	}
	if enabled == 0 {
		return invalid("at least one screen is required")
	}
	if c.FailurePolicy == PolicyFallback && withFallback == 0 {
		return invalid("fallback policy requires at least one screen with a fallback dataset")
	}

	if err := c.Server.validate(); err != nil {
		return errors.WrapInvalid(err, "Config", "Validate", "server")
	}
	return c.Logging.validate()
}

func (s ScreenConfig) validate() error {
	if s.Title == "" {
		return invalid("title is required")
	}
	if strings.TrimSpace(s.Query) == "" {
		return invalid("query is required")
	}
	if _, err := vocabulary.ParseQuery("screen", s.Query); err != nil {
		return err
	}
	if s.Limit < 0 {
		return invalid("limit cannot be negative")
	}

	switch s.Kind {
	case KindTable, KindMap:
	case KindSeries:
		if s.CategoryVar == "" || s.ValueVar == "" {
			return invalid("series screens need category_var and value_var")
		}
	default:
		return invalid(fmt.Sprintf("kind %q must be %q, %q or %q", s.Kind, KindMap, KindTable, KindSeries))
	}
	for i, row := range s.Fallback {
		if len(row) == 0 {
			return invalid(fmt.Sprintf("fallback row %d is empty", i))
		}
	}
	return nil
}

func (s ServerConfig) validate() error {
	if s.ListenAddr == "" {
		return invalid("listen_addr is required")
	}
	if _, _, err := net.SplitHostPort(s.ListenAddr); err != nil {
		return errors.WrapInvalid(err, "Config", "Validate", fmt.Sprintf("listen_addr %q", s.ListenAddr))
	}
	if s.RateLimit < 0 {
		return invalid("rate_limit cannot be negative")
	}
	if s.RateLimit > 0 && s.Burst < 1 {
		return invalid("burst must be at least 1 when rate_limit is set")
	}
	if s.ShutdownTimeout < 0 {
		return invalid("shutdown_timeout cannot be negative")
	}
	for _, origin := range s.CORSOrigins {
		if origin == "" {
			return invalid("cors_origins cannot contain empty entries")
		}
	}
	if s.TLS != nil {
		if err := s.TLS.Validate(); err != nil {
			return errors.WrapInvalid(err, "Config", "Validate", "tls")
		}
	}
	return nil
}

func (l LoggingConfig) validate() error {
	switch l.Level {
	case "debug", "info", "warn", "error":
	default:
		return invalid(fmt.Sprintf("logging.level %q is not one of debug, info, warn, error", l.Level))
	}
	switch l.Format {
	case "json", "text":
	default:
		return invalid(fmt.Sprintf("logging.format %q is not json or text", l.Format))
	}
	return nil
}

func invalid(msg string) error {
	return errors.WrapInvalid(errors.ErrInvalidConfig, "Config", "Validate", msg)
}

// isValidScreenName checks a screen name is usable as a URL path segment.
func isValidScreenName(s string) bool {
	if len(s) == 0 {
		return false
	}
	for _, r := range s {
		if (r < 'a' || r > 'z') && (r < '0' || r > '9') && r != '_' && r != '-' {
			return false
		}
	}
	return true
}

// SaveToFile writes the configuration as JSON or YAML, chosen by extension.
func (c *Config) SaveToFile(path string) error {
	format, err := formatOf(path)
	if err != nil {
		return errors.WrapInvalid(err, "Config", "SaveToFile", "choose format")
	}

	var data []byte
	if format == formatYAML {
		data, err = yaml.Marshal(c)
	} else {
		data, err = json.MarshalIndent(c, "", "  ")
	}
	if err != nil {
		return errors.WrapInvalid(err, "Config", "SaveToFile", "marshal config")
	}
	if err := writeConfigFile(path, data); err != nil {
		return errors.WrapInvalid(err, "Config", "SaveToFile", "write config")
	}
	return nil
}

// String returns a JSON representation of the config
func (c *Config) String() string {
	data, _ := json.MarshalIndent(c, "", "  ")
	return string(data)
}

// lookupEnv returns a validated environment value.
func lookupEnv(key string) (string, bool, error) {
	val, ok := os.LookupEnv(key)
	if !ok || val == "" {
		return "", false, nil
	}
	if err := checkEnvValue(key, val); err != nil {
		return "", false, err
	}
	return val, true, nil
}
