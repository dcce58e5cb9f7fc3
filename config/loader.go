package config

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/c360/semdash/errors"
)

// DefaultEnvPrefix prefixes the environment overrides read by a Loader.
const DefaultEnvPrefix = "SEMDASH"

// Loader handles configuration loading with layers and overrides
type Loader struct {
	layers     []string
	validation bool
	envPrefix  string
}

// NewLoader creates a new configuration loader
func NewLoader() *Loader {
	return &Loader{
		layers:     []string{},
		validation: true,
		envPrefix:  DefaultEnvPrefix,
	}
}

// AddLayer adds a configuration file layer. Later layers override earlier ones.
func (l *Loader) AddLayer(path string) {
	l.layers = append(l.layers, path)
}

// EnableValidation enables or disables configuration validation
func (l *Loader) EnableValidation(enable bool) {
	l.validation = enable
}

// SetEnvPrefix changes the environment variable prefix.
func (l *Loader) SetEnvPrefix(prefix string) {
	l.envPrefix = prefix
}

// LoadFile loads configuration from a single file. An empty path loads the
// built-in defaults.
func (l *Loader) LoadFile(path string) (*Config, error) {
	l.layers = []string{}
	if path != "" {
		l.layers = append(l.layers, path)
	}
	return l.Load()
}

// Load loads and merges all configuration layers
func (l *Loader) Load() (*Config, error) {
	cfg := Default()

	for _, path := range l.layers {
		raw, err := l.loadRaw(path)
		if err != nil {
			return nil, errors.WrapInvalid(err, "Loader", "Load", fmt.Sprintf("load %s", path))
		}
		if l.validation {
			if err := validateSchema(raw); err != nil {
				return nil, errors.WrapInvalid(err, "Loader", "Load", fmt.Sprintf("validate %s", path))
			}
		}
		l.parseDurations(raw)

		cfg, err = l.mergeFromMap(cfg, raw)
		if err != nil {
			return nil, errors.WrapInvalid(err, "Loader", "Load", fmt.Sprintf("merge %s", path))
		}
	}
	cfg.pruneDisabled()

	if err := l.applyEnvOverrides(cfg); err != nil {
		return nil, errors.WrapInvalid(err, "Loader", "Load", "apply environment overrides")
	}

	if l.validation {
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

// loadRaw reads a JSON or YAML file into a generic map.
func (l *Loader) loadRaw(path string) (map[string]any, error) {
	data, format, err := readConfigFile(path)
	if err != nil {
		return nil, err
	}

	var raw map[string]any
	switch format {
	case formatYAML:
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("invalid YAML: %w", err)
		}
		// Depth is checked on the JSON form so both formats share one limit
		asJSON, err := json.Marshal(raw)
		if err != nil {
			return nil, fmt.Errorf("YAML is not representable as JSON: %w", err)
		}
		if err := checkJSONDepth(asJSON); err != nil {
			return nil, fmt.Errorf("invalid YAML structure: %w", err)
		}
	default:
		if err := checkJSONDepth(data); err != nil {
			return nil, fmt.Errorf("invalid JSON structure: %w", err)
		}
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("invalid JSON: %w", err)
		}
	}

	if raw == nil {
		raw = map[string]any{}
	}
	return raw, nil
}

// mergeFromMap merges configuration from a raw map, only overriding fields present in the map
func (l *Loader) mergeFromMap(base *Config, override map[string]any) (*Config, error) {
	baseJSON, err := json.Marshal(base)
	if err != nil {
		return nil, err
	}

	var baseMap map[string]any
	if err := json.Unmarshal(baseJSON, &baseMap); err != nil {
		return nil, err
	}

	// Labels and colors are sized by the thresholds, so a layer that sets
	// thresholds replaces the whole severity section.
	if sev, ok := override["severity"].(map[string]any); ok {
		if _, ok := sev["thresholds"]; ok {
			delete(baseMap, "severity")
		}
	}

	mergedJSON, err := json.Marshal(deepMergeMaps(baseMap, override))
	if err != nil {
		return nil, err
	}

	var merged Config
	if err := json.Unmarshal(mergedJSON, &merged); err != nil {
		return nil, err
	}
	return &merged, nil
}

// deepMergeMaps recursively merges two maps, with override taking precedence
func deepMergeMaps(base, override map[string]any) map[string]any {
	result := make(map[string]any, len(base)+len(override))
	for k, v := range base {
		result[k] = v
	}

	for k, v := range override {
		if v == nil {
			continue
		}
		if baseMap, ok := base[k].(map[string]any); ok {
			if overrideMap, ok := v.(map[string]any); ok {
				result[k] = deepMergeMaps(baseMap, overrideMap)
				continue
			}
		}
		result[k] = v
	}
	return result
}

// parseDurations converts duration strings to nanoseconds for json unmarshaling
func (l *Loader) parseDurations(raw map[string]any) {
	parseDurationField(raw, "endpoint", "timeout")
	parseDurationField(raw, "server", "shutdown_timeout")
}

func parseDurationField(raw map[string]any, section, field string) {
	m, ok := raw[section].(map[string]any)
	if !ok {
		return
	}
	if s, ok := m[field].(string); ok {
		if d, err := time.ParseDuration(s); err == nil {
			m[field] = d.Nanoseconds()
		}
	}
}

// applyEnvOverrides applies environment variable overrides
func (l *Loader) applyEnvOverrides(cfg *Config) error {
	if val, ok, err := lookupEnv(l.envPrefix + "_ENDPOINT_URL"); err != nil {
		return err
	} else if ok {
		cfg.Endpoint.URL = val
	}

	if val, ok, err := lookupEnv(l.envPrefix + "_ENDPOINT_TIMEOUT"); err != nil {
		return err
	} else if ok {
		d, err := time.ParseDuration(val)
		if err != nil {
			return fmt.Errorf("%s_ENDPOINT_TIMEOUT: %w", l.envPrefix, err)
		}
		cfg.Endpoint.Timeout = d
	}

	if val, ok, err := lookupEnv(l.envPrefix + "_LISTEN_ADDR"); err != nil {
		return err
	} else if ok {
		cfg.Server.ListenAddr = val
	}

	if val, ok, err := lookupEnv(l.envPrefix + "_FAILURE_POLICY"); err != nil {
		return err
	} else if ok {
		cfg.FailurePolicy = strings.ToLower(val)
	}

	return nil
}
