package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Limits applied to configuration input
const (
	maxConfigSize = 1 << 20 // bytes per config file
	maxJSONDepth  = 32
	maxEnvVarLen  = 4096
	maxPathLen    = 4096
)

// fileFormat is the encoding of a config file, chosen by extension.
type fileFormat int

const (
	formatJSON fileFormat = iota
	formatYAML
)

func formatOf(path string) (fileFormat, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return formatJSON, nil
	case ".yaml", ".yml":
		return formatYAML, nil
	default:
		return 0, fmt.Errorf("config file %s must end in .json, .yaml or .yml", path)
	}
}

// checkConfigPath rejects empty or oversized paths, paths with a parent
// directory element and files that are neither JSON nor YAML.
func checkConfigPath(path string) (fileFormat, error) {
	if path == "" {
		return 0, fmt.Errorf("empty config path")
	}
	if len(path) > maxPathLen {
		return 0, fmt.Errorf("config path longer than %d bytes", maxPathLen)
	}
	for _, elem := range strings.Split(filepath.ToSlash(path), "/") {
		if elem == ".." {
			return 0, fmt.Errorf("config path %s must not contain '..'", path)
		}
	}
	return formatOf(path)
}

// readConfigFile reads at most maxConfigSize bytes from a regular file.
func readConfigFile(path string) ([]byte, fileFormat, error) {
	format, err := checkConfigPath(path)
	if err != nil {
		return nil, 0, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, 0, fmt.Errorf("open config file: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, 0, fmt.Errorf("stat config file: %w", err)
	}
	if !info.Mode().IsRegular() {
		return nil, 0, fmt.Errorf("config path %s is not a regular file", path)
	}

	data, err := io.ReadAll(io.LimitReader(f, maxConfigSize+1))
	if err != nil {
		return nil, 0, fmt.Errorf("read config file: %w", err)
	}
	if len(data) > maxConfigSize {
		return nil, 0, fmt.Errorf("config file %s exceeds %d bytes", path, maxConfigSize)
	}
	return data, format, nil
}

// writeConfigFile writes data readable by the owner only.
func writeConfigFile(path string, data []byte) error {
	if _, err := checkConfigPath(path); err != nil {
		return err
	}
	if len(data) > maxConfigSize {
		return fmt.Errorf("config exceeds %d bytes", maxConfigSize)
	}
	return os.WriteFile(path, data, 0600)
}

// checkEnvValue rejects override values that could smuggle extra lines into
// headers or logs.
func checkEnvValue(key, value string) error {
	if len(value) > maxEnvVarLen {
		return fmt.Errorf("%s longer than %d bytes", key, maxEnvVarLen)
	}
	if strings.ContainsAny(value, "\x00\n\r") {
		return fmt.Errorf("%s contains a control character", key)
	}
	return nil
}

// checkJSONDepth walks the token stream and fails once objects or arrays
// nest deeper than maxJSONDepth.
func checkJSONDepth(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	depth := 0
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		switch tok {
		case json.Delim('{'), json.Delim('['):
			depth++
			if depth > maxJSONDepth {
				return fmt.Errorf("nesting deeper than %d levels", maxJSONDepth)
			}
		case json.Delim('}'), json.Delim(']'):
			depth--
		}
	}
}
