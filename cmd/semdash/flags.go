package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"slices"
)

// CLIConfig holds command-line configuration
type CLIConfig struct {
	ConfigPath string
	// LogLevel and LogFormat override the logging section of the config file
	// when set.
	LogLevel    string
	LogFormat   string
	ListenAddr  string
	Render      string
	ShowVersion bool
	ShowHelp    bool
	ShowSchema  bool
	Validate    bool

	usage func()
}

func parseFlags(args []string, stderr io.Writer) (*CLIConfig, error) {
	cfg := &CLIConfig{}
	fs := flag.NewFlagSet(appName, flag.ContinueOnError)
	fs.SetOutput(stderr)

	// Define flags with environment variable fallback
	fs.StringVar(&cfg.ConfigPath, "config",
		getEnv("SEMDASH_CONFIG", ""),
		"Path to a JSON or YAML configuration file, built-in defaults if empty (env: SEMDASH_CONFIG)")

	fs.StringVar(&cfg.ConfigPath, "c",
		getEnv("SEMDASH_CONFIG", ""),
		"Path to a JSON or YAML configuration file (env: SEMDASH_CONFIG)")

	fs.StringVar(&cfg.LogLevel, "log-level",
		getEnv("SEMDASH_LOG_LEVEL", ""),
		"Log level: debug, info, warn, error (env: SEMDASH_LOG_LEVEL)")

	fs.StringVar(&cfg.LogFormat, "log-format",
		getEnv("SEMDASH_LOG_FORMAT", ""),
		"Log format: json, text (env: SEMDASH_LOG_FORMAT)")

	fs.StringVar(&cfg.ListenAddr, "listen", "",
		"HTTP listen address, overrides server.listen_addr")

	fs.StringVar(&cfg.Render, "render", "",
		"Render one screen, print its presentation as JSON and exit")

	fs.BoolVar(&cfg.ShowVersion, "version", false, "Show version information")
	fs.BoolVar(&cfg.ShowVersion, "v", false, "Show version information")
	fs.BoolVar(&cfg.ShowHelp, "help", false, "Show help information")
	fs.BoolVar(&cfg.ShowHelp, "h", false, "Show help information")
	fs.BoolVar(&cfg.ShowSchema, "schema", false, "Print the configuration JSON schema and exit")
	fs.BoolVar(&cfg.Validate, "validate", false, "Validate configuration and exit")

	fs.Usage = func() {
		printDetailedHelp(fs)
	}
	cfg.usage = fs.Usage

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() > 0 {
		return nil, fmt.Errorf("unexpected arguments: %v", fs.Args())
	}

	return cfg, nil
}

func validateFlags(cfg *CLIConfig) error {
	// Skip validation for special flags
	if cfg.ShowVersion || cfg.ShowHelp || cfg.ShowSchema {
		return nil
	}

	if cfg.ConfigPath != "" {
		if _, err := os.Stat(cfg.ConfigPath); err != nil {
			return fmt.Errorf("config file not found: %s", cfg.ConfigPath)
		}
	}

	if cfg.LogLevel != "" && !slices.Contains([]string{"debug", "info", "warn", "error"}, cfg.LogLevel) {
		return fmt.Errorf("invalid log level: %s", cfg.LogLevel)
	}

	if cfg.LogFormat != "" && !slices.Contains([]string{"json", "text"}, cfg.LogFormat) {
		return fmt.Errorf("invalid log format: %s", cfg.LogFormat)
	}

	return nil
}

func printDetailedHelp(fs *flag.FlagSet) {
	out := fs.Output()
	_, _ = fmt.Fprintf(out, `%s - SPARQL crime dashboard

Usage: %s [options]

Options:
`, appName, appName)
	fs.PrintDefaults()
	_, _ = fmt.Fprintf(out, `
Examples:
  # Serve the dashboard with a custom config
  %s --config=/etc/semdash/config.yaml

  # Run with debug logging
  %s --log-level=debug --log-format=text

  # Query one screen and print the result
  %s --render=crime_hotspots

  # Point at another endpoint through the environment
  export SEMDASH_ENDPOINT_URL=http://graphdb:7200/repositories/crime
  %s

  # Validate configuration only
  %s --config=config.yaml --validate

Version: %s
Build: %s
`, appName, appName, appName, appName, appName, Version, BuildTime)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
