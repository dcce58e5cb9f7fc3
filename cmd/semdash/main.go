// Package main implements the entry point for the semdash dashboard server.
// semdash runs the configured SPARQL screens against a triple store and serves
// their presentations over HTTP.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/c360/semdash/config"
	"github.com/c360/semdash/dashboard"
	gateway "github.com/c360/semdash/gateway/http"
	"github.com/c360/semdash/health"
	"github.com/c360/semdash/metric"
	"github.com/c360/semdash/pkg/tlsutil"
	"github.com/c360/semdash/sparql"
)

// Build information constants
const (
	Version   = "0.1.0"
	BuildTime = "dev"
	appName   = "semdash"
)

func main() {
	defer func() {
		if r := recover(); r != nil {
			buf := make([]byte, 4096)
			n := runtime.Stack(buf, false)
			_, _ = fmt.Fprintf(os.Stderr, "PANIC: %v\nStack trace:\n%s\n", r, string(buf[:n]))
			os.Exit(2)
		}
	}()

	if err := run(context.Background(), os.Args[1:], os.Stdout, os.Stderr); err != nil {
		slog.Error("Application failed", "error", err, "exit_code", 1)
		os.Exit(1)
	}
}

// app bundles the wired runtime components.
type app struct {
	cfg      *config.Config
	logger   *slog.Logger
	registry *metric.MetricsRegistry
	monitor  *health.Monitor
	dash     *dashboard.Dashboard
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	cliCfg, err := parseFlags(args, stderr)
	if err != nil {
		return fmt.Errorf("invalid flags: %w", err)
	}
	if err := validateFlags(cliCfg); err != nil {
		return fmt.Errorf("invalid flags: %w", err)
	}

	switch {
	case cliCfg.ShowVersion:
		_, _ = fmt.Fprintf(stdout, "%s version %s\n", appName, Version)
		return nil
	case cliCfg.ShowHelp:
		cliCfg.usage()
		return nil
	case cliCfg.ShowSchema:
		_, err := stdout.Write(config.Schema())
		return err
	}

	cfg, err := initializeConfiguration(cliCfg)
	if err != nil {
		return err
	}

	// Keep stdout clean for the rendered presentation
	logOut := stdout
	if cliCfg.Render != "" {
		logOut = stderr
	}
	logger := setupLogger(logOut, cfg.Logging.Level, cfg.Logging.Format)
	slog.SetDefault(logger)

	logger.Info("Starting semdash",
		"version", Version,
		"build_time", BuildTime,
		"config_path", cliCfg.ConfigPath,
		"endpoint", cfg.Endpoint.URL,
		"failure_policy", cfg.FailurePolicy)

	if cliCfg.Validate {
		logger.Info("Configuration is valid", "screens", len(cfg.Screens))
		return nil
	}

	a, err := newApp(cfg, logger)
	if err != nil {
		return err
	}

	signalCtx, signalCancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer signalCancel()

	if cliCfg.Render != "" {
		return a.render(signalCtx, cliCfg.Render, stdout)
	}
	return a.serve(signalCtx)
}

// initializeConfiguration loads the configuration and applies flag overrides
func initializeConfiguration(cliCfg *CLIConfig) (*config.Config, error) {
	loader := config.NewLoader()
	cfg, err := loader.LoadFile(cliCfg.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	if cliCfg.LogLevel != "" {
		cfg.Logging.Level = cliCfg.LogLevel
	}
	if cliCfg.LogFormat != "" {
		cfg.Logging.Format = cliCfg.LogFormat
	}
	if cliCfg.ListenAddr != "" {
		cfg.Server.ListenAddr = cliCfg.ListenAddr
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// newApp wires the executor, metrics, health monitor and dashboard
func newApp(cfg *config.Config, logger *slog.Logger) (*app, error) {
	execOpts := []sparql.Option{sparql.WithLogger(logger)}
	if cfg.Endpoint.TLS != nil {
		tlsConfig, err := tlsutil.LoadClientTLSConfig(*cfg.Endpoint.TLS)
		if err != nil {
			return nil, fmt.Errorf("endpoint tls: %w", err)
		}
		execOpts = append(execOpts, sparql.WithTLSConfig(tlsConfig))
	}

	executor, err := sparql.NewExecutor(cfg.Endpoint.Executor(), execOpts...)
	if err != nil {
		return nil, fmt.Errorf("create executor: %w", err)
	}

	registry := metric.NewMetricsRegistry()
	monitor := health.NewMonitor()

	dash, err := dashboard.New(cfg, executor,
		dashboard.WithLogger(logger),
		dashboard.WithMetrics(registry.CoreMetrics()),
		dashboard.WithHealth(monitor))
	if err != nil {
		return nil, fmt.Errorf("create dashboard: %w", err)
	}

	logger.Info("Dashboard configured",
		"endpoint", redactURL(executor.Endpoint()),
		"screens", cfg.ScreenNames())

	return &app{
		cfg:      cfg,
		logger:   logger,
		registry: registry,
		monitor:  monitor,
		dash:     dash,
	}, nil
}

// redactURL hides any password in the endpoint URL.
func redactURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	return u.Redacted()
}

// render runs one screen and writes its presentation to w
func (a *app) render(ctx context.Context, name string, w io.Writer) error {
	p, err := a.dash.Render(ctx, name)
	if err != nil {
		return fmt.Errorf("render %s: %w", name, err)
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(p); err != nil {
		return fmt.Errorf("encode presentation: %w", err)
	}

	if p.Failed() && !p.Fallback {
		return fmt.Errorf("screen %s failed: %s", name, p.Error)
	}
	return nil
}

// serve runs the HTTP gateway until ctx is cancelled
func (a *app) serve(ctx context.Context) error {
	gw, err := gateway.NewGateway(gateway.Config{
		RateLimit:   a.cfg.Server.RateLimit,
		Burst:       a.cfg.Server.Burst,
		CORSOrigins: a.cfg.Server.CORSOrigins,
		Version:     Version,
	}, a.dash,
		gateway.WithLogger(a.logger),
		gateway.WithHealth(a.monitor),
		gateway.WithMetrics(a.registry))
	if err != nil {
		return fmt.Errorf("create gateway: %w", err)
	}

	server := &http.Server{
		Addr:              a.cfg.Server.ListenAddr,
		Handler:           gw.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	if a.cfg.Server.TLS != nil {
		tlsConfig, err := tlsutil.LoadServerTLSConfig(*a.cfg.Server.TLS)
		if err != nil {
			return fmt.Errorf("server tls: %w", err)
		}
		server.TLSConfig = tlsConfig
	}

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("HTTP gateway listening", "addr", server.Addr, "tls", server.TLSConfig != nil)
		var err error
		if server.TLSConfig != nil {
			// Certificates come from TLSConfig
			err = server.ListenAndServeTLS("", "")
		} else {
			err = server.ListenAndServe()
		}
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
		a.logger.Info("Received shutdown signal")
	}

	timeout := a.cfg.Server.ShutdownTimeout
	if timeout <= 0 {
		timeout = config.Default().Server.ShutdownTimeout
	}
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), timeout)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}

	a.logger.Info("semdash shutdown complete")
	return nil
}
