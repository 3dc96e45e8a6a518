// Command countdown-web serves a countdown over HTTP.
//
// It offers:
//   - REST API for starting, cancelling and inspecting runs
//   - Server-Sent Events stream of the countdown value
//   - Simple web UI showing the clock
//   - SQLite persistence for run history
//   - Prometheus metrics on /metrics
//
// Usage:
//
//	countdown-web [flags]
//
// Flags:
//
//	-addr string       HTTP listen address (default ":8080")
//	-config string     YAML configuration file
//	-db string         SQLite history database path (default "./countdown-web.db")
//	-event-log string  Write countdown events to a .clog file
//	-log-level string  Log level: debug, info, warn, error (default "info")
//
// Examples:
//
//	# Start the web server on the default address
//	countdown-web
//
//	# Use an in-memory database (for testing)
//	countdown-web -db :memory:
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/countdown-go/countdown/internal/app"
	"github.com/countdown-go/countdown/pkg/config"
)

// Version information - set at build time via ldflags
var (
	Version   = "0.1.0"
	BuildDate = "dev"
	GitCommit = "unknown"
)

var (
	addr        = flag.String("addr", ":8080", "HTTP listen address")
	configPath  = flag.String("config", "", "YAML configuration file")
	dbPath      = flag.String("db", "./countdown-web.db", "SQLite history database path")
	eventLog    = flag.String("event-log", "", "Write countdown events to a .clog file")
	logLevel    = flag.String("log-level", "info", "Log level: debug, info, warn, error")
	showVersion = flag.Bool("version", false, "Show version information")
)

func main() {
	os.Exit(run())
}

func run() int {
	flag.Parse()

	if *showVersion {
		fmt.Printf("countdown-web %s (built %s, commit %s)\n", Version, BuildDate, GitCommit)
		return 0
	}

	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return 1
		}
		cfg = loaded
	}
	if *dbPath != "" {
		cfg.History = *dbPath
	}
	if *eventLog != "" {
		cfg.EventLog = *eventLog
	}
	cfg.LogLevel = *logLevel
	cfg.HTTPAddr = *addr

	level, err := config.ParseLogLevel(cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	srv, err := NewServer(ServerConfig{
		Addr:    cfg.HTTPAddr,
		Version: Version,
		App:     app.Options{Config: cfg, Logger: logger},
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to create server: %v\n", err)
		return 1
	}
	defer srv.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("starting countdown web", "addr", cfg.HTTPAddr, "history", cfg.History)

	if err := srv.ListenAndServe(ctx); err != nil && !errors.Is(err, context.Canceled) {
		fmt.Fprintf(os.Stderr, "Error: server failed: %v\n", err)
		return 1
	}

	return 0
}
