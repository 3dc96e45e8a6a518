// Command countdown runs an observable countdown from the terminal.
//
// By default it starts one run, prints every value as mm:ss and exits when
// the run expires or the process is interrupted. With -interactive it opens
// a shell for starting, cancelling and inspecting runs.
//
// Usage:
//
//	countdown [flags]
//
// Flags:
//
//	-config string        Configuration file path (YAML)
//	-start int            Value each run resets to (default 60)
//	-interval duration    Time between ticks (default 1s)
//	-event-log string     Write countdown events to this .clog file
//	-state string         JSON state file
//	-resume               Restore the value saved in the state file
//	-history string       SQLite run history database
//	-metrics-addr string  Serve Prometheus metrics on this address
//	-log-level string     Log level: debug, info, warn, error (default "info")
//	-interactive          Start the interactive shell
//
// Examples:
//
//	# Count down from 60 once
//	countdown
//
//	# Ten second countdown with an event log
//	countdown -start 10 -event-log countdown.clog
//
//	# Interactive shell with history and metrics
//	countdown -interactive -history ~/.countdown/history.db -metrics-addr :9090
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/countdown-go/countdown/cmd/countdown/interactive"
	"github.com/countdown-go/countdown/internal/app"
	"github.com/countdown-go/countdown/pkg/config"
)

// Version information - set at build time via ldflags
var (
	Version   = "0.1.0"
	BuildDate = "dev"
	GitCommit = "unknown"
)

// Flags holds the command-line settings.
type Flags struct {
	ConfigFile  string
	Start       int
	Interval    string
	EventLog    string
	State       string
	Resume      bool
	History     string
	MetricsAddr string
	LogLevel    string
	Interactive bool
	ShowVersion bool
}

var flags Flags

func init() {
	flag.StringVar(&flags.ConfigFile, "config", "", "Configuration file path (YAML)")
	flag.IntVar(&flags.Start, "start", 0, "Value each run resets to (default 60)")
	flag.StringVar(&flags.Interval, "interval", "", "Time between ticks (default 1s)")
	flag.StringVar(&flags.EventLog, "event-log", "", "Write countdown events to this .clog file")
	flag.StringVar(&flags.State, "state", "", "JSON state file")
	flag.BoolVar(&flags.Resume, "resume", false, "Restore the value saved in the state file")
	flag.StringVar(&flags.History, "history", "", "SQLite run history database")
	flag.StringVar(&flags.MetricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address")
	flag.StringVar(&flags.LogLevel, "log-level", "", "Log level: debug, info, warn, error (default \"info\")")
	flag.BoolVar(&flags.Interactive, "interactive", false, "Start the interactive shell")
	flag.BoolVar(&flags.ShowVersion, "version", false, "Show version information")
}

func main() {
	os.Exit(run())
}

func run() int {
	flag.Parse()

	if flags.ShowVersion {
		fmt.Printf("countdown %s (built %s, commit %s)\n", Version, BuildDate, GitCommit)
		return 0
	}

	cfg, err := loadConfig(flags)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	if flags.Resume && cfg.State == "" {
		fmt.Fprintln(os.Stderr, "Error: -resume requires -state")
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var shell *interactive.Shell
	logOut := io.Writer(os.Stderr)

	// The shell owns the terminal; logs go through readline.
	if flags.Interactive {
		shell, err = interactive.New()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return 1
		}
		logOut = shell.Stderr()
	}

	logger := newLogger(logOut, cfg.LogLevel)

	a, err := app.New(app.Options{Config: cfg, Logger: logger})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	defer func() {
		if err := a.Close(); err != nil {
			logger.Error("shutdown failed", "error", err)
		}
	}()

	if flags.Resume {
		found, err := a.Resume()
		if err != nil {
			logger.Warn("could not restore state", "path", cfg.State, "error", err)
		} else if found {
			logger.Info("state restored", "value", a.Countdown.Remaining())
		}
	}

	logger.Info("countdown ready",
		"version", Version,
		"start", a.Countdown.StartValue(),
		"interval", a.Countdown.Interval(),
		"interactive", flags.Interactive)

	g, gctx := errgroup.WithContext(ctx)

	if cfg.MetricsAddr != "" {
		logger.Info("serving metrics", "addr", cfg.MetricsAddr)
		g.Go(func() error {
			return a.ServeMetrics(gctx, cfg.MetricsAddr)
		})
	}

	if shell != nil {
		shell.Attach(a)
		g.Go(func() error {
			shell.Run(gctx, cancel)
			return nil
		})
	} else {
		g.Go(func() error {
			defer cancel()
			return countOnce(gctx, a, os.Stdout)
		})
	}

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("countdown failed", "error", err)
		return 1
	}
	return 0
}

// loadConfig merges the config file and flags. Flags win.
func loadConfig(f Flags) (*config.Config, error) {
	cfg := config.Default()
	if f.ConfigFile != "" {
		loaded, err := config.Load(f.ConfigFile)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if f.Start != 0 {
		cfg.Countdown.Start = f.Start
	}
	if f.Interval != "" {
		d, err := parseInterval(f.Interval)
		if err != nil {
			return nil, err
		}
		cfg.Countdown.Interval = d
	}
	if f.EventLog != "" {
		cfg.EventLog = f.EventLog
	}
	if f.State != "" {
		cfg.State = f.State
	}
	if f.History != "" {
		cfg.History = f.History
	}
	if f.MetricsAddr != "" {
		cfg.MetricsAddr = f.MetricsAddr
	}
	if f.LogLevel != "" {
		cfg.LogLevel = f.LogLevel
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func newLogger(w io.Writer, level string) *slog.Logger {
	lvl, err := config.ParseLogLevel(level)
	if err != nil {
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: lvl}))
}

// countOnce starts a single run and prints each value until the run stops
// or ctx is done.
func countOnce(ctx context.Context, a *app.App, w io.Writer) error {
	run := a.Countdown.StartRun()

	unsubscribe := a.Display.Subscribe(func(s string) {
		fmt.Fprintln(w, s)
	})
	defer unsubscribe()

	select {
	case <-run.Done():
		return nil
	case <-ctx.Done():
		run.Cancel()
		return ctx.Err()
	}
}
