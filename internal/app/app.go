// Package app wires a countdown to its event log, run history, state file
// and metrics as described by a config.Config. It is shared by the
// countdown commands.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"path/filepath"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/countdown-go/countdown/pkg/clock"
	"github.com/countdown-go/countdown/pkg/config"
	"github.com/countdown-go/countdown/pkg/countdown"
	"github.com/countdown-go/countdown/pkg/history"
	"github.com/countdown-go/countdown/pkg/log"
	"github.com/countdown-go/countdown/pkg/metrics"
	"github.com/countdown-go/countdown/pkg/persistence"
	"github.com/countdown-go/countdown/pkg/store"
)

// ShutdownTimeout bounds how long HTTP servers wait for requests on exit.
const ShutdownTimeout = 5 * time.Second

// Options configures New.
type Options struct {
	// Config is the command configuration. Defaults to config.Default().
	Config *config.Config

	// Logger receives operational logs. May be nil.
	Logger *slog.Logger

	// Clock overrides the countdown clock (tests).
	Clock clock.Clock

	// Value is the store to drive. A new one is created when nil.
	Value *store.Value[int]
}

// App is a fully wired countdown.
type App struct {
	Countdown *countdown.Countdown

	// Display renders the value as mm:ss.
	Display *store.View[string]

	// History is nil unless a history database is configured.
	History *history.Store

	// State is nil unless a state file is configured.
	State *persistence.StateStore

	Metrics  *metrics.Metrics
	Registry *prometheus.Registry

	cfg      *config.Config
	logger   *slog.Logger
	eventLog *log.FileLogger
	events   log.Logger
	unwatch  store.Unsubscriber
}

// New builds an App. Close releases its files.
func New(opts Options) (*App, error) {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.Default()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	a := &App{
		cfg:      cfg,
		logger:   opts.Logger,
		Registry: prometheus.NewRegistry(),
	}

	// Event capture: slog at debug level, plus the CBOR file if configured.
	var sinks []log.Logger
	if a.logger != nil {
		sinks = append(sinks, log.NewSlogAdapter(a.logger))
	}
	if cfg.EventLog != "" {
		logOpts, err := cfg.EventLogOptions()
		if err != nil {
			return nil, err
		}
		path := cfg.EventLog
		if filepath.Ext(path) == "" {
			path += log.FileExtension
		}
		fl, err := log.NewFileLogger(path, logOpts...)
		if err != nil {
			return nil, fmt.Errorf("failed to open event log: %w", err)
		}
		a.eventLog = fl
		sinks = append(sinks, fl)
	}
	a.events = log.NewMultiLogger(sinks...)

	if cfg.History != "" {
		hs, err := history.NewStore(cfg.History)
		if err != nil {
			a.Close()
			return nil, err
		}
		a.History = hs
	}

	if cfg.State != "" {
		a.State = persistence.NewStateStore(cfg.State)
	}

	a.Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	a.Metrics = metrics.New(a.Registry)

	cc := cfg.CountdownConfig()
	cc.Logger = a.events
	if opts.Clock != nil {
		cc.Clock = opts.Clock
	}
	cc.Observe(a.Metrics)
	if a.History != nil {
		cc.Observe(history.NewRecorder(a.History, a.logger))
	}
	if a.State != nil {
		cc.Observe(stateSaver{a})
	}

	c, err := countdown.New(opts.Value, cc)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.Countdown = c
	a.Display = store.Derived[int, string](c.Value(), FormatClock)
	a.unwatch = a.Metrics.Watch(c.Value())

	return a, nil
}

// FormatClock renders seconds as mm:ss. Negative values render as 00:00.
func FormatClock(v int) string {
	if v < 0 {
		v = 0
	}
	return fmt.Sprintf("%02d:%02d", v/60, v%60)
}

// Resume restores the value saved in the state file. It reports whether a
// saved state was found.
func (a *App) Resume() (bool, error) {
	if a.State == nil {
		return false, nil
	}
	state, err := a.State.Load()
	if err != nil {
		return false, err
	}
	if state == nil {
		return false, nil
	}
	persistence.Restore(a.Countdown, state)
	a.debug("state restored", "value", state.Value, "was_running", state.Running, "saved_at", state.SavedAt)
	return true, nil
}

// SaveState writes a snapshot to the state file, if configured.
func (a *App) SaveState() error {
	if a.State == nil {
		return nil
	}
	return a.State.Save(persistence.Capture(a.Countdown))
}

// MetricsHandler serves the app's registry in the Prometheus text format.
func (a *App) MetricsHandler() http.Handler {
	return promhttp.HandlerFor(a.Registry, promhttp.HandlerOpts{Registry: a.Registry})
}

// ServeMetrics serves /metrics on addr until ctx is done.
func (a *App) ServeMetrics(ctx context.Context, addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", a.MetricsHandler())
	return Serve(ctx, &http.Server{Addr: addr, Handler: mux})
}

// Serve runs srv until ctx is done and then shuts it down.
func Serve(ctx context.Context, srv *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Close cancels all runs, saves state and closes files.
func (a *App) Close() error {
	var errs []error

	if a.Countdown != nil {
		a.Countdown.CancelAll()
		errs = append(errs, a.SaveState())
	}
	if a.unwatch != nil {
		a.unwatch()
	}
	if a.History != nil {
		errs = append(errs, a.History.Close())
	}
	if a.eventLog != nil {
		errs = append(errs, a.eventLog.Close())
	}
	return errors.Join(errs...)
}

// reportError logs err and records it in the event log.
func (a *App) reportError(op string, err error) {
	if a.logger != nil {
		a.logger.Error(op+" failed", "error", err)
	}
	a.events.Log(log.Event{
		Timestamp: time.Now(),
		Kind:      log.KindError,
		Value:     a.Countdown.Remaining(),
		Error:     &log.ErrorEventData{Message: err.Error(), Context: op},
	})
}

func (a *App) debug(msg string, args ...any) {
	if a.logger != nil {
		a.logger.Debug(msg, args...)
	}
}

// stateSaver writes the state file whenever a run starts or stops.
type stateSaver struct {
	a *App
}

func (s stateSaver) OnStart(*countdown.Run) {
	if err := s.a.SaveState(); err != nil {
		s.a.reportError("save state", err)
	}
}

func (s stateSaver) OnTick(*countdown.Run, int) {}

func (s stateSaver) OnStop(*countdown.Run, countdown.StopReason) {
	if err := s.a.SaveState(); err != nil {
		s.a.reportError("save state", err)
	}
}
