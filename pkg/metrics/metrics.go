// Package metrics exposes countdown activity as Prometheus metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/countdown-go/countdown/pkg/countdown"
	"github.com/countdown-go/countdown/pkg/store"
)

// Namespace prefixes every metric name.
const Namespace = "countdown"

// Metrics holds the countdown collectors.
type Metrics struct {
	value        prometheus.Gauge
	ticks        prometheus.Counter
	runsStarted  prometheus.Counter
	runsStopped  *prometheus.CounterVec
	activeRuns   prometheus.Gauge
	runDurations prometheus.Histogram
}

// New creates the collectors and registers them with reg.
// Pass prometheus.DefaultRegisterer to expose them on the default handler.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		value: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: Namespace,
			Name:      "value",
			Help:      "Current countdown value",
		}),
		ticks: factory.NewCounter(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "ticks_total",
			Help:      "Number of ticks that stored a value",
		}),
		runsStarted: factory.NewCounter(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "runs_started_total",
			Help:      "Number of runs started",
		}),
		runsStopped: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "runs_stopped_total",
			Help:      "Number of runs stopped, by reason",
		}, []string{"reason"}),
		activeRuns: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: Namespace,
			Name:      "active_runs",
			Help:      "Number of runs currently ticking",
		}),
		runDurations: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "run_duration_seconds",
			Help:      "Wall time from start to stop of a run",
			Buckets:   prometheus.ExponentialBuckets(0.5, 2, 10),
		}),
	}
}

// Watch keeps the value gauge in sync with value until the returned
// function is called.
func (m *Metrics) Watch(value store.Readable[int]) store.Unsubscriber {
	return value.Subscribe(func(v int) {
		m.value.Set(float64(v))
	})
}

// OnStart is a countdown.Config.OnStart hook.
func (m *Metrics) OnStart(*countdown.Run) {
	m.runsStarted.Inc()
	m.activeRuns.Inc()
}

// OnTick is a countdown.Config.OnTick hook.
func (m *Metrics) OnTick(*countdown.Run, int) {
	m.ticks.Inc()
}

// OnStop is a countdown.Config.OnStop hook.
func (m *Metrics) OnStop(run *countdown.Run, reason countdown.StopReason) {
	m.runsStopped.WithLabelValues(reason.String()).Inc()
	m.activeRuns.Dec()
	m.runDurations.Observe(run.StoppedAt().Sub(run.StartedAt()).Seconds())
}

// Compile-time interface satisfaction check.
var _ countdown.Observer = (*Metrics)(nil)
