package countdown

import (
	"errors"
	"sync"
	"time"

	"github.com/countdown-go/countdown/pkg/clock"
	"github.com/countdown-go/countdown/pkg/log"
	"github.com/countdown-go/countdown/pkg/store"
)

// Countdown defaults.
const (
	// DefaultStart is the value a run resets to.
	DefaultStart = 60

	// DefaultInterval is the time between ticks.
	DefaultInterval = time.Second

	// MinInterval is the shortest accepted tick interval.
	MinInterval = time.Millisecond
)

// Configuration errors.
var (
	ErrInvalidStart    = errors.New("invalid countdown start value")
	ErrInvalidInterval = errors.New("invalid tick interval")
)

// CancelFunc stops a run. It is idempotent.
type CancelFunc func()

// Config holds countdown configuration.
type Config struct {
	// Start is the value each run resets to. Must be positive.
	Start int

	// Interval is the time between ticks.
	Interval time.Duration

	// Clock schedules ticks. Defaults to clock.System.
	Clock clock.Clock

	// Logger receives run events. Defaults to log.NoopLogger.
	Logger log.Logger

	// OnStart is called after a run has reset the value.
	OnStart func(run *Run)

	// OnTick is called after every tick that stored a value.
	OnTick func(run *Run, value int)

	// OnStop is called once when a run stops.
	OnStop func(run *Run, reason StopReason)
}

// DefaultConfig returns the default countdown configuration.
func DefaultConfig() Config {
	return Config{
		Start:    DefaultStart,
		Interval: DefaultInterval,
		Clock:    clock.System,
		Logger:   log.NoopLogger{},
	}
}

// Validate checks the configuration.
func (c Config) Validate() error {
	if c.Start <= 0 {
		return ErrInvalidStart
	}
	if c.Interval < MinInterval {
		return ErrInvalidInterval
	}
	return nil
}

// Countdown drives runs against a shared value.
type Countdown struct {
	value *store.Value[int]

	start    int
	interval time.Duration
	clock    clock.Clock
	logger   log.Logger

	onStart func(*Run)
	onTick  func(*Run, int)
	onStop  func(*Run, StopReason)

	mu   sync.Mutex
	runs map[string]*Run
}

// New creates a Countdown that drives value.
// If value is nil a new store holding cfg.Start is created.
// Zero Start, Interval, Clock and Logger fields take their defaults.
func New(value *store.Value[int], cfg Config) (*Countdown, error) {
	defaults := DefaultConfig()
	if cfg.Start == 0 {
		cfg.Start = defaults.Start
	}
	if cfg.Interval == 0 {
		cfg.Interval = defaults.Interval
	}
	if cfg.Clock == nil {
		cfg.Clock = defaults.Clock
	}
	if cfg.Logger == nil {
		cfg.Logger = defaults.Logger
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if value == nil {
		value = store.NewWritable(cfg.Start)
	}

	return &Countdown{
		value:    value,
		start:    cfg.Start,
		interval: cfg.Interval,
		clock:    cfg.Clock,
		logger:   cfg.Logger,
		onStart:  cfg.OnStart,
		onTick:   cfg.OnTick,
		onStop:   cfg.OnStop,
		runs:     make(map[string]*Run),
	}, nil
}

// Value returns the store holding the seconds remaining.
func (c *Countdown) Value() *store.Value[int] {
	return c.value
}

// Remaining returns the current value.
func (c *Countdown) Remaining() int {
	return c.value.Get()
}

// StartValue returns the value runs reset to.
func (c *Countdown) StartValue() int {
	return c.start
}

// Interval returns the tick interval.
func (c *Countdown) Interval() time.Duration {
	return c.interval
}

// Set replaces the value outside of any run.
func (c *Countdown) Set(v int) {
	c.value.Set(v)
	c.logger.Log(log.Event{
		Timestamp: c.clock.Now(),
		Kind:      log.KindSet,
		Value:     v,
	})
}

// Start resets the value and begins a new run. Earlier runs keep running.
func (c *Countdown) Start() CancelFunc {
	return c.StartRun().Cancel
}

// Restart cancels every active run and then starts a new one.
func (c *Countdown) Restart() *Run {
	c.CancelAll()
	return c.StartRun()
}

// StartRun resets the value and begins a new run, returning its handle.
// The run becomes visible to Runs and CancelAll only after the reset. A
// Cancel issued before the start has been reported takes effect
// immediately, but OnStop is deferred until OnStart has returned.
func (c *Countdown) StartRun() *Run {
	r := newRun(c)

	c.value.Set(c.start)

	c.mu.Lock()
	concurrent := len(c.runs)
	c.runs[r.id] = r
	c.mu.Unlock()

	c.logger.Log(log.Event{
		Timestamp: r.startedAt,
		RunID:     r.id,
		Kind:      log.KindStart,
		Value:     c.start,
		Start:     &log.StartEvent{Interval: c.interval, Concurrent: concurrent},
	})
	if c.onStart != nil {
		c.onStart(r)
	}

	r.mu.Lock()
	r.started = true
	cancelled := r.state != StateRunning
	if !cancelled {
		r.scheduleLocked()
	}
	ticks := r.ticks
	r.mu.Unlock()

	if cancelled {
		c.finish(r, ReasonCancelled, c.value.Get(), ticks)
	}
	return r
}

// Active returns the number of running runs.
func (c *Countdown) Active() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.runs)
}

// Runs returns the running runs.
func (c *Countdown) Runs() []*Run {
	c.mu.Lock()
	defer c.mu.Unlock()

	runs := make([]*Run, 0, len(c.runs))
	for _, r := range c.runs {
		runs = append(runs, r)
	}
	return runs
}

// Run returns the running run with the given ID, or nil.
func (c *Countdown) Run(id string) *Run {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.runs[id]
}

// CancelAll cancels every active run.
func (c *Countdown) CancelAll() {
	for _, r := range c.Runs() {
		r.Cancel()
	}
}

// finish untracks a stopped run and reports it.
func (c *Countdown) finish(r *Run, reason StopReason, value, ticks int) {
	r.mu.Lock()
	r.final = value
	r.mu.Unlock()

	c.mu.Lock()
	delete(c.runs, r.id)
	c.mu.Unlock()

	now := c.clock.Now()
	c.logger.Log(log.Event{
		Timestamp: now,
		RunID:     r.id,
		Kind:      log.KindStop,
		Value:     value,
		Stop: &log.StopEvent{
			Reason:  reason.String(),
			Ticks:   ticks,
			Elapsed: now.Sub(r.startedAt),
		},
	})
	if c.onStop != nil {
		c.onStop(r, reason)
	}
	close(r.done)
}

// ticked reports a tick that stored value.
func (c *Countdown) ticked(r *Run, value, tick int) {
	c.logger.Log(log.Event{
		Timestamp: c.clock.Now(),
		RunID:     r.id,
		Kind:      log.KindTick,
		Value:     value,
		Tick:      tick,
	})
	if c.onTick != nil {
		c.onTick(r, value)
	}
}
