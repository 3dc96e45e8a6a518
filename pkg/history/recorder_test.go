package history

import (
	"testing"
	"time"

	"github.com/countdown-go/countdown/pkg/clock"
	"github.com/countdown-go/countdown/pkg/countdown"
)

func TestRecorder(t *testing.T) {
	store := newTestStore(t)
	rec := NewRecorder(store, nil)

	fake := clock.NewFake(base)
	c, err := countdown.New(nil, countdown.Config{
		Start:   5,
		Clock:   fake,
		OnStart: rec.OnStart,
		OnStop:  rec.OnStop,
	})
	if err != nil {
		t.Fatal(err)
	}

	expired := c.StartRun()
	fake.Advance(time.Minute)

	cancelled := c.StartRun()
	fake.Advance(2 * time.Second)
	cancelled.Cancel()

	got, err := store.Get(expired.ID())
	if err != nil {
		t.Fatalf("Get(expired) error = %v", err)
	}
	if got.Reason != "EXPIRED" || got.Ticks != 6 || got.FinalValue != 0 {
		t.Errorf("expired record = %+v", got)
	}
	if got.Duration() != 6*time.Second {
		t.Errorf("expired Duration() = %v, want 6s", got.Duration())
	}

	got, err = store.Get(cancelled.ID())
	if err != nil {
		t.Fatalf("Get(cancelled) error = %v", err)
	}
	if got.Reason != "CANCELLED" || got.Ticks != 2 || got.FinalValue != 3 {
		t.Errorf("cancelled record = %+v", got)
	}
	if got.StartValue != 5 || got.Interval != time.Second {
		t.Errorf("StartValue, Interval = %d, %v", got.StartValue, got.Interval)
	}
}

func TestRecorderRunCancelledWhileStarting(t *testing.T) {
	store := newTestStore(t)
	rec := NewRecorder(store, nil)

	fake := clock.NewFake(base)
	cfg := countdown.Config{Start: 5, Clock: fake}
	cfg.Observe(rec)
	cfg.OnStart = chainStart(cfg.OnStart, func(r *countdown.Run) { r.Cancel() })

	c, err := countdown.New(nil, cfg)
	if err != nil {
		t.Fatal(err)
	}
	run := c.StartRun()

	got, err := store.Get(run.ID())
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.Running() || got.Reason != "CANCELLED" {
		t.Errorf("record = %+v, want a closed CANCELLED run", got)
	}

	st, err := store.Stats()
	if err != nil {
		t.Fatalf("Stats() error = %v", err)
	}
	if st.Open != 0 || st.Cancelled != 1 {
		t.Errorf("Stats() = %+v, want no open runs", st)
	}
}

func chainStart(first, then func(*countdown.Run)) func(*countdown.Run) {
	return func(r *countdown.Run) {
		first(r)
		then(r)
	}
}
