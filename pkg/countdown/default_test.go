package countdown

import (
	"testing"
	"time"
)

func TestTimeLeftInitialValue(t *testing.T) {
	// Runs before any other test in this file touches the singleton.
	if got := TimeLeft.Get(); got != 60 {
		t.Errorf("TimeLeft.Get() = %d, want 60", got)
	}
	if Default().Value() != TimeLeft {
		t.Error("Default() does not drive TimeLeft")
	}
}

func TestStartTimer(t *testing.T) {
	TimeLeft.Set(12)

	var got []int
	unsubscribe := TimeLeft.Subscribe(func(v int) { got = append(got, v) })
	defer unsubscribe()

	cancel := StartTimer()
	if TimeLeft.Get() != 60 {
		t.Errorf("TimeLeft.Get() after StartTimer = %d, want 60", TimeLeft.Get())
	}

	cancel()
	cancel()
	if Default().Active() != 0 {
		t.Errorf("Active() = %d after cancel, want 0", Default().Active())
	}

	time.Sleep(1100 * time.Millisecond)
	if TimeLeft.Get() != 60 {
		t.Errorf("TimeLeft.Get() = %d after cancel, want 60", TimeLeft.Get())
	}
	if len(got) != 2 || got[0] != 12 || got[1] != 60 {
		t.Errorf("subscriber got %v, want [12 60]", got)
	}
}
