package countdown

import "github.com/countdown-go/countdown/pkg/store"

// TimeLeft is the process-wide countdown value. It holds DefaultStart until
// a run changes it.
var TimeLeft = store.NewWritable(DefaultStart)

// std drives TimeLeft with the default configuration.
var std = mustNew(TimeLeft, DefaultConfig())

func mustNew(value *store.Value[int], cfg Config) *Countdown {
	c, err := New(value, cfg)
	if err != nil {
		panic(err)
	}
	return c
}

// Default returns the Countdown driving TimeLeft.
func Default() *Countdown {
	return std
}

// StartTimer resets TimeLeft to 60 and starts ticking it down once per
// second. It does not cancel runs started by earlier calls.
func StartTimer() CancelFunc {
	return std.Start()
}
