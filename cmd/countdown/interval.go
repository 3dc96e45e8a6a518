package main

import (
	"fmt"
	"math"
	"strconv"
	"time"
)

// maxIntervalSeconds is the largest bare-seconds value a time.Duration holds.
const maxIntervalSeconds = float64(math.MaxInt64) / float64(time.Second)

// parseInterval accepts a Go duration ("500ms") or a bare number of seconds.
func parseInterval(s string) (time.Duration, error) {
	if secs, err := strconv.ParseFloat(s, 64); err == nil {
		if math.IsNaN(secs) || math.IsInf(secs, 0) || math.Abs(secs) >= maxIntervalSeconds {
			return 0, fmt.Errorf("invalid interval %q: out of range", s)
		}
		return time.Duration(secs * float64(time.Second)), nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("invalid interval %q: %w", s, err)
	}
	return d, nil
}
