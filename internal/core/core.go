// Package core is the concurrency layer of the radiation monitor.
//
// Sampling, debouncing, alerting and mode toggling run as independent tasks
// that communicate only through a SampleChannel, an AlertSignal, a
// ToggleSignal and the status.Store. Each task is a goroutine with a Run
// method that returns when its context is cancelled.
package core

import (
	"context"
	"time"
)

// Queue and signal capacities.
const (
	SampleQueueSize = 20
	MaxAlertEvents  = 10
)

// Timing holds every period used by the tasks.
type Timing struct {
	SampleInterval time.Duration
	ButtonPoll     time.Duration
	Debounce       time.Duration
	AlertWait      time.Duration
	BlinkOn        time.Duration
	BlinkOff       time.Duration
	BlinkCycles    int
	HeartbeatHalf  time.Duration
	ModeRefresh    time.Duration
}

// DefaultTiming returns the firmware's periods.
func DefaultTiming() Timing {
	return Timing{
		SampleInterval: 17 * time.Millisecond,
		ButtonPoll:     10 * time.Millisecond,
		Debounce:       50 * time.Millisecond,
		AlertWait:      100 * time.Millisecond,
		BlinkOn:        200 * time.Millisecond,
		BlinkOff:       200 * time.Millisecond,
		BlinkCycles:    3,
		HeartbeatHalf:  500 * time.Millisecond,
		ModeRefresh:    200 * time.Millisecond,
	}
}

// BlinkDuration is how long one alert blink sequence keeps the alert flag set.
func (t Timing) BlinkDuration() time.Duration {
	return time.Duration(t.BlinkCycles) * (t.BlinkOn + t.BlinkOff)
}

// sleep waits for d or until ctx is done. It reports whether the full
// duration elapsed.
func sleep(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return true
	case <-ctx.Done():
		return false
	}
}
