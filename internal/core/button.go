package core

import (
	"context"
	"log"
	"time"

	"github.com/sweeney/rad-monitor/internal/gpio"
	"github.com/sweeney/rad-monitor/internal/logic"
	"github.com/sweeney/rad-monitor/internal/status"
)

// ButtonWatcher polls the button and sets the ToggleSignal on each press
// that survives the debounce window.
//
// Debounce is by time, not by edge: a button held down is accepted again
// every time the window re-expires, so it does not need to be released
// between presses.
type ButtonWatcher struct {
	button   gpio.Button
	toggles  *ToggleSignal
	debounce *logic.Debouncer
	interval time.Duration
	counters *status.Counters

	failing bool
}

// NewButtonWatcher creates a ButtonWatcher. counters may be nil.
func NewButtonWatcher(button gpio.Button, toggles *ToggleSignal, debounce, interval time.Duration, counters *status.Counters) *ButtonWatcher {
	return &ButtonWatcher{
		button:   button,
		toggles:  toggles,
		debounce: logic.NewDebouncer(debounce),
		interval: interval,
		counters: counters,
	}
}

// Run polls every interval until ctx is done.
func (b *ButtonWatcher) Run(ctx context.Context) error {
	ticker := time.NewTicker(b.interval)
	defer ticker.Stop()
	return b.loop(ctx, ticker.C)
}

func (b *ButtonWatcher) loop(ctx context.Context, tick <-chan time.Time) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case t := <-tick:
			b.Poll(t)
		}
	}
}

// Poll reads the button once at time now and reports whether a press was
// accepted.
func (b *ButtonWatcher) Poll(now time.Time) bool {
	pressed, err := b.button.IsPressed()
	if err != nil {
		if !b.failing {
			log.Printf("button read error: %v", err)
			b.failing = true
		}
		return false
	}
	b.failing = false

	if !pressed || !b.debounce.Press(now) {
		return false
	}
	b.counters.PressAccepted()
	b.toggles.Set()
	return true
}
