package core

import (
	"context"
	"log"
	"time"

	"github.com/sweeney/rad-monitor/internal/diag"
	"github.com/sweeney/rad-monitor/internal/gpio"
	"github.com/sweeney/rad-monitor/internal/logic"
	"github.com/sweeney/rad-monitor/internal/status"
)

// Coordinator reacts to alert edges and toggle requests.
//
// Each cycle it waits up to Timing.AlertWait for one alert; if it gets one it
// runs the whole blink sequence before doing anything else. It then takes a
// pending toggle, if any, without waiting. Both can happen in the same cycle.
//
// The Coordinator is the only writer of the mode and alert-active fields.
type Coordinator struct {
	Alerts  *AlertSignal
	Toggles *ToggleSignal
	LED     gpio.Output
	Mode    status.ModeWriter
	Alert   status.AlertWriter
	Console *diag.Console
	Timing  Timing

	// Optional.
	Bus      *Bus
	Counters *status.Counters
	Now      func() time.Time
}

// Run loops until ctx is done.
func (c *Coordinator) Run(ctx context.Context) error {
	for {
		if c.Alerts.Wait(ctx, c.Timing.AlertWait) {
			c.handleAlert(ctx)
		}
		if ctx.Err() != nil {
			return nil
		}
		if c.Toggles.TryTake() {
			c.handleToggle()
		}
	}
}

func (c *Coordinator) handleAlert(ctx context.Context) {
	c.Console.Printf("sensor ALERT!")
	c.Counters.AlertHandled()

	c.Alert.Set(true)
	c.emit(logic.EventAlertStart, "")

	c.blink(ctx)

	c.Alert.Set(false)
	c.emit(logic.EventAlertClear, "")
}

// blink runs BlinkCycles on/off cycles on the alert LED. The console lock is
// not held here. Cancellation leaves the LED off.
func (c *Coordinator) blink(ctx context.Context) {
	for i := 0; i < c.Timing.BlinkCycles; i++ {
		c.setLED(true)
		if !sleep(ctx, c.Timing.BlinkOn) {
			c.setLED(false)
			return
		}
		c.setLED(false)
		if !sleep(ctx, c.Timing.BlinkOff) {
			return
		}
	}
}

func (c *Coordinator) handleToggle() {
	mode := c.Mode.Toggle()
	c.Counters.ModeFlipped()
	c.Console.Lines("mode toggled to " + string(mode))
	c.emit(logic.EventModeChanged, mode)
}

func (c *Coordinator) setLED(on bool) {
	if err := c.LED.SetLevel(on); err != nil {
		log.Printf("alert led error: %v", err)
	}
}

// emit queues an event. An empty mode is filled in by the relay.
func (c *Coordinator) emit(t logic.EventType, mode logic.Mode) {
	if c.Bus == nil {
		return
	}
	now := time.Now
	if c.Now != nil {
		now = c.Now
	}
	c.Bus.Emit(logic.Event{Timestamp: now(), Type: t, Mode: mode})
}
