package core

import (
	"context"
	"log"
	"time"

	"github.com/sweeney/rad-monitor/internal/gpio"
	"github.com/sweeney/rad-monitor/internal/logic"
)

// ModeReader is the read side of the status store needed by indicators.
type ModeReader interface {
	Mode() logic.Mode
}

// Heartbeat blinks an LED forever to show the daemon is alive.
type Heartbeat struct {
	LED  gpio.Output
	Half time.Duration
}

// Run toggles the LED every Half until ctx is done, leaving it off.
func (h *Heartbeat) Run(ctx context.Context) error {
	on := false
	for {
		on = !on
		if err := h.LED.SetLevel(on); err != nil {
			log.Printf("heartbeat led error: %v", err)
		}
		if !sleep(ctx, h.Half) {
			if err := h.LED.SetLevel(false); err != nil {
				log.Printf("heartbeat led error: %v", err)
			}
			return nil
		}
	}
}

// ModeIndicator mirrors the operating mode on an LED: lit in ALERT mode.
type ModeIndicator struct {
	LED     gpio.Output
	Store   ModeReader
	Refresh time.Duration
}

// Run refreshes the LED every Refresh until ctx is done, leaving it off.
func (m *ModeIndicator) Run(ctx context.Context) error {
	for {
		if err := m.LED.SetLevel(m.Store.Mode() == logic.ModeAlert); err != nil {
			log.Printf("mode led error: %v", err)
		}
		if !sleep(ctx, m.Refresh) {
			if err := m.LED.SetLevel(false); err != nil {
				log.Printf("mode led error: %v", err)
			}
			return nil
		}
	}
}
