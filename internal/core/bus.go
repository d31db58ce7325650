package core

import (
	"context"
	"log"

	"github.com/google/uuid"

	"github.com/sweeney/rad-monitor/internal/logic"
	"github.com/sweeney/rad-monitor/internal/status"
)

// Bus carries coordinator events to the relay. Emit never blocks: if the
// buffer is full the event is dropped, so a slow broker can never stall the
// coordinator.
type Bus struct {
	ch chan logic.Event
}

// NewBus creates a Bus buffering up to size events.
func NewBus(size int) *Bus {
	return &Bus{ch: make(chan logic.Event, size)}
}

// Emit queues e and reports whether it was accepted.
func (b *Bus) Emit(e logic.Event) bool {
	select {
	case b.ch <- e:
		return true
	default:
		return false
	}
}

// Events returns the receive side of the bus.
func (b *Bus) Events() <-chan logic.Event {
	return b.ch
}

// EventPublisher sends coordinator events somewhere outside the process.
type EventPublisher interface {
	Publish(event logic.Event) error
}

// Relay drains a Bus into a publisher, stamping each event with an ID and
// the current store values.
type Relay struct {
	Bus       *Bus
	Store     *status.Store
	Publisher EventPublisher
}

// Run forwards events until ctx is done. Publish errors are logged and the
// event is discarded.
func (r *Relay) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case e := <-r.Bus.Events():
			e.ID = uuid.NewString()
			st := r.Store.Read()
			if e.Mode == "" {
				e.Mode = st.Mode
			}
			e.Reading = st.LastReading
			if err := r.Publisher.Publish(e); err != nil {
				log.Printf("publish error: %v", err)
			}
		}
	}
}
