package core

import (
	"bytes"
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/sweeney/rad-monitor/internal/diag"
	"github.com/sweeney/rad-monitor/internal/gpio"
	"github.com/sweeney/rad-monitor/internal/logic"
	"github.com/sweeney/rad-monitor/internal/status"
)

type lockedBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *lockedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *lockedBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

type coordinatorFixture struct {
	coord   *Coordinator
	store   *status.Store
	led     *gpio.FakeOutput
	out     *lockedBuffer
	bus     *Bus
	counter *status.Counters
}

func newCoordinatorFixture(timing Timing) *coordinatorFixture {
	c := &status.Counters{}
	store, w := status.NewStore(logic.ModeNormal)
	led := gpio.NewFakeOutput()
	out := &lockedBuffer{}
	bus := NewBus(16)
	return &coordinatorFixture{
		coord: &Coordinator{
			Alerts:   NewAlertSignal(MaxAlertEvents, c),
			Toggles:  NewToggleSignal(c),
			LED:      led,
			Mode:     w.Mode,
			Alert:    w.Alert,
			Console:  diag.NewWithFlags(out, 0),
			Timing:   timing,
			Bus:      bus,
			Counters: c,
		},
		store:   store,
		led:     led,
		out:     out,
		bus:     bus,
		counter: c,
	}
}

func (f *coordinatorFixture) start(t *testing.T) context.CancelFunc {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error)
	go func() { done <- f.coord.Run(ctx) }()
	return func() {
		cancel()
		select {
		case <-done:
		case <-time.After(2 * time.Second):
			t.Error("coordinator did not stop")
		}
	}
}

func fastTiming() Timing {
	tm := DefaultTiming()
	tm.AlertWait = 10 * time.Millisecond
	tm.BlinkOn = 5 * time.Millisecond
	tm.BlinkOff = 5 * time.Millisecond
	return tm
}

func TestCoordinatorBlinkDuration(t *testing.T) {
	f := newCoordinatorFixture(DefaultTiming())
	stop := f.start(t)
	defer stop()

	f.coord.Alerts.Post()

	waitFor(t, time.Second, f.store.AlertActive)
	began := time.Now()
	waitFor(t, 3*time.Second, func() bool { return !f.store.AlertActive() })
	active := time.Since(began)

	if active < 1000*time.Millisecond || active > 1400*time.Millisecond {
		t.Errorf("alert active for %v, want 1000ms-1400ms", active)
	}
	if got := f.led.Pulses(); got != 3 {
		t.Errorf("LED pulses: got %d, want 3", got)
	}
	if f.led.Level() {
		t.Error("LED should be off after the sequence")
	}
}

func TestCoordinatorBlinkPattern(t *testing.T) {
	f := newCoordinatorFixture(fastTiming())
	stop := f.start(t)
	defer stop()

	f.coord.Alerts.Post()
	waitFor(t, time.Second, func() bool { return f.counter.Snapshot().AlertsHandled == 1 && !f.store.AlertActive() })

	changes := f.led.Changes()
	if len(changes) != 6 {
		t.Fatalf("LED changes: got %d, want 6", len(changes))
	}
	for i, ch := range changes {
		if want := i%2 == 0; ch.On != want {
			t.Errorf("change %d: got on=%v, want %v", i, ch.On, want)
		}
	}
	if !strings.Contains(f.out.String(), "sensor ALERT!") {
		t.Errorf("console: got %q, want alert line", f.out.String())
	}
}

func TestCoordinatorHandlesEachAlertUnit(t *testing.T) {
	f := newCoordinatorFixture(fastTiming())
	f.coord.Alerts.Post()
	f.coord.Alerts.Post()
	stop := f.start(t)
	defer stop()

	waitFor(t, time.Second, func() bool { return f.counter.Snapshot().AlertsHandled == 2 })
	waitFor(t, time.Second, func() bool { return f.led.Pulses() == 6 })
}

func TestCoordinatorToggle(t *testing.T) {
	f := newCoordinatorFixture(fastTiming())
	stop := f.start(t)
	defer stop()

	f.coord.Toggles.Set()
	waitFor(t, time.Second, func() bool { return f.store.Mode() == logic.ModeAlert })

	f.coord.Toggles.Set()
	waitFor(t, time.Second, func() bool { return f.store.Mode() == logic.ModeNormal })

	out := f.out.String()
	if !strings.Contains(out, "mode toggled to ALERT") || !strings.Contains(out, "mode toggled to NORMAL") {
		t.Errorf("console: got %q", out)
	}
	if got := f.counter.Snapshot().ModeFlips; got != 2 {
		t.Errorf("ModeFlips: got %d, want 2", got)
	}
}

func TestCoordinatorCoalescedTogglesFlipOnce(t *testing.T) {
	f := newCoordinatorFixture(fastTiming())
	f.coord.Toggles.Set()
	f.coord.Toggles.Set()
	f.coord.Toggles.Set()
	stop := f.start(t)

	waitFor(t, time.Second, func() bool { return f.store.Mode() == logic.ModeAlert })
	time.Sleep(50 * time.Millisecond)
	stop()

	if f.store.Mode() != logic.ModeAlert {
		t.Errorf("Mode: got %s, want ALERT", f.store.Mode())
	}
	if got := f.counter.Snapshot().ModeFlips; got != 1 {
		t.Errorf("ModeFlips: got %d, want 1", got)
	}
}

// Toggle stays live without alerts: the alert wait is bounded.
func TestCoordinatorToggleLiveWithoutAlerts(t *testing.T) {
	f := newCoordinatorFixture(DefaultTiming())
	stop := f.start(t)
	defer stop()

	time.Sleep(250 * time.Millisecond)
	f.coord.Toggles.Set()

	start := time.Now()
	waitFor(t, time.Second, func() bool { return f.store.Mode() == logic.ModeAlert })
	if elapsed := time.Since(start); elapsed > 300*time.Millisecond {
		t.Errorf("toggle took %v, want about one alert wait", elapsed)
	}
}

// A toggle pending during a blink is applied after the blink, in the same
// cycle.
func TestCoordinatorAlertThenToggleSameCycle(t *testing.T) {
	f := newCoordinatorFixture(fastTiming())
	f.coord.Alerts.Post()
	f.coord.Toggles.Set()
	stop := f.start(t)
	defer stop()

	waitFor(t, time.Second, func() bool { return f.store.Mode() == logic.ModeAlert })

	var types []logic.EventType
	for len(types) < 3 {
		select {
		case e := <-f.bus.Events():
			types = append(types, e.Type)
		case <-time.After(time.Second):
			t.Fatalf("events so far: %v", types)
		}
	}
	want := []logic.EventType{logic.EventAlertStart, logic.EventAlertClear, logic.EventModeChanged}
	for i := range want {
		if types[i] != want[i] {
			t.Errorf("event %d: got %s, want %s", i, types[i], want[i])
		}
	}
}

func TestCoordinatorModeEventCarriesNewMode(t *testing.T) {
	f := newCoordinatorFixture(fastTiming())
	f.coord.Toggles.Set()
	stop := f.start(t)
	defer stop()

	select {
	case e := <-f.bus.Events():
		if e.Type != logic.EventModeChanged || e.Mode != logic.ModeAlert {
			t.Errorf("event: got %s/%s, want MODE_CHANGED/ALERT", e.Type, e.Mode)
		}
	case <-time.After(time.Second):
		t.Fatal("no event")
	}
}

func TestCoordinatorCancelDuringBlink(t *testing.T) {
	f := newCoordinatorFixture(DefaultTiming())
	stop := f.start(t)

	f.coord.Alerts.Post()
	waitFor(t, time.Second, f.store.AlertActive)
	stop()

	if f.store.AlertActive() {
		t.Error("alert flag should be cleared on shutdown")
	}
	if f.led.Level() {
		t.Error("LED should be off on shutdown")
	}
}

func TestCoordinatorWithoutBus(t *testing.T) {
	f := newCoordinatorFixture(fastTiming())
	f.coord.Bus = nil
	f.coord.Counters = nil
	stop := f.start(t)
	defer stop()

	f.coord.Alerts.Post()
	f.coord.Toggles.Set()
	waitFor(t, time.Second, func() bool { return f.store.Mode() == logic.ModeAlert && f.led.Pulses() == 3 })
}

func TestTimingBlinkDuration(t *testing.T) {
	if got := DefaultTiming().BlinkDuration(); got != 1200*time.Millisecond {
		t.Errorf("BlinkDuration: got %v, want 1.2s", got)
	}
}
