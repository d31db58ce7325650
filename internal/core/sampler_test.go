package core

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sweeney/rad-monitor/internal/gpio"
	"github.com/sweeney/rad-monitor/internal/logic"
	"github.com/sweeney/rad-monitor/internal/status"
)

func newTestSampler(readings ...int) (*Sampler, *SampleChannel, *AlertSignal, *status.Counters) {
	c := &status.Counters{}
	ch := NewSampleChannel(SampleQueueSize)
	alerts := NewAlertSignal(MaxAlertEvents, c)
	s := NewSampler(gpio.NewFakeSensor(readings...), ch, alerts, logic.Threshold, time.Millisecond, c)
	return s, ch, alerts, c
}

func TestSamplerPostsOncePerExcursion(t *testing.T) {
	s, _, alerts, _ := newTestSampler(100, 100, 3500, 3500, 100)

	for i := 0; i < 5; i++ {
		s.Step()
	}

	if alerts.Pending() != 1 {
		t.Errorf("alert posts: got %d, want 1", alerts.Pending())
	}
}

func TestSamplerRearmsAfterDrop(t *testing.T) {
	readings := []int{3500, 3600, 2000, 3500, 3000, 3001, 3002}
	s, _, alerts, _ := newTestSampler(readings...)

	for range readings {
		s.Step()
	}

	if alerts.Pending() != 3 {
		t.Errorf("alert posts: got %d, want 3", alerts.Pending())
	}
}

func TestSamplerPushesInOrder(t *testing.T) {
	s, ch, _, _ := newTestSampler(1, 2, 3)

	for i := 0; i < 3; i++ {
		s.Step()
	}

	ctx := context.Background()
	for _, want := range []int{1, 2, 3} {
		got, _ := ch.Receive(ctx)
		if got != want {
			t.Errorf("got %d, want %d", got, want)
		}
	}
}

func TestSamplerDropsWhenFull(t *testing.T) {
	s, ch, _, c := newTestSampler(500)

	for i := 0; i < SampleQueueSize+5; i++ {
		s.Step()
	}

	if ch.Len() != SampleQueueSize {
		t.Errorf("queued: got %d, want %d", ch.Len(), SampleQueueSize)
	}
	snap := c.Snapshot()
	if snap.SamplesRead != SampleQueueSize+5 {
		t.Errorf("SamplesRead: got %d, want %d", snap.SamplesRead, SampleQueueSize+5)
	}
	if snap.SamplesDropped != 5 {
		t.Errorf("SamplesDropped: got %d, want 5", snap.SamplesDropped)
	}
}

// A dropped sample still goes through the edge detector.
func TestSamplerAlertsEvenWhenQueueFull(t *testing.T) {
	readings := make([]int, SampleQueueSize)
	readings = append(readings, 3500)
	s, _, alerts, _ := newTestSampler(readings...)

	for range readings {
		s.Step()
	}

	if alerts.Pending() != 1 {
		t.Errorf("alert posts: got %d, want 1", alerts.Pending())
	}
}

func TestSamplerClampsReadings(t *testing.T) {
	s, ch, _, _ := newTestSampler(-3, 9000)

	s.Step()
	s.Step()

	ctx := context.Background()
	if v, _ := ch.Receive(ctx); v != 0 {
		t.Errorf("low clamp: got %d, want 0", v)
	}
	if v, _ := ch.Receive(ctx); v != 4095 {
		t.Errorf("high clamp: got %d, want 4095", v)
	}
}

func TestSamplerReadErrorSkipsCycle(t *testing.T) {
	c := &status.Counters{}
	sensor := gpio.NewFakeSensor(3500)
	sensor.SetError(errors.New("adc busy"))
	ch := NewSampleChannel(SampleQueueSize)
	alerts := NewAlertSignal(MaxAlertEvents, c)
	s := NewSampler(sensor, ch, alerts, logic.Threshold, time.Millisecond, c)

	if _, ok := s.Step(); ok {
		t.Error("expected Step to report failure")
	}
	if ch.Len() != 0 || alerts.Pending() != 0 {
		t.Error("failed read must not push or alert")
	}
	if c.Snapshot().SensorErrors != 1 {
		t.Errorf("SensorErrors: got %d, want 1", c.Snapshot().SensorErrors)
	}

	sensor.SetError(nil)
	if v, ok := s.Step(); !ok || v != 3500 {
		t.Errorf("after recovery: got (%d, %v), want (3500, true)", v, ok)
	}
	if alerts.Pending() != 1 {
		t.Errorf("alert posts after recovery: got %d, want 1", alerts.Pending())
	}
}

func TestSamplerLoopStepsOnTick(t *testing.T) {
	s, ch, _, _ := newTestSampler(10, 20, 30)
	ctx, cancel := context.WithCancel(context.Background())
	tick := make(chan time.Time)

	done := make(chan error)
	go func() { done <- s.loop(ctx, tick) }()

	for i := 0; i < 3; i++ {
		tick <- time.Now()
	}
	cancel()
	if err := <-done; err != nil {
		t.Errorf("loop returned %v", err)
	}

	if ch.Len() != 3 {
		t.Errorf("queued: got %d, want 3", ch.Len())
	}
}

func TestSamplerRunStopsOnCancel(t *testing.T) {
	s, _, _, _ := newTestSampler(1)
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()

	if err := s.Run(ctx); err != nil {
		t.Errorf("Run returned %v", err)
	}
}
