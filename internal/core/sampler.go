package core

import (
	"context"
	"log"
	"time"

	"github.com/sweeney/rad-monitor/internal/gpio"
	"github.com/sweeney/rad-monitor/internal/logic"
	"github.com/sweeney/rad-monitor/internal/status"
)

// Sampler reads the sensor at a fixed cadence, feeds the SampleChannel and
// posts to the AlertSignal on every rising edge through the threshold.
// It never waits for a consumer.
type Sampler struct {
	sensor   gpio.Sensor
	out      *SampleChannel
	alerts   *AlertSignal
	edge     *logic.EdgeDetector
	interval time.Duration
	counters *status.Counters

	failing bool
}

// NewSampler creates a Sampler. counters may be nil.
func NewSampler(sensor gpio.Sensor, out *SampleChannel, alerts *AlertSignal, threshold int, interval time.Duration, counters *status.Counters) *Sampler {
	return &Sampler{
		sensor:   sensor,
		out:      out,
		alerts:   alerts,
		edge:     logic.NewEdgeDetector(threshold),
		interval: interval,
		counters: counters,
	}
}

// Run samples every interval until ctx is done.
func (s *Sampler) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	return s.loop(ctx, ticker.C)
}

func (s *Sampler) loop(ctx context.Context, tick <-chan time.Time) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-tick:
			s.Step()
		}
	}
}

// Step performs one sampling cycle: read, push, edge check.
// It returns the reading and whether the read succeeded.
func (s *Sampler) Step() (int, bool) {
	raw, err := s.sensor.ReadRaw()
	if err != nil {
		s.counters.SensorError()
		if !s.failing {
			log.Printf("sensor read error: %v", err)
			s.failing = true
		}
		return 0, false
	}
	if s.failing {
		log.Printf("sensor read recovered")
		s.failing = false
	}

	reading := logic.ClampReading(raw)
	s.counters.SampleRead()
	if !s.out.TryPush(reading) {
		s.counters.SampleDropped()
	}

	if s.edge.Observe(reading) {
		s.alerts.Post()
	}
	return reading, true
}
