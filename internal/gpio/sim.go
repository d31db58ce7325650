package gpio

import (
	"math/rand/v2"
	"sync"
)

// SimSensor produces a plausible dosimeter signal for demo mode: a noisy
// background level with occasional excursions above the alert threshold.
type SimSensor struct {
	mu        sync.Mutex
	rng       *rand.Rand
	level     float64
	spikeLeft int

	// Background is the resting level.
	Background float64
	// SpikeChance is the per-sample probability of starting an excursion.
	SpikeChance float64
	// SpikeSamples is the length of an excursion in samples.
	SpikeSamples int
}

// NewSimSensor creates a SimSensor seeded with seed. At a 17ms cadence the
// defaults give an excursion of about one second roughly every 30 seconds.
func NewSimSensor(seed uint64) *SimSensor {
	return &SimSensor{
		rng:          rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
		level:        1200,
		Background:   1200,
		SpikeChance:  1.0 / 1800,
		SpikeSamples: 60,
	}
}

// ReadRaw returns the next simulated sample.
func (s *SimSensor) ReadRaw() (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	target := s.Background
	if s.spikeLeft == 0 && s.rng.Float64() < s.SpikeChance {
		s.spikeLeft = s.SpikeSamples
	}
	if s.spikeLeft > 0 {
		s.spikeLeft--
		target = 3600
	}

	// Move a quarter of the way to the target, plus noise.
	s.level += (target-s.level)/4 + s.rng.NormFloat64()*25
	v := int(s.level)
	if v < 0 {
		v = 0
	}
	if v > 4095 {
		v = 4095
	}
	return v, nil
}

// Close is a no-op.
func (s *SimSensor) Close() error {
	return nil
}
