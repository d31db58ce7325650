package core

import "context"

// SampleChannel is a bounded FIFO of readings between the sampler and the
// aggregator. Pushes never block: when the queue is full the reading being
// pushed is dropped.
type SampleChannel struct {
	ch chan int
}

// NewSampleChannel creates a channel holding up to capacity readings.
func NewSampleChannel(capacity int) *SampleChannel {
	return &SampleChannel{ch: make(chan int, capacity)}
}

// TryPush enqueues v and reports whether it was accepted.
func (c *SampleChannel) TryPush(v int) bool {
	select {
	case c.ch <- v:
		return true
	default:
		return false
	}
}

// Receive blocks until a reading is available, the channel is closed, or
// ctx is done. ok is false in the last two cases.
func (c *SampleChannel) Receive(ctx context.Context) (v int, ok bool) {
	select {
	case v, ok = <-c.ch:
		return v, ok
	case <-ctx.Done():
		return 0, false
	}
}

// Close marks the end of the stream. Only the producer may call it, once.
func (c *SampleChannel) Close() {
	close(c.ch)
}

// Len returns the number of queued readings.
func (c *SampleChannel) Len() int {
	return len(c.ch)
}

// Cap returns the queue capacity.
func (c *SampleChannel) Cap() int {
	return cap(c.ch)
}
