package core

import "context"

// ReadingSink receives drained readings. status.ReadingWriter implements it.
type ReadingSink interface {
	Set(v int)
}

// Aggregator drains the SampleChannel into the last-reading field.
type Aggregator struct {
	in  *SampleChannel
	out ReadingSink
}

// NewAggregator creates an Aggregator.
func NewAggregator(in *SampleChannel, out ReadingSink) *Aggregator {
	return &Aggregator{in: in, out: out}
}

// Run blocks on the channel and stores each reading in arrival order.
// It returns when ctx is done or the channel is closed.
func (a *Aggregator) Run(ctx context.Context) error {
	for {
		v, ok := a.in.Receive(ctx)
		if !ok {
			return nil
		}
		a.out.Set(v)
	}
}
