package gpio

import (
	"errors"
	"sync"
	"time"
)

// FakeSensor is a test double that returns scripted readings.
// Safe for concurrent use.
type FakeSensor struct {
	mu sync.Mutex

	// Readings contains scripted values to return.
	// Each call to ReadRaw() consumes the next value.
	Readings []int

	index  int
	reads  int
	closed bool

	// ReadError, if set, will be returned by ReadRaw().
	ReadError error
}

// NewFakeSensor creates a FakeSensor with the given readings.
func NewFakeSensor(readings ...int) *FakeSensor {
	return &FakeSensor{Readings: readings}
}

// ReadRaw returns the next scripted reading.
// If readings are exhausted, returns the last reading repeatedly.
func (f *FakeSensor) ReadRaw() (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.reads++
	if f.ReadError != nil {
		return 0, f.ReadError
	}
	if len(f.Readings) == 0 {
		return 0, errors.New("no readings configured")
	}

	v := f.Readings[f.index]
	if f.index < len(f.Readings)-1 {
		f.index++
	}
	return v, nil
}

// Reads returns the number of ReadRaw calls so far.
func (f *FakeSensor) Reads() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.reads
}

// SetError sets or clears the error returned by ReadRaw.
func (f *FakeSensor) SetError(err error) {
	f.mu.Lock()
	f.ReadError = err
	f.mu.Unlock()
}

// Close marks the sensor as closed.
func (f *FakeSensor) Close() error {
	f.mu.Lock()
	f.closed = true
	f.mu.Unlock()
	return nil
}

// Closed reports whether Close was called.
func (f *FakeSensor) Closed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}

// FakeButton is a test double whose level is set by the test.
// Safe for concurrent use.
type FakeButton struct {
	mu      sync.Mutex
	pressed bool
	err     error
	closed  bool
}

// NewFakeButton creates a released FakeButton.
func NewFakeButton() *FakeButton {
	return &FakeButton{}
}

// SetPressed sets the level returned by IsPressed.
func (f *FakeButton) SetPressed(pressed bool) {
	f.mu.Lock()
	f.pressed = pressed
	f.mu.Unlock()
}

// SetError sets or clears the error returned by IsPressed.
func (f *FakeButton) SetError(err error) {
	f.mu.Lock()
	f.err = err
	f.mu.Unlock()
}

// IsPressed returns the current level.
func (f *FakeButton) IsPressed() (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return false, f.err
	}
	return f.pressed, nil
}

// Close marks the button as closed.
func (f *FakeButton) Close() error {
	f.mu.Lock()
	f.closed = true
	f.mu.Unlock()
	return nil
}

// Closed reports whether Close was called.
func (f *FakeButton) Closed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}

// Change is one recorded output transition.
type Change struct {
	On bool
	At time.Time
}

// FakeOutput records every SetLevel call with its wall-clock time.
// Safe for concurrent use.
type FakeOutput struct {
	mu      sync.Mutex
	level   bool
	changes []Change
	closed  bool

	// SetError, if set, will be returned by SetLevel.
	SetError error
}

// NewFakeOutput creates a FakeOutput, initially low.
func NewFakeOutput() *FakeOutput {
	return &FakeOutput{}
}

// SetLevel records the level.
func (f *FakeOutput) SetLevel(on bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.SetError != nil {
		return f.SetError
	}
	f.level = on
	f.changes = append(f.changes, Change{On: on, At: time.Now()})
	return nil
}

// Level returns the current level.
func (f *FakeOutput) Level() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.level
}

// Changes returns a copy of all recorded SetLevel calls.
func (f *FakeOutput) Changes() []Change {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]Change, len(f.changes))
	copy(out, f.changes)
	return out
}

// Pulses counts off→on transitions.
func (f *FakeOutput) Pulses() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	prev := false
	for _, c := range f.changes {
		if c.On && !prev {
			n++
		}
		prev = c.On
	}
	return n
}

// Close drives the output low and marks it closed.
func (f *FakeOutput) Close() error {
	f.mu.Lock()
	f.level = false
	f.closed = true
	f.mu.Unlock()
	return nil
}

// Closed reports whether Close was called.
func (f *FakeOutput) Closed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}

// NullOutput remembers the last level and nothing else. It stands in for an
// indicator whose line could not be requested, and for demo mode.
type NullOutput struct {
	mu    sync.Mutex
	level bool
}

// SetLevel stores the level.
func (n *NullOutput) SetLevel(on bool) error {
	n.mu.Lock()
	n.level = on
	n.mu.Unlock()
	return nil
}

// Level returns the last level set.
func (n *NullOutput) Level() bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.level
}

// Close is a no-op.
func (n *NullOutput) Close() error {
	return nil
}
