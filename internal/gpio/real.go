//go:build linux

package gpio

import (
	"fmt"

	"github.com/warthog618/go-gpiocdev"
)

// RealButton reads the button from actual hardware using the GPIO character
// device. The button pulls the line to ground, so raw 0 means pressed.
type RealButton struct {
	line *gpiocdev.Line
}

// NewRealButton requests pin on chip as an input with pull-up.
func NewRealButton(chip string, pin int) (*RealButton, error) {
	line, err := gpiocdev.RequestLine(chip, pin,
		gpiocdev.AsInput,
		gpiocdev.WithPullUp,
		gpiocdev.WithConsumer(Consumer))
	if err != nil {
		return nil, fmt.Errorf("request button pin %d: %w", pin, err)
	}
	return &RealButton{line: line}, nil
}

// IsPressed returns true while the line is held low.
func (b *RealButton) IsPressed() (bool, error) {
	raw, err := b.line.Value()
	if err != nil {
		return false, fmt.Errorf("read button pin: %w", err)
	}
	return raw == 0, nil
}

// Close reconfigures the line to input with pull-down (matching Pi boot
// defaults) and releases it.
func (b *RealButton) Close() error {
	var errs []error
	if err := b.line.Reconfigure(gpiocdev.AsInput, gpiocdev.WithPullDown); err != nil {
		errs = append(errs, fmt.Errorf("reconfigure button pin: %w", err))
	}
	if err := b.line.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close button pin: %w", err))
	}
	if len(errs) > 0 {
		return fmt.Errorf("close errors: %v", errs)
	}
	return nil
}

// RealOutput drives an LED on a GPIO output line.
type RealOutput struct {
	line *gpiocdev.Line
	pin  int
}

// NewRealOutput requests pin on chip as an output, initially low.
func NewRealOutput(chip string, pin int) (*RealOutput, error) {
	line, err := gpiocdev.RequestLine(chip, pin,
		gpiocdev.AsOutput(0),
		gpiocdev.WithConsumer(Consumer))
	if err != nil {
		return nil, fmt.Errorf("request output pin %d: %w", pin, err)
	}
	return &RealOutput{line: line, pin: pin}, nil
}

// SetLevel drives the line.
func (o *RealOutput) SetLevel(on bool) error {
	v := 0
	if on {
		v = 1
	}
	if err := o.line.SetValue(v); err != nil {
		return fmt.Errorf("set pin %d: %w", o.pin, err)
	}
	return nil
}

// Close drives the line low, returns it to input with pull-down and releases it.
func (o *RealOutput) Close() error {
	var errs []error
	if err := o.line.SetValue(0); err != nil {
		errs = append(errs, fmt.Errorf("clear pin %d: %w", o.pin, err))
	}
	if err := o.line.Reconfigure(gpiocdev.AsInput, gpiocdev.WithPullDown); err != nil {
		errs = append(errs, fmt.Errorf("reconfigure pin %d: %w", o.pin, err))
	}
	if err := o.line.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close pin %d: %w", o.pin, err))
	}
	if len(errs) > 0 {
		return fmt.Errorf("close errors: %v", errs)
	}
	return nil
}
