package gpio

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// IIOSensor reads an ADC channel exposed by the Linux industrial I/O
// subsystem, e.g. /sys/bus/iio/devices/iio:device0/in_voltage0_raw.
// Each read is a single small sysfs read and does not block on the device.
type IIOSensor struct {
	path string
}

// NewIIOSensor checks that path is readable and returns a sensor for it.
func NewIIOSensor(path string) (*IIOSensor, error) {
	s := &IIOSensor{path: path}
	if _, err := s.ReadRaw(); err != nil {
		return nil, err
	}
	return s, nil
}

// ReadRaw returns the raw ADC value.
func (s *IIOSensor) ReadRaw() (int, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return 0, fmt.Errorf("read sensor %s: %w", s.path, err)
	}
	v, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil {
		return 0, fmt.Errorf("parse sensor value %q: %w", strings.TrimSpace(string(data)), err)
	}
	return v, nil
}

// Close is a no-op; each read opens the node afresh.
func (s *IIOSensor) Close() error {
	return nil
}
