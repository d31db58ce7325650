// Package gpio provides the hardware capabilities used by the monitor:
// an analog sensor, a digital input and digital outputs.
// The real implementations use the Linux GPIO character device and IIO sysfs.
// The fake implementations allow testing without hardware.
package gpio

// Sensor reads the analog dosimeter.
type Sensor interface {
	// ReadRaw returns one 12-bit sample (0-4095). It must not block.
	ReadRaw() (int, error)

	// Close releases sensor resources.
	Close() error
}

// Button reads the mode toggle button.
type Button interface {
	// IsPressed returns the logical button level. It must not block.
	IsPressed() (bool, error)

	// Close releases GPIO resources.
	Close() error
}

// Output drives an indicator LED.
type Output interface {
	// SetLevel drives the output high (true) or low (false).
	SetLevel(on bool) error

	// Close releases GPIO resources, leaving the pin low.
	Close() error
}

// Default chip and pin assignments (BCM numbering).
const (
	DefaultChip         = "gpiochip0"
	DefaultPinButton    = 18
	DefaultPinHeartbeat = 5
	DefaultPinAlert     = 4
	DefaultPinMode      = 6
)

// DefaultSensorPath is the IIO sysfs node of ADC channel 0.
const DefaultSensorPath = "/sys/bus/iio/devices/iio:device0/in_voltage0_raw"

// Consumer is the label attached to requested GPIO lines.
const Consumer = "rad-monitor"
