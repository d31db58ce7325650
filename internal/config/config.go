// Package config loads the monitor's optional YAML configuration.
//
// Every field has a default matching the firmware, so an empty or missing
// file is valid. Example:
//
//	demo: false
//	sensor:
//	  path: /sys/bus/iio/devices/iio:device0/in_voltage0_raw
//	  threshold: 3000
//	  interval: 17ms
//	button:
//	  pin: 18
//	  debounce: 50ms
//	http:
//	  addr: ":80"
//	mqtt:
//	  broker: ${MQTT_BROKER:-tcp://localhost:1883}
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"regexp"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/sweeney/rad-monitor/internal/core"
	"github.com/sweeney/rad-monitor/internal/gpio"
	"github.com/sweeney/rad-monitor/internal/logic"
)

// Config is the root configuration structure.
type Config struct {
	// Demo runs against a simulated sensor and button instead of hardware.
	Demo bool `yaml:"demo"`

	Sensor SensorConfig `yaml:"sensor"`
	Button ButtonConfig `yaml:"button"`
	LEDs   LEDConfig    `yaml:"leds"`
	Alert  AlertConfig  `yaml:"alert"`
	HTTP   HTTPConfig   `yaml:"http"`
	MQTT   MQTTConfig   `yaml:"mqtt"`
}

// SensorConfig configures the analog dosimeter input.
type SensorConfig struct {
	Path      string   `yaml:"path"`
	Threshold int      `yaml:"threshold"`
	Interval  Duration `yaml:"interval"`
}

// ButtonConfig configures the mode toggle button.
type ButtonConfig struct {
	Chip     string   `yaml:"chip"`
	Pin      int      `yaml:"pin"`
	Poll     Duration `yaml:"poll"`
	Debounce Duration `yaml:"debounce"`
}

// LEDConfig configures the indicator outputs.
type LEDConfig struct {
	Chip          string   `yaml:"chip"`
	Heartbeat     int      `yaml:"heartbeat"`
	Alert         int      `yaml:"alert"`
	Mode          int      `yaml:"mode"`
	HeartbeatHalf Duration `yaml:"heartbeat_half"`
	ModeRefresh   Duration `yaml:"mode_refresh"`
}

// AlertConfig configures the coordinator's alert wait and blink pattern.
type AlertConfig struct {
	Wait     Duration `yaml:"wait"`
	BlinkOn  Duration `yaml:"blink_on"`
	BlinkOff Duration `yaml:"blink_off"`
	Cycles   int      `yaml:"cycles"`
}

// HTTPConfig configures the console. An empty Addr disables it.
type HTTPConfig struct {
	Addr string `yaml:"addr"`
}

// MQTTConfig configures the broker link. An empty Broker disables it.
type MQTTConfig struct {
	Broker     string   `yaml:"broker"`
	ClientID   string   `yaml:"client_id"`
	Heartbeat  Duration `yaml:"heartbeat"` // status event period, 0 disables
	BufferSize int      `yaml:"buffer_size"`
}

// Duration wraps time.Duration for YAML.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler for Duration.
func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	var s string
	if err := node.Decode(&s); err != nil {
		return err
	}

	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}

	*d = Duration(parsed)
	return nil
}

// MarshalYAML implements yaml.Marshaler for Duration.
func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}

// Duration returns the underlying time.Duration value.
func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	t := core.DefaultTiming()
	return &Config{
		Sensor: SensorConfig{
			Path:      gpio.DefaultSensorPath,
			Threshold: logic.Threshold,
			Interval:  Duration(t.SampleInterval),
		},
		Button: ButtonConfig{
			Chip:     gpio.DefaultChip,
			Pin:      gpio.DefaultPinButton,
			Poll:     Duration(t.ButtonPoll),
			Debounce: Duration(t.Debounce),
		},
		LEDs: LEDConfig{
			Chip:          gpio.DefaultChip,
			Heartbeat:     gpio.DefaultPinHeartbeat,
			Alert:         gpio.DefaultPinAlert,
			Mode:          gpio.DefaultPinMode,
			HeartbeatHalf: Duration(t.HeartbeatHalf),
			ModeRefresh:   Duration(t.ModeRefresh),
		},
		Alert: AlertConfig{
			Wait:     Duration(t.AlertWait),
			BlinkOn:  Duration(t.BlinkOn),
			BlinkOff: Duration(t.BlinkOff),
			Cycles:   t.BlinkCycles,
		},
		HTTP: HTTPConfig{Addr: ":80"},
		MQTT: MQTTConfig{
			Heartbeat:  Duration(15 * time.Minute),
			BufferSize: 100,
		},
	}
}

// Timing converts the configured periods into core.Timing.
func (c *Config) Timing() core.Timing {
	return core.Timing{
		SampleInterval: c.Sensor.Interval.Duration(),
		ButtonPoll:     c.Button.Poll.Duration(),
		Debounce:       c.Button.Debounce.Duration(),
		AlertWait:      c.Alert.Wait.Duration(),
		BlinkOn:        c.Alert.BlinkOn.Duration(),
		BlinkOff:       c.Alert.BlinkOff.Duration(),
		BlinkCycles:    c.Alert.Cycles,
		HeartbeatHalf:  c.LEDs.HeartbeatHalf.Duration(),
		ModeRefresh:    c.LEDs.ModeRefresh.Duration(),
	}
}

// envVarPattern matches ${VAR} and ${VAR:-default}.
var envVarPattern = regexp.MustCompile(`\$\{([^}:]+)(:-([^}]*))?\}`)

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment
// values. An unset variable without a default is an error.
func expandEnvVars(s string) (string, error) {
	var firstErr error

	result := envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		if firstErr != nil {
			return match
		}
		m := envVarPattern.FindStringSubmatch(match)
		name, hasDefault, def := m[1], m[2] != "", m[3]

		if value, ok := os.LookupEnv(name); ok {
			return value
		}
		if hasDefault {
			return def
		}
		firstErr = fmt.Errorf("environment variable %q is not set", name)
		return match
	})

	if firstErr != nil {
		return "", firstErr
	}
	return result, nil
}

// LoadDotEnv loads KEY=value pairs from path into the environment without
// overriding variables that are already set. A missing file is not an error.
func LoadDotEnv(path string) error {
	err := godotenv.Load(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

// Load reads and parses a YAML configuration file. An empty path returns
// the defaults.
func Load(path string) (*Config, error) {
	if path == "" {
		cfg := Default()
		return cfg, cfg.Validate()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return Parse(data)
}

// Parse parses YAML configuration data over the defaults, expands
// environment variables in string fields and validates the result.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	if err := cfg.expand(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) expand() error {
	fields := []struct {
		name string
		val  *string
	}{
		{"sensor.path", &c.Sensor.Path},
		{"button.chip", &c.Button.Chip},
		{"leds.chip", &c.LEDs.Chip},
		{"http.addr", &c.HTTP.Addr},
		{"mqtt.broker", &c.MQTT.Broker},
		{"mqtt.client_id", &c.MQTT.ClientID},
	}
	for _, f := range fields {
		expanded, err := expandEnvVars(*f.val)
		if err != nil {
			return fmt.Errorf("%s: %w", f.name, err)
		}
		*f.val = expanded
	}
	return nil
}

// Validate checks ranges and required fields.
func (c *Config) Validate() error {
	if c.Sensor.Threshold < logic.MinReading || c.Sensor.Threshold >= logic.MaxReading {
		return fmt.Errorf("sensor.threshold must be in [%d, %d), got %d", logic.MinReading, logic.MaxReading, c.Sensor.Threshold)
	}
	if !c.Demo && c.Sensor.Path == "" {
		return errors.New("sensor.path is required unless demo is set")
	}

	positive := []struct {
		name string
		d    Duration
	}{
		{"sensor.interval", c.Sensor.Interval},
		{"button.poll", c.Button.Poll},
		{"leds.heartbeat_half", c.LEDs.HeartbeatHalf},
		{"leds.mode_refresh", c.LEDs.ModeRefresh},
		{"alert.wait", c.Alert.Wait},
		{"alert.blink_on", c.Alert.BlinkOn},
		{"alert.blink_off", c.Alert.BlinkOff},
	}
	for _, p := range positive {
		if p.d <= 0 {
			return fmt.Errorf("%s must be positive, got %s", p.name, p.d.Duration())
		}
	}
	if c.Button.Debounce < 0 {
		return fmt.Errorf("button.debounce cannot be negative, got %s", c.Button.Debounce.Duration())
	}
	if c.Alert.Cycles < 1 {
		return fmt.Errorf("alert.cycles must be at least 1, got %d", c.Alert.Cycles)
	}

	for _, pin := range []struct {
		name string
		n    int
	}{
		{"button.pin", c.Button.Pin},
		{"leds.heartbeat", c.LEDs.Heartbeat},
		{"leds.alert", c.LEDs.Alert},
		{"leds.mode", c.LEDs.Mode},
	} {
		if pin.n < 0 {
			return fmt.Errorf("%s cannot be negative, got %d", pin.name, pin.n)
		}
	}
	if c.LEDs.Alert == c.LEDs.Heartbeat || c.LEDs.Alert == c.LEDs.Mode {
		return fmt.Errorf("leds.alert (%d) must not share a pin with another LED", c.LEDs.Alert)
	}
	if c.LEDs.Mode == c.LEDs.Heartbeat {
		return fmt.Errorf("leds.mode (%d) must not share a pin with leds.heartbeat", c.LEDs.Mode)
	}

	if c.MQTT.Heartbeat < 0 {
		return fmt.Errorf("mqtt.heartbeat cannot be negative, got %s", c.MQTT.Heartbeat.Duration())
	}
	if c.MQTT.Broker != "" && c.MQTT.BufferSize < 1 {
		return fmt.Errorf("mqtt.buffer_size must be at least 1, got %d", c.MQTT.BufferSize)
	}
	return nil
}
