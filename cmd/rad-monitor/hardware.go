package main

import (
	"fmt"
	"log"
	"time"

	"github.com/sweeney/rad-monitor/internal/config"
	"github.com/sweeney/rad-monitor/internal/gpio"
)

// hardware holds the opened inputs and outputs.
type hardware struct {
	sensor    gpio.Sensor
	button    gpio.Button
	heartbeat gpio.Output
	alert     gpio.Output
	mode      gpio.Output
}

// openHardware opens the sensor, button and LEDs. The sensor and button are
// required; an LED that cannot be opened is replaced by a NullOutput.
// In demo mode nothing touches the hardware.
func openHardware(cfg *config.Config) (*hardware, error) {
	if cfg.Demo {
		return &hardware{
			sensor:    gpio.NewSimSensor(uint64(time.Now().UnixNano())),
			button:    gpio.NewFakeButton(),
			heartbeat: &gpio.NullOutput{},
			alert:     &gpio.NullOutput{},
			mode:      &gpio.NullOutput{},
		}, nil
	}

	sensor, err := gpio.NewIIOSensor(cfg.Sensor.Path)
	if err != nil {
		return nil, fmt.Errorf("init sensor: %w", err)
	}
	button, err := gpio.NewRealButton(cfg.Button.Chip, cfg.Button.Pin)
	if err != nil {
		sensor.Close()
		return nil, fmt.Errorf("init button: %w", err)
	}

	return &hardware{
		sensor:    sensor,
		button:    button,
		heartbeat: openLED("heartbeat", cfg.LEDs.Chip, cfg.LEDs.Heartbeat),
		alert:     openLED("alert", cfg.LEDs.Chip, cfg.LEDs.Alert),
		mode:      openLED("mode", cfg.LEDs.Chip, cfg.LEDs.Mode),
	}, nil
}

func openLED(name, chip string, pin int) gpio.Output {
	out, err := gpio.NewRealOutput(chip, pin)
	if err != nil {
		log.Printf("%s led unavailable (pin %d): %v", name, pin, err)
		return &gpio.NullOutput{}
	}
	return out
}

// Close releases everything, leaving outputs low.
func (h *hardware) Close() {
	for name, c := range map[string]interface{ Close() error }{
		"sensor":        h.sensor,
		"button":        h.button,
		"heartbeat led": h.heartbeat,
		"alert led":     h.alert,
		"mode led":      h.mode,
	} {
		if err := c.Close(); err != nil {
			log.Printf("close %s: %v", name, err)
		}
	}
}
