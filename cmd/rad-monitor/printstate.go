package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/sweeney/rad-monitor/internal/gpio"
	"github.com/sweeney/rad-monitor/internal/logic"
)

func newPrintStateCmd() *cobra.Command {
	var flags configFlags
	cmd := &cobra.Command{
		Use:   "print-state",
		Short: "Read the sensor and button once and exit",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := flags.load(cmd)
			if err != nil {
				return err
			}
			hw, err := openHardware(cfg)
			if err != nil {
				return err
			}
			defer hw.Close()
			return printState(cmd.OutOrStdout(), hw.sensor, hw.button, cfg.Sensor.Threshold)
		},
	}
	flags.register(cmd)
	return cmd
}

func printState(w io.Writer, sensor gpio.Sensor, button gpio.Button, threshold int) error {
	raw, err := sensor.ReadRaw()
	if err != nil {
		return fmt.Errorf("read sensor: %w", err)
	}
	pressed, err := button.IsPressed()
	if err != nil {
		return fmt.Errorf("read button: %w", err)
	}

	reading := logic.ClampReading(raw)
	level := "below"
	if reading > threshold {
		level = "above"
	}
	btn := "released"
	if pressed {
		btn = "pressed"
	}
	fmt.Fprintf(w, "reading: %d (%s threshold %d), button: %s\n", reading, level, threshold, btn)
	return nil
}
