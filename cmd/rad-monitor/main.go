// Command rad-monitor samples a radiation sensor, raises alerts on threshold
// crossings, and serves its state over HTTP and MQTT.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "rad-monitor",
		Short: "Radiation monitor daemon",
		Long: `rad-monitor samples an analog dosimeter, blinks an alert LED when the
reading crosses the threshold, and toggles between NORMAL and ALERT mode on a
button press, a console request or an MQTT command.

Use --demo to run with a simulated sensor and no GPIO hardware.`,
		SilenceUsage: true,
	}

	root.AddCommand(
		newRunCmd(),
		newValidateCmd(),
		newPrintStateCmd(),
		newWatchCmd(),
		newVersionCmd(),
	)
	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "rad-monitor %s\n", version)
		},
	}
}
