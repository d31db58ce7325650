package main

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/sweeney/rad-monitor/internal/tui"
)

func newWatchCmd() *cobra.Command {
	var url string
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Terminal dashboard for a running monitor",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			model := tui.New(tui.NewClient(url), url)
			_, err := tea.NewProgram(model, tea.WithAltScreen()).Run()
			return err
		},
	}
	cmd.Flags().StringVar(&url, "url", "http://localhost", "Base URL of the monitor's HTTP console")
	return cmd
}
