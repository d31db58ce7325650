package tui

import "github.com/charmbracelet/lipgloss"

var (
	colorOK      = lipgloss.Color("#00CC33")
	colorAlarm   = lipgloss.Color("#FF3300")
	colorWarning = lipgloss.Color("#FFAA00")
	colorDim     = lipgloss.Color("#666666")
	colorBorder  = lipgloss.Color("#00AA22")
)

var (
	stylePanel = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorBorder).
			Padding(0, 1)

	styleTitle = lipgloss.NewStyle().
			Foreground(colorOK).
			Bold(true)

	styleLabel = lipgloss.NewStyle().
			Foreground(colorDim).
			Width(16)

	styleNormal = lipgloss.NewStyle().
			Foreground(colorOK).
			Bold(true)

	styleAlarm = lipgloss.NewStyle().
			Foreground(colorAlarm).
			Bold(true)

	styleWarning = lipgloss.NewStyle().
			Foreground(colorWarning)

	styleHelp = lipgloss.NewStyle().
			Foreground(colorDim)
)
