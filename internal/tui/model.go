// Package tui is a terminal dashboard for a running monitor. It polls the
// HTTP console's JSON status and can request mode toggles.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/sweeney/rad-monitor/internal/logic"
	"github.com/sweeney/rad-monitor/internal/status"
)

// PollInterval is how often the dashboard refreshes.
const PollInterval = 500 * time.Millisecond

// StatusSource is what the model needs from the console. *Client satisfies it.
type StatusSource interface {
	Status(ctx context.Context) (status.StatusInner, error)
	Toggle(ctx context.Context) (bool, error)
}

type tickMsg time.Time

type statusMsg struct {
	status status.StatusInner
}

type errMsg struct {
	err error
}

type toggledMsg struct {
	coalesced bool
}

// Model is the Bubble Tea model for the dashboard.
type Model struct {
	src    StatusSource
	target string

	status  status.StatusInner
	loaded  bool
	err     error
	notice  string
	history []int
}

// historyLen is how many readings the sparkline keeps.
const historyLen = 40

// New creates a Model reading from src. target is shown in the title.
func New(src StatusSource, target string) Model {
	return Model{src: src, target: target}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.fetchCmd(), tickCmd())
}

func tickCmd() tea.Cmd {
	return tea.Tick(PollInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m Model) fetchCmd() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), PollInterval*4)
		defer cancel()
		st, err := m.src.Status(ctx)
		if err != nil {
			return errMsg{err}
		}
		return statusMsg{st}
	}
}

func (m Model) toggleCmd() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), PollInterval*4)
		defer cancel()
		coalesced, err := m.src.Toggle(ctx)
		if err != nil {
			return errMsg{err}
		}
		return toggledMsg{coalesced}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "Q", "ctrl+c", "esc":
			return m, tea.Quit
		case "t", "T":
			return m, m.toggleCmd()
		}
		return m, nil

	case tickMsg:
		return m, tea.Batch(m.fetchCmd(), tickCmd())

	case statusMsg:
		m.status = msg.status
		m.loaded = true
		m.err = nil
		m.history = append(m.history, msg.status.LastReading)
		if len(m.history) > historyLen {
			m.history = m.history[len(m.history)-historyLen:]
		}
		return m, nil

	case toggledMsg:
		if msg.coalesced {
			m.notice = "toggle already pending"
		} else {
			m.notice = "toggle requested"
		}
		return m, nil

	case errMsg:
		m.err = msg.err
		return m, nil
	}
	return m, nil
}

func (m Model) View() string {
	var b strings.Builder
	b.WriteString(styleTitle.Render("Radiation Control Panel"))
	b.WriteString(styleHelp.Render("  " + m.target))
	b.WriteString("\n\n")

	if !m.loaded {
		if m.err != nil {
			b.WriteString(styleAlarm.Render("error: " + m.err.Error()))
		} else {
			b.WriteString("connecting...")
		}
		return stylePanel.Render(b.String()) + "\n"
	}

	s := m.status
	row := func(label, value string) {
		b.WriteString(styleLabel.Render(label))
		b.WriteString(value)
		b.WriteString("\n")
	}
	row("Mode", modeStyle(s.Mode).Render(s.Mode))
	row("Alert", alertStyle(s.Alert).Render(s.Alert))
	row("Latest reading", fmt.Sprintf("%d / %d", s.LastReading, logic.MaxReading))
	row("Trend", sparkline(m.history, s.Config.Threshold))
	row("Samples", fmt.Sprintf("%d read, %d dropped", s.Counts.SamplesRead, s.Counts.SamplesDropped))
	row("Alerts", fmt.Sprintf("%d handled, %d dropped", s.Counts.AlertsHandled, s.Counts.AlertsDropped))
	row("MQTT", connected(s.MQTT.Connected))
	row("Uptime", (time.Duration(s.UptimeSeconds) * time.Second).String())

	if m.err != nil {
		b.WriteString("\n")
		b.WriteString(styleWarning.Render("stale: " + m.err.Error()))
	} else if m.notice != "" {
		b.WriteString("\n")
		b.WriteString(styleHelp.Render(m.notice))
	}

	help := styleHelp.Render("t toggle mode  q quit")
	return lipgloss.JoinVertical(lipgloss.Left, stylePanel.Render(b.String()), help) + "\n"
}

func modeStyle(mode string) lipgloss.Style {
	if mode == string(logic.ModeAlert) {
		return styleAlarm
	}
	return styleNormal
}

func alertStyle(alert string) lipgloss.Style {
	if alert == logic.AlertLabel(true) {
		return styleAlarm
	}
	return styleNormal
}

func connected(ok bool) string {
	if ok {
		return styleNormal.Render("connected")
	}
	return styleHelp.Render("disconnected")
}

var sparkBlocks = []rune("▁▂▃▄▅▆▇█")

// sparkline renders readings on a 0..MaxReading scale. Readings above
// threshold are drawn in the alarm color.
func sparkline(readings []int, threshold int) string {
	var b strings.Builder
	for _, r := range readings {
		r = logic.ClampReading(r)
		idx := r * (len(sparkBlocks) - 1) / logic.MaxReading
		block := string(sparkBlocks[idx])
		if threshold > 0 && r > threshold {
			block = styleAlarm.Render(block)
		}
		b.WriteString(block)
	}
	return b.String()
}
