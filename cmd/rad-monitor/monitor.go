package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"syscall"
	"time"

	"github.com/google/uuid"

	"github.com/sweeney/rad-monitor/internal/config"
	"github.com/sweeney/rad-monitor/internal/core"
	"github.com/sweeney/rad-monitor/internal/diag"
	"github.com/sweeney/rad-monitor/internal/logic"
	"github.com/sweeney/rad-monitor/internal/mqtt"
	"github.com/sweeney/rad-monitor/internal/status"
	"github.com/sweeney/rad-monitor/internal/web"
)

// eventBusSize bounds coordinator events waiting for the MQTT relay.
const eventBusSize = 32

// monitor owns the shared state and builds the task table.
type monitor struct {
	cfg     *config.Config
	hw      *hardware
	console *diag.Console

	store    *status.Store
	writers  status.Writers
	counters *status.Counters
	tracker  *status.Tracker

	samples *core.SampleChannel
	alerts  *core.AlertSignal
	toggles *core.ToggleSignal
	bus     *core.Bus

	// publisher is nil when MQTT is disabled or failed to start.
	publisher mqtt.Publisher
	now       func() time.Time
}

func newMonitor(cfg *config.Config, hw *hardware, console *diag.Console) *monitor {
	store, writers := status.NewStore(logic.ModeNormal)
	counters := &status.Counters{}
	t := cfg.Timing()

	m := &monitor{
		cfg:      cfg,
		hw:       hw,
		console:  console,
		store:    store,
		writers:  writers,
		counters: counters,
		samples:  core.NewSampleChannel(core.SampleQueueSize),
		alerts:   core.NewAlertSignal(core.MaxAlertEvents, counters),
		toggles:  core.NewToggleSignal(counters),
		bus:      core.NewBus(eventBusSize),
		now:      time.Now,
	}
	m.tracker = status.NewTracker(store, counters, m.now(), uuid.NewString(), status.Config{
		SampleMs:     t.SampleInterval.Milliseconds(),
		ButtonPollMs: t.ButtonPoll.Milliseconds(),
		DebounceMs:   t.Debounce.Milliseconds(),
		AlertWaitMs:  t.AlertWait.Milliseconds(),
		HeartbeatMs:  cfg.MQTT.Heartbeat.Duration().Milliseconds(),
		Threshold:    cfg.Sensor.Threshold,
		Broker:       cfg.MQTT.Broker,
		HTTPAddr:     cfg.HTTP.Addr,
		Demo:         cfg.Demo,
	})
	if net := readNetworkInfo(); net != nil {
		m.tracker.SetNetwork(net)
	}
	return m
}

// handleCommand is called by the MQTT client for each remote command.
func (m *monitor) handleCommand(cmd mqtt.Command) {
	switch cmd {
	case mqtt.CommandToggle:
		if m.toggles.Set() {
			log.Printf("mqtt: toggle requested")
		}
	}
}

// tasks returns the task table. Collaborators are only included when
// configured.
func (m *monitor) tasks() []core.Task {
	t := m.cfg.Timing()

	sampler := core.NewSampler(m.hw.sensor, m.samples, m.alerts, m.cfg.Sensor.Threshold, t.SampleInterval, m.counters)
	aggregator := core.NewAggregator(m.samples, m.writers.Reading)
	button := core.NewButtonWatcher(m.hw.button, m.toggles, t.Debounce, t.ButtonPoll, m.counters)
	coordinator := &core.Coordinator{
		Alerts:   m.alerts,
		Toggles:  m.toggles,
		LED:      m.hw.alert,
		Mode:     m.writers.Mode,
		Alert:    m.writers.Alert,
		Console:  m.console,
		Timing:   t,
		Counters: m.counters,
	}
	heartbeat := &core.Heartbeat{LED: m.hw.heartbeat, Half: t.HeartbeatHalf}
	modeLED := &core.ModeIndicator{LED: m.hw.mode, Store: m.store, Refresh: t.ModeRefresh}

	tasks := []core.Task{
		{Name: "button", Priority: core.PriorityButton, Run: button.Run},
		{Name: "sampler", Priority: core.PrioritySampler, Run: sampler.Run},
		{Name: "aggregator", Priority: core.PriorityAggregator, Run: aggregator.Run},
		{Name: "coordinator", Priority: core.PriorityCoordinator, Run: coordinator.Run},
		{Name: "mode-led", Priority: core.PriorityModeLED, Run: modeLED.Run},
		{Name: "heartbeat", Priority: core.PriorityHeartbeat, Run: heartbeat.Run},
	}

	if m.cfg.HTTP.Addr != "" {
		srv := web.New(m.cfg.HTTP.Addr, m.tracker, m.toggles)
		tasks = append(tasks, core.Task{Name: "console", Priority: core.PriorityConsole, Run: srv.Run, Collaborator: true})
	}

	if m.publisher != nil {
		coordinator.Bus = m.bus
		relay := &core.Relay{Bus: m.bus, Store: m.store, Publisher: m.publisher}
		sp := &statusPublisher{
			publisher: m.publisher,
			tracker:   m.tracker,
			interval:  m.cfg.MQTT.Heartbeat.Duration(),
			now:       m.now,
		}
		tasks = append(tasks,
			core.Task{Name: "relay", Priority: core.PriorityRelay, Run: relay.Run, Collaborator: true},
			core.Task{Name: "status", Priority: core.PriorityRelay, Run: sp.Run, Collaborator: true},
		)
	}
	return tasks
}

// Run runs every task until ctx is cancelled or a core task fails.
func (m *monitor) Run(ctx context.Context) error {
	tasks := m.tasks()
	infos := make([]status.TaskInfo, 0, len(tasks))
	for _, t := range core.SortByPriority(tasks) {
		infos = append(infos, status.TaskInfo{Name: t.Name, Priority: t.Priority})
	}
	m.tracker.SetTasks(infos)

	t := m.cfg.Timing()
	m.console.Lines(
		"rad-monitor "+version+" starting",
		fmt.Sprintf("threshold=%d sample=%v debounce=%v blink=%v demo=%v",
			m.cfg.Sensor.Threshold, t.SampleInterval, t.Debounce, t.BlinkDuration(), m.cfg.Demo),
	)

	err := core.RunTasks(ctx, tasks)
	m.samples.Close()
	return err
}

// statusPublisher publishes STARTUP, periodic HEARTBEAT and SHUTDOWN
// status snapshots on the system topic.
type statusPublisher struct {
	publisher mqtt.Publisher
	tracker   *status.Tracker
	interval  time.Duration // 0 disables heartbeats
	now       func() time.Time
}

func (s *statusPublisher) Run(ctx context.Context) error {
	s.publish("STARTUP", "", true)

	var tick <-chan time.Time
	if s.interval > 0 {
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()
		tick = ticker.C
	}

	for {
		select {
		case <-ctx.Done():
			s.publish("SHUTDOWN", shutdownReason(ctx), true)
			return nil
		case <-tick:
			if net := readNetworkInfo(); net != nil {
				s.tracker.SetNetwork(net)
			}
			s.publish("HEARTBEAT", "", false)
		}
	}
}

func (s *statusPublisher) publish(event, reason string, retained bool) {
	snap := s.tracker.Snapshot()
	err := s.publisher.PublishSystem(mqtt.SystemEvent{
		Timestamp:  s.now(),
		Event:      event,
		Reason:     reason,
		Retained:   retained,
		RawPayload: status.FormatStatusEvent(snap, event, reason),
	})
	if err != nil {
		log.Printf("failed to publish %s event: %v", event, err)
		return
	}
	if event != "HEARTBEAT" {
		log.Printf("published %s event", event)
	}
}

// shutdownSignal is the cancellation cause when a signal stops the daemon.
type shutdownSignal struct {
	sig os.Signal
}

func (s shutdownSignal) Error() string {
	return "received " + s.sig.String()
}

// shutdownReason names the signal that cancelled ctx, as reported in the
// SHUTDOWN event.
func shutdownReason(ctx context.Context) string {
	var s shutdownSignal
	if !errors.As(context.Cause(ctx), &s) {
		return "UNKNOWN"
	}
	switch s.sig {
	case syscall.SIGINT:
		return "SIGINT"
	case syscall.SIGTERM:
		return "SIGTERM"
	}
	return "UNKNOWN"
}
