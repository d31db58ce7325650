package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/sweeney/rad-monitor/internal/config"
	"github.com/sweeney/rad-monitor/internal/diag"
	"github.com/sweeney/rad-monitor/internal/mqtt"
)

// configFlags are shared by every command that needs a configuration.
type configFlags struct {
	path    string
	envFile string
	demo    bool
	broker  string
	http    string
}

func (f *configFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.path, "config", "c", "", "YAML config file (defaults apply when omitted)")
	cmd.Flags().StringVar(&f.envFile, "env-file", ".env", "dotenv file loaded before the config (missing file is ignored)")
	cmd.Flags().BoolVar(&f.demo, "demo", false, "Use a simulated sensor and no GPIO hardware")
	cmd.Flags().StringVar(&f.broker, "broker", "", "MQTT broker address, overrides mqtt.broker")
	cmd.Flags().StringVar(&f.http, "http", "", "HTTP console address, overrides http.addr")
}

// load reads the dotenv file and the config, then applies flags that were
// set explicitly.
func (f *configFlags) load(cmd *cobra.Command) (*config.Config, error) {
	if err := config.LoadDotEnv(f.envFile); err != nil {
		return nil, err
	}
	cfg, err := config.Load(f.path)
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("demo") {
		cfg.Demo = f.demo
	}
	if flags.Changed("broker") {
		cfg.MQTT.Broker = f.broker
	}
	if flags.Changed("http") {
		cfg.HTTP.Addr = f.http
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func newRunCmd() *cobra.Command {
	var flags configFlags
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the monitor",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := flags.load(cmd)
			if err != nil {
				return err
			}
			return run(cmd.Context(), cfg)
		},
	}
	flags.register(cmd)
	return cmd
}

func run(parent context.Context, cfg *config.Config) error {
	if parent == nil {
		parent = context.Background()
	}
	console := diag.New(os.Stderr)
	log.SetOutput(console)

	hw, err := openHardware(cfg)
	if err != nil {
		return err
	}
	defer hw.Close()

	m := newMonitor(cfg, hw, console)

	if cfg.MQTT.Broker != "" {
		clientID := cfg.MQTT.ClientID
		if clientID == "" {
			clientID = "rad-monitor-" + uuid.NewString()[:8]
		}
		pub, err := mqtt.NewRealPublisher(mqtt.Options{
			Broker:             cfg.MQTT.Broker,
			ClientID:           clientID,
			BufferSize:         cfg.MQTT.BufferSize,
			OnCommand:          m.handleCommand,
			OnConnectionChange: m.tracker.SetMQTTConnected,
		})
		if err != nil {
			log.Printf("mqtt disabled: %v", err)
		} else {
			m.publisher = pub
			defer pub.Close()
		}
	}

	ctx, cancel := context.WithCancelCause(parent)
	defer cancel(nil)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case s := <-sigCh:
			log.Printf("received %v, shutting down", s)
			cancel(shutdownSignal{s})
		case <-ctx.Done():
		}
	}()

	if err := m.Run(ctx); err != nil {
		return fmt.Errorf("monitor stopped: %w", err)
	}
	return nil
}
