// ============================================================================
// Eventphase CLI
// ============================================================================
//
// Package: internal/cli
// File: cli.go
// Purpose: Cobra command tree, grounded on the teacher's internal/cli:
// a persistent --config flag resolved once in PersistentPreRunE, one
// buildXCommand function per subcommand, and a boxed Unicode summary
// for the status command.
//
// ============================================================================

package cli

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/ChuLiYu/eventphase/internal/config"
	"github.com/ChuLiYu/eventphase/internal/demo"
	"github.com/ChuLiYu/eventphase/internal/dispatcher"
	"github.com/ChuLiYu/eventphase/internal/metrics"
	"github.com/ChuLiYu/eventphase/internal/registry"
	"github.com/ChuLiYu/eventphase/pkg/events"
)

var log = slog.Default()

type rootState struct {
	configPath string
	cfg        *config.Config
}

// BuildCLI assembles the eventctl command tree.
func BuildCLI() *cobra.Command {
	state := &rootState{}

	root := &cobra.Command{
		Use:   "eventctl",
		Short: "Drive the phased event dispatcher from the command line",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(state.configPath)
			if err != nil {
				return err
			}
			state.cfg = cfg
			return nil
		},
	}
	root.PersistentFlags().StringVar(&state.configPath, "config", "eventctl.yaml", "path to config file")

	root.AddCommand(
		buildDispatchCommand(state),
		buildServeCommand(state),
		buildStatusCommand(state),
	)
	return root
}

func buildDispatchCommand(state *rootState) *cobra.Command {
	var eventType string
	var failConfigure bool
	var suspendExecute bool

	cmd := &cobra.Command{
		Use:   "dispatch",
		Short: "Register the built-in demo handlers and dispatch one event",
		RunE: func(cmd *cobra.Command, args []string) error {
			reg := registry.New()
			collector := metrics.NewCollector(prometheus.DefaultRegisterer)
			d := dispatcher.New(reg, dispatcher.WithMetrics(collector))

			stop, err := demo.RegisterAll(d, events.EventType(eventType), demo.Options{
				FailConfigure:  failConfigure,
				SuspendExecute: suspendExecute,
				AsyncSim:       state.cfg.AsyncSim,
			})
			if err != nil {
				return err
			}
			defer stop()

			ev := demo.NewSampleEvent(events.EventType(eventType))
			outcome, handle, err := d.Dispatch(ev)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "outcome: %s\n", outcome)
			if handle != nil {
				fmt.Fprintln(cmd.OutOrStdout(), "event suspended; run again with a resolving demo config to observe completion")
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&eventType, "event-type", "demo.order", "event type to dispatch")
	cmd.Flags().BoolVar(&failConfigure, "fail-configure", false, "make the demo Configure handler fail")
	cmd.Flags().BoolVar(&suspendExecute, "suspend-execute", false, "make the demo Execute handler suspend via the async simulator")
	return cmd
}

func buildServeCommand(state *rootState) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the Prometheus /metrics endpoint",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !state.cfg.Metrics.Enabled {
				fmt.Fprintln(cmd.OutOrStdout(), "metrics disabled in config")
				return nil
			}
			log.Info("serving metrics", "port", state.cfg.Metrics.Port)
			return metrics.StartServer(state.cfg.Metrics.Port)
		},
	}
}

func buildStatusCommand(state *rootState) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Print the resolved configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			printStatusBox(cmd.OutOrStdout(), state.cfg)
			return nil
		},
	}
}

func printStatusBox(w io.Writer, cfg *config.Config) {
	fmt.Fprintln(w, "┌─────────────────────────────────────────┐")
	fmt.Fprintln(w, "│ 📡 eventphase status                     │")
	fmt.Fprintln(w, "├─────────────────────────────────────────┤")
	fmt.Fprintf(w, "│ metrics enabled : %-23v │\n", cfg.Metrics.Enabled)
	fmt.Fprintf(w, "│ metrics port    : %-23d │\n", cfg.Metrics.Port)
	fmt.Fprintf(w, "│ log level       : %-23s │\n", cfg.Log.Level)
	fmt.Fprintf(w, "│ default priority: %-23s │\n", cfg.Dispatch.DefaultPriority)
	fmt.Fprintf(w, "│ asyncsim workers: %-23d │\n", cfg.AsyncSim.Workers)
	fmt.Fprintln(w, "└─────────────────────────────────────────┘")
}
