package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel/trace"

	"github.com/zero-day-ai/redsim"
	"github.com/zero-day-ai/redsim/config"
	"github.com/zero-day-ai/redsim/telemetry"
)

var (
	version = redsim.Version
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "redsim",
		Short: "Educational red-team attack simulator",
		Long: `redsim walks a fictitious lab network through the five phases of an
attack lifecycle: reconnaissance, exploitation, privilege escalation,
lateral movement and persistence.

Every step is a random draw against a rule-based heuristic. No packet
leaves the machine.`,
		SilenceUsage: true,
	}

	// Global flags
	rootCmd.PersistentFlags().String("config", "", "Path to redsim.yaml (default: search from the current directory)")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().String("log-format", "", "Log format: text or json")
	rootCmd.PersistentFlags().Uint64("seed", 0, "Random seed for reproducible runs (0 = time-based)")
	rootCmd.PersistentFlags().Bool("trace", false, "Log an OpenTelemetry span for every step")

	rootCmd.AddCommand(
		newRunCmd(),
		newStepCmd(),
		newReportCmd(),
		newScenarioCmd(),
		newVersionCmd(),
	)
	return rootCmd
}

// session is a simulator built from configuration and global flags.
type session struct {
	sim      *redsim.Simulator
	cfg      *config.Config
	logger   *slog.Logger
	shutdown func()
}

func (s *session) Close() {
	s.sim.Stop()
	if s.shutdown != nil {
		s.shutdown()
	}
}

func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")

	var (
		cfg *config.Config
		err error
	)
	if path != "" {
		cfg, err = config.Load(path)
	} else {
		cfg, err = config.LoadFromDir(".")
		if errors.Is(err, config.ErrNotFound) {
			cfg, err = config.Default(), nil
		}
	}
	if err != nil {
		return nil, err
	}

	if cmd.Flags().Changed("log-level") {
		if cfg.Log == nil {
			cfg.Log = &config.LogConfig{}
		}
		cfg.Log.Level, _ = cmd.Flags().GetString("log-level")
	}
	if cmd.Flags().Changed("log-format") {
		if cfg.Log == nil {
			cfg.Log = &config.LogConfig{}
		}
		cfg.Log.Format, _ = cmd.Flags().GetString("log-format")
	}
	if cmd.Flags().Changed("seed") {
		if cfg.Simulation == nil {
			cfg.Simulation = &config.SimulationConfig{}
		}
		cfg.Simulation.Seed, _ = cmd.Flags().GetUint64("seed")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func newSession(cmd *cobra.Command, opts ...redsim.Option) (*session, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}

	logger, err := telemetry.NewLogger(cmd.ErrOrStderr(), cfg.Log.GetLevel(), cfg.Log.GetFormat())
	if err != nil {
		return nil, err
	}

	s := &session{cfg: cfg, logger: logger}

	base := []redsim.Option{redsim.WithLogger(logger)}
	if traceOn, _ := cmd.Flags().GetBool("trace"); traceOn {
		tp := telemetry.NewLogTracerProvider(traceLogger(cmd.ErrOrStderr(), cfg), version)
		s.shutdown = func() { _ = tp.Shutdown(context.Background()) }
		base = append(base, redsim.WithTracer(tracer(tp)))
	}

	sim, err := redsim.NewFromConfig(cfg, append(base, opts...)...)
	if err != nil {
		if s.shutdown != nil {
			s.shutdown()
		}
		return nil, err
	}
	s.sim = sim
	return s, nil
}

// traceLogger logs spans at debug level regardless of the configured level.
func traceLogger(w io.Writer, cfg *config.Config) *slog.Logger {
	logger, err := telemetry.NewLogger(w, "debug", cfg.Log.GetFormat())
	if err != nil {
		return slog.Default()
	}
	return logger
}

func tracer(tp trace.TracerProvider) trace.Tracer {
	return tp.Tracer("github.com/zero-day-ai/redsim/cmd/redsim")
}
