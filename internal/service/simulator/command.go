package simulator

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/oshokin/infusion-controller/internal/config"
	"github.com/oshokin/infusion-controller/internal/logger"
	"github.com/oshokin/infusion-controller/internal/report"
	"github.com/oshokin/infusion-controller/internal/service/common"
	"github.com/oshokin/infusion-controller/internal/session"
	"github.com/oshokin/infusion-controller/internal/version"
)

// Options controls the simulation run.
type Options struct {
	// ConfigPath specifies the settings YAML file. Empty uses the defaults.
	ConfigPath string
	// Cycles overrides the configured number of cycles when positive.
	Cycles int
	// Interval overrides the configured cycle interval when set.
	Interval *time.Duration
	// Seed overrides the configured noise seed when non-zero.
	Seed uint64
	// LogLevel overrides the configured log level when non-empty.
	LogLevel string
	// NoColor disables ANSI colours in the output.
	NoColor bool
	// Output receives the rendered cycles. Nil means stdout.
	Output io.Writer
}

// Summary aggregates a finished run.
type Summary struct {
	// SessionID identifies the session.
	SessionID string
	// Seed is the noise seed used.
	Seed uint64
	// Cycles is the number of completed cycles.
	Cycles int
	// AlarmCycles counts cycles with at least one alarm.
	AlarmCycles int
	// EmergencyStops counts cycles with a critical alarm.
	EmergencyStops int
	// FinalCommand is the last applied command.
	FinalCommand int
	// Interrupted is true when the context ended the run early.
	Interrupted bool
}

// Run loads configuration, runs the session and renders each cycle.
// Cancellation of ctx is a clean stop and is not reported as an error.
func Run(ctx context.Context, opts *Options) (*Summary, error) {
	// Set context with logger name for tracking.
	ctx = logger.WithName(ctx, "simulator")

	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("load configuration: %w", err)
	}

	applyOverrides(cfg, opts)

	if err := common.ApplyLogLevel(cfg.Session.LogLevel); err != nil {
		return nil, err
	}

	out := opts.Output
	if out == nil {
		out = os.Stdout
	}

	var printerOptions []report.Option
	if opts.NoColor {
		printerOptions = append(printerOptions, report.WithoutColor())
	}

	var (
		printer  = report.NewPrinter(out, printerOptions...)
		s        = session.New(*cfg)
		cycles   = cfg.Session.Cycles
		interval = cfg.Session.Interval
		summary  = &Summary{SessionID: s.ID(), Seed: s.Seed()}
	)

	kv := append([]any{
		"session_id", s.ID(),
		"seed", s.Seed(),
		"cycles", cycles,
		"interval", interval.String(),
		"version", version.Short(),
	}, common.DetectOperator().KV()...)

	logger.InfoKV(ctx, "Simulation started", kv...)

	printer.Banner("Closed-Loop Infusion Simulator")

	err = s.Run(ctx, cycles, interval, func(c session.Cycle) {
		printer.Cycle(c, cycles, interval)

		if c.Report.Active() {
			summary.AlarmCycles++
		}

		if c.Report.Critical() {
			summary.EmergencyStops++
		}

		summary.FinalCommand = c.Command
	})

	summary.Cycles = s.Cycles()

	switch {
	case err == nil:
		printer.Banner("Simulation Complete")
	case errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded):
		summary.Interrupted = true

		printer.Banner("Simulation Interrupted")
	default:
		return nil, fmt.Errorf("run session: %w", err)
	}

	logger.InfoKV(ctx, "Simulation finished",
		"session_id", summary.SessionID,
		"cycles", summary.Cycles,
		"alarm_cycles", summary.AlarmCycles,
		"emergency_stops", summary.EmergencyStops,
		"final_command", summary.FinalCommand,
		"interrupted", summary.Interrupted,
	)

	return summary, nil
}

// applyOverrides copies the non-zero command line values into cfg.
func applyOverrides(cfg *config.Config, opts *Options) {
	if opts.Cycles > 0 {
		cfg.Session.Cycles = opts.Cycles
	}

	if opts.Interval != nil && *opts.Interval >= 0 {
		cfg.Session.Interval = *opts.Interval
	}

	if opts.Seed != 0 {
		cfg.Patient.Seed = opts.Seed
	}

	if opts.LogLevel != "" {
		cfg.Session.LogLevel = opts.LogLevel
	}
}
