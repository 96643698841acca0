package scenarios

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/oshokin/infusion-controller/internal/config"
	"github.com/oshokin/infusion-controller/internal/domain/alarm"
	"github.com/oshokin/infusion-controller/internal/logger"
	"github.com/oshokin/infusion-controller/internal/report"
	"github.com/oshokin/infusion-controller/internal/service/common"
	"github.com/oshokin/infusion-controller/internal/session"
	"github.com/oshokin/infusion-controller/internal/version"
)

// Options controls the scenario run.
type Options struct {
	// ConfigPath specifies the settings YAML file. Empty uses the defaults.
	ConfigPath string
	// Seed overrides the configured noise seed when non-zero.
	Seed uint64
	// NoColor disables ANSI colours in the output.
	NoColor bool
	// Output receives the rendered results. Nil means stdout.
	Output io.Writer
}

// Result is the outcome of one scenario.
type Result struct {
	// Name is the scenario title.
	Name string
	// Passed is true when the expectation held.
	Passed bool
	// Message explains the outcome.
	Message string
}

// Scenario is one reference check against a fresh session.
type Scenario struct {
	// Name is the scenario title.
	Name string
	// Run executes the scenario and writes its details to p.
	Run func(ctx context.Context, cfg config.Config, p *report.Printer) Result
}

const (
	// responseCycles is the length of the normal response scenario.
	responseCycles = 30
	// responseSampleEvery controls how often the normal response is printed.
	responseSampleEvery = 10
	// pidCycles is the length of the PID response scenario.
	pidCycles = 20
	// forcedSaturation is the starting saturation of the hypoxemia scenario.
	forcedSaturation = 90.0
	// forcedHeartRate is the starting heart rate of the PID response scenario.
	forcedHeartRate = 95.0
)

// ErrScenarioFailed is returned when at least one scenario did not pass.
var ErrScenarioFailed = errors.New("scenario failed")

// All returns the reference scenarios in execution order.
func All() []Scenario {
	return []Scenario{
		{Name: "Test 1: Normal Patient Response", Run: normalResponse},
		{Name: "Test 2: Safety Alarm (Simulated Hypoxemia)", Run: hypoxemiaAlarm},
		{Name: "Test 3: PID Controller Response", Run: pidResponse},
	}
}

// Run executes every scenario and reports ErrScenarioFailed if any failed.
func Run(ctx context.Context, opts *Options) ([]Result, error) {
	// Set context with logger name for tracking.
	ctx = logger.WithName(ctx, "scenarios")

	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("load configuration: %w", err)
	}

	if opts.Seed != 0 {
		cfg.Patient.Seed = opts.Seed
	}

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

	logger.InfoKV(ctx, "Scenarios started",
		append([]any{"version", version.Short()}, common.DetectOperator().KV()...)...)

	printer := report.NewPrinter(out, printerOptions...)
	printer.Banner("Running Test Scenarios")

	var (
		results = make([]Result, 0, len(All()))
		failed  int
	)

	for _, sc := range All() {
		if err := ctx.Err(); err != nil {
			return results, err
		}

		printer.Section(sc.Name)

		result := sc.Run(ctx, *cfg, printer)
		result.Name = sc.Name
		results = append(results, result)

		printer.Outcome(result.Passed, result.Message)

		if !result.Passed {
			failed++
		}

		logger.InfoKV(ctx, "Scenario finished", "scenario", sc.Name, "passed", result.Passed)
	}

	printer.Banner("All tests complete")

	if failed > 0 {
		return results, fmt.Errorf("%w: %d of %d", ErrScenarioFailed, failed, len(results))
	}

	return results, nil
}

// normalResponse runs the closed loop from baseline and expects every vital
// to stay within its physiological range.
func normalResponse(ctx context.Context, cfg config.Config, p *report.Printer) Result {
	s := session.New(cfg)

	inBounds := true

	for i := range responseCycles {
		c := s.Step(ctx)

		if i%responseSampleEvery == 0 {
			p.Sample(c, cfg.Controller.TimeStepDuration())
		}

		if !cfg.Patient.Bounds.Contains(c.Next) {
			inBounds = false
		}
	}

	if !inBounds {
		return Result{Message: "vitals left the physiological range"}
	}

	return Result{Passed: true, Message: "vitals stayed within the physiological range"}
}

// hypoxemiaAlarm forces low saturation and expects the monitor to raise an alarm.
func hypoxemiaAlarm(ctx context.Context, cfg config.Config, _ *report.Printer) Result {
	s := session.New(cfg)

	v := s.Patient().Vitals()
	v.Saturation = forcedSaturation
	s.Patient().SetVitals(v)

	c := s.Step(ctx)

	if c.Report.Has(alarm.Hypoxemia) || c.Report.Has(alarm.CriticalHypoxemia) {
		return Result{Passed: true, Message: "alarm correctly triggered: " + c.Report.String()}
	}

	return Result{Message: "alarm should have triggered"}
}

// pidResponse forces a high heart rate and expects the loop to move it toward target.
func pidResponse(ctx context.Context, cfg config.Config, p *report.Printer) Result {
	s := session.New(cfg)

	v := s.Patient().Vitals()
	v.HeartRate = forcedHeartRate
	s.Patient().SetVitals(v)

	initial := s.Patient().Vitals().HeartRate

	for range pidCycles {
		s.Step(ctx)
	}

	final := s.Patient().Vitals().HeartRate
	target := cfg.Controller.TargetHeartRate

	p.Detail("Initial HR: %.1f bpm", initial)
	p.Detail("Final HR:   %.1f bpm", final)
	p.Detail("Target HR:  %g bpm", target)

	if math.Abs(final-target) < math.Abs(initial-target) {
		return Result{Passed: true, Message: "PID controller reduced HR toward target"}
	}

	return Result{Message: "PID controller did not improve HR"}
}
