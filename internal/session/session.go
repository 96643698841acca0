package session

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/oshokin/infusion-controller/internal/config"
	"github.com/oshokin/infusion-controller/internal/controller"
	"github.com/oshokin/infusion-controller/internal/domain/alarm"
	"github.com/oshokin/infusion-controller/internal/domain/vitals"
	"github.com/oshokin/infusion-controller/internal/logger"
	"github.com/oshokin/infusion-controller/internal/physiology"
	"github.com/oshokin/infusion-controller/internal/safety"
)

// Cycle records one iteration of the control loop.
type Cycle struct {
	// Index is the zero-based cycle number within the session.
	Index int
	// Vitals are the measurements the cycle acted on.
	Vitals vitals.VitalSigns
	// Target is the rate-unlimited controller target.
	Target int
	// Command is the command applied to the patient, after any emergency stop.
	Command int
	// Report holds the alarms raised for Vitals.
	Report alarm.Report
	// Controller is the PID state at the end of the cycle.
	Controller controller.State
	// AnesthesiaLevel is the patient's hidden state after the dose was applied.
	AnesthesiaLevel float64
	// Next are the vitals produced by the patient for the following cycle.
	Next vitals.VitalSigns
}

// Session is one isolated closed-loop run.
type Session struct {
	// id identifies the session in logs.
	id string
	// seed is the seed of the noise source, zero when a custom source is injected.
	seed uint64
	// patient simulates the physiological response.
	patient *physiology.Model
	// controller computes and rate-limits the command.
	controller *controller.Controller
	// monitor raises alarms and stops the controller on critical hypoxemia.
	monitor *safety.Monitor
	// cycles is the number of completed cycles.
	cycles int
}

// Option configures a session.
type Option func(*options)

type options struct {
	id     string
	source physiology.Source
}

// WithID overrides the generated session identifier.
func WithID(id string) Option {
	return func(o *options) {
		if id != "" {
			o.id = id
		}
	}
}

// WithSource injects the noise source, ignoring the configured seed.
func WithSource(src physiology.Source) Option {
	return func(o *options) {
		o.source = src
	}
}

// New creates a session at baseline.
// Without WithSource the noise is seeded from cfg.Patient.Seed, or from the
// clock when the seed is zero; Seed reports the value used.
func New(cfg config.Config, opts ...Option) *Session {
	o := &options{id: uuid.NewString()}
	for _, opt := range opts {
		opt(o)
	}

	s := &Session{id: o.id}

	source := o.source
	if source == nil {
		s.seed = cfg.Patient.Seed
		if s.seed == 0 {
			s.seed = uint64(time.Now().UnixNano()) //nolint:gosec // Clock values are non-negative.
		}

		source = physiology.NewSource(s.seed)
	}

	s.patient = physiology.NewModel(cfg, source)
	s.controller = controller.New(cfg)
	s.monitor = safety.NewMonitor(cfg, s.controller)

	return s
}

// ID returns the session identifier.
func (s *Session) ID() string {
	return s.id
}

// Seed returns the noise seed, or zero when a source was injected.
func (s *Session) Seed() uint64 {
	return s.seed
}

// Patient exposes the physiology model, e.g. to force starting vitals.
func (s *Session) Patient() *physiology.Model {
	return s.patient
}

// Controller exposes the PID controller, e.g. to seed a starting command.
func (s *Session) Controller() *controller.Controller {
	return s.controller
}

// Cycles returns the number of completed cycles.
func (s *Session) Cycles() int {
	return s.cycles
}

// Step runs one control cycle.
func (s *Session) Step(ctx context.Context) Cycle {
	current := s.patient.Vitals()

	target := s.controller.ComputeTarget(current)
	s.controller.ApplyRateLimit(target)

	report := s.monitor.Evaluate(current)

	command := s.controller.Command()
	next := s.patient.Update(command)

	cycle := Cycle{
		Index:           s.cycles,
		Vitals:          current,
		Target:          target,
		Command:         command,
		Report:          report,
		Controller:      s.controller.State(),
		AnesthesiaLevel: s.patient.AnesthesiaLevel(),
		Next:            next,
	}

	s.cycles++

	logCycle(ctx, &cycle)

	return cycle
}

// Run executes cycles steps, waiting interval between them, and hands every
// cycle to observe. A zero interval runs back to back. It returns ctx.Err()
// when the context ends before all cycles completed.
func (s *Session) Run(ctx context.Context, cycles int, interval time.Duration, observe func(Cycle)) error {
	ctx = logger.WithKV(logger.WithName(ctx, "session"), "session_id", s.id)

	var tick <-chan time.Time

	if interval > 0 {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		tick = ticker.C
	}

	for i := range cycles {
		if i > 0 && tick != nil {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-tick:
			}
		}

		if err := ctx.Err(); err != nil {
			return err
		}

		cycle := s.Step(ctx)
		if observe != nil {
			observe(cycle)
		}
	}

	return nil
}

func logCycle(ctx context.Context, c *Cycle) {
	logger.DebugKV(ctx, "Cycle completed",
		"cycle", c.Index,
		"heart_rate", c.Vitals.HeartRate,
		"target", c.Target,
		"command", c.Command,
		"pid_error", c.Controller.Error,
		"integral", c.Controller.Integral,
		"anesthesia_level", c.AnesthesiaLevel,
	)

	switch {
	case c.Report.Critical():
		logger.ErrorKV(ctx, "Critical alarm, infusion stopped",
			"cycle", c.Index, "command", c.Command, "reasons", c.Report.Reasons())
	case c.Report.Active():
		logger.WarnKV(ctx, "Alarm raised", "cycle", c.Index, "reasons", c.Report.Reasons())
	}
}
