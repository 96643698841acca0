package controller

import (
	"math"

	"github.com/oshokin/infusion-controller/internal/config"
	"github.com/oshokin/infusion-controller/internal/domain/vitals"
)

// State is the PID state after the last cycle.
type State struct {
	// Error is the normalized heart rate error of the last cycle.
	Error float64
	// Integral is the accumulated error, always within the anti-windup band.
	Integral float64
	// Derivative is the backward difference of the error.
	Derivative float64
	// LastError is the error used as the derivative basis on the next cycle.
	LastError float64
	// Output is the raw PID output.
	Output float64
	// Command is the last actuation value issued, always within [0, actuator max].
	Command int
}

// Controller is the PID controller of one session.
type Controller struct {
	// law holds the gains and setpoint.
	law config.Controller
	// actuator holds the command range and rate limit.
	actuator config.Actuator
	// saturationMin is the soft saturation minimum that halves the target.
	saturationMin float64
	// state is the mutable PID state.
	state State
}

// New creates a controller with zeroed state.
// The configuration is copied; later changes to cfg are not observed.
func New(cfg config.Config) *Controller {
	return &Controller{
		law:           cfg.Controller,
		actuator:      cfg.Actuator,
		saturationMin: cfg.Safety.SaturationMin,
	}
}

// ComputeTarget runs one step of the PID law and returns the target command.
//
// The target is the current command minus the truncated, scaled PID output,
// clamped to [0, safe max]. It is halved with truncation when saturation is
// below the soft minimum, the critical tier included.
func (c *Controller) ComputeTarget(v vitals.VitalSigns) int {
	var target int

	c.state, target = computeTarget(c.law, c.actuator, c.saturationMin, c.state, v)

	return target
}

// computeTarget is the pure form of ComputeTarget.
func computeTarget(
	law config.Controller,
	actuator config.Actuator,
	saturationMin float64,
	s State,
	v vitals.VitalSigns,
) (State, int) {
	s.Error = normalizedError(law.TargetHeartRate, v.HeartRate)

	// Anti-windup clamp happens before the output is computed.
	s.Integral += s.Error * law.TimeStep
	s.Integral = max(-law.IntegralLimit, min(law.IntegralLimit, s.Integral))

	s.Derivative = s.Error - s.LastError
	s.Output = law.Kp*s.Error + law.Ki*s.Integral + law.Kd*s.Derivative

	target := s.Command - correction(s.Output*law.OutputGain, actuator.Max)
	target = max(0, min(actuator.SafeMax, target))

	if v.Saturation < saturationMin {
		target /= 2
	}

	s.LastError = s.Error

	return s, target
}

// correction truncates the scaled output to a whole command change.
// It is bounded by ±ceiling, which already saturates the target clamp, and a
// NaN output means no change.
func correction(scaled float64, ceiling int) int {
	if math.IsNaN(scaled) {
		return 0
	}

	limit := float64(ceiling)

	return int(math.Trunc(max(-limit, min(limit, scaled))))
}

// normalizedError returns (target - measured) / target.
// A non-positive target or a non-finite measurement yields zero error.
func normalizedError(target, measured float64) float64 {
	if target <= 0 || math.IsNaN(measured) || math.IsInf(measured, 0) {
		return 0
	}

	return (target - measured) / target
}

// ApplyRateLimit moves the command toward target by at most one step and returns it.
// The command never overshoots the target.
func (c *Controller) ApplyRateLimit(target int) int {
	c.state.Command = rateLimit(c.state.Command, target, c.actuator.Step, c.actuator.Max)

	return c.state.Command
}

// rateLimit is the pure form of ApplyRateLimit.
func rateLimit(current, target, step, ceiling int) int {
	step = max(0, step)

	switch {
	case target > current:
		current += min(step, target-current)
	case target < current:
		current -= min(step, current-target)
	}

	return max(0, min(ceiling, current))
}

// EmergencyStop forces the command to zero immediately, bypassing the rate limiter.
func (c *Controller) EmergencyStop() {
	c.state.Command = 0
}

// SetCommand overrides the current command, clamped to [0, actuator max].
func (c *Controller) SetCommand(command int) {
	c.state.Command = max(0, min(c.actuator.Max, command))
}

// Command returns the last actuation value issued.
func (c *Controller) Command() int {
	return c.state.Command
}

// State returns a copy of the PID state.
func (c *Controller) State() State {
	return c.state
}

// Reset zeroes the PID state and the command.
func (c *Controller) Reset() {
	c.state = State{}
}
