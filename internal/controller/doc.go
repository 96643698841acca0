// Package controller implements the PID control law that turns the patient's
// heart rate into an infusion command, and the rate limiter that ramps the
// command toward that target.
//
// The relationship is inverse: a heart rate above target raises the dose and a
// heart rate below target lowers it.
package controller
