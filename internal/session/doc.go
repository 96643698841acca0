// Package session drives the closed control loop for one patient.
//
// A Session owns one physiology model, one PID controller and one safety
// monitor bound to that controller. Each Step reads the current vitals,
// computes and rate-limits the target, evaluates safety (which may force the
// command to zero) and applies the resulting command to the patient.
// Sessions share no state with each other.
package session
