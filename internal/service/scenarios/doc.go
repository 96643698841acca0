// Package scenarios runs the reference closed-loop scenarios: normal patient
// response, a simulated hypoxemia alarm and the PID response to a high heart
// rate. Each scenario builds its own session, so they never share state.
package scenarios
