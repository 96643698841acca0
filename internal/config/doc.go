// Package config defines the session configuration of the infusion controller
// and provides helpers to load, validate and save it in YAML format.
//
// The Config type groups the PID gains, actuator limits, safety thresholds,
// physiology model constants and driver settings. Components receive a copy at
// construction and never see later changes.
package config
