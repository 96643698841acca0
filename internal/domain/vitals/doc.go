// Package vitals contains the patient measurement types shared by the
// physiology model, the controller and the safety monitor.
//
// It defines VitalSigns (one snapshot of the four monitored measurements) and
// Range (a closed interval used both for physiological clamping and for alarm
// thresholds).
package vitals
