package safety

import (
	"fmt"

	"github.com/oshokin/infusion-controller/internal/config"
	"github.com/oshokin/infusion-controller/internal/domain/alarm"
	"github.com/oshokin/infusion-controller/internal/domain/vitals"
)

// Stopper forces the actuation command to zero.
type Stopper interface {
	EmergencyStop()
}

// Monitor checks vitals against the safety thresholds of one session.
type Monitor struct {
	// limits holds the alarm thresholds.
	limits config.Safety
	// stopper receives the emergency stop on critical hypoxemia.
	stopper Stopper
}

// NewMonitor creates a monitor bound to the actuator it may stop.
// A nil stopper disables the emergency action but keeps the reporting.
func NewMonitor(cfg config.Config, stopper Stopper) *Monitor {
	return &Monitor{
		limits:  cfg.Safety,
		stopper: stopper,
	}
}

// Evaluate runs every check in order (heart rate, pressure, respiratory rate,
// saturation) and returns the alarms raised. On critical hypoxemia it stops
// the actuator before returning.
func (m *Monitor) Evaluate(v vitals.VitalSigns) alarm.Report {
	var report alarm.Report

	checkRange(&report, "HR", v.HeartRate, m.limits.HeartRate, alarm.Bradycardia, alarm.Tachycardia)
	checkRange(&report, "MAP", v.MeanArterialPressure, m.limits.MeanArterialPressure,
		alarm.Hypotension, alarm.Hypertension)
	checkRange(&report, "RR", v.RespiratoryRate, m.limits.RespiratoryRate, alarm.Bradypnea, alarm.Tachypnea)

	switch {
	case v.Saturation < m.limits.SaturationCritical:
		report.Add(alarm.CriticalHypoxemia, alarm.Critical,
			belowReason(alarm.CriticalHypoxemia, "SpO2", v.Saturation, m.limits.SaturationCritical))

		if m.stopper != nil {
			m.stopper.EmergencyStop()
		}
	case v.Saturation < m.limits.SaturationMin:
		report.Add(alarm.Hypoxemia, alarm.Advisory,
			belowReason(alarm.Hypoxemia, "SpO2", v.Saturation, m.limits.SaturationMin))
	}

	return report
}

// checkRange adds low or high when value leaves limits.
func checkRange(
	report *alarm.Report,
	label string,
	value float64,
	limits vitals.Range,
	low, high alarm.Condition,
) {
	switch {
	case value < limits.Min:
		report.Add(low, alarm.Advisory, belowReason(low, label, value, limits.Min))
	case value > limits.Max:
		report.Add(high, alarm.Advisory, fmt.Sprintf("%s: %s=%.1f > %g", high, label, value, limits.Max))
	}
}

func belowReason(condition alarm.Condition, label string, value, limit float64) string {
	return fmt.Sprintf("%s: %s=%.1f < %g", condition, label, value, limit)
}
