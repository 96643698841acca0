package alarm

import "strings"

// Condition names a physiological violation detected by the safety monitor.
type Condition string

const (
	// Bradycardia means the heart rate is below its lower bound.
	Bradycardia Condition = "BRADYCARDIA"
	// Tachycardia means the heart rate is above its upper bound.
	Tachycardia Condition = "TACHYCARDIA"
	// Hypotension means the mean arterial pressure is below its lower bound.
	Hypotension Condition = "HYPOTENSION"
	// Hypertension means the mean arterial pressure is above its upper bound.
	Hypertension Condition = "HYPERTENSION"
	// Bradypnea means the respiratory rate is below its lower bound.
	Bradypnea Condition = "BRADYPNEA"
	// Tachypnea means the respiratory rate is above its upper bound.
	Tachypnea Condition = "TACHYPNEA"
	// Hypoxemia means saturation is below the soft minimum.
	Hypoxemia Condition = "HYPOXEMIA"
	// CriticalHypoxemia means saturation is below the critical minimum.
	CriticalHypoxemia Condition = "CRITICAL HYPOXEMIA"
)

// Severity is the tier of an alarm.
type Severity int

const (
	// Advisory alarms are reported but do not force any action.
	Advisory Severity = iota
	// Critical alarms come with an emergency action.
	Critical
)

// String returns a lowercase name of the tier.
func (s Severity) String() string {
	switch s {
	case Advisory:
		return "advisory"
	case Critical:
		return "critical"
	default:
		return "unknown"
	}
}

// Alarm is one active condition.
type Alarm struct {
	// Condition identifies the violation.
	Condition Condition
	// Severity is the tier of the violation.
	Severity Severity
	// Reason is a human-readable description including the measured value.
	Reason string
}

// ReasonSeparator joins reasons in Report.String.
const ReasonSeparator = " | "

// Report is the set of alarms raised for one cycle, in check order.
type Report struct {
	// Alarms lists the raised alarms in the order they were checked.
	Alarms []Alarm
}

// Add appends an alarm to the report.
func (r *Report) Add(condition Condition, severity Severity, reason string) {
	r.Alarms = append(r.Alarms, Alarm{
		Condition: condition,
		Severity:  severity,
		Reason:    reason,
	})
}

// Active reports whether at least one alarm was raised.
func (r Report) Active() bool {
	return len(r.Alarms) > 0
}

// Critical reports whether any raised alarm is critical.
func (r Report) Critical() bool {
	for _, a := range r.Alarms {
		if a.Severity == Critical {
			return true
		}
	}

	return false
}

// Has reports whether the given condition was raised.
func (r Report) Has(condition Condition) bool {
	for _, a := range r.Alarms {
		if a.Condition == condition {
			return true
		}
	}

	return false
}

// Reasons returns the reason strings in check order.
// The result is empty, not nil, when no alarm is active.
func (r Report) Reasons() []string {
	reasons := make([]string, 0, len(r.Alarms))
	for _, a := range r.Alarms {
		reasons = append(reasons, a.Reason)
	}

	return reasons
}

// String joins all reasons with ReasonSeparator.
func (r Report) String() string {
	return strings.Join(r.Reasons(), ReasonSeparator)
}

// Clone returns a copy of the report that does not share the alarm slice.
func (r Report) Clone() Report {
	if r.Alarms == nil {
		return Report{}
	}

	alarms := make([]Alarm, len(r.Alarms))
	copy(alarms, r.Alarms)

	return Report{Alarms: alarms}
}
