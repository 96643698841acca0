// Package alarm contains the alarm classification produced by the safety
// monitor on every control cycle.
//
// It defines Condition (a named physiological violation), Severity (advisory
// or critical), Alarm (one active condition with its reason) and Report (the
// ordered set of alarms raised in a single cycle). Reports are rebuilt from
// scratch each cycle; nothing here latches.
package alarm
