// Package safety evaluates vital signs against fixed physiological limits.
//
// Every check runs on every cycle and each violation is reported; the report
// is rebuilt from scratch each time. Critical hypoxemia is the one check that
// also acts: it forces the actuation command to zero through a Stopper.
package safety
