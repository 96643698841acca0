package safety

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/oshokin/infusion-controller/internal/config"
	"github.com/oshokin/infusion-controller/internal/controller"
	"github.com/oshokin/infusion-controller/internal/domain/alarm"
	"github.com/oshokin/infusion-controller/internal/domain/vitals"
)

// fakeStopper counts emergency stops.
type fakeStopper struct {
	// stops is the number of EmergencyStop calls.
	stops int
}

// EmergencyStop records the call.
func (f *fakeStopper) EmergencyStop() { f.stops++ }

// nominal returns vitals inside every safety range.
func nominal() vitals.VitalSigns {
	return vitals.VitalSigns{
		HeartRate:            70,
		MeanArterialPressure: 85,
		RespiratoryRate:      15,
		Saturation:           98,
	}
}

// TestEvaluateSingleConditions checks each threshold in isolation.
func TestEvaluateSingleConditions(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name      string
		mutate    func(v *vitals.VitalSigns)
		condition alarm.Condition
		reason    string
	}{
		{"bradycardia", func(v *vitals.VitalSigns) { v.HeartRate = 35 }, alarm.Bradycardia, "BRADYCARDIA: HR=35.0 < 40"},
		{"tachycardia", func(v *vitals.VitalSigns) { v.HeartRate = 125 }, alarm.Tachycardia, "TACHYCARDIA: HR=125.0 > 120"},
		{"hypotension", func(v *vitals.VitalSigns) { v.MeanArterialPressure = 55 }, alarm.Hypotension,
			"HYPOTENSION: MAP=55.0 < 60"},
		{"hypertension", func(v *vitals.VitalSigns) { v.MeanArterialPressure = 115 }, alarm.Hypertension,
			"HYPERTENSION: MAP=115.0 > 110"},
		{"bradypnea", func(v *vitals.VitalSigns) { v.RespiratoryRate = 6 }, alarm.Bradypnea, "BRADYPNEA: RR=6.0 < 8"},
		{"tachypnea", func(v *vitals.VitalSigns) { v.RespiratoryRate = 28 }, alarm.Tachypnea, "TACHYPNEA: RR=28.0 > 25"},
		{"hypoxemia", func(v *vitals.VitalSigns) { v.Saturation = 90 }, alarm.Hypoxemia, "HYPOXEMIA: SpO2=90.0 < 92"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			stopper := new(fakeStopper)
			m := NewMonitor(*config.Default(), stopper)

			v := nominal()
			tc.mutate(&v)

			report := m.Evaluate(v)

			require.True(t, report.Active())
			require.Equal(t, []string{tc.reason}, report.Reasons())
			require.True(t, report.Has(tc.condition))
			require.False(t, report.Critical())
			require.Zero(t, stopper.stops)
		})
	}
}

// TestCriticalHypoxemiaStopsInfusion verifies the check itself zeroes the command.
func TestCriticalHypoxemiaStopsInfusion(t *testing.T) {
	t.Parallel()

	cfg := *config.Default()
	ctrl := controller.New(cfg)
	ctrl.SetCommand(100)

	m := NewMonitor(cfg, ctrl)

	v := nominal()
	v.Saturation = 85

	report := m.Evaluate(v)

	require.True(t, report.Active())
	require.True(t, report.Critical())
	require.True(t, report.Has(alarm.CriticalHypoxemia))
	require.False(t, report.Has(alarm.Hypoxemia))
	require.Equal(t, "CRITICAL HYPOXEMIA: SpO2=85.0 < 88", report.String())
	require.Zero(t, ctrl.Command())
}

// TestNominalVitalsRaiseNothing verifies an empty report for healthy vitals.
func TestNominalVitalsRaiseNothing(t *testing.T) {
	t.Parallel()

	stopper := new(fakeStopper)
	m := NewMonitor(*config.Default(), stopper)

	report := m.Evaluate(nominal())

	require.False(t, report.Active())
	require.Empty(t, report.Reasons())
	require.Empty(t, report.String())
	require.Zero(t, stopper.stops)

	// Bounds themselves are not violations.
	edge := vitals.VitalSigns{HeartRate: 40, MeanArterialPressure: 110, RespiratoryRate: 8, Saturation: 92}
	require.False(t, m.Evaluate(edge).Active())
}

// TestSimultaneousViolationsAreAllReported verifies checks do not short-circuit and keep order.
func TestSimultaneousViolationsAreAllReported(t *testing.T) {
	t.Parallel()

	m := NewMonitor(*config.Default(), new(fakeStopper))

	report := m.Evaluate(vitals.VitalSigns{
		HeartRate:            125,
		MeanArterialPressure: 115,
		RespiratoryRate:      28,
		Saturation:           90,
	})

	require.GreaterOrEqual(t, len(report.Reasons()), 2)
	require.Equal(t, []alarm.Condition{
		alarm.Tachycardia,
		alarm.Hypertension,
		alarm.Tachypnea,
		alarm.Hypoxemia,
	}, conditions(report))
	require.Equal(t,
		"TACHYCARDIA: HR=125.0 > 120 | HYPERTENSION: MAP=115.0 > 110 | TACHYPNEA: RR=28.0 > 25 | HYPOXEMIA: SpO2=90.0 < 92",
		report.String())
}

// TestReportIsNotLatched verifies an alarm clears once its condition clears.
func TestReportIsNotLatched(t *testing.T) {
	t.Parallel()

	stopper := new(fakeStopper)
	m := NewMonitor(*config.Default(), stopper)

	v := nominal()
	v.Saturation = 86
	require.True(t, m.Evaluate(v).Critical())
	require.Equal(t, 1, stopper.stops)

	require.False(t, m.Evaluate(nominal()).Active())
	require.Equal(t, 1, stopper.stops)
}

// TestNilStopperStillReports verifies the monitor works without an actuator.
func TestNilStopperStillReports(t *testing.T) {
	t.Parallel()

	m := NewMonitor(*config.Default(), nil)

	v := nominal()
	v.Saturation = 80

	require.True(t, m.Evaluate(v).Has(alarm.CriticalHypoxemia))
}

func conditions(r alarm.Report) []alarm.Condition {
	out := make([]alarm.Condition, 0, len(r.Alarms))
	for _, a := range r.Alarms {
		out = append(out, a.Condition)
	}

	return out
}
