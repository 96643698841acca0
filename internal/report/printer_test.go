package report

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/oshokin/infusion-controller/internal/controller"
	"github.com/oshokin/infusion-controller/internal/domain/alarm"
	"github.com/oshokin/infusion-controller/internal/domain/vitals"
	"github.com/oshokin/infusion-controller/internal/session"
)

// sampleCycle returns a cycle with fixed values.
func sampleCycle() session.Cycle {
	return session.Cycle{
		Index: 2,
		Vitals: vitals.VitalSigns{
			HeartRate:            95,
			MeanArterialPressure: 85,
			RespiratoryRate:      15,
			Saturation:           98,
		},
		Target:          12,
		Command:         5,
		Controller:      controller.State{Error: -0.357, Output: -1.25},
		AnesthesiaLevel: 0.25,
	}
}

// TestCycleNormal verifies the layout of a cycle without alarms.
func TestCycleNormal(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	NewPrinter(&buf, WithoutColor()).Cycle(sampleCycle(), 60, time.Second)

	out := buf.String()
	require.Contains(t, out, "--- Update 3/60 (t=2.0s) ---")
	require.Contains(t, out, "HR:     95.0 bpm")
	require.Contains(t, out, "PID Output:      -1.250")
	require.Contains(t, out, "Infusion Rate:    5 (target 12)")
	require.Contains(t, out, "Anesthesia Lvl:  0.25")
	require.Contains(t, out, "Status: Normal")
	require.NotContains(t, out, "\x1b[")
}

// TestCycleAlarms verifies advisory and critical alarms are rendered with their reasons.
func TestCycleAlarms(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	p := NewPrinter(&buf, WithoutColor())

	c := sampleCycle()
	c.Report.Add(alarm.Hypoxemia, alarm.Advisory, "HYPOXEMIA: SpO2=90.0 < 92")
	p.Cycle(c, 10, 0)
	require.Contains(t, buf.String(), "ALARM: HYPOXEMIA: SpO2=90.0 < 92")

	buf.Reset()

	c.Report = alarm.Report{}
	c.Report.Add(alarm.Bradycardia, alarm.Advisory, "BRADYCARDIA: HR=35.0 < 40")
	c.Report.Add(alarm.CriticalHypoxemia, alarm.Critical, "CRITICAL HYPOXEMIA: SpO2=85.0 < 88")
	p.Cycle(c, 10, 0)
	require.Contains(t, buf.String(),
		"ALARM (critical, infusion stopped): BRADYCARDIA: HR=35.0 < 40 | CRITICAL HYPOXEMIA: SpO2=85.0 < 88")
}

// TestBannerSampleOutcome verifies the auxiliary lines.
func TestBannerSampleOutcome(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	p := NewPrinter(&buf, WithoutColor())
	p.Banner("Simulation Complete")
	p.Section("Test 1")
	p.Sample(sampleCycle(), time.Second)
	p.Detail("Initial HR: %.1f bpm", 95.0)
	p.Outcome(true, "alarm triggered")
	p.Outcome(false, "no improvement")

	out := buf.String()
	require.Contains(t, out, "Simulation Complete")
	require.Contains(t, out, "t=2s: HR=95.0, MAP=85.0, Rate=5")
	require.Contains(t, out, "Initial HR: 95.0 bpm")
	require.Contains(t, out, "PASS: alarm triggered")
	require.Contains(t, out, "FAIL: no improvement")
}
