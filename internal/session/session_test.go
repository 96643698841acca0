package session

import (
	"bytes"
	"context"
	"math"
	"testing"
	"testing/synctest"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"github.com/oshokin/infusion-controller/internal/config"
	"github.com/oshokin/infusion-controller/internal/domain/alarm"
	"github.com/oshokin/infusion-controller/internal/logger"
	"github.com/oshokin/infusion-controller/internal/physiology"
)

// seeded returns the reference configuration with a fixed noise seed.
func seeded(seed uint64) config.Config {
	cfg := *config.Default()
	cfg.Patient.Seed = seed

	return cfg
}

// TestNewUsesConfiguredSeed verifies seeding and identifiers.
func TestNewUsesConfiguredSeed(t *testing.T) {
	t.Parallel()

	s := New(seeded(42))
	require.Equal(t, uint64(42), s.Seed())
	require.NotEmpty(t, s.ID())

	require.NotZero(t, New(seeded(0)).Seed())
	require.Equal(t, "bed-7", New(seeded(1), WithID("bed-7")).ID())
	require.Zero(t, New(seeded(1), WithSource(physiology.NewSource(3))).Seed())
}

// TestClosedLoopConverges verifies the loop pulls a high heart rate toward target.
func TestClosedLoopConverges(t *testing.T) {
	t.Parallel()

	for seed := uint64(1); seed <= 25; seed++ {
		cfg := seeded(seed)
		s := New(cfg)

		start := s.Patient().Vitals()
		start.HeartRate = 90
		s.Patient().SetVitals(start)

		initialError := math.Abs(start.HeartRate - cfg.Controller.TargetHeartRate)

		for range 30 {
			s.Step(context.Background())
		}

		finalError := math.Abs(s.Patient().Vitals().HeartRate - cfg.Controller.TargetHeartRate)

		require.Less(t, finalError, initialError, "seed %d", seed)
		require.Less(t, finalError, 10.0, "seed %d", seed)
		require.Equal(t, 30, s.Cycles())
	}
}

// TestStepAppliesEmergencyStopBeforeDosing verifies the applied dose is the post-override command.
func TestStepAppliesEmergencyStopBeforeDosing(t *testing.T) {
	t.Parallel()

	s := New(seeded(1))
	s.Controller().SetCommand(100)

	v := s.Patient().Vitals()
	v.Saturation = 85
	s.Patient().SetVitals(v)

	cycle := s.Step(context.Background())

	require.Equal(t, 0, cycle.Index)
	require.True(t, cycle.Report.Has(alarm.CriticalHypoxemia))
	require.Zero(t, cycle.Command)
	require.Zero(t, s.Controller().Command())
	// The halved target is still reported for diagnostics.
	require.Positive(t, cycle.Target)
	require.Equal(t, s.Patient().Vitals(), cycle.Next)
}

// TestStepRecordsRateLimitedCommand verifies a normal cycle ramps the command.
func TestStepRecordsRateLimitedCommand(t *testing.T) {
	t.Parallel()

	s := New(seeded(1))

	v := s.Patient().Vitals()
	v.HeartRate = 95
	s.Patient().SetVitals(v)

	cycle := s.Step(context.Background())

	require.Equal(t, 12, cycle.Target)
	require.Equal(t, 5, cycle.Command)
	require.False(t, cycle.Report.Active())
	require.Equal(t, 5, cycle.Controller.Command)
}

// TestSessionsAreIsolated verifies two sessions never influence each other.
func TestSessionsAreIsolated(t *testing.T) {
	t.Parallel()

	a := New(seeded(11))
	b := New(seeded(11))

	v := a.Patient().Vitals()
	v.HeartRate = 110
	a.Patient().SetVitals(v)

	for range 10 {
		a.Step(context.Background())
	}

	require.Equal(t, 0, b.Cycles())
	require.Zero(t, b.Controller().Command())
	require.Equal(t, config.Default().Patient.Baseline, b.Patient().Vitals())

	c := New(seeded(11))
	for range 10 {
		require.Equal(t, c.Step(context.Background()), b.Step(context.Background()))
	}
}

// TestRunObservesEveryCycle verifies Run hands every cycle to the observer in order.
func TestRunObservesEveryCycle(t *testing.T) {
	t.Parallel()

	s := New(seeded(5))

	var indexes []int

	err := s.Run(context.Background(), 7, 0, func(c Cycle) {
		indexes = append(indexes, c.Index)
	})

	require.NoError(t, err)
	require.Equal(t, []int{0, 1, 2, 3, 4, 5, 6}, indexes)
	require.NoError(t, New(seeded(5)).Run(context.Background(), 3, 0, nil))
}

// TestRunStopsOnCanceledContext verifies cancellation ends the loop without running a cycle.
func TestRunStopsOnCanceledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s := New(seeded(5))

	err := s.Run(ctx, 10, 0, nil)
	require.ErrorIs(t, err, context.Canceled)
	require.Zero(t, s.Cycles())
}

// TestRunPacesCyclesByInterval verifies the wall-clock cadence with a fake clock.
func TestRunPacesCyclesByInterval(t *testing.T) {
	t.Parallel()

	synctest.Test(t, func(t *testing.T) {
		s := New(seeded(5))
		start := time.Now()

		require.NoError(t, s.Run(context.Background(), 3, time.Second, nil))
		require.Equal(t, 2*time.Second, time.Since(start))

		ctx, cancel := context.WithTimeout(context.Background(), 1500*time.Millisecond)
		defer cancel()

		paced := New(seeded(5))

		err := paced.Run(ctx, 5, time.Second, nil)
		require.ErrorIs(t, err, context.DeadlineExceeded)
		require.Equal(t, 2, paced.Cycles())
	})
}

// TestStepLogsAlarms verifies alarms are logged with the session fields.
func TestStepLogsAlarms(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	ctx := logger.ToContext(context.Background(), logger.NewWithSink(zapcore.AddSync(&buf), zapcore.DebugLevel))
	ctx = logger.WithKV(ctx, "session_id", "bed-1")

	s := New(seeded(2))

	v := s.Patient().Vitals()
	v.Saturation = 80
	s.Patient().SetVitals(v)
	s.Step(ctx)

	out := buf.String()
	require.Contains(t, out, "Cycle completed")
	require.Contains(t, out, "Critical alarm, infusion stopped")
	require.Contains(t, out, "CRITICAL HYPOXEMIA")
	require.Contains(t, out, "bed-1")
}
