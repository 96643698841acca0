package physiology

import (
	"github.com/oshokin/infusion-controller/internal/config"
	"github.com/oshokin/infusion-controller/internal/domain/vitals"
)

// State is the full physiological state of the simulated patient.
type State struct {
	// AnesthesiaLevel is the accumulated drug effect, always in [0, 1].
	AnesthesiaLevel float64
	// Vitals is the snapshot produced by the last update.
	Vitals vitals.VitalSigns
}

// Initial returns the awake patient: zero anesthesia and baseline vitals.
func Initial(cfg config.Patient) State {
	return State{
		AnesthesiaLevel: 0,
		Vitals:          cfg.Bounds.Clamp(cfg.Baseline),
	}
}

// Advance computes the state after one cycle at the given dose.
// The dose is on the actuator scale [0, maxDose] and is clamped into it.
// Advance never mutates its input and only reads from noise.
func Advance(cfg config.Patient, maxDose int, prev State, dose int, noise Source) State {
	level := prev.AnesthesiaLevel + normalizeDose(dose, maxDose)*cfg.AccumulationGain
	level -= cfg.DecayRate
	level = clampUnit(level)

	saturationEffect := 0.0
	if level > cfg.SaturationThreshold {
		saturationEffect = cfg.Sensitivity.Saturation * (level - cfg.SaturationThreshold)
	}

	next := vitals.VitalSigns{
		HeartRate:            cfg.Baseline.HeartRate + cfg.Sensitivity.HeartRate*level,
		MeanArterialPressure: cfg.Baseline.MeanArterialPressure + cfg.Sensitivity.MeanArterialPressure*level,
		RespiratoryRate:      cfg.Baseline.RespiratoryRate + cfg.Sensitivity.RespiratoryRate*level,
		Saturation:           cfg.Baseline.Saturation + saturationEffect,
	}

	next.HeartRate += uniform(noise, cfg.Noise.HeartRate)
	next.MeanArterialPressure += uniform(noise, cfg.Noise.MeanArterialPressure)
	next.RespiratoryRate += uniform(noise, cfg.Noise.RespiratoryRate)
	next.Saturation += uniform(noise, cfg.Noise.Saturation)

	return State{
		AnesthesiaLevel: level,
		Vitals:          cfg.Bounds.Clamp(next),
	}
}

// normalizeDose maps a dose on [0, maxDose] to [0, 1].
func normalizeDose(dose, maxDose int) float64 {
	if maxDose <= 0 {
		return 0
	}

	dose = max(0, min(maxDose, dose))

	return float64(dose) / float64(maxDose)
}

func clampUnit(v float64) float64 {
	return max(0, min(1, v))
}

// Model is a stateful wrapper around Advance for a single patient session.
type Model struct {
	// cfg holds the physiology constants.
	cfg config.Patient
	// maxDose is the actuator maximum used to normalize doses.
	maxDose int
	// noise perturbs the vitals each cycle.
	noise Source
	// state is the current physiological state.
	state State
}

// NewModel creates a model at baseline.
// The configuration is copied; later changes to cfg are not observed.
func NewModel(cfg config.Config, noise Source) *Model {
	return &Model{
		cfg:     cfg.Patient,
		maxDose: cfg.Actuator.Max,
		noise:   noise,
		state:   Initial(cfg.Patient),
	}
}

// Update applies one cycle at the given dose and returns the new vitals.
func (m *Model) Update(dose int) vitals.VitalSigns {
	m.state = Advance(m.cfg, m.maxDose, m.state, dose, m.noise)

	return m.state.Vitals
}

// Vitals returns the current snapshot.
func (m *Model) Vitals() vitals.VitalSigns {
	return m.state.Vitals
}

// AnesthesiaLevel returns the current hidden drug effect.
func (m *Model) AnesthesiaLevel() float64 {
	return m.state.AnesthesiaLevel
}

// State returns a copy of the current state.
func (m *Model) State() State {
	return m.state
}

// SetVitals replaces the current snapshot, clamped to the physiological bounds.
// The anesthesia level is left untouched, so the next Update recomputes vitals
// from it. Used to force starting conditions.
func (m *Model) SetVitals(v vitals.VitalSigns) {
	m.state.Vitals = m.cfg.Bounds.Clamp(v)
}
