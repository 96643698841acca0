package config

import (
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/multierr"
	"gopkg.in/yaml.v3"

	"github.com/oshokin/infusion-controller/internal/domain/vitals"
	"github.com/oshokin/infusion-controller/internal/logger"
)

// Config holds every constant of a control session.
type Config struct {
	// Controller holds the PID law settings.
	Controller Controller `yaml:"controller"`
	// Actuator holds the command range and rate limit.
	Actuator Actuator `yaml:"actuator"`
	// Safety holds the alarm thresholds.
	Safety Safety `yaml:"safety"`
	// Patient holds the physiology model constants.
	Patient Patient `yaml:"patient"`
	// Session holds the driver settings.
	Session Session `yaml:"session"`
}

// Controller configures the PID control law.
type Controller struct {
	// TargetHeartRate is the heart rate setpoint in beats per minute.
	TargetHeartRate float64 `yaml:"target_heart_rate"`
	// Kp is the proportional gain.
	Kp float64 `yaml:"kp"`
	// Ki is the integral gain.
	Ki float64 `yaml:"ki"`
	// Kd is the derivative gain.
	Kd float64 `yaml:"kd"`
	// IntegralLimit bounds the integral accumulator to [-IntegralLimit, IntegralLimit].
	IntegralLimit float64 `yaml:"integral_limit"`
	// OutputGain scales the PID output into command units.
	OutputGain float64 `yaml:"output_gain"`
	// TimeStep is the assumed duration of one cycle in reference units.
	TimeStep float64 `yaml:"time_step"`
}

// TimeStepDuration returns the cycle time step as a duration, taking TimeStep in seconds.
func (c Controller) TimeStepDuration() time.Duration {
	return time.Duration(c.TimeStep * float64(time.Second))
}

// Actuator configures the command range. The floor is always 0.
type Actuator struct {
	// Max is the absolute actuator maximum.
	Max int `yaml:"max"`
	// SafeMax caps the controller target and must stay below Max.
	SafeMax int `yaml:"safe_max"`
	// Step is the largest command change allowed per cycle.
	Step int `yaml:"step"`
}

// Safety configures the alarm thresholds.
type Safety struct {
	// HeartRate is the acceptable heart rate range.
	HeartRate vitals.Range `yaml:"heart_rate"`
	// MeanArterialPressure is the acceptable pressure range.
	MeanArterialPressure vitals.Range `yaml:"pressure"`
	// RespiratoryRate is the acceptable respiratory rate range.
	RespiratoryRate vitals.Range `yaml:"respiratory_rate"`
	// SaturationMin is the soft saturation minimum (advisory hypoxemia).
	SaturationMin float64 `yaml:"saturation_min"`
	// SaturationCritical is the critical saturation minimum (emergency stop).
	SaturationCritical float64 `yaml:"saturation_critical"`
}

// Patient configures the physiology model.
type Patient struct {
	// Baseline holds the awake patient's vitals.
	Baseline vitals.VitalSigns `yaml:"baseline"`
	// Sensitivity holds the per-vital change at full anesthesia level.
	// Saturation sensitivity applies only above SaturationThreshold.
	Sensitivity vitals.VitalSigns `yaml:"sensitivity"`
	// SaturationThreshold is the anesthesia level above which saturation falls.
	SaturationThreshold float64 `yaml:"saturation_threshold"`
	// AccumulationGain converts a normalized dose into anesthesia level per cycle.
	AccumulationGain float64 `yaml:"accumulation_gain"`
	// DecayRate is the anesthesia level eliminated per cycle.
	DecayRate float64 `yaml:"decay_rate"`
	// Noise holds the half-width of the uniform perturbation per vital.
	Noise vitals.VitalSigns `yaml:"noise"`
	// Bounds holds the physiological clamp ranges.
	Bounds vitals.Bounds `yaml:"bounds"`
	// Seed seeds the noise source. Zero picks a seed at session start.
	Seed uint64 `yaml:"seed"`
}

// Session configures the control cycle driver.
type Session struct {
	// Cycles is the number of control cycles to run.
	Cycles int `yaml:"cycles"`
	// Interval is the wall-clock time between cycles. Zero runs cycles back to back.
	Interval time.Duration `yaml:"interval"`
	// LogLevel is the zap level name.
	LogLevel string `yaml:"log_level"`
}

const (
	// DefaultConfigFilename is the filename written by `config init`.
	DefaultConfigFilename = "infusion-settings.yaml"

	// DefaultFilePermissions is the default file permission for config files.
	DefaultFilePermissions = 0o600

	// MaxOutputGain is the largest accepted controller.output_gain.
	MaxOutputGain = 1000
)

var (
	// errConfigIsNotSet is returned when a nil configuration is provided.
	errConfigIsNotSet = errors.New("configuration is not set")
	// ErrInvalid wraps every validation failure.
	ErrInvalid = errors.New("invalid configuration")
)

// Default returns the reference configuration.
func Default() *Config {
	return &Config{
		Controller: Controller{
			TargetHeartRate: 70,
			Kp:              2.0,
			Ki:              0.5,
			Kd:              1.0,
			IntegralLimit:   10.0,
			OutputGain:      10,
			TimeStep:        1.0,
		},
		Actuator: Actuator{
			Max:     180,
			SafeMax: 120,
			Step:    5,
		},
		Safety: Safety{
			HeartRate:            vitals.Range{Min: 40, Max: 120},
			MeanArterialPressure: vitals.Range{Min: 60, Max: 110},
			RespiratoryRate:      vitals.Range{Min: 8, Max: 25},
			SaturationMin:        92,
			SaturationCritical:   88,
		},
		Patient: Patient{
			Baseline: vitals.VitalSigns{
				HeartRate:            75,
				MeanArterialPressure: 90,
				RespiratoryRate:      16,
				Saturation:           98,
			},
			Sensitivity: vitals.VitalSigns{
				HeartRate:            -30,
				MeanArterialPressure: -20,
				RespiratoryRate:      -6,
				Saturation:           -5,
			},
			SaturationThreshold: 0.7,
			AccumulationGain:    0.1,
			DecayRate:           0.05,
			Noise: vitals.VitalSigns{
				HeartRate:            2,
				MeanArterialPressure: 3,
				RespiratoryRate:      1,
				Saturation:           0.5,
			},
			Bounds: vitals.Bounds{
				HeartRate:            vitals.Range{Min: 30, Max: 150},
				MeanArterialPressure: vitals.Range{Min: 40, Max: 140},
				RespiratoryRate:      vitals.Range{Min: 4, Max: 30},
				Saturation:           vitals.Range{Min: 85, Max: 100},
			},
		},
		Session: Session{
			Cycles:   60,
			Interval: time.Second,
			LogLevel: "info",
		},
	}
}

// Load reads configuration from the provided path on top of Default and validates it.
// An empty path returns the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		return cfg, nil
	}

	contents, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("read settings: %w", err)
	}

	if err := yaml.Unmarshal(contents, cfg); err != nil {
		return nil, fmt.Errorf("unmarshal settings: %w", err)
	}

	if err := Validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Save writes the configuration to the provided path.
func Save(path string, cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	if path == "" {
		path = DefaultConfigFilename
	}

	if err := Validate(cfg); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}

	// Restrict permissions.
	if err := os.WriteFile(filepath.Clean(path), data, DefaultFilePermissions); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}

	return nil
}

// Validate checks the configuration and reports every problem found.
//
//nolint:cyclop // A flat list of independent checks reads better than helpers.
func Validate(cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	var errs error

	check := func(ok bool, format string, args ...any) {
		if !ok {
			errs = multierr.Append(errs, fmt.Errorf(format, args...))
		}
	}

	for _, f := range floatFields(cfg) {
		check(!math.IsNaN(f.value) && !math.IsInf(f.value, 0), "%s must be a finite number, got %v", f.name, f.value)
	}

	c := cfg.Controller
	check(c.OutputGain >= 0 && c.OutputGain <= MaxOutputGain,
		"controller.output_gain must be in [0, %d], got %v", MaxOutputGain, c.OutputGain)
	check(c.TargetHeartRate > 0, "controller.target_heart_rate must be positive, got %v", c.TargetHeartRate)
	check(c.IntegralLimit >= 0, "controller.integral_limit must not be negative, got %v", c.IntegralLimit)
	check(c.TimeStep > 0, "controller.time_step must be positive, got %v", c.TimeStep)

	a := cfg.Actuator
	check(a.Max > 0, "actuator.max must be positive, got %d", a.Max)
	check(a.SafeMax >= 0 && a.SafeMax < a.Max, "actuator.safe_max must be in [0, max), got %d", a.SafeMax)
	check(a.Step > 0, "actuator.step must be positive, got %d", a.Step)

	s := cfg.Safety
	check(s.HeartRate.Valid(), "safety.heart_rate range is inverted")
	check(s.MeanArterialPressure.Valid(), "safety.pressure range is inverted")
	check(s.RespiratoryRate.Valid(), "safety.respiratory_rate range is inverted")
	check(s.SaturationCritical < s.SaturationMin,
		"safety.saturation_critical (%v) must be below saturation_min (%v)", s.SaturationCritical, s.SaturationMin)

	p := cfg.Patient
	check(p.SaturationThreshold >= 0 && p.SaturationThreshold <= 1,
		"patient.saturation_threshold must be in [0, 1], got %v", p.SaturationThreshold)
	check(p.AccumulationGain >= 0 && p.AccumulationGain <= 1,
		"patient.accumulation_gain must be in [0, 1], got %v", p.AccumulationGain)
	check(p.DecayRate >= 0 && p.DecayRate <= 1, "patient.decay_rate must be in [0, 1], got %v", p.DecayRate)
	check(p.Noise.HeartRate >= 0 && p.Noise.MeanArterialPressure >= 0 &&
		p.Noise.RespiratoryRate >= 0 && p.Noise.Saturation >= 0, "patient.noise must not be negative")
	check(p.Bounds.HeartRate.Valid() && p.Bounds.MeanArterialPressure.Valid() &&
		p.Bounds.RespiratoryRate.Valid() && p.Bounds.Saturation.Valid(), "patient.bounds contain an inverted range")

	se := cfg.Session
	check(se.Cycles >= 0, "session.cycles must not be negative, got %d", se.Cycles)
	check(se.Interval >= 0, "session.interval must not be negative, got %v", se.Interval)

	if se.LogLevel != "" {
		_, ok := logger.ParseLogLevel(se.LogLevel)
		check(ok, "session.log_level %q is unknown", se.LogLevel)
	}

	if errs != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, errs)
	}

	return nil
}

// floatField names one numeric setting for validation messages.
type floatField struct {
	name  string
	value float64
}

// floatFields lists every floating-point setting of the controller, safety, and patient sections.
func floatFields(cfg *Config) []floatField {
	c, s, p := cfg.Controller, cfg.Safety, cfg.Patient

	fields := []floatField{
		{"controller.target_heart_rate", c.TargetHeartRate},
		{"controller.kp", c.Kp},
		{"controller.ki", c.Ki},
		{"controller.kd", c.Kd},
		{"controller.integral_limit", c.IntegralLimit},
		{"controller.output_gain", c.OutputGain},
		{"controller.time_step", c.TimeStep},
		{"safety.saturation_min", s.SaturationMin},
		{"safety.saturation_critical", s.SaturationCritical},
		{"patient.saturation_threshold", p.SaturationThreshold},
		{"patient.accumulation_gain", p.AccumulationGain},
		{"patient.decay_rate", p.DecayRate},
	}

	fields = appendRange(fields, "safety.heart_rate", s.HeartRate)
	fields = appendRange(fields, "safety.pressure", s.MeanArterialPressure)
	fields = appendRange(fields, "safety.respiratory_rate", s.RespiratoryRate)
	fields = appendVitals(fields, "patient.baseline", p.Baseline)
	fields = appendVitals(fields, "patient.sensitivity", p.Sensitivity)
	fields = appendVitals(fields, "patient.noise", p.Noise)
	fields = appendRange(fields, "patient.bounds.heart_rate", p.Bounds.HeartRate)
	fields = appendRange(fields, "patient.bounds.pressure", p.Bounds.MeanArterialPressure)
	fields = appendRange(fields, "patient.bounds.respiratory_rate", p.Bounds.RespiratoryRate)
	fields = appendRange(fields, "patient.bounds.saturation", p.Bounds.Saturation)

	return fields
}

func appendRange(fields []floatField, prefix string, r vitals.Range) []floatField {
	return append(fields,
		floatField{prefix + ".min", r.Min},
		floatField{prefix + ".max", r.Max},
	)
}

func appendVitals(fields []floatField, prefix string, v vitals.VitalSigns) []floatField {
	return append(fields,
		floatField{prefix + ".heart_rate", v.HeartRate},
		floatField{prefix + ".pressure", v.MeanArterialPressure},
		floatField{prefix + ".respiratory_rate", v.RespiratoryRate},
		floatField{prefix + ".saturation", v.Saturation},
	)
}
