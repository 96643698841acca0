package vitals

import "math"

// VitalSigns is a snapshot of the monitored physiological measurements.
type VitalSigns struct {
	// HeartRate is measured in beats per minute.
	HeartRate float64 `yaml:"heart_rate"`
	// MeanArterialPressure is measured in mmHg.
	MeanArterialPressure float64 `yaml:"pressure"`
	// RespiratoryRate is measured in breaths per minute.
	RespiratoryRate float64 `yaml:"respiratory_rate"`
	// Saturation is the blood oxygen saturation (SpO2) in percent.
	Saturation float64 `yaml:"saturation"`
}

// Range is a closed interval [Min, Max].
type Range struct {
	// Min is the inclusive lower bound.
	Min float64 `yaml:"min"`
	// Max is the inclusive upper bound.
	Max float64 `yaml:"max"`
}

// Clamp returns v limited to the range. NaN maps to Min.
func (r Range) Clamp(v float64) float64 {
	if math.IsNaN(v) {
		return r.Min
	}

	return max(r.Min, min(r.Max, v))
}

// Contains reports whether v lies within the range, bounds included.
func (r Range) Contains(v float64) bool {
	return v >= r.Min && v <= r.Max
}

// Valid reports whether the range is not inverted.
func (r Range) Valid() bool {
	return r.Min <= r.Max
}

// Bounds holds one Range per vital sign.
type Bounds struct {
	// HeartRate limits heart rate.
	HeartRate Range `yaml:"heart_rate"`
	// MeanArterialPressure limits mean arterial pressure.
	MeanArterialPressure Range `yaml:"pressure"`
	// RespiratoryRate limits respiratory rate.
	RespiratoryRate Range `yaml:"respiratory_rate"`
	// Saturation limits oxygen saturation.
	Saturation Range `yaml:"saturation"`
}

// Clamp limits every field of v to its range.
func (b Bounds) Clamp(v VitalSigns) VitalSigns {
	return VitalSigns{
		HeartRate:            b.HeartRate.Clamp(v.HeartRate),
		MeanArterialPressure: b.MeanArterialPressure.Clamp(v.MeanArterialPressure),
		RespiratoryRate:      b.RespiratoryRate.Clamp(v.RespiratoryRate),
		Saturation:           b.Saturation.Clamp(v.Saturation),
	}
}

// Contains reports whether every field of v lies within its range.
func (b Bounds) Contains(v VitalSigns) bool {
	return b.HeartRate.Contains(v.HeartRate) &&
		b.MeanArterialPressure.Contains(v.MeanArterialPressure) &&
		b.RespiratoryRate.Contains(v.RespiratoryRate) &&
		b.Saturation.Contains(v.Saturation)
}
