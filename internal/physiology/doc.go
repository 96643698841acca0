// Package physiology simulates how the patient responds to the infusion.
//
// The hidden state is a single anesthesia level in [0, 1] that accumulates
// with dose and decays at a constant rate per cycle. Vitals are derived from
// the level linearly, except saturation, which only falls once the level
// passes a deep-sedation threshold. Every vital carries bounded uniform noise
// and is clamped to its physiological range.
package physiology
