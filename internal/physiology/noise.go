package physiology

import "math/rand/v2"

// Source yields uniformly distributed values in [0, 1).
// *rand.Rand satisfies it.
type Source interface {
	Float64() float64
}

// seedMix decorrelates the two PCG words derived from a single seed.
const seedMix = 0x9e3779b97f4a7c15

// NewSource returns a deterministic source for the given seed.
func NewSource(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^seedMix)) //nolint:gosec // Simulation noise, not cryptography.
}

// uniform draws from [-halfWidth, halfWidth).
// A non-positive half-width or a nil source yields no perturbation.
func uniform(src Source, halfWidth float64) float64 {
	if src == nil || halfWidth <= 0 {
		return 0
	}

	return (src.Float64()*2 - 1) * halfWidth
}
