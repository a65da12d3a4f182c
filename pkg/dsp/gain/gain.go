// Package gain provides amplitude and gain-related DSP operations.
package gain

import (
	"fmt"
	"math"
)

// Sample is a 32 or 64-bit audio sample.
type Sample interface {
	~float32 | ~float64
}

const (
	// MinDB is the minimum dB value (effectively -infinity)
	MinDB = -200.0

	// Unity is the multiplier that leaves a signal unchanged.
	Unity = 1.0

	// SilentThreshold is the magnitude at or below which a sample is
	// considered silent.
	SilentThreshold = 2e-8
)

// LinearToDb converts a linear amplitude value to decibels.
// Returns MinDB for values <= 0.
func LinearToDb(linear float64) float64 {
	if linear <= 0 {
		return MinDB
	}
	return 20.0 * math.Log10(linear)
}

// IsSilent reports whether a sample is below audibility.
func IsSilent[S Sample](sample S) bool {
	if sample < 0 {
		sample = -sample
	}
	return float64(sample) <= SilentThreshold
}

// ApplyTo writes src multiplied by gain into dst and returns the largest
// output magnitude and whether every output sample is silent. Only the
// common length of src and dst is processed.
func ApplyTo[S Sample](src, dst []S, gain S) (peak S, silent bool) {
	n := min(len(src), len(dst))
	silent = true
	for i := 0; i < n; i++ {
		sample := src[i]
		if gain != Unity {
			sample *= gain
		}
		dst[i] = sample

		if silent && !IsSilent(sample) {
			silent = false
		}
		if sample < 0 {
			sample = -sample
		}
		if sample > peak {
			peak = sample
		}
	}
	return peak, silent
}

// ToDBString formats a sample magnitude in decibels with a sign, e.g.
// "+0.00dB" for unity at precision 2. Silent samples render as "-oo".
func ToDBString(sample float64, precision int) string {
	sample = math.Abs(sample)
	if sample < SilentThreshold || math.IsNaN(sample) {
		return "-oo"
	}
	return fmt.Sprintf("%+.*fdB", precision, LinearToDb(sample))
}
