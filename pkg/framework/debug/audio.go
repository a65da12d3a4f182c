package debug

import (
	"fmt"
	"math"
)

// Sample is a 32 or 64-bit audio sample.
type Sample interface {
	~float32 | ~float64
}

// AnalysisResult summarizes an audio buffer.
type AnalysisResult struct {
	Samples        int
	Peak           float64
	RMS            float64
	DC             float64
	ClippedSamples int
	NaNCount       int
	Silent         bool
}

// AudioAnalyzer computes buffer statistics for offline inspection.
type AudioAnalyzer struct {
	ClippingThreshold float64
	SilenceThreshold  float64
}

// NewAudioAnalyzer creates an analyzer with default thresholds.
func NewAudioAnalyzer() *AudioAnalyzer {
	return &AudioAnalyzer{
		ClippingThreshold: 0.99,
		SilenceThreshold:  0.0001,
	}
}

// Analyze returns the statistics of buffer.
func Analyze[S Sample](a *AudioAnalyzer, buffer []S) AnalysisResult {
	result := AnalysisResult{Samples: len(buffer), Silent: true}
	if len(buffer) == 0 {
		return result
	}

	var sum, sumSquares float64
	valid := 0
	for _, s := range buffer {
		v := float64(s)
		if math.IsNaN(v) {
			result.NaNCount++
			continue
		}
		valid++
		abs := math.Abs(v)
		if abs > result.Peak {
			result.Peak = abs
		}
		if abs >= a.ClippingThreshold {
			result.ClippedSamples++
		}
		if abs > a.SilenceThreshold {
			result.Silent = false
		}
		sum += v
		sumSquares += v * v
	}
	if valid > 0 {
		result.DC = sum / float64(valid)
		result.RMS = math.Sqrt(sumSquares / float64(valid))
	}
	return result
}

// Merge combines the statistics of two buffers.
func (r AnalysisResult) Merge(o AnalysisResult) AnalysisResult {
	if r.Samples == 0 {
		return o
	}
	if o.Samples == 0 {
		return r
	}
	total := r.Samples + o.Samples
	out := AnalysisResult{
		Samples:        total,
		Peak:           math.Max(r.Peak, o.Peak),
		ClippedSamples: r.ClippedSamples + o.ClippedSamples,
		NaNCount:       r.NaNCount + o.NaNCount,
		Silent:         r.Silent && o.Silent,
	}
	if total > 0 {
		wr, wo := float64(r.Samples)/float64(total), float64(o.Samples)/float64(total)
		out.DC = r.DC*wr + o.DC*wo
		out.RMS = math.Sqrt(r.RMS*r.RMS*wr + o.RMS*o.RMS*wo)
	}
	return out
}

// PeakDB returns the peak level in decibels.
func (r AnalysisResult) PeakDB() float64 {
	if r.Peak <= 0 {
		return math.Inf(-1)
	}
	return 20 * math.Log10(r.Peak)
}

func (r AnalysisResult) String() string {
	return fmt.Sprintf("samples=%d peak=%.4f (%.2f dB) rms=%.4f dc=%.5f clipped=%d nan=%d silent=%t",
		r.Samples, r.Peak, r.PeakDB(), r.RMS, r.DC, r.ClippedSamples, r.NaNCount, r.Silent)
}
