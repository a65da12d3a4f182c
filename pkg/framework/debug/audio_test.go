package debug

import (
	"math"
	"strings"
	"testing"
)

func TestAnalyze(t *testing.T) {
	a := NewAudioAnalyzer()

	tests := []struct {
		name    string
		buffer  []float32
		peak    float64
		clipped int
		nan     int
		silent  bool
	}{
		{name: "Empty", buffer: nil, silent: true},
		{name: "Silence", buffer: []float32{0, 0.00001, -0.00005}, peak: 0.00005, silent: true},
		{name: "Signal", buffer: []float32{0.5, -0.25, 0.125}, peak: 0.5},
		{name: "Clipping", buffer: []float32{1, -1, 0.5}, peak: 1, clipped: 2},
		{name: "NaN", buffer: []float32{float32(math.NaN()), 0.5}, peak: 0.5, nan: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := Analyze(a, tt.buffer)
			if math.Abs(r.Peak-tt.peak) > 1e-6 {
				t.Errorf("peak = %f, want %f", r.Peak, tt.peak)
			}
			if r.ClippedSamples != tt.clipped {
				t.Errorf("clipped = %d, want %d", r.ClippedSamples, tt.clipped)
			}
			if r.NaNCount != tt.nan {
				t.Errorf("nan = %d, want %d", r.NaNCount, tt.nan)
			}
			if r.Silent != tt.silent {
				t.Errorf("silent = %t, want %t", r.Silent, tt.silent)
			}
		})
	}
}

func TestAnalyzeFloat64(t *testing.T) {
	r := Analyze(NewAudioAnalyzer(), []float64{1, -1, 1, -1})
	if r.RMS != 1 || r.DC != 0 {
		t.Errorf("unexpected result %+v", r)
	}
	if r.PeakDB() != 0 {
		t.Errorf("expected 0 dB, got %f", r.PeakDB())
	}
	if !strings.Contains(r.String(), "peak=1.0000") {
		t.Errorf("unexpected string %q", r.String())
	}
}

func TestAnalysisMerge(t *testing.T) {
	a := NewAudioAnalyzer()
	left := Analyze(a, []float64{0.5, 0.5})
	right := Analyze(a, []float64{0, 0})

	var total AnalysisResult
	total = total.Merge(left).Merge(right)
	if total.Samples != 4 || total.Peak != 0.5 || total.Silent {
		t.Errorf("unexpected merge %+v", total)
	}
	if math.Abs(total.DC-0.25) > 1e-12 {
		t.Errorf("expected dc 0.25, got %f", total.DC)
	}
	if math.Abs(total.RMS-math.Sqrt(0.125)) > 1e-12 {
		t.Errorf("expected rms %f, got %f", math.Sqrt(0.125), total.RMS)
	}

	silent := Analyze(a, []float64{0}).Merge(Analyze(a, []float64{0}))
	if !silent.Silent {
		t.Error("merge of silent buffers must be silent")
	}
	if !math.IsInf(silent.PeakDB(), -1) {
		t.Errorf("expected -inf dB, got %f", silent.PeakDB())
	}
}
