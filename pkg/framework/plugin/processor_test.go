package plugin

import (
	"bytes"
	"errors"
	"testing"

	"github.com/justyntemme/jsgain/pkg/framework/bus"
	"github.com/justyntemme/jsgain/pkg/framework/gui"
	"github.com/justyntemme/jsgain/pkg/framework/param"
	"github.com/justyntemme/jsgain/pkg/framework/process"
	"github.com/justyntemme/jsgain/pkg/framework/rt"
)

const idLevel = 1

type halfGain struct {
	level *rt.VstValue[float64]
	calls int
	panic bool
}

func (h *halfGain) ProcessAudio(ctx *process.Context) {
	h.calls++
	if h.panic {
		ctx.Output32[0][0] = 99
		panic("boom")
	}
	g := float32(h.level.Value())
	for ch := range ctx.Output32 {
		for i, s := range ctx.Input32[ch] {
			ctx.Output32[ch][i] = s * g
		}
	}
}

func newTestPlugin(t *testing.T) (*BaseProcessor, *BaseController, *halfGain) {
	t.Helper()
	base := NewBase(Info{ID: "com.example.test", Name: "Test"})
	level := param.Raw(idLevel, "Level").Default(0.5).MustRegister(base.Parameters())
	if err := base.Freeze(); err != nil {
		t.Fatal(err)
	}
	hub := base.NewHub()

	proc := NewBaseProcessor(base.Parameters(), hub, nil)
	effect := &halfGain{level: rt.AddVst(proc.State(), level)}
	proc.SetAudioProcessor(effect)
	if err := proc.State().Freeze(); err != nil {
		t.Fatal(err)
	}

	ctrl := NewBaseController(base.Parameters(), hub)
	gui.AddVst(ctrl.State(), level)
	if err := ctrl.State().Freeze(); err != nil {
		t.Fatal(err)
	}
	return proc, ctrl, effect
}

func block32(channels, samples int, value float32) *process.Context {
	ctx := process.NewContext(samples, 8)
	for ch := 0; ch < channels; ch++ {
		in := make([]float32, samples)
		for i := range in {
			in[i] = value
		}
		ctx.Input32 = append(ctx.Input32, in)
		ctx.Output32 = append(ctx.Output32, make([]float32, samples))
	}
	return ctx
}

func TestSetupProcessing(t *testing.T) {
	proc, _, _ := newTestPlugin(t)

	var got float64
	proc.OnSetupProcessing(func(rate float64, _ int, _ process.SampleSize) error {
		got = rate
		return nil
	})
	if err := proc.SetupProcessing(48000, 512, process.Sample64); err != nil {
		t.Fatal(err)
	}
	if got != 48000 || proc.SampleRate() != 48000 || proc.MaxBlockSize() != 512 || proc.SampleSize() != process.Sample64 {
		t.Error("processing setup not recorded")
	}
	if err := proc.SetupProcessing(48000, 512, 16); !errors.Is(err, ErrSampleSize) {
		t.Errorf("expected ErrSampleSize, got %v", err)
	}
	if err := proc.SetupProcessing(0, 512, process.Sample32); !errors.Is(err, ErrSampleRate) {
		t.Errorf("expected ErrSampleRate, got %v", err)
	}

	var active bool
	proc.OnSetActive(func(a bool) error { active = a; return nil })
	proc.SetActive(true)
	if !active || !proc.Active() {
		t.Error("SetActive callback not called")
	}
}

func TestProcess(t *testing.T) {
	t.Run("Stereo", func(t *testing.T) {
		proc, _, _ := newTestPlugin(t)
		ctx := block32(2, 4, 0.8)
		if res := proc.Process(ctx); res != ResultOK {
			t.Fatalf("unexpected result %v", res)
		}
		if ctx.Output32[1][3] != 0.4 {
			t.Errorf("expected 0.4, got %v", ctx.Output32[1][3])
		}
	})

	t.Run("ParameterChange", func(t *testing.T) {
		proc, _, _ := newTestPlugin(t)
		ctx := block32(1, 4, 1)
		ctx.InputChanges.Add(idLevel, 0.25, 0)
		proc.Process(ctx)
		if ctx.Output32[0][0] != 0.25 {
			t.Errorf("expected 0.25, got %v", ctx.Output32[0][0])
		}
	})

	t.Run("UnsupportedChannels", func(t *testing.T) {
		for _, channels := range []int{0, 3, 6} {
			proc, _, effect := newTestPlugin(t)
			ctx := block32(channels, 4, 1)
			ctx.InputChanges.Add(idLevel, 0.25, 0)
			if res := proc.Process(ctx); res != ResultNotImplemented {
				t.Errorf("%d channels: expected not implemented, got %v", channels, res)
			}
			if effect.calls != 0 || proc.State().Blocks() != 0 || effect.level.Value() != 0.5 {
				t.Errorf("%d channels: a rejected block must have no side effects", channels)
			}
		}
	})

	t.Run("Panic", func(t *testing.T) {
		proc, _, effect := newTestPlugin(t)
		effect.panic = true
		ctx := block32(2, 4, 0.3)
		if res := proc.Process(ctx); res != ResultOK {
			t.Errorf("expected ok, got %v", res)
		}
		if ctx.Output32[0][0] != 0.3 || ctx.Output32[1][2] != 0.3 {
			t.Errorf("expected pass-through, got %v", ctx.Output32)
		}
		if proc.Panics() != 1 {
			t.Errorf("expected 1 recovered panic, got %d", proc.Panics())
		}
	})

	t.Run("EmptyBlock", func(t *testing.T) {
		proc, _, effect := newTestPlugin(t)
		ctx := block32(2, 0, 0)
		ctx.InputChanges.Add(idLevel, 1, 0)
		proc.Process(ctx)
		if effect.calls != 1 {
			t.Errorf("effect ran %d times on an empty block, want 1", effect.calls)
		}
		if effect.level.Value() != 1 {
			t.Error("parameter changes are applied on an empty block")
		}
	})
}

func TestStateSync(t *testing.T) {
	proc, ctrl, _ := newTestPlugin(t)
	ctx := block32(2, 4, 1)
	ctx.InputChanges.Add(idLevel, 0.125, 0)
	proc.Process(ctx)

	var buf bytes.Buffer
	if err := proc.GetState(&buf); err != nil {
		t.Fatal(err)
	}
	data := buf.Bytes()

	if err := ctrl.SetComponentState(bytes.NewReader(data)); err != nil {
		t.Fatal(err)
	}
	if ctrl.GetParamNormalized(idLevel) != 0.125 {
		t.Errorf("controller not synced: %v", ctrl.GetParamNormalized(idLevel))
	}
	if ctrl.GetParamStringByValue(idLevel, 0.5) != "0.50" {
		t.Errorf("unexpected display %q", ctrl.GetParamStringByValue(idLevel, 0.5))
	}
	if ctrl.ParameterCount() != 1 {
		t.Errorf("expected 1 parameter, got %d", ctrl.ParameterCount())
	}

	other, _, effect := newTestPlugin(t)
	if err := other.SetState(bytes.NewReader(data)); err != nil {
		t.Fatal(err)
	}
	if effect.level.Value() != 0.125 {
		t.Errorf("processor state not restored: %v", effect.level.Value())
	}
}

func TestMonoBuses(t *testing.T) {
	base := NewBase(Info{ID: "com.example.mono"})
	if err := base.Freeze(); err != nil {
		t.Fatal(err)
	}
	proc := NewBaseProcessor(base.Parameters(), base.NewHub(), bus.NewMonoConfiguration())
	proc.State().Freeze()
	if res := proc.Process(block32(2, 4, 1)); res != ResultNotImplemented {
		t.Errorf("mono processor must reject stereo, got %v", res)
	}
	if res := proc.Process(block32(1, 4, 1)); res != ResultOK {
		t.Errorf("mono block rejected: %v", res)
	}
}

func TestNoAllocations(t *testing.T) {
	proc, _, _ := newTestPlugin(t)
	ctx := block32(2, 64, 0.5)
	allocs := testing.AllocsPerRun(100, func() {
		ctx.BeginBlock()
		ctx.InputChanges.Add(idLevel, 0.3, 0)
		proc.Process(ctx)
	})
	if allocs != 0 {
		t.Errorf("Process allocated %f times per block", allocs)
	}
}
