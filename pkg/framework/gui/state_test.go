package gui

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/justyntemme/jsgain/pkg/framework/codec"
	"github.com/justyntemme/jsgain/pkg/framework/message"
	"github.com/justyntemme/jsgain/pkg/framework/param"
	"github.com/justyntemme/jsgain/pkg/framework/process"
	"github.com/justyntemme/jsgain/pkg/framework/rt"
)

const (
	idBypass  = 1
	idGain    = 2
	idPeak    = 10
	idCommand = 11
	idCounter = 12
	idLabel   = 13
)

type params struct {
	bypass  *param.VstParam[bool]
	gain    *param.VstParam[float64]
	peak    *param.JmbParam[float64]
	command *param.JmbParam[int64]
	counter *param.JmbParam[int64]
	label   *param.JmbParam[string]
}

func newParams(t *testing.T) (*param.Registry, params) {
	t.Helper()
	reg := param.NewRegistry()
	p := params{
		bypass:  param.BypassParameter(idBypass, "Bypass").MustRegister(reg),
		gain:    param.Raw(idGain, "Gain").Default(0.7).MustRegister(reg),
		peak:    param.Jmb[float64](idPeak, "Peak", codec.Float64{}).Shared().Transient().MustRegister(reg),
		command: param.Jmb[int64](idCommand, "Command", codec.Int64{}).GUIOwned().Shared().Transient().MustRegister(reg),
		counter: param.Jmb[int64](idCounter, "Counter", codec.Int64{}).MustRegister(reg),
		label:   param.Jmb[string](idLabel, "Label", codec.String{}).GUIOwned().Default("none").MustRegister(reg),
	}
	if err := reg.SetRTSaveStateOrder(1, idBypass, idCounter, idGain); err != nil {
		t.Fatal(err)
	}
	if err := reg.SetGUISaveStateOrder(1, idLabel); err != nil {
		t.Fatal(err)
	}
	if err := reg.Freeze(); err != nil {
		t.Fatal(err)
	}
	return reg, p
}

type recordingHandler struct {
	mu    sync.Mutex
	calls []string
}

func (h *recordingHandler) BeginEdit(id uint32) { h.add("begin %d", id) }
func (h *recordingHandler) PerformEdit(id uint32, v float64) { h.add("perform %d %.2f", id, v) }
func (h *recordingHandler) EndEdit(id uint32) { h.add("end %d", id) }

func (h *recordingHandler) add(format string, args ...interface{}) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.calls = append(h.calls, fmt.Sprintf(format, args...))
}

type fixture struct {
	reg *param.Registry
	hub *message.Hub
	s   *State

	bypass  *VstValue[bool]
	gain    *VstValue[float64]
	peak    *JmbValue[float64]
	command *JmbValue[int64]
	label   *JmbValue[string]
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	reg, p := newParams(t)
	f := &fixture{reg: reg, hub: reg.NewHub()}
	f.s = NewState(reg, f.hub)
	f.bypass = AddVst(f.s, p.bypass)
	f.gain = AddVst(f.s, p.gain)
	f.peak = AddJmb(f.s, p.peak)
	f.command = AddJmb(f.s, p.command)
	f.label = AddJmb(f.s, p.label)
	if err := f.s.Freeze(); err != nil {
		t.Fatal(err)
	}
	return f
}

func TestVstValue(t *testing.T) {
	f := newFixture(t)
	h := &recordingHandler{}
	f.s.SetComponentHandler(h)

	var notified []uint32
	f.s.Listen(func(id uint32) { notified = append(notified, id) }, idGain, idBypass)

	if f.gain.Value() != 0.7 {
		t.Errorf("unexpected default %v", f.gain.Value())
	}

	f.gain.SetValue(0.25)
	want := []string{"begin 2", "perform 2 0.25", "end 2"}
	if strings.Join(h.calls, ",") != strings.Join(want, ",") {
		t.Errorf("unexpected edits %v", h.calls)
	}
	if f.gain.Value() != 0.25 || len(notified) != 1 {
		t.Errorf("value %v notified %v", f.gain.Value(), notified)
	}

	// host echo: no edit, no notification when unchanged
	h.calls = nil
	if !f.s.SetNormalized(idGain, 0.25) {
		t.Error("SetNormalized should find the parameter")
	}
	if len(h.calls) != 0 || len(notified) != 1 {
		t.Error("an unchanged host value neither edits nor notifies")
	}
	f.s.SetNormalized(idBypass, 1)
	if !f.bypass.Value() || len(notified) != 2 {
		t.Error("host value should update the mirror and notify")
	}
	if f.s.SetNormalized(idPeak, 1) {
		t.Error("typed parameters have no normalized value")
	}
	if f.bypass.String() != "Bypassed" {
		t.Errorf("unexpected display %q", f.bypass.String())
	}
}

func TestTick(t *testing.T) {
	f := newFixture(t)
	peakBox, _ := message.Lookup[float64](f.hub, idPeak)

	var count int
	f.s.Listen(func(uint32) { count++ }, idPeak)

	if f.s.Tick() != 0 {
		t.Error("nothing to receive")
	}
	for _, v := range []float64{0.1, 0.2, 0.3} {
		peakBox.Publish(&v)
	}
	if got := f.s.Tick(); got != 1 {
		t.Errorf("expected one update, got %d", got)
	}
	if f.peak.Value() != 0.3 || count != 1 {
		t.Errorf("expected the latest value once, got %v after %d notifications", f.peak.Value(), count)
	}
}

func TestBroadcast(t *testing.T) {
	f := newFixture(t)
	commandBox, _ := message.Lookup[int64](f.hub, idCommand)

	f.command.Broadcast(5)
	f.command.Broadcast(6)
	var got int64
	if !commandBox.Poll(&got) || got != 6 {
		t.Errorf("expected 6, got %d", got)
	}
	if commandBox.Dropped() != 1 {
		t.Errorf("expected the unread value to be dropped, got %d", commandBox.Dropped())
	}

	// not shared: local only
	f.label.Broadcast("hello")
	if f.label.Value() != "hello" {
		t.Errorf("unexpected label %q", f.label.Value())
	}
}

func TestConcurrentBroadcast(t *testing.T) {
	f := newFixture(t)
	commandBox, _ := message.Lookup[int64](f.hub, idCommand)

	var wg sync.WaitGroup
	for g := 0; g < 4; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 1000; i++ {
				f.command.Broadcast(int64(g*1000 + i))
				f.s.Tick()
			}
		}(g)
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	var v int64
	for {
		commandBox.Poll(&v)
		select {
		case <-done:
			if v < 0 || v >= 4000 {
				t.Errorf("unexpected value %d", v)
			}
			return
		default:
		}
	}
}

func TestPersistence(t *testing.T) {
	f := newFixture(t)
	f.label.Update("saved")

	var buf bytes.Buffer
	if err := f.s.WriteState(&buf); err != nil {
		t.Fatal(err)
	}

	g := newFixture(t)
	var notified bool
	g.s.Listen(func(uint32) { notified = true }, idLabel)
	if err := g.s.ReadState(&buf); err != nil {
		t.Fatal(err)
	}
	if g.label.Value() != "saved" || !notified {
		t.Errorf("unexpected label %q (notified=%t)", g.label.Value(), notified)
	}
}

func TestReadRTState(t *testing.T) {
	reg, p := newParams(t)
	hub := reg.NewHub()
	proc := rt.NewState(reg, hub)
	rt.AddVst(proc, p.bypass)
	rt.AddVst(proc, p.gain)
	counter := rt.AddJmb(proc, p.counter)
	rt.AddJmb(proc, p.peak)
	rt.AddJmbIn(proc, p.command)
	if err := proc.Freeze(); err != nil {
		t.Fatal(err)
	}

	ctx := process.NewContext(16, 4)
	ctx.InputChanges.Add(idGain, 0.125, 0)
	ctx.InputChanges.Add(idBypass, 1, 0)
	proc.BeforeProcessing(ctx)
	counter.Broadcast(9)
	proc.AfterProcessing(ctx)

	var buf bytes.Buffer
	if err := proc.WriteState(&buf); err != nil {
		t.Fatal(err)
	}

	f := newFixture(t)
	if err := f.s.ReadRTState(&buf); err != nil {
		t.Fatal(err)
	}
	if f.gain.Value() != 0.125 || !f.bypass.Value() {
		t.Errorf("mirror not updated: gain=%v bypass=%v", f.gain.Value(), f.bypass.Value())
	}
}

func TestBindingErrors(t *testing.T) {
	reg, p := newParams(t)
	s := NewState(reg, reg.NewHub())
	AddVst(s, p.gain)
	AddVst(s, p.gain)
	AddJmb(s, p.counter)

	err := s.Freeze()
	for _, want := range []error{ErrAlreadyBound, ErrNotShared, ErrUnbound} {
		if !errors.Is(err, want) {
			t.Errorf("expected %v in %v", want, err)
		}
	}
	AddVst(s, p.bypass)
	if err := s.Freeze(); !errors.Is(err, ErrStateFrozen) {
		t.Errorf("expected ErrStateFrozen, got %v", err)
	}
}

func TestParamTable(t *testing.T) {
	f := newFixture(t)
	f.label.Update("xyzzy")
	out := f.s.ParamTable("GUI state").String()
	for _, want := range []string{"GUI state", "Bypass", "Active", "Gain", "0.70", "Label", "xyzzy"} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %q in:\n%s", want, out)
		}
	}
	if strings.Contains(out, "Counter") {
		t.Error("values not bound on this side are not listed")
	}

	snap := rt.Snapshot{Blocks: 12, Count: 2}
	snap.Entries[0] = rt.SnapshotEntry{ID: idGain, Normalized: 0.5}
	snap.Entries[1] = rt.SnapshotEntry{ID: 77, Normalized: 0.25}
	out = SnapshotTable(f.reg, &snap).String()
	for _, want := range []string{"after 12 blocks", "Gain", "0.50", "77", "0.2500"} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %q in:\n%s", want, out)
		}
	}
}
