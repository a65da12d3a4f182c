package param

import (
	"errors"
	"testing"

	"github.com/justyntemme/jsgain/pkg/framework/codec"
	"github.com/justyntemme/jsgain/pkg/framework/message"
)

func newTestRegistry(t *testing.T) *Registry {
	t.Helper()
	reg := NewRegistry()
	BypassParameter(1, "Bypass").MustRegister(reg)
	Raw(2, "Level").Default(0.5).MustRegister(reg)
	Raw(3, "Meter").ReadOnly().Transient().MustRegister(reg)
	Jmb[string](10, "Label", codec.String{}).GUIOwned().MustRegister(reg)
	Jmb[float64](11, "Peak", codec.Float64{}).RTOwned().Shared().Transient().MustRegister(reg)
	Jmb[int64](12, "Counter", codec.Int64{}).RTOwned().MustRegister(reg)
	return reg
}

func TestRegistry(t *testing.T) {
	t.Run("DuplicateID", func(t *testing.T) {
		reg := newTestRegistry(t)
		_, err := Bool(2, "Other").Register(reg)
		if !errors.Is(err, ErrDuplicateID) {
			t.Fatalf("expected ErrDuplicateID, got %v", err)
		}
		if reg.Count() != 6 {
			t.Errorf("expected 6 parameters, got %d", reg.Count())
		}
	})

	t.Run("MustRegisterPanics", func(t *testing.T) {
		reg := newTestRegistry(t)
		defer func() {
			if recover() == nil {
				t.Error("expected panic on duplicate id")
			}
		}()
		Bool(1, "Again").MustRegister(reg)
	})

	t.Run("Frozen", func(t *testing.T) {
		reg := newTestRegistry(t)
		if err := reg.Freeze(); err != nil {
			t.Fatalf("Freeze: %v", err)
		}
		if _, err := Bool(20, "Late").Register(reg); !errors.Is(err, ErrFrozen) {
			t.Errorf("expected ErrFrozen, got %v", err)
		}
		if err := reg.SetRTSaveStateOrder(2, 1); !errors.Is(err, ErrFrozen) {
			t.Errorf("expected ErrFrozen, got %v", err)
		}
	})

	t.Run("Lookup", func(t *testing.T) {
		reg := newTestRegistry(t)
		if reg.Get(10).Name != "Label" {
			t.Errorf("unexpected parameter %v", reg.Get(10))
		}
		if reg.Get(99) != nil {
			t.Error("expected nil for unknown id")
		}
		if reg.GetByIndex(1).ID != 2 {
			t.Errorf("expected index 1 to be id 2, got %d", reg.GetByIndex(1).ID)
		}
		if reg.GetByIndex(-1) != nil || reg.GetByIndex(6) != nil {
			t.Error("expected nil for out of range index")
		}
		vst := reg.VstParams()
		if len(vst) != 3 {
			t.Fatalf("expected 3 vst params, got %d", len(vst))
		}
		if vst[0].Flags&IsBypass == 0 {
			t.Error("expected bypass flag on first parameter")
		}
		if vst[2].Flags&CanAutomate != 0 {
			t.Error("read only parameter must not be automatable")
		}
	})
}

func TestSaveStateOrder(t *testing.T) {
	tests := []struct {
		name    string
		rt      []uint32
		gui     []uint32
		wantErr bool
	}{
		{name: "Valid", rt: []uint32{1, 2, 12}, gui: []uint32{10}},
		{name: "UnknownID", rt: []uint32{1, 99}, wantErr: true},
		{name: "TransientInOrder", rt: []uint32{1, 3}, wantErr: true},
		{name: "WrongSide", rt: []uint32{1, 10}, wantErr: true},
		{name: "GUIOrderWithVst", gui: []uint32{2}, wantErr: true},
		{name: "ListedTwice", rt: []uint32{1, 2, 1}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reg := newTestRegistry(t)
			if tt.rt != nil {
				if err := reg.SetRTSaveStateOrder(1, tt.rt...); err != nil {
					t.Fatalf("SetRTSaveStateOrder: %v", err)
				}
			}
			if tt.gui != nil {
				if err := reg.SetGUISaveStateOrder(1, tt.gui...); err != nil {
					t.Fatalf("SetGUISaveStateOrder: %v", err)
				}
			}
			err := reg.Freeze()
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidOrder) {
					t.Errorf("expected ErrInvalidOrder, got %v", err)
				}
				if reg.Frozen() {
					t.Error("registry must not be frozen after a failed Freeze")
				}
				return
			}
			if err != nil {
				t.Fatalf("Freeze: %v", err)
			}
		})
	}
}

func TestSaveStateOrderVersions(t *testing.T) {
	reg := newTestRegistry(t)
	if err := reg.SetRTSaveStateOrder(2, 1, 2, 12); err != nil {
		t.Fatal(err)
	}
	if err := reg.SetRTSaveStateOrder(1, 1, 2); err != nil {
		t.Fatal(err)
	}
	if err := reg.SetRTSaveStateOrder(1, 2); !errors.Is(err, ErrInvalidOrder) {
		t.Errorf("expected ErrInvalidOrder for a repeated version, got %v", err)
	}
	if err := reg.Freeze(); err != nil {
		t.Fatal(err)
	}

	cur := reg.RTSaveStateOrder()
	if cur.Version != 2 || len(cur.IDs) != 3 {
		t.Errorf("unexpected current order %+v", cur)
	}
	old, ok := reg.SaveStateOrderFor(AudioSide, 1)
	if !ok || len(old.IDs) != 2 {
		t.Errorf("unexpected v1 order %+v (found=%t)", old, ok)
	}
	if _, ok := reg.SaveStateOrderFor(AudioSide, 3); ok {
		t.Error("expected no order for version 3")
	}
}

func TestSaveStateOrderFallback(t *testing.T) {
	reg := newTestRegistry(t)
	if err := reg.Freeze(); err != nil {
		t.Fatal(err)
	}

	rt := reg.SaveStateOrder(AudioSide)
	want := []uint32{1, 2, 12}
	if rt.Version != 0 || len(rt.IDs) != len(want) {
		t.Fatalf("unexpected fallback order %+v", rt)
	}
	for i, id := range want {
		if rt.IDs[i] != id {
			t.Errorf("order[%d] = %d, want %d", i, rt.IDs[i], id)
		}
	}

	gui := reg.SaveStateOrder(ControlSide)
	if len(gui.IDs) != 1 || gui.IDs[0] != 10 {
		t.Errorf("unexpected gui fallback order %+v", gui)
	}
}

func TestNewHub(t *testing.T) {
	reg := newTestRegistry(t)
	hub := reg.NewHub()

	ids := hub.IDs()
	if len(ids) != 1 || ids[0] != 11 {
		t.Fatalf("expected a single mailbox for id 11, got %v", ids)
	}
	box, err := message.Lookup[float64](hub, 11)
	if err != nil {
		t.Fatal(err)
	}
	v := 0.25
	box.Publish(&v)
	var got float64
	if !box.Poll(&got) || got != 0.25 {
		t.Errorf("expected 0.25, got %v", got)
	}

	// each hub owns its own mailboxes
	other, _ := message.Lookup[float64](reg.NewHub(), 11)
	if other == box {
		t.Error("hubs must not share mailboxes")
	}
}
