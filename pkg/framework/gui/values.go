package gui

import (
	"fmt"
	"io"
	"math"
	"sync"
	"sync/atomic"

	"github.com/justyntemme/jsgain/pkg/framework/codec"
	"github.com/justyntemme/jsgain/pkg/framework/debug"
	"github.com/justyntemme/jsgain/pkg/framework/message"
	"github.com/justyntemme/jsgain/pkg/framework/param"
)

// VstValue mirrors a host-visible parameter on the control side.
type VstValue[T any] struct {
	s     *State
	param *param.VstParam[T]
	bits  atomic.Uint64
}

// AddVst binds a host-visible parameter.
func AddVst[T any](s *State, p *param.VstParam[T]) *VstValue[T] {
	v := &VstValue[T]{s: s, param: p}
	v.bits.Store(math.Float64bits(p.DefaultNormalized))
	if !s.bind(p.Descriptor, v) {
		return v
	}
	s.vst[p.ID] = v
	if p.Persisted {
		s.rtMirror.Bind(v)
	}
	return v
}

// Normalized returns the normalized value.
func (v *VstValue[T]) Normalized() float64 {
	return math.Float64frombits(v.bits.Load())
}

// Value returns the value.
func (v *VstValue[T]) Value() T {
	return v.param.Denormalize(v.Normalized())
}

// SetValue changes the value as a user edit: the host is told through the
// component handler and listeners are notified.
func (v *VstValue[T]) SetValue(value T) {
	v.SetNormalizedValue(v.param.Normalize(value))
}

// SetNormalizedValue is SetValue for a normalized value.
func (v *VstValue[T]) SetNormalizedValue(n float64) {
	n = param.Clamp(n)
	if h := v.s.componentHandler(); h != nil {
		h.BeginEdit(v.param.ID)
		h.PerformEdit(v.param.ID, n)
		h.EndEdit(v.param.ID)
	}
	if v.setNormalized(n) {
		v.s.notify(v.param.ID)
	}
}

// String returns the display string of the value.
func (v *VstValue[T]) String() string {
	return v.param.FormatNormalized(v.Normalized(), 2)
}

func (v *VstValue[T]) normalized() float64 { return v.Normalized() }

func (v *VstValue[T]) setNormalized(n float64) bool {
	n = param.Clamp(n)
	return math.Float64frombits(v.bits.Swap(math.Float64bits(n))) != n
}

func (v *VstValue[T]) row() debug.ParamRow {
	return descriptorRow(v.param.Descriptor, v.String())
}

// ParamID implements state.Field.
func (v *VstValue[T]) ParamID() uint32 { return v.param.ID }

// SaveValue implements state.Field.
func (v *VstValue[T]) SaveValue(w io.Writer) error {
	return codec.Normalized{}.Write(v.Normalized(), w)
}

// LoadValue implements state.Field.
func (v *VstValue[T]) LoadValue(r io.Reader) error {
	n := v.Normalized()
	if err := (codec.Normalized{}).Read(r, &n); err != nil {
		return err
	}
	v.setNormalized(n)
	return nil
}

// ResetValue implements state.Field.
func (v *VstValue[T]) ResetValue() {
	v.setNormalized(v.param.DefaultNormalized)
}

// JmbValue is a typed value on the control side. Values owned by the control
// side are sent to the audio side with Broadcast when shared; values owned
// by the audio side are received on Tick.
type JmbValue[T any] struct {
	s     *State
	param *param.JmbParam[T]

	mu    sync.Mutex
	value T
	box   *message.Mailbox[T]
	out   bool
}

// AddJmb binds a typed parameter.
func AddJmb[T any](s *State, p *param.JmbParam[T]) *JmbValue[T] {
	v := &JmbValue[T]{s: s, param: p, value: p.Default}
	if p.Owner == param.AudioSide && !p.Shared {
		s.errs = append(s.errs, fmt.Errorf("bind %s: %w", p.Descriptor, ErrNotShared))
		return v
	}
	if !s.bind(p.Descriptor, v) {
		return v
	}
	if p.Shared {
		box, err := message.Lookup[T](s.hub, p.ID)
		if err != nil {
			s.errs = append(s.errs, fmt.Errorf("bind %s: %w", p.Descriptor, err))
			return v
		}
		v.box = box
		if p.Owner == param.ControlSide {
			v.out = true
		} else {
			s.pollers = append(s.pollers, v)
		}
	}
	if p.Owner == param.ControlSide && p.Persisted {
		s.persist.Bind(v)
	}
	return v
}

// Value returns a copy of the value.
func (v *JmbValue[T]) Value() T {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.value
}

// Update changes the value locally and notifies listeners.
func (v *JmbValue[T]) Update(value T) {
	v.mu.Lock()
	v.value = value
	v.mu.Unlock()
	v.s.notify(v.param.ID)
}

// Broadcast changes the value and, for a shared value owned by the control
// side, publishes it to the audio side. A value the audio side has not
// consumed yet is replaced.
func (v *JmbValue[T]) Broadcast(value T) {
	v.mu.Lock()
	v.value = value
	if v.out {
		v.box.Publish(&v.value)
	}
	v.mu.Unlock()
	v.s.notify(v.param.ID)
}

// String returns the display string of the value.
func (v *JmbValue[T]) String() string {
	return v.param.Format(v.Value())
}

func (v *JmbValue[T]) poll() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.box.Poll(&v.value)
}

func (v *JmbValue[T]) paramID() uint32 { return v.param.ID }

func (v *JmbValue[T]) row() debug.ParamRow {
	return descriptorRow(v.param.Descriptor, v.String())
}

// ParamID implements state.Field.
func (v *JmbValue[T]) ParamID() uint32 { return v.param.ID }

// SaveValue implements state.Field.
func (v *JmbValue[T]) SaveValue(w io.Writer) error {
	return v.param.Serializer.Write(v.Value(), w)
}

// LoadValue implements state.Field.
func (v *JmbValue[T]) LoadValue(r io.Reader) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.param.Serializer.Read(r, &v.value)
}

// ResetValue implements state.Field.
func (v *JmbValue[T]) ResetValue() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.value = v.param.Default
}
