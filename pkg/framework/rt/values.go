package rt

import (
	"fmt"
	"io"

	"github.com/justyntemme/jsgain/pkg/framework/codec"
	"github.com/justyntemme/jsgain/pkg/framework/message"
	"github.com/justyntemme/jsgain/pkg/framework/param"
	"github.com/justyntemme/jsgain/pkg/framework/process"
)

// VstValue is the audio-side value of a host-visible parameter. It keeps the
// value of the previous block for change detection.
type VstValue[T any] struct {
	param *param.VstParam[T]

	normalized float64
	previous   float64
	value      T
	prev       T
	output     bool
}

// AddVst binds a host-visible parameter.
func AddVst[T any](s *State, p *param.VstParam[T]) *VstValue[T] {
	v := &VstValue[T]{param: p}
	v.ResetValue()
	v.previous, v.prev = v.normalized, v.value
	if !s.bind(p.Descriptor) {
		return v
	}
	s.vstByID[p.ID] = v
	s.vst = append(s.vst, v)
	if p.Persisted {
		s.persist.Bind(v)
	}
	return v
}

// AddVstOut binds a host-visible parameter the processor writes, such as a
// meter. A change is reported to the host at the end of the block.
func AddVstOut[T any](s *State, p *param.VstParam[T]) *VstValue[T] {
	v := AddVst(s, p)
	v.output = true
	return v
}

// Value returns the current value.
func (v *VstValue[T]) Value() T { return v.value }

// Previous returns the value of the previous block.
func (v *VstValue[T]) Previous() T { return v.prev }

// Normalized returns the current normalized value.
func (v *VstValue[T]) Normalized() float64 { return v.normalized }

// HasChanged reports whether the value differs from the previous block.
func (v *VstValue[T]) HasChanged() bool { return v.normalized != v.previous }

// Update sets the value from the processor. It returns true when the value
// changed.
func (v *VstValue[T]) Update(value T) bool {
	n := v.param.Normalize(value)
	if n == v.normalized {
		return false
	}
	v.normalized = n
	v.value = value
	return true
}

func (v *VstValue[T]) setNormalized(n float64) {
	n = param.Clamp(n)
	v.normalized = n
	v.value = v.param.Denormalize(n)
}

func (v *VstValue[T]) endBlock(ctx *process.Context) {
	if v.output && v.normalized != v.previous && ctx.OutputChanges != nil {
		ctx.OutputChanges.Add(v.param.ID, v.normalized, 0)
	}
	v.previous = v.normalized
	v.prev = v.value
}

func (v *VstValue[T]) snapshot() SnapshotEntry {
	return SnapshotEntry{ID: v.param.ID, Normalized: v.normalized}
}

// ParamID implements state.Field.
func (v *VstValue[T]) ParamID() uint32 { return v.param.ID }

// SaveValue implements state.Field.
func (v *VstValue[T]) SaveValue(w io.Writer) error {
	return codec.Normalized{}.Write(v.normalized, w)
}

// LoadValue implements state.Field.
func (v *VstValue[T]) LoadValue(r io.Reader) error {
	n := v.normalized
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

// JmbValue is a typed value owned by the audio side. When the parameter is
// shared, updates are published to the control side at the end of the block.
type JmbValue[T any] struct {
	param   *param.JmbParam[T]
	value   T
	box     *message.Mailbox[T]
	pending bool
}

// AddJmb binds a typed parameter owned by the audio side.
func AddJmb[T any](s *State, p *param.JmbParam[T]) *JmbValue[T] {
	v := &JmbValue[T]{param: p, value: p.Default}
	if p.Owner != param.AudioSide {
		s.errs = append(s.errs, fmt.Errorf("bind %s: %w", p.Descriptor, ErrWrongOwner))
		return v
	}
	if !s.bind(p.Descriptor) {
		return v
	}
	if p.Shared {
		box, err := message.Lookup[T](s.hub, p.ID)
		if err != nil {
			s.errs = append(s.errs, fmt.Errorf("bind %s: %w", p.Descriptor, err))
			return v
		}
		v.box = box
		s.outbound = append(s.outbound, v)
	}
	if p.Persisted {
		s.persist.Bind(v)
	}
	return v
}

// Value returns a pointer to the value for in-place updates. Call
// EnqueueUpdate after modifying it.
func (v *JmbValue[T]) Value() *T { return &v.value }

// Get returns a copy of the value.
func (v *JmbValue[T]) Get() T { return v.value }

// EnqueueUpdate marks the value for publication at the end of the block.
func (v *JmbValue[T]) EnqueueUpdate() { v.pending = v.box != nil }

// Broadcast replaces the value and marks it for publication.
func (v *JmbValue[T]) Broadcast(value T) {
	v.value = value
	v.EnqueueUpdate()
}

func (v *JmbValue[T]) publish() {
	if !v.pending {
		return
	}
	v.box.Publish(&v.value)
	v.pending = false
}

// ParamID implements state.Field.
func (v *JmbValue[T]) ParamID() uint32 { return v.param.ID }

// SaveValue implements state.Field.
func (v *JmbValue[T]) SaveValue(w io.Writer) error {
	return v.param.Serializer.Write(v.value, w)
}

// LoadValue implements state.Field. A restored shared value is published
// with the next block.
func (v *JmbValue[T]) LoadValue(r io.Reader) error {
	if err := v.param.Serializer.Read(r, &v.value); err != nil {
		return err
	}
	v.EnqueueUpdate()
	return nil
}

// ResetValue implements state.Field.
func (v *JmbValue[T]) ResetValue() {
	v.value = v.param.Default
	v.EnqueueUpdate()
}

// JmbIn is a typed value owned by the control side and received through its
// mailbox. At most one update is taken per block.
type JmbIn[T any] struct {
	param   *param.JmbParam[T]
	value   T
	box     *message.Mailbox[T]
	updated bool
}

// AddJmbIn binds a shared parameter owned by the control side.
func AddJmbIn[T any](s *State, p *param.JmbParam[T]) *JmbIn[T] {
	v := &JmbIn[T]{param: p, value: p.Default}
	if p.Owner != param.ControlSide {
		s.errs = append(s.errs, fmt.Errorf("bind %s: %w", p.Descriptor, ErrWrongOwner))
		return v
	}
	if !p.Shared {
		s.errs = append(s.errs, fmt.Errorf("bind %s: %w", p.Descriptor, ErrNotShared))
		return v
	}
	if !s.bind(p.Descriptor) {
		return v
	}
	box, err := message.Lookup[T](s.hub, p.ID)
	if err != nil {
		s.errs = append(s.errs, fmt.Errorf("bind %s: %w", p.Descriptor, err))
		return v
	}
	v.box = box
	s.inbound = append(s.inbound, v)
	return v
}

// HasUpdate reports whether a new value arrived for this block.
func (v *JmbIn[T]) HasUpdate() bool { return v.updated }

// Value returns the last received value. The pointer is only valid on the
// audio thread.
func (v *JmbIn[T]) Value() *T { return &v.value }

func (v *JmbIn[T]) poll() {
	v.updated = v.box.Poll(&v.value)
}
