package param

import (
	"io"

	"github.com/justyntemme/jsgain/pkg/framework/codec"
	"github.com/justyntemme/jsgain/pkg/framework/message"
)

// VstBuilder provides a fluent API for creating host-visible parameters
type VstBuilder[T any] struct {
	param *VstParam[T]
}

// Vst creates a new host-visible parameter builder. The parameter is saved
// with the processor state unless Transient is called.
func Vst[T any](id uint32, name string, conv Converter[T]) *VstBuilder[T] {
	var zero T
	return &VstBuilder[T]{
		param: &VstParam[T]{
			Descriptor: &Descriptor{
				ID:        id,
				Name:      name,
				ShortName: name,
				Flags:     CanAutomate,
				Kind:      KindVst,
				Owner:     AudioSide,
				Persisted: true,
				Shared:    true,
			},
			Converter: conv,
			Default:   zero,
		},
	}
}

// ShortName sets the short name
func (b *VstBuilder[T]) ShortName(name string) *VstBuilder[T] {
	b.param.ShortName = name
	return b
}

// Unit sets the unit string
func (b *VstBuilder[T]) Unit(unit string) *VstBuilder[T] {
	b.param.Unit = unit
	return b
}

// Steps sets the number of discrete steps
func (b *VstBuilder[T]) Steps(count int32) *VstBuilder[T] {
	b.param.StepCount = count
	return b
}

// Default sets the default value (in domain type, not normalized)
func (b *VstBuilder[T]) Default(value T) *VstBuilder[T] {
	b.param.Default = value
	return b
}

// Flags sets parameter flags
func (b *VstBuilder[T]) Flags(flags uint32) *VstBuilder[T] {
	b.param.Flags = flags
	return b
}

// ReadOnly marks the parameter as read-only
func (b *VstBuilder[T]) ReadOnly() *VstBuilder[T] {
	b.param.Flags |= IsReadOnly
	b.param.Flags &^= CanAutomate // Remove automation flag
	return b
}

// Hidden marks the parameter as hidden
func (b *VstBuilder[T]) Hidden() *VstBuilder[T] {
	b.param.Flags |= IsHidden
	return b
}

// Bypass marks this as the bypass parameter
func (b *VstBuilder[T]) Bypass() *VstBuilder[T] {
	b.param.Flags |= IsBypass
	return b
}

// Transient excludes the parameter from saved state
func (b *VstBuilder[T]) Transient() *VstBuilder[T] {
	b.param.Persisted = false
	return b
}

// Build returns the configured parameter
func (b *VstBuilder[T]) Build() *VstParam[T] {
	p := b.param
	p.DefaultNormalized = Clamp(p.Converter.Normalize(p.Default))
	p.formatNormalized = func(normalized float64, precision int) string {
		return p.Format(p.Denormalize(normalized), precision)
	}
	return p
}

// Register builds the parameter and adds it to r.
func (b *VstBuilder[T]) Register(r *Registry) (*VstParam[T], error) {
	p := b.Build()
	if err := r.Add(p.Descriptor); err != nil {
		return nil, err
	}
	return p, nil
}

// MustRegister is Register that panics on error. Use it while declaring the
// parameters of a plugin, where a duplicate id is a programming error.
func (b *VstBuilder[T]) MustRegister(r *Registry) *VstParam[T] {
	p, err := b.Register(r)
	if err != nil {
		panic(err)
	}
	return p
}

// Bool creates an on/off parameter builder
func Bool(id uint32, name string) *VstBuilder[bool] {
	return Vst[bool](id, name, BoolConverter{}).Steps(1)
}

// BypassParameter creates the standard bypass parameter builder
func BypassParameter(id uint32, name string) *VstBuilder[bool] {
	return Vst[bool](id, name, BoolConverter{Off: "Active", On: "Bypassed"}).
		Steps(1).
		Bypass()
}

// Raw creates a parameter builder whose value is the normalized value itself
func Raw(id uint32, name string) *VstBuilder[float64] {
	return Vst[float64](id, name, RawConverter{})
}

// JmbBuilder provides a fluent API for creating typed, host-invisible parameters
type JmbBuilder[T any] struct {
	param *JmbParam[T]
}

// Jmb creates a new typed parameter builder. By default the value is owned by
// the audio side, persisted and not shared.
func Jmb[T any](id uint32, name string, ser codec.Serializer[T]) *JmbBuilder[T] {
	return &JmbBuilder[T]{
		param: &JmbParam[T]{
			Descriptor: &Descriptor{
				ID:        id,
				Name:      name,
				ShortName: name,
				Kind:      KindJmb,
				Owner:     AudioSide,
				Persisted: true,
			},
			Serializer: ser,
		},
	}
}

// Default sets the default value
func (b *JmbBuilder[T]) Default(value T) *JmbBuilder[T] {
	b.param.Default = value
	return b
}

// RTOwned makes the audio side the owner of the value
func (b *JmbBuilder[T]) RTOwned() *JmbBuilder[T] {
	b.param.Owner = AudioSide
	return b
}

// GUIOwned makes the control side the owner of the value
func (b *JmbBuilder[T]) GUIOwned() *JmbBuilder[T] {
	b.param.Owner = ControlSide
	return b
}

// Shared makes the value visible to the side that does not own it
func (b *JmbBuilder[T]) Shared() *JmbBuilder[T] {
	b.param.Shared = true
	return b
}

// Transient excludes the parameter from saved state
func (b *JmbBuilder[T]) Transient() *JmbBuilder[T] {
	b.param.Persisted = false
	return b
}

// Formatter sets the function used to display the value in debug dumps
func (b *JmbBuilder[T]) Formatter(fn func(T) string) *JmbBuilder[T] {
	b.param.formatter = fn
	return b
}

// Build returns the configured parameter
func (b *JmbBuilder[T]) Build() *JmbParam[T] {
	p := b.param
	if p.Shared {
		p.newMailbox = func() any { return message.NewMailbox[T]() }
	}
	p.discard = func(r io.Reader) error {
		var v T
		return p.Serializer.Read(r, &v)
	}
	return p
}

// Register builds the parameter and adds it to r.
func (b *JmbBuilder[T]) Register(r *Registry) (*JmbParam[T], error) {
	p := b.Build()
	if err := r.Add(p.Descriptor); err != nil {
		return nil, err
	}
	return p, nil
}

// MustRegister is Register that panics on error.
func (b *JmbBuilder[T]) MustRegister(r *Registry) *JmbParam[T] {
	p, err := b.Register(r)
	if err != nil {
		panic(err)
	}
	return p
}
