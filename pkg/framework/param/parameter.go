// Package param declares the parameters exposed by a plugin and the
// registry shared, read-only, by the audio side and the control side.
package param

import (
	"fmt"
	"io"

	"github.com/kr/pretty"

	"github.com/justyntemme/jsgain/pkg/framework/codec"
)

// Flags for parameters
const (
	CanAutomate     uint32 = 1 << 0
	IsReadOnly      uint32 = 1 << 1
	IsWrapAround    uint32 = 1 << 2
	IsList          uint32 = 1 << 3
	IsHidden        uint32 = 1 << 4
	IsProgramChange uint32 = 1 << 15
	IsBypass        uint32 = 1 << 16
)

// Kind tells how a parameter travels.
type Kind int

const (
	// KindVst parameters are host visible, carried as a normalized value.
	KindVst Kind = iota
	// KindJmb parameters carry an arbitrary typed value the host never sees.
	KindJmb
)

func (k Kind) String() string {
	if k == KindVst {
		return "vst"
	}
	return "jmb"
}

// Owner identifies the side holding the authoritative copy of a value.
type Owner int

const (
	// AudioSide is the real-time processing side.
	AudioSide Owner = iota
	// ControlSide is the presentation side.
	ControlSide
)

func (o Owner) String() string {
	if o == AudioSide {
		return "rt"
	}
	return "gui"
}

// Descriptor describes one parameter. Its identity never changes once it is
// registered.
type Descriptor struct {
	ID        uint32
	Name      string
	ShortName string
	Unit      string
	StepCount int32
	Flags     uint32

	Kind      Kind
	Owner     Owner
	Persisted bool
	Shared    bool

	// DefaultNormalized is the default of a KindVst parameter.
	DefaultNormalized float64

	formatNormalized func(normalized float64, precision int) string
	newMailbox       func() any
	discard          func(r io.Reader) error
}

// IsVst reports whether the parameter is host visible.
func (d *Descriptor) IsVst() bool {
	return d.Kind == KindVst
}

// SavedBy returns the side whose state stream persists this parameter.
// Host-visible parameters are always saved with the processor state.
func (d *Descriptor) SavedBy() Owner {
	if d.Kind == KindVst {
		return AudioSide
	}
	return d.Owner
}

// FormatNormalized formats a normalized value through the parameter's
// converter. Jmb parameters have no normalized form.
func (d *Descriptor) FormatNormalized(normalized float64, precision int) string {
	if d.formatNormalized == nil {
		return fmt.Sprintf("%.*f", precision, normalized)
	}
	return d.formatNormalized(normalized, precision)
}

// Discard reads and drops one persisted value of this parameter. It is used
// by a side that parses a stream holding values it does not mirror.
func (d *Descriptor) Discard(r io.Reader) error {
	if d.discard != nil {
		return d.discard(r)
	}
	var v float64
	return codec.Float64{}.Read(r, &v)
}

// String returns a one line description used by debug dumps.
func (d *Descriptor) String() string {
	return fmt.Sprintf("%d:%s[%s/%s persisted=%t shared=%t]",
		d.ID, d.Name, d.Kind, d.Owner, d.Persisted, d.Shared)
}

// VstParam is a host-visible parameter whose normalized value maps to T.
type VstParam[T any] struct {
	*Descriptor
	Converter Converter[T]
	Default   T
}

// Normalize converts v to a normalized value clamped to [0,1].
func (p *VstParam[T]) Normalize(v T) float64 {
	return Clamp(p.Converter.Normalize(v))
}

// Denormalize converts a normalized value to T.
func (p *VstParam[T]) Denormalize(normalized float64) T {
	return p.Converter.Denormalize(Clamp(normalized))
}

// Format returns the display string of v.
func (p *VstParam[T]) Format(v T, precision int) string {
	return p.Converter.Format(v, precision)
}

// JmbParam is a typed parameter that travels through a serializer and,
// when shared, through a mailbox between the two sides.
type JmbParam[T any] struct {
	*Descriptor
	Serializer codec.Serializer[T]
	Default    T

	formatter func(T) string
}

// Format returns the display string of v.
func (p *JmbParam[T]) Format(v T) string {
	if p.formatter != nil {
		return p.formatter(v)
	}
	return pretty.Sprint(v)
}

// Clamp limits a normalized value to [0,1].
func Clamp(value float64) float64 {
	if value < 0 || value != value {
		return 0
	}
	if value > 1 {
		return 1
	}
	return value
}
