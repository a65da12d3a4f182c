package codec

import (
	"io"
	"math"
)

// Serializer reads and writes values of type T. Read must leave *dst
// untouched when it fails so a corrupt field never clobbers a value that was
// already in place.
type Serializer[T any] interface {
	Write(value T, w io.Writer) error
	Read(r io.Reader, dst *T) error
}

// Float64 serializes a float64 as 8 little-endian bytes.
type Float64 struct{}

func (Float64) Write(value float64, w io.Writer) error {
	return NewWriter(w).WriteFloat64(value)
}

func (Float64) Read(r io.Reader, dst *float64) error {
	v, err := NewReader(r).ReadFloat64()
	if err != nil {
		return err
	}
	*dst = v
	return nil
}

// Int32 serializes an int32 as 4 little-endian bytes.
type Int32 struct{}

func (Int32) Write(value int32, w io.Writer) error {
	return NewWriter(w).WriteInt32(value)
}

func (Int32) Read(r io.Reader, dst *int32) error {
	v, err := NewReader(r).ReadInt32()
	if err != nil {
		return err
	}
	*dst = v
	return nil
}

// Int64 serializes an int64 as 8 little-endian bytes.
type Int64 struct{}

func (Int64) Write(value int64, w io.Writer) error {
	return NewWriter(w).WriteInt64(value)
}

func (Int64) Read(r io.Reader, dst *int64) error {
	v, err := NewReader(r).ReadInt64()
	if err != nil {
		return err
	}
	*dst = v
	return nil
}

// Bool serializes a bool as a single byte.
type Bool struct{}

func (Bool) Write(value bool, w io.Writer) error {
	return NewWriter(w).WriteBool(value)
}

func (Bool) Read(r io.Reader, dst *bool) error {
	v, err := NewReader(r).ReadBool()
	if err != nil {
		return err
	}
	*dst = v
	return nil
}

// String serializes a string with an int32 length prefix. Strings longer
// than Budget bytes are rejected on write and on read.
type String struct {
	Budget int
}

// DefaultStringBudget is used when String.Budget is zero.
const DefaultStringBudget = 1024

func (s String) budget() int {
	if s.Budget <= 0 {
		return DefaultStringBudget
	}
	return s.Budget
}

func (s String) Write(value string, w io.Writer) error {
	return NewWriter(w).WriteString(value, s.budget())
}

func (s String) Read(r io.Reader, dst *string) error {
	v, err := NewReader(r).ReadString(s.budget())
	if err != nil {
		return err
	}
	*dst = v
	return nil
}

// Normalized serializes a normalized parameter value, clamping to [0,1] on
// read so a corrupt stream cannot push a parameter out of range.
type Normalized struct{}

func (Normalized) Write(value float64, w io.Writer) error {
	return NewWriter(w).WriteFloat64(value)
}

func (Normalized) Read(r io.Reader, dst *float64) error {
	v, err := NewReader(r).ReadFloat64()
	if err != nil {
		return err
	}
	if math.IsNaN(v) {
		return ErrInvalidValue
	}
	if v < 0 {
		v = 0
	} else if v > 1 {
		v = 1
	}
	*dst = v
	return nil
}
