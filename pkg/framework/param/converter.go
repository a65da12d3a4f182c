package param

import "fmt"

// Converter maps between a normalized value in [0,1] and a domain type.
// Denormalize(Normalize(x)) must give back x within the tolerance of T.
type Converter[T any] interface {
	Normalize(value T) float64
	Denormalize(normalized float64) T
	Format(value T, precision int) string
}

// BoolConverter maps false/true to 0/1.
type BoolConverter struct {
	Off string
	On  string
}

func (BoolConverter) Normalize(value bool) float64 {
	if value {
		return 1
	}
	return 0
}

func (BoolConverter) Denormalize(normalized float64) bool {
	return normalized >= 0.5
}

func (c BoolConverter) Format(value bool, _ int) string {
	if value {
		if c.On != "" {
			return c.On
		}
		return "On"
	}
	if c.Off != "" {
		return c.Off
	}
	return "Off"
}

// RawConverter passes the normalized value through unchanged.
type RawConverter struct{}

func (RawConverter) Normalize(value float64) float64 {
	return Clamp(value)
}

func (RawConverter) Denormalize(normalized float64) float64 {
	return normalized
}

func (RawConverter) Format(value float64, precision int) string {
	return fmt.Sprintf("%.*f", precision, value)
}
