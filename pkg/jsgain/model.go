package jsgain

import (
	"fmt"
	"io"
	"math"
	"time"
	"unicode/utf8"

	"github.com/justyntemme/jsgain/pkg/dsp/gain"
	"github.com/justyntemme/jsgain/pkg/framework/codec"
	"github.com/justyntemme/jsgain/pkg/framework/param"
)

const (
	// UnityNormalized is the normalized value of unity gain.
	UnityNormalized = 0.7

	unityTolerance = 1e-5
)

// Gain is a linear multiplier, never negative.
type Gain float64

// UnityGain leaves the signal unchanged.
const UnityGain Gain = gain.Unity

// Value returns the multiplier.
func (g Gain) Value() float64 { return float64(g) }

// Normalized maps the gain onto the cube curve: (g^(1/3)) * 0.7.
func (g Gain) Normalized() float64 {
	if g <= 0 {
		return 0
	}
	return math.Cbrt(float64(g)) * UnityNormalized
}

func (g Gain) String() string { return ToDBString(float64(g), 2) }

// GainConverter maps gains onto [0,1] with a cube curve where 0.7 is unity,
// leaving more of the range to attenuation than to amplification.
type GainConverter struct{}

func (GainConverter) Normalize(value Gain) float64 {
	return param.Clamp(value.Normalized())
}

// Denormalize returns (v/0.7)^3. A value within 1e-5 of 0.7 is exactly
// unity.
func (GainConverter) Denormalize(normalized float64) Gain {
	if math.Abs(normalized-UnityNormalized) < unityTolerance {
		return UnityGain
	}
	g := param.Clamp(normalized) / UnityNormalized
	return Gain(g * g * g)
}

func (GainConverter) Format(value Gain, precision int) string {
	return ToDBString(float64(value), precision)
}

// ToDBString formats a sample magnitude as signed decibels ("+0.00dB"), or
// "-oo" when it is silent.
func ToDBString(sample float64, precision int) string {
	return gain.ToDBString(sample, precision)
}

// Stats is published by the processor whenever the peak since the last
// reset moves.
type Stats struct {
	SampleRate    float64
	MaxSinceReset float64
	// ResetTime is the time of the last reset or new peak, in milliseconds
	// since the epoch.
	ResetTime int64
}

// StatsSerializer encodes Stats as two float64 and an int64.
type StatsSerializer struct{}

func (StatsSerializer) Write(value Stats, w io.Writer) error {
	s := codec.NewWriter(w)
	if err := s.WriteFloat64(value.SampleRate); err != nil {
		return err
	}
	if err := s.WriteFloat64(value.MaxSinceReset); err != nil {
		return err
	}
	return s.WriteInt64(value.ResetTime)
}

func (StatsSerializer) Read(r io.Reader, dst *Stats) error {
	s := codec.NewReader(r)
	var tmp Stats
	var err error
	if tmp.SampleRate, err = s.ReadFloat64(); err != nil {
		return err
	}
	if tmp.MaxSinceReset, err = s.ReadFloat64(); err != nil {
		return err
	}
	if tmp.ResetTime, err = s.ReadInt64(); err != nil {
		return err
	}
	*dst = tmp
	return nil
}

func formatStats(s Stats) string {
	return fmt.Sprintf("rate=%g max=%s reset=%d", s.SampleRate, ToDBString(s.MaxSinceReset, 2), s.ResetTime)
}

// MessageCapacity is the size of the text buffer of a UIMessage, including
// the terminating NUL.
const MessageCapacity = 128

// UIMessage is a text command sent by the controller to the processor. The
// text lives in a fixed buffer so the processor never allocates to read it.
type UIMessage struct {
	Timestamp int64
	Text      [MessageCapacity]byte
}

// NewUIMessage creates a message with text truncated to fit the buffer.
// Truncation never splits a UTF-8 sequence.
func NewUIMessage(timestamp int64, text string) UIMessage {
	msg := UIMessage{Timestamp: timestamp}
	msg.SetText(text)
	return msg
}

// SetText replaces the text, truncating it to MessageCapacity-1 bytes.
func (m *UIMessage) SetText(text string) {
	if len(text) > MessageCapacity-1 {
		n := MessageCapacity - 1
		for n > 0 && !utf8.RuneStart(text[n]) {
			n--
		}
		text = text[:n]
	}
	m.Text = [MessageCapacity]byte{}
	copy(m.Text[:], text)
}

// TextBytes returns the text without allocating.
func (m *UIMessage) TextBytes() []byte {
	return m.Text[:codec.TextLen(m.Text[:])]
}

// String returns the text.
func (m UIMessage) String() string {
	return string(m.TextBytes())
}

// UIMessageSerializer encodes the timestamp followed by the whole text
// buffer. Reading always yields a NUL-terminated buffer.
type UIMessageSerializer struct{}

func (UIMessageSerializer) Write(value UIMessage, w io.Writer) error {
	s := codec.NewWriter(w)
	if err := s.WriteInt64(value.Timestamp); err != nil {
		return err
	}
	return s.WriteFixedText(value.Text[:])
}

func (UIMessageSerializer) Read(r io.Reader, dst *UIMessage) error {
	s := codec.NewReader(r)
	var tmp UIMessage
	var err error
	if tmp.Timestamp, err = s.ReadInt64(); err != nil {
		return err
	}
	if err := s.ReadFixedText(tmp.Text[:]); err != nil {
		return err
	}
	*dst = tmp
	return nil
}

// Clock returns the current time in milliseconds since the epoch.
type Clock func() int64

// SystemClock reads the wall clock.
func SystemClock() int64 {
	return time.Now().UnixMilli()
}
