// Package codec provides the binary serializers used for persisted plugin
// state and for message payloads.
package codec

import (
	"encoding/binary"
	"errors"
	"io"
	"math"
)

var (
	// ErrTooLong is returned when a length-prefixed value exceeds its budget.
	ErrTooLong = errors.New("value exceeds byte budget")
	// ErrInvalidValue is returned when a decoded value is not acceptable.
	ErrInvalidValue = errors.New("invalid value")
)

// Stream wraps a reader and/or writer with little-endian primitive helpers.
// A Stream keeps a scratch buffer so primitive reads and writes do not
// allocate.
type Stream struct {
	r   io.Reader
	w   io.Writer
	buf [8]byte
}

// NewReader creates a stream reading from r.
func NewReader(r io.Reader) *Stream {
	return &Stream{r: r}
}

// NewWriter creates a stream writing to w.
func NewWriter(w io.Writer) *Stream {
	return &Stream{w: w}
}

func (s *Stream) write(n int) error {
	_, err := s.w.Write(s.buf[:n])
	return err
}

func (s *Stream) read(n int) error {
	_, err := io.ReadFull(s.r, s.buf[:n])
	return err
}

// WriteUint16 writes a uint16 to the stream
func (s *Stream) WriteUint16(value uint16) error {
	binary.LittleEndian.PutUint16(s.buf[:2], value)
	return s.write(2)
}

// ReadUint16 reads a uint16 from the stream
func (s *Stream) ReadUint16() (uint16, error) {
	if err := s.read(2); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(s.buf[:2]), nil
}

// WriteInt32 writes an int32 to the stream
func (s *Stream) WriteInt32(value int32) error {
	binary.LittleEndian.PutUint32(s.buf[:4], uint32(value))
	return s.write(4)
}

// ReadInt32 reads an int32 from the stream
func (s *Stream) ReadInt32() (int32, error) {
	if err := s.read(4); err != nil {
		return 0, err
	}
	return int32(binary.LittleEndian.Uint32(s.buf[:4])), nil
}

// WriteInt64 writes an int64 to the stream
func (s *Stream) WriteInt64(value int64) error {
	binary.LittleEndian.PutUint64(s.buf[:8], uint64(value))
	return s.write(8)
}

// ReadInt64 reads an int64 from the stream
func (s *Stream) ReadInt64() (int64, error) {
	if err := s.read(8); err != nil {
		return 0, err
	}
	return int64(binary.LittleEndian.Uint64(s.buf[:8])), nil
}

// WriteFloat64 writes a float64 to the stream
func (s *Stream) WriteFloat64(value float64) error {
	binary.LittleEndian.PutUint64(s.buf[:8], math.Float64bits(value))
	return s.write(8)
}

// ReadFloat64 reads a float64 from the stream
func (s *Stream) ReadFloat64() (float64, error) {
	if err := s.read(8); err != nil {
		return 0, err
	}
	return math.Float64frombits(binary.LittleEndian.Uint64(s.buf[:8])), nil
}

// WriteBool writes a bool as a single byte
func (s *Stream) WriteBool(value bool) error {
	s.buf[0] = 0
	if value {
		s.buf[0] = 1
	}
	return s.write(1)
}

// ReadBool reads a single byte bool
func (s *Stream) ReadBool() (bool, error) {
	if err := s.read(1); err != nil {
		return false, err
	}
	return s.buf[0] != 0, nil
}

// WriteString writes a string to the stream with length prefix
func (s *Stream) WriteString(str string, budget int) error {
	if len(str) > budget {
		return ErrTooLong
	}
	if err := s.WriteInt32(int32(len(str))); err != nil {
		return err
	}
	if str == "" {
		return nil
	}
	_, err := io.WriteString(s.w, str)
	return err
}

// ReadString reads a length-prefixed string of at most budget bytes
func (s *Stream) ReadString(budget int) (string, error) {
	length, err := s.ReadInt32()
	if err != nil {
		return "", err
	}
	if length < 0 || int(length) > budget {
		return "", ErrTooLong
	}
	if length == 0 {
		return "", nil
	}
	buf := make([]byte, length)
	if _, err := io.ReadFull(s.r, buf); err != nil {
		return "", err
	}
	return string(buf), nil
}

// WriteFixedText writes text as exactly len(text) bytes: the bytes up to the
// first NUL, truncated to leave room for a terminator, then zero padding.
func (s *Stream) WriteFixedText(text []byte) error {
	if len(text) == 0 {
		return nil
	}
	n := TextLen(text)
	if n > len(text)-1 {
		n = len(text) - 1
	}
	if _, err := s.w.Write(text[:n]); err != nil {
		return err
	}
	var zero [64]byte
	for pad := len(text) - n; pad > 0; {
		chunk := pad
		if chunk > len(zero) {
			chunk = len(zero)
		}
		if _, err := s.w.Write(zero[:chunk]); err != nil {
			return err
		}
		pad -= chunk
	}
	return nil
}

// ReadFixedText fills dst with exactly len(dst) bytes from the stream. The
// last byte is always forced to NUL regardless of the input. dst is left
// untouched when the read fails.
func (s *Stream) ReadFixedText(dst []byte) error {
	if len(dst) == 0 {
		return nil
	}
	scratch := make([]byte, len(dst))
	if _, err := io.ReadFull(s.r, scratch); err != nil {
		return err
	}
	copy(dst, scratch)
	dst[len(dst)-1] = 0
	return nil
}

// TextLen returns the number of bytes before the first NUL.
func TextLen(text []byte) int {
	for i, b := range text {
		if b == 0 {
			return i
		}
	}
	return len(text)
}
