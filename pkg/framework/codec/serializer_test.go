package codec

import (
	"bytes"
	"errors"
	"io"
	"math"
	"strings"
	"testing"
)

func TestSerializerRoundTrip(t *testing.T) {
	t.Run("Float64", func(t *testing.T) {
		for _, v := range []float64{0, 1, -1, 0.7, math.Pi, math.MaxFloat64, math.SmallestNonzeroFloat64} {
			var buf bytes.Buffer
			if err := (Float64{}).Write(v, &buf); err != nil {
				t.Fatalf("Write(%v): %v", v, err)
			}
			var got float64
			if err := (Float64{}).Read(&buf, &got); err != nil {
				t.Fatalf("Read: %v", err)
			}
			if got != v {
				t.Errorf("Round trip %v -> %v", v, got)
			}
		}
	})

	t.Run("Int64", func(t *testing.T) {
		for _, v := range []int64{0, -1, 1234567890123, math.MinInt64} {
			var buf bytes.Buffer
			(Int64{}).Write(v, &buf)
			var got int64
			if err := (Int64{}).Read(&buf, &got); err != nil || got != v {
				t.Errorf("Round trip %d -> %d (%v)", v, got, err)
			}
		}
	})

	t.Run("Int32", func(t *testing.T) {
		var buf bytes.Buffer
		(Int32{}).Write(-42, &buf)
		var got int32
		if err := (Int32{}).Read(&buf, &got); err != nil || got != -42 {
			t.Errorf("Round trip -42 -> %d (%v)", got, err)
		}
	})

	t.Run("Bool", func(t *testing.T) {
		for _, v := range []bool{true, false} {
			var buf bytes.Buffer
			(Bool{}).Write(v, &buf)
			got := !v
			if err := (Bool{}).Read(&buf, &got); err != nil || got != v {
				t.Errorf("Round trip %v -> %v (%v)", v, got, err)
			}
		}
	})

	t.Run("String", func(t *testing.T) {
		s := String{Budget: 16}
		for _, v := range []string{"", "hello", "exactly16bytes!!"} {
			var buf bytes.Buffer
			if err := s.Write(v, &buf); err != nil {
				t.Fatalf("Write(%q): %v", v, err)
			}
			var got string
			if err := s.Read(&buf, &got); err != nil || got != v {
				t.Errorf("Round trip %q -> %q (%v)", v, got, err)
			}
		}
	})
}

func TestReadFailureLeavesValue(t *testing.T) {
	t.Run("Float64", func(t *testing.T) {
		got := 0.25
		err := (Float64{}).Read(bytes.NewReader([]byte{1, 2, 3}), &got)
		if err == nil {
			t.Fatal("Expected error on short read")
		}
		if got != 0.25 {
			t.Errorf("Value clobbered: %v", got)
		}
	})

	t.Run("StringOverBudget", func(t *testing.T) {
		var buf bytes.Buffer
		String{Budget: 64}.Write(strings.Repeat("x", 40), &buf)

		got := "keep"
		err := String{Budget: 8}.Read(&buf, &got)
		if !errors.Is(err, ErrTooLong) {
			t.Errorf("Expected ErrTooLong, got %v", err)
		}
		if got != "keep" {
			t.Errorf("Value clobbered: %q", got)
		}
	})

	t.Run("StringTruncated", func(t *testing.T) {
		var buf bytes.Buffer
		String{}.Write("truncated payload", &buf)
		data := buf.Bytes()[:8]

		got := "keep"
		if err := (String{}).Read(bytes.NewReader(data), &got); err == nil {
			t.Error("Expected error on truncated payload")
		}
		if got != "keep" {
			t.Errorf("Value clobbered: %q", got)
		}
	})

	t.Run("NormalizedNaN", func(t *testing.T) {
		var buf bytes.Buffer
		(Float64{}).Write(math.NaN(), &buf)
		got := 0.5
		if err := (Normalized{}).Read(&buf, &got); !errors.Is(err, ErrInvalidValue) {
			t.Errorf("Expected ErrInvalidValue, got %v", err)
		}
		if got != 0.5 {
			t.Errorf("Value clobbered: %v", got)
		}
	})
}

func TestNormalizedClamp(t *testing.T) {
	tests := []struct {
		in, want float64
	}{
		{-0.5, 0},
		{0.3, 0.3},
		{7, 1},
	}
	for _, tt := range tests {
		var buf bytes.Buffer
		(Normalized{}).Write(tt.in, &buf)
		var got float64
		if err := (Normalized{}).Read(&buf, &got); err != nil || got != tt.want {
			t.Errorf("Normalized(%v) = %v (%v), want %v", tt.in, got, err, tt.want)
		}
	}
}

func TestFixedText(t *testing.T) {
	t.Run("MaxLengthRoundTrip", func(t *testing.T) {
		var src [16]byte
		copy(src[:], "fifteen chars!!")

		var buf bytes.Buffer
		if err := NewWriter(&buf).WriteFixedText(src[:]); err != nil {
			t.Fatal(err)
		}
		if buf.Len() != 16 {
			t.Fatalf("Expected 16 bytes written, got %d", buf.Len())
		}

		var dst [16]byte
		if err := NewReader(&buf).ReadFixedText(dst[:]); err != nil {
			t.Fatal(err)
		}
		if got := string(dst[:TextLen(dst[:])]); got != "fifteen chars!!" {
			t.Errorf("Got %q", got)
		}
	})

	t.Run("UnterminatedSourceIsTruncated", func(t *testing.T) {
		var src [8]byte
		copy(src[:], "abcdefgh")

		var buf bytes.Buffer
		NewWriter(&buf).WriteFixedText(src[:])

		var dst [8]byte
		NewReader(&buf).ReadFixedText(dst[:])
		if got := string(dst[:TextLen(dst[:])]); got != "abcdefg" {
			t.Errorf("Got %q, want %q", got, "abcdefg")
		}
		if dst[7] != 0 {
			t.Error("Missing terminator")
		}
	})

	t.Run("CorruptInputTerminated", func(t *testing.T) {
		garbage := bytes.Repeat([]byte{0xff}, 8)
		var dst [8]byte
		if err := NewReader(bytes.NewReader(garbage)).ReadFixedText(dst[:]); err != nil {
			t.Fatal(err)
		}
		if dst[7] != 0 {
			t.Error("Read must always terminate the buffer")
		}
		if TextLen(dst[:]) != 7 {
			t.Errorf("Expected length 7, got %d", TextLen(dst[:]))
		}
	})

	t.Run("ShortReadLeavesValue", func(t *testing.T) {
		dst := [8]byte{'k', 'e', 'e', 'p'}
		err := NewReader(bytes.NewReader([]byte("abc"))).ReadFixedText(dst[:])
		if !errors.Is(err, io.ErrUnexpectedEOF) {
			t.Errorf("Expected ErrUnexpectedEOF, got %v", err)
		}
		if string(dst[:4]) != "keep" {
			t.Errorf("Value clobbered: %q", dst[:4])
		}
	})
}
