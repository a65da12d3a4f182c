package main

import (
	"fmt"
	"math"
	"os"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// signal is deinterleaved audio in [-1,1].
type signal struct {
	SampleRate int
	BitDepth   int
	Channels   [][]float64
}

func (s *signal) Len() int {
	if len(s.Channels) == 0 {
		return 0
	}
	return len(s.Channels[0])
}

func readWAV(path string) (*signal, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	dec := wav.NewDecoder(f)
	if dec == nil {
		return nil, fmt.Errorf("wav: error decoding")
	}
	if !dec.IsValidFile() {
		return nil, fmt.Errorf("wav: %s is not a valid wav file", path)
	}
	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("wav: %w", err)
	}

	numChans := int(dec.NumChans)
	if numChans < 1 || numChans > 2 {
		return nil, fmt.Errorf("wav: %d channels, only mono and stereo are supported", numChans)
	}
	bitDepth := int(dec.BitDepth)
	scale := float64(int64(1) << (bitDepth - 1))

	s := &signal{SampleRate: int(dec.SampleRate), BitDepth: bitDepth, Channels: make([][]float64, numChans)}
	frames := len(buf.Data) / numChans
	for ch := range s.Channels {
		s.Channels[ch] = make([]float64, frames)
		for i := 0; i < frames; i++ {
			s.Channels[ch][i] = float64(buf.Data[i*numChans+ch]) / scale
		}
	}
	return s, nil
}

func writeWAV(path string, s *signal) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	numChans := len(s.Channels)
	enc := wav.NewEncoder(f, s.SampleRate, s.BitDepth, numChans, 1)

	scale := float64(int64(1)<<(s.BitDepth-1)) - 1
	frames := s.Len()
	buf := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: numChans, SampleRate: s.SampleRate},
		SourceBitDepth: s.BitDepth,
		Data:           make([]int, frames*numChans),
	}
	for ch, data := range s.Channels {
		for i, v := range data {
			v = math.Max(-1, math.Min(1, v))
			buf.Data[i*numChans+ch] = int(math.Round(v * scale))
		}
	}

	if err := enc.Write(buf); err != nil {
		f.Close()
		return fmt.Errorf("wav: %w", err)
	}
	if err := enc.Close(); err != nil {
		f.Close()
		return fmt.Errorf("wav: %w", err)
	}
	return f.Close()
}

// tone generates a stereo 440Hz sine at level.
func tone(sampleRate int, seconds, level float64) *signal {
	frames := int(float64(sampleRate) * seconds)
	s := &signal{SampleRate: sampleRate, BitDepth: 16, Channels: [][]float64{make([]float64, frames), make([]float64, frames)}}
	for i := 0; i < frames; i++ {
		v := level * math.Sin(2*math.Pi*440*float64(i)/float64(sampleRate))
		s.Channels[0][i] = v
		s.Channels[1][i] = v
	}
	return s
}
