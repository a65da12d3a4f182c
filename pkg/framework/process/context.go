// Package process provides the audio processing context handed to a
// processor once per block.
package process

import "fmt"

// SampleSize is the width of the samples of a block.
type SampleSize int

const (
	// Sample32 blocks carry float32 buffers.
	Sample32 SampleSize = 32
	// Sample64 blocks carry float64 buffers.
	Sample64 SampleSize = 64
)

func (s SampleSize) String() string {
	return fmt.Sprintf("%dbit", int(s))
}

// Context provides a clean API for audio processing with zero allocations.
// The host fills the buffers and InputChanges before each block; the
// processor fills Output, OutputChanges and SilenceFlags.
type Context struct {
	SampleRate float64
	SampleSize SampleSize

	Input32  [][]float32
	Output32 [][]float32
	Input64  [][]float64
	Output64 [][]float64

	// InputChanges are the parameter changes sent by the host for this block.
	InputChanges *ParamChanges
	// OutputChanges are values the processor reports back to the host.
	OutputChanges *ParamChanges
	// SilenceFlags has bit n set when output channel n is silent.
	SilenceFlags uint64

	maxBlockSize int
}

// NewContext creates a new process context with pre-allocated change lists
func NewContext(maxBlockSize, maxChanges int) *Context {
	return &Context{
		SampleSize:    Sample32,
		InputChanges:  NewParamChanges(maxChanges),
		OutputChanges: NewParamChanges(maxChanges),
		maxBlockSize:  maxBlockSize,
	}
}

// MaxBlockSize returns the largest block the host announced.
func (c *Context) MaxBlockSize() int {
	return c.maxBlockSize
}

// NumSamples returns the number of samples to process
func (c *Context) NumSamples() int {
	if c.SampleSize == Sample64 {
		return blockLen(c.Input64, c.Output64)
	}
	return blockLen(c.Input32, c.Output32)
}

func blockLen[S float32 | float64](in, out [][]S) int {
	if len(in) > 0 && len(in[0]) > 0 {
		return len(in[0])
	}
	if len(out) > 0 {
		return len(out[0])
	}
	return 0
}

// NumInputChannels returns the number of input channels
func (c *Context) NumInputChannels() int {
	if c.SampleSize == Sample64 {
		return len(c.Input64)
	}
	return len(c.Input32)
}

// NumOutputChannels returns the number of output channels
func (c *Context) NumOutputChannels() int {
	if c.SampleSize == Sample64 {
		return len(c.Output64)
	}
	return len(c.Output32)
}

// SetSilent sets or clears the silence flag of an output channel.
func (c *Context) SetSilent(ch int, silent bool) {
	if ch < 0 || ch >= 64 {
		return
	}
	if silent {
		c.SilenceFlags |= 1 << uint(ch)
	} else {
		c.SilenceFlags &^= 1 << uint(ch)
	}
}

// IsSilent reports the silence flag of an output channel.
func (c *Context) IsSilent(ch int) bool {
	if ch < 0 || ch >= 64 {
		return false
	}
	return c.SilenceFlags&(1<<uint(ch)) != 0
}

// PassThrough copies input to output (for bypass and error recovery)
func (c *Context) PassThrough() {
	if c.SampleSize == Sample64 {
		CopyChannels(c.Input64, c.Output64)
	} else {
		CopyChannels(c.Input32, c.Output32)
	}
}

// Clear zeros the output buffers
func (c *Context) Clear() {
	if c.SampleSize == Sample64 {
		clearChannels(c.Output64)
	} else {
		clearChannels(c.Output32)
	}
}

// BeginBlock resets the per-block outputs. Hosts call it before filling a
// block.
func (c *Context) BeginBlock() {
	c.InputChanges.Reset()
	c.OutputChanges.Reset()
	c.SilenceFlags = 0
}
