// Package plugin provides the processor and controller bases a plugin builds
// on.
package plugin

import (
	"errors"
	"fmt"
	"io"
	"sync/atomic"

	"github.com/justyntemme/jsgain/pkg/framework/bus"
	"github.com/justyntemme/jsgain/pkg/framework/message"
	"github.com/justyntemme/jsgain/pkg/framework/param"
	"github.com/justyntemme/jsgain/pkg/framework/process"
	"github.com/justyntemme/jsgain/pkg/framework/rt"
)

var (
	// ErrSampleSize is returned for a sample size other than 32 or 64.
	ErrSampleSize = errors.New("unsupported sample size")
	// ErrSampleRate is returned for a non-positive sample rate.
	ErrSampleRate = errors.New("invalid sample rate")
)

// AudioProcessor is the interface plugins implement for audio processing
type AudioProcessor interface {
	// ProcessAudio processes one block - zero allocations allowed!
	// It also runs for blocks without samples, which hosts send to flush
	// parameter changes, so edges and messages seen in such a block are
	// handled there.
	ProcessAudio(ctx *process.Context)
}

// BaseProcessor drives the audio side of a plugin: it owns the rt.State,
// brackets each block with its before/after processing steps and keeps
// failures inside the block.
type BaseProcessor struct {
	registry *param.Registry
	buses    *bus.Configuration
	state    *rt.State
	audio    AudioProcessor

	sampleRate   float64
	maxBlockSize int
	sampleSize   process.SampleSize
	active       bool

	panics atomic.Uint64

	// Optional callbacks for customization
	onSetupProcessing func(sampleRate float64, maxBlockSize int, sampleSize process.SampleSize) error
	onSetActive       func(active bool) error
}

// NewBaseProcessor creates a processor base over a frozen registry and the
// hub of the plugin instance.
func NewBaseProcessor(registry *param.Registry, hub *message.Hub, buses *bus.Configuration) *BaseProcessor {
	if buses == nil {
		buses = bus.NewStereoConfiguration() // Default to stereo
	}
	return &BaseProcessor{
		registry:   registry,
		buses:      buses,
		state:      rt.NewState(registry, hub),
		sampleSize: process.Sample32,
	}
}

// State returns the audio-side values for binding.
func (b *BaseProcessor) State() *rt.State {
	return b.state
}

// SetAudioProcessor sets the effect run for each block.
func (b *BaseProcessor) SetAudioProcessor(a AudioProcessor) {
	b.audio = a
}

// Buses returns the bus arrangement.
func (b *BaseProcessor) Buses() *bus.Configuration {
	return b.buses
}

// OnSetupProcessing sets a callback for SetupProcessing
func (b *BaseProcessor) OnSetupProcessing(fn func(sampleRate float64, maxBlockSize int, sampleSize process.SampleSize) error) {
	b.onSetupProcessing = fn
}

// OnSetActive sets a callback for activation/deactivation
func (b *BaseProcessor) OnSetActive(fn func(active bool) error) {
	b.onSetActive = fn
}

// CanProcessSampleSize reports whether blocks of size can be processed.
func (b *BaseProcessor) CanProcessSampleSize(size process.SampleSize) bool {
	return size == process.Sample32 || size == process.Sample64
}

// SetupProcessing records the processing parameters announced by the host.
func (b *BaseProcessor) SetupProcessing(sampleRate float64, maxBlockSize int, sampleSize process.SampleSize) error {
	if !b.CanProcessSampleSize(sampleSize) {
		return fmt.Errorf("setup processing with %d bits: %w", sampleSize, ErrSampleSize)
	}
	if sampleRate <= 0 {
		return fmt.Errorf("setup processing at %f Hz: %w", sampleRate, ErrSampleRate)
	}
	b.sampleRate = sampleRate
	b.maxBlockSize = maxBlockSize
	b.sampleSize = sampleSize
	if b.onSetupProcessing != nil {
		return b.onSetupProcessing(sampleRate, maxBlockSize, sampleSize)
	}
	return nil
}

// SetActive implements activation/deactivation by the host.
func (b *BaseProcessor) SetActive(active bool) error {
	b.active = active
	if b.onSetActive != nil {
		return b.onSetActive(active)
	}
	return nil
}

// Active reports whether the processor is active.
func (b *BaseProcessor) Active() bool {
	return b.active
}

// SampleRate returns the current sample rate
func (b *BaseProcessor) SampleRate() float64 {
	return b.sampleRate
}

// MaxBlockSize returns the block size announced by the host.
func (b *BaseProcessor) MaxBlockSize() int {
	return b.maxBlockSize
}

// SampleSize returns the sample size announced by the host.
func (b *BaseProcessor) SampleSize() process.SampleSize {
	return b.sampleSize
}

// Process runs one block. A block with an unsupported channel layout is
// rejected before anything is touched. A panic in the effect degrades the
// block to pass-through. Blocks without samples still run the effect.
func (b *BaseProcessor) Process(ctx *process.Context) (result Result) {
	if !b.buses.Supports(ctx.NumInputChannels(), ctx.NumOutputChannels()) {
		return ResultNotImplemented
	}
	if !b.CanProcessSampleSize(ctx.SampleSize) {
		return ResultNotImplemented
	}

	defer func() {
		if r := recover(); r != nil {
			b.panics.Add(1)
			ctx.PassThrough()
			result = ResultOK
		}
	}()

	b.state.BeforeProcessing(ctx)
	if b.audio != nil {
		b.audio.ProcessAudio(ctx)
	}
	b.state.AfterProcessing(ctx)
	return ResultOK
}

// Panics returns the number of blocks that recovered from a panic.
func (b *BaseProcessor) Panics() uint64 {
	return b.panics.Load()
}

// GetState saves the processor state.
func (b *BaseProcessor) GetState(w io.Writer) error {
	return b.state.WriteState(w)
}

// SetState restores the processor state.
func (b *BaseProcessor) SetState(r io.Reader) error {
	return b.state.ReadState(r)
}
