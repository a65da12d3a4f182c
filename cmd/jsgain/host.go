package main

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/justyntemme/jsgain/pkg/framework/debug"
	"github.com/justyntemme/jsgain/pkg/framework/plugin"
	"github.com/justyntemme/jsgain/pkg/framework/process"
	"github.com/justyntemme/jsgain/pkg/jsgain"
)

const maxChangesPerBlock = 32

// Host plays the part of a plugin host for one instance: it feeds blocks to
// the processor, forwards controller edits to it and echoes the values the
// processor reports back to the controller.
type Host struct {
	inst     *jsgain.Instance
	ctx      *process.Context
	profiler *debug.Profiler

	mu    sync.Mutex
	edits []process.ParamChange

	// controlMu serializes the calls into the controller.
	controlMu sync.Mutex

	in32, out32 [][]float32
	in64, out64 [][]float64
}

// NewHost prepares inst for processing and becomes the component handler of
// its controller.
func NewHost(inst *jsgain.Instance, sampleRate float64, blockSize int, sampleSize process.SampleSize) (*Host, error) {
	h := &Host{
		inst:     inst,
		ctx:      process.NewContext(blockSize, maxChangesPerBlock),
		profiler: debug.NewProfiler(),
	}
	h.ctx.SampleRate = sampleRate
	h.ctx.SampleSize = sampleSize
	inst.Controller.SetComponentHandler(h)

	if err := inst.Processor.SetupProcessing(sampleRate, blockSize, sampleSize); err != nil {
		return nil, err
	}
	if err := inst.Processor.SetActive(true); err != nil {
		return nil, err
	}
	return h, nil
}

func (h *Host) BeginEdit(id uint32) {}

func (h *Host) PerformEdit(id uint32, normalized float64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.edits = append(h.edits, process.ParamChange{ID: id, Value: normalized})
}

func (h *Host) EndEdit(id uint32) {}

// takeEdits moves the pending edits into the block. A parameter gets at most
// one change per block so that a button pressed and released between two
// blocks is still seen by the processor; later edits wait for the next
// block.
func (h *Host) takeEdits(changes *process.ParamChanges) {
	h.mu.Lock()
	defer h.mu.Unlock()
	kept := h.edits[:0]
	for _, e := range h.edits {
		if _, ok := changes.Last(e.ID); ok || !changes.Add(e.ID, e.Value, 0) {
			kept = append(kept, e)
		}
	}
	h.edits = kept
}

// Pending returns the number of edits not yet delivered to the processor.
func (h *Host) Pending() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.edits)
}

// Flush runs empty blocks until every pending edit reached the processor.
func (h *Host) Flush() error {
	if h.in32 == nil {
		h.allocate(2)
	}
	for h.Pending() > 0 {
		if err := h.process(0); err != nil {
			return err
		}
	}
	return nil
}

// Render processes the whole input block by block. When pace is positive
// each block is followed by a wait of pace per sample frame.
func (h *Host) Render(ctx context.Context, in *signal, pace time.Duration) (*signal, error) {
	out := &signal{SampleRate: in.SampleRate, BitDepth: in.BitDepth, Channels: make([][]float64, len(in.Channels))}
	for ch := range out.Channels {
		out.Channels[ch] = make([]float64, in.Len())
	}
	h.allocate(len(in.Channels))

	blockSize := h.ctx.MaxBlockSize()
	for start := 0; start < in.Len(); start += blockSize {
		if err := ctx.Err(); err != nil {
			return out, err
		}
		n := min(blockSize, in.Len()-start)
		h.load(in, start, n)
		if err := h.process(n); err != nil {
			return out, err
		}
		h.store(out, start, n)

		if pace > 0 {
			select {
			case <-ctx.Done():
				return out, ctx.Err()
			case <-time.After(time.Duration(n) * pace):
			}
		}
	}
	return out, nil
}

func (h *Host) allocate(channels int) {
	size := h.ctx.MaxBlockSize()
	h.in32, h.out32 = make([][]float32, channels), make([][]float32, channels)
	h.in64, h.out64 = make([][]float64, channels), make([][]float64, channels)
	for ch := 0; ch < channels; ch++ {
		h.in32[ch], h.out32[ch] = make([]float32, size), make([]float32, size)
		h.in64[ch], h.out64[ch] = make([]float64, size), make([]float64, size)
	}
}

func (h *Host) load(in *signal, start, n int) {
	for ch, data := range in.Channels {
		if h.ctx.SampleSize == process.Sample64 {
			copy(h.in64[ch][:n], data[start:start+n])
			continue
		}
		for i := 0; i < n; i++ {
			h.in32[ch][i] = float32(data[start+i])
		}
	}
}

func (h *Host) store(out *signal, start, n int) {
	for ch, data := range out.Channels {
		if h.ctx.SampleSize == process.Sample64 {
			copy(data[start:start+n], h.ctx.Output64[ch])
			continue
		}
		for i, v := range h.ctx.Output32[ch] {
			data[start+i] = float64(v)
		}
	}
}

// process runs one block of n frames.
func (h *Host) process(n int) error {
	c := h.ctx
	c.BeginBlock()
	if c.SampleSize == process.Sample64 {
		c.Input64, c.Output64 = sliceChannels(h.in64, n), sliceChannels(h.out64, n)
	} else {
		c.Input32, c.Output32 = sliceChannels(h.in32, n), sliceChannels(h.out32, n)
	}
	h.takeEdits(c.InputChanges)

	stop := h.profiler.Start("process")
	result := h.inst.Processor.Process(c)
	stop()
	if result != plugin.ResultOK {
		return fmt.Errorf("process block: %v", result)
	}

	h.controlMu.Lock()
	defer h.controlMu.Unlock()
	for i := 0; i < c.OutputChanges.Len(); i++ {
		change := c.OutputChanges.At(i)
		h.inst.Controller.SetParamNormalized(change.ID, change.Value)
	}
	return nil
}

// Control runs fn with exclusive access to the controller.
func (h *Host) Control(fn func(*jsgain.Controller)) {
	h.controlMu.Lock()
	defer h.controlMu.Unlock()
	fn(h.inst.Controller)
}

// sliceChannels reslices the channel buffers in place to n frames.
func sliceChannels[S float32 | float64](bufs [][]S, n int) [][]S {
	for ch := range bufs {
		bufs[ch] = bufs[ch][:n]
	}
	return bufs
}

// Profiler returns the block timing statistics.
func (h *Host) Profiler() *debug.Profiler {
	return h.profiler
}
