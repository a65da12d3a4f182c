// Package rt holds the audio-side view of the plugin parameters. Everything
// called from BeforeProcessing to AfterProcessing runs on the audio thread:
// it never allocates, locks or logs.
package rt

import (
	"errors"
	"fmt"
	"io"

	"github.com/justyntemme/jsgain/pkg/framework/message"
	"github.com/justyntemme/jsgain/pkg/framework/param"
	"github.com/justyntemme/jsgain/pkg/framework/process"
	"github.com/justyntemme/jsgain/pkg/framework/state"
)

var (
	// ErrAlreadyBound is returned when a parameter is added twice.
	ErrAlreadyBound = errors.New("parameter already bound")
	// ErrWrongOwner is returned when a value is bound on a side that does
	// not match the parameter's ownership.
	ErrWrongOwner = errors.New("parameter owned by the other side")
	// ErrNotShared is returned when an inbound value is bound to a
	// parameter without a mailbox.
	ErrNotShared = errors.New("parameter is not shared")
	// ErrUnbound is returned by Freeze when a parameter of the save state
	// order has no value on this side.
	ErrUnbound = errors.New("persisted parameter not bound")
	// ErrStateFrozen is returned when a value is added after Freeze.
	ErrStateFrozen = errors.New("state is frozen")
)

type vstEntry interface {
	setNormalized(v float64)
	endBlock(ctx *process.Context)
	snapshot() SnapshotEntry
}

type inbound interface {
	poll()
}

type outbound interface {
	publish()
}

// State is the set of values the processor works with.
type State struct {
	registry *param.Registry
	hub      *message.Hub
	persist  *state.Manager

	vstByID  map[uint32]vstEntry
	vst      []vstEntry
	inbound  []inbound
	outbound []outbound
	bound    map[uint32]bool

	blocks uint64
	frozen bool
	errs   []error
}

// NewState creates the audio-side state. The registry must be frozen.
func NewState(registry *param.Registry, hub *message.Hub) *State {
	return &State{
		registry: registry,
		hub:      hub,
		persist:  state.NewManager(registry, param.AudioSide),
		vstByID:  make(map[uint32]vstEntry),
		bound:    make(map[uint32]bool),
	}
}

func (s *State) bind(d *param.Descriptor) bool {
	if s.frozen {
		s.errs = append(s.errs, fmt.Errorf("bind %s: %w", d, ErrStateFrozen))
		return false
	}
	if s.bound[d.ID] {
		s.errs = append(s.errs, fmt.Errorf("bind %s: %w", d, ErrAlreadyBound))
		return false
	}
	s.bound[d.ID] = true
	return true
}

// Freeze completes the construction of the state. It reports every binding
// error and checks that the processor save state order is fully bound.
func (s *State) Freeze() error {
	for _, id := range s.registry.RTSaveStateOrder().IDs {
		if !s.bound[id] {
			s.errs = append(s.errs, fmt.Errorf("%s: %w", s.registry.Get(id), ErrUnbound))
		}
	}
	s.frozen = true
	return errors.Join(s.errs...)
}

// BeforeProcessing polls every inbound mailbox once, then applies the host
// parameter changes of the block. When the host sends several changes for a
// parameter the last one wins.
func (s *State) BeforeProcessing(ctx *process.Context) {
	for _, in := range s.inbound {
		in.poll()
	}
	changes := ctx.InputChanges
	if changes == nil {
		return
	}
	for i := 0; i < changes.Len(); i++ {
		c := changes.At(i)
		if v, ok := s.vstByID[c.ID]; ok {
			v.setNormalized(c.Value)
		}
	}
}

// AfterProcessing publishes the outbound values updated during the block,
// reports changed output parameters to the host and makes the current values
// the previous ones.
func (s *State) AfterProcessing(ctx *process.Context) {
	for _, out := range s.outbound {
		out.publish()
	}
	for _, v := range s.vst {
		v.endBlock(ctx)
	}
	s.blocks++
}

// WriteState saves the processor state.
func (s *State) WriteState(w io.Writer) error {
	return s.persist.Save(w)
}

// ReadState restores the processor state. Parameters absent from the
// stream's version revert to their default.
func (s *State) ReadState(r io.Reader) error {
	return s.persist.Load(r)
}

// Blocks returns the number of processed blocks.
func (s *State) Blocks() uint64 {
	return s.blocks
}

// Snapshot copies the host-visible values into dst.
func (s *State) Snapshot(dst *Snapshot) {
	dst.Blocks = s.blocks
	dst.Count = 0
	for _, v := range s.vst {
		if dst.Count == len(dst.Entries) {
			break
		}
		dst.Entries[dst.Count] = v.snapshot()
		dst.Count++
	}
}
