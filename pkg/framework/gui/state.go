// Package gui holds the control-side view of the plugin parameters. Unlike
// the audio side it may block and allocate; its methods are safe for
// concurrent use by control goroutines.
package gui

import (
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/justyntemme/jsgain/pkg/framework/debug"
	"github.com/justyntemme/jsgain/pkg/framework/message"
	"github.com/justyntemme/jsgain/pkg/framework/param"
	"github.com/justyntemme/jsgain/pkg/framework/state"
)

var (
	// ErrAlreadyBound is returned when a parameter is added twice.
	ErrAlreadyBound = errors.New("parameter already bound")
	// ErrNotShared is returned when binding a value the audio side keeps
	// to itself.
	ErrNotShared = errors.New("parameter is not shared")
	// ErrUnbound is returned by Freeze when a parameter of the save state
	// order has no value on this side.
	ErrUnbound = errors.New("persisted parameter not bound")
	// ErrStateFrozen is returned when a value is added after Freeze.
	ErrStateFrozen = errors.New("state is frozen")
)

// ComponentHandler receives the edits the control side makes to
// host-visible parameters.
type ComponentHandler interface {
	BeginEdit(id uint32)
	PerformEdit(id uint32, normalized float64)
	EndEdit(id uint32)
}

// Listener is called after the value of a parameter changed.
type Listener func(id uint32)

type value interface {
	row() debug.ParamRow
}

type vstMirror interface {
	value
	normalized() float64
	setNormalized(n float64) bool
}

type poller interface {
	poll() bool
	paramID() uint32
}

// State is the set of values the controller works with.
type State struct {
	registry *param.Registry
	hub      *message.Hub
	persist  *state.Manager
	rtMirror *state.Manager

	values  map[uint32]value
	vst     map[uint32]vstMirror
	pollers []poller

	mu        sync.Mutex
	handler   ComponentHandler
	listeners map[uint32][]Listener

	tickMu sync.Mutex

	frozen bool
	errs   []error
}

// NewState creates the control-side state. The registry must be frozen.
func NewState(registry *param.Registry, hub *message.Hub) *State {
	return &State{
		registry:  registry,
		hub:       hub,
		persist:   state.NewManager(registry, param.ControlSide),
		rtMirror:  state.NewManager(registry, param.AudioSide),
		values:    make(map[uint32]value),
		vst:       make(map[uint32]vstMirror),
		listeners: make(map[uint32][]Listener),
	}
}

func (s *State) bind(d *param.Descriptor, v value) bool {
	if s.frozen {
		s.errs = append(s.errs, fmt.Errorf("bind %s: %w", d, ErrStateFrozen))
		return false
	}
	if _, ok := s.values[d.ID]; ok {
		s.errs = append(s.errs, fmt.Errorf("bind %s: %w", d, ErrAlreadyBound))
		return false
	}
	s.values[d.ID] = v
	return true
}

// Freeze completes the construction of the state. It reports every binding
// error and checks that the controller save state order is fully bound.
func (s *State) Freeze() error {
	for _, id := range s.registry.GUISaveStateOrder().IDs {
		if _, ok := s.values[id]; !ok {
			s.errs = append(s.errs, fmt.Errorf("%s: %w", s.registry.Get(id), ErrUnbound))
		}
	}
	s.frozen = true
	return errors.Join(s.errs...)
}

// SetComponentHandler sets the receiver of host parameter edits.
func (s *State) SetComponentHandler(h ComponentHandler) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.handler = h
}

func (s *State) componentHandler() ComponentHandler {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.handler
}

// Listen registers fn for changes of the given parameters.
func (s *State) Listen(fn Listener, ids ...uint32) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, id := range ids {
		s.listeners[id] = append(s.listeners[id], fn)
	}
}

func (s *State) notify(id uint32) {
	s.mu.Lock()
	fns := s.listeners[id]
	s.mu.Unlock()
	for _, fn := range fns {
		fn(id)
	}
}

// Tick drains the mailboxes of the values published by the audio side and
// notifies the listeners of those that changed. Missed ticks coalesce: only
// the latest value of each mailbox is seen. It returns the number of values
// received.
func (s *State) Tick() int {
	s.tickMu.Lock()
	var updated []uint32
	for _, p := range s.pollers {
		if p.poll() {
			updated = append(updated, p.paramID())
		}
	}
	s.tickMu.Unlock()

	for _, id := range updated {
		s.notify(id)
	}
	return len(updated)
}

// SetNormalized applies a host-visible value coming from the host or the
// processor. It does not produce an edit.
func (s *State) SetNormalized(id uint32, normalized float64) bool {
	v, ok := s.vst[id]
	if !ok {
		return false
	}
	if v.setNormalized(normalized) {
		s.notify(id)
	}
	return true
}

// Normalized returns the normalized value of a host-visible parameter.
func (s *State) Normalized(id uint32) (float64, bool) {
	v, ok := s.vst[id]
	if !ok {
		return 0, false
	}
	return v.normalized(), true
}

// WriteState saves the controller state.
func (s *State) WriteState(w io.Writer) error {
	return s.persist.Save(w)
}

// ReadState restores the controller state.
func (s *State) ReadState(r io.Reader) error {
	err := s.persist.Load(r)
	for _, id := range s.registry.GUISaveStateOrder().IDs {
		s.notify(id)
	}
	return err
}

// ReadRTState updates the host-visible values from a processor state stream.
func (s *State) ReadRTState(r io.Reader) error {
	err := s.rtMirror.Load(r)
	for id := range s.vst {
		s.notify(id)
	}
	return err
}

// ParamTable returns the bound values in registration order.
func (s *State) ParamTable(title string) *debug.ParamTable {
	t := &debug.ParamTable{Title: title}
	for _, d := range s.registry.All() {
		if v, ok := s.values[d.ID]; ok {
			t.Add(v.row())
		}
	}
	return t
}

func descriptorRow(d *param.Descriptor, value string) debug.ParamRow {
	return debug.ParamRow{
		ID:        d.ID,
		Name:      d.Name,
		Kind:      d.Kind.String(),
		Owner:     d.Owner.String(),
		Persisted: d.Persisted,
		Shared:    d.Shared,
		Value:     value,
	}
}
