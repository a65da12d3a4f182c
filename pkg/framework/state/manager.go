// Package state reads and writes the persisted state stream of one side of a
// plugin: a version number followed by the values listed in that version's
// save state order.
package state

import (
	"errors"
	"fmt"
	"io"

	"github.com/justyntemme/jsgain/pkg/framework/codec"
	"github.com/justyntemme/jsgain/pkg/framework/debug"
	"github.com/justyntemme/jsgain/pkg/framework/param"
)

var (
	// ErrVersionTooNew is returned when a stream was saved by a newer release.
	ErrVersionTooNew = errors.New("state version is newer than supported")
	// ErrUnboundParameter is returned when saving an order that names a
	// parameter with no bound value.
	ErrUnboundParameter = errors.New("parameter has no bound value")
)

// Field is one persisted value of a side.
type Field interface {
	ParamID() uint32
	// SaveValue writes the current value.
	SaveValue(w io.Writer) error
	// LoadValue reads a value. It must leave the current value untouched on
	// failure.
	LoadValue(r io.Reader) error
	// ResetValue restores the default value.
	ResetValue()
}

// Manager handles the state stream of one side.
type Manager struct {
	side     param.Owner
	registry *param.Registry
	fields   map[uint32]Field
}

// NewManager creates a state manager for the values persisted by side.
func NewManager(registry *param.Registry, side param.Owner) *Manager {
	return &Manager{
		side:     side,
		registry: registry,
		fields:   make(map[uint32]Field),
	}
}

// Bind registers the value that backs a parameter id.
func (m *Manager) Bind(f Field) {
	m.fields[f.ParamID()] = f
}

// Version returns the version written by Save.
func (m *Manager) Version() uint16 {
	return m.registry.SaveStateOrder(m.side).Version
}

// Save writes the state using the current order.
func (m *Manager) Save(w io.Writer) error {
	order := m.registry.SaveStateOrder(m.side)

	if err := codec.NewWriter(w).WriteUint16(order.Version); err != nil {
		return fmt.Errorf("write state version: %w", err)
	}
	for _, id := range order.IDs {
		f, ok := m.fields[id]
		if !ok {
			return fmt.Errorf("save parameter %d: %w", id, ErrUnboundParameter)
		}
		if err := f.SaveValue(w); err != nil {
			return fmt.Errorf("save parameter %d: %w", id, err)
		}
	}
	return nil
}

// Load reads a state stream. Values absent from the stream's version are
// reset to their default, as are all values when the stream has an older
// version with no declared order. A field that fails to read keeps its previous
// value; the failures are returned joined.
func (m *Manager) Load(r io.Reader) error {
	version, err := codec.NewReader(r).ReadUint16()
	if err != nil {
		return fmt.Errorf("read state version: %w", err)
	}

	order, ok := m.registry.SaveStateOrderFor(m.side, version)
	if !ok {
		current := m.registry.SaveStateOrder(m.side)
		if version > current.Version {
			return fmt.Errorf("%s state version %d, supported %d: %w", m.side, version, current.Version, ErrVersionTooNew)
		}
		// older release whose layout was never declared: nothing in the
		// stream can be read safely
		debug.Warn("%s state version %d has no declared order, restoring defaults", m.side, version)
		m.reset()
		return nil
	}

	inStream := make(map[uint32]bool, len(order.IDs))
	var errs []error
	for _, id := range order.IDs {
		inStream[id] = true
		f, ok := m.fields[id]
		if !ok {
			// part of the stream but not mirrored by this side
			if err := m.registry.Get(id).Discard(r); err != nil {
				errs = append(errs, fmt.Errorf("skip parameter %d: %w", id, err))
			}
			continue
		}
		if err := f.LoadValue(r); err != nil {
			errs = append(errs, fmt.Errorf("load parameter %d: %w", id, err))
		}
	}

	for id, f := range m.fields {
		if !inStream[id] {
			f.ResetValue()
		}
	}
	return errors.Join(errs...)
}

func (m *Manager) reset() {
	for _, f := range m.fields {
		f.ResetValue()
	}
}
