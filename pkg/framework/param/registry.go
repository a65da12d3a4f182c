package param

import (
	"errors"
	"fmt"
	"sort"

	"github.com/justyntemme/jsgain/pkg/framework/debug"
	"github.com/justyntemme/jsgain/pkg/framework/message"
)

var (
	// ErrDuplicateID is returned when a parameter id is registered twice.
	ErrDuplicateID = errors.New("duplicate parameter id")
	// ErrFrozen is returned when the registry is modified after Freeze.
	ErrFrozen = errors.New("registry is frozen")
	// ErrInvalidOrder is returned when a persist order names a parameter
	// the side does not persist.
	ErrInvalidOrder = errors.New("invalid persist order")
)

// PersistOrder is the explicit, versioned sequence of parameter ids used to
// lay out a saved state stream.
type PersistOrder struct {
	Version uint16
	IDs     []uint32
}

// Registry holds every parameter of a plugin. It is append-only while the
// plugin declares its parameters and immutable after Freeze; from then on it
// is shared by both sides and read without locking.
type Registry struct {
	params map[uint32]*Descriptor
	order  []uint32 // Maintain order for indexed access
	frozen bool

	rtOrders  []PersistOrder
	guiOrders []PersistOrder
}

// NewRegistry creates a new parameter registry
func NewRegistry() *Registry {
	return &Registry{
		params: make(map[uint32]*Descriptor),
		order:  make([]uint32, 0),
	}
}

// Add registers new parameters
func (r *Registry) Add(params ...*Descriptor) error {
	if r.frozen {
		return ErrFrozen
	}

	for _, p := range params {
		if existing, exists := r.params[p.ID]; exists {
			return fmt.Errorf("parameter %d %q already used by %q: %w", p.ID, p.Name, existing.Name, ErrDuplicateID)
		}
		r.params[p.ID] = p
		r.order = append(r.order, p.ID)
	}

	return nil
}

// Get retrieves a parameter by ID
func (r *Registry) Get(id uint32) *Descriptor {
	return r.params[id]
}

// GetByIndex retrieves a parameter by index
func (r *Registry) GetByIndex(index int32) *Descriptor {
	if index < 0 || index >= int32(len(r.order)) {
		return nil
	}
	return r.params[r.order[index]]
}

// Count returns the number of parameters
func (r *Registry) Count() int32 {
	return int32(len(r.order))
}

// All returns all parameters in registration order
func (r *Registry) All() []*Descriptor {
	result := make([]*Descriptor, len(r.order))
	for i, id := range r.order {
		result[i] = r.params[id]
	}
	return result
}

// VstParams returns the host-visible parameters in registration order
func (r *Registry) VstParams() []*Descriptor {
	var result []*Descriptor
	for _, id := range r.order {
		if p := r.params[id]; p.IsVst() {
			result = append(result, p)
		}
	}
	return result
}

// Frozen reports whether Freeze has been called.
func (r *Registry) Frozen() bool {
	return r.frozen
}

// SetRTSaveStateOrder records the layout of the processor state for version.
// It may be called once per version; the highest version is current and
// older ones are kept to restore streams saved by earlier releases.
func (r *Registry) SetRTSaveStateOrder(version uint16, ids ...uint32) error {
	if r.frozen {
		return ErrFrozen
	}
	orders, err := addOrder(r.rtOrders, version, ids)
	if err != nil {
		return err
	}
	r.rtOrders = orders
	return nil
}

// SetGUISaveStateOrder records the layout of the controller state for version.
func (r *Registry) SetGUISaveStateOrder(version uint16, ids ...uint32) error {
	if r.frozen {
		return ErrFrozen
	}
	orders, err := addOrder(r.guiOrders, version, ids)
	if err != nil {
		return err
	}
	r.guiOrders = orders
	return nil
}

func addOrder(orders []PersistOrder, version uint16, ids []uint32) ([]PersistOrder, error) {
	for _, o := range orders {
		if o.Version == version {
			return nil, fmt.Errorf("version %d declared twice: %w", version, ErrInvalidOrder)
		}
	}
	orders = append(orders, PersistOrder{Version: version, IDs: append([]uint32(nil), ids...)})
	sort.Slice(orders, func(i, j int) bool { return orders[i].Version < orders[j].Version })
	return orders, nil
}

// Freeze validates the persist orders and makes the registry immutable.
//
// A side without an explicit order falls back to registration order. That
// is fragile: adding or removing a parameter later silently shifts every
// value that follows it in streams saved by earlier releases, so a warning
// is logged.
func (r *Registry) Freeze() error {
	if r.frozen {
		return nil
	}

	rt, err := r.resolveOrders(AudioSide, r.rtOrders)
	if err != nil {
		return err
	}
	gui, err := r.resolveOrders(ControlSide, r.guiOrders)
	if err != nil {
		return err
	}

	r.rtOrders, r.guiOrders = rt, gui
	r.frozen = true
	return nil
}

func (r *Registry) resolveOrders(side Owner, orders []PersistOrder) ([]PersistOrder, error) {
	persisted := r.persistedBy(side)

	if len(orders) == 0 {
		if len(persisted) > 0 {
			debug.Warn("no %s save state order declared, falling back to registration order: %v", side, persisted)
		}
		return []PersistOrder{{Version: 0, IDs: persisted}}, nil
	}

	for _, o := range orders {
		seen := make(map[uint32]bool, len(o.IDs))
		for _, id := range o.IDs {
			p := r.params[id]
			if p == nil {
				return nil, fmt.Errorf("%s order v%d: unknown parameter %d: %w", side, o.Version, id, ErrInvalidOrder)
			}
			if !p.Persisted || p.SavedBy() != side {
				return nil, fmt.Errorf("%s order v%d: parameter %d %q is not persisted by %s: %w",
					side, o.Version, id, p.Name, side, ErrInvalidOrder)
			}
			if seen[id] {
				return nil, fmt.Errorf("%s order v%d: parameter %d listed twice: %w", side, o.Version, id, ErrInvalidOrder)
			}
			seen[id] = true
		}
	}

	current := orders[len(orders)-1]
	inCurrent := make(map[uint32]bool, len(current.IDs))
	for _, id := range current.IDs {
		inCurrent[id] = true
	}
	for _, id := range persisted {
		if !inCurrent[id] {
			debug.Warn("%s parameter %d %q is persisted but missing from save state order v%d",
				side, id, r.params[id].Name, current.Version)
		}
	}

	return orders, nil
}

func (r *Registry) persistedBy(side Owner) []uint32 {
	var ids []uint32
	for _, id := range r.order {
		if p := r.params[id]; p.Persisted && p.SavedBy() == side {
			ids = append(ids, id)
		}
	}
	return ids
}

// RTSaveStateOrder returns the current processor state order.
func (r *Registry) RTSaveStateOrder() PersistOrder {
	return current(r.rtOrders)
}

// GUISaveStateOrder returns the current controller state order.
func (r *Registry) GUISaveStateOrder() PersistOrder {
	return current(r.guiOrders)
}

// SaveStateOrder returns the current order of side.
func (r *Registry) SaveStateOrder(side Owner) PersistOrder {
	if side == AudioSide {
		return r.RTSaveStateOrder()
	}
	return r.GUISaveStateOrder()
}

// SaveStateOrderFor returns the order of side declared for version.
func (r *Registry) SaveStateOrderFor(side Owner, version uint16) (PersistOrder, bool) {
	orders := r.rtOrders
	if side == ControlSide {
		orders = r.guiOrders
	}
	for _, o := range orders {
		if o.Version == version {
			return o, true
		}
	}
	return PersistOrder{}, false
}

func current(orders []PersistOrder) PersistOrder {
	if len(orders) == 0 {
		return PersistOrder{}
	}
	return orders[len(orders)-1]
}

// NewHub creates the mailboxes of one plugin instance: one per shared typed
// parameter.
func (r *Registry) NewHub() *message.Hub {
	hub := message.NewHub()
	for _, id := range r.order {
		p := r.params[id]
		if p.newMailbox == nil {
			continue
		}
		// ids are unique so Add cannot fail
		_ = hub.Add(id, p.newMailbox())
	}
	return hub
}
