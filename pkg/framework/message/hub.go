package message

import (
	"errors"
	"fmt"
	"sort"
)

var (
	// ErrNoMailbox is returned when no mailbox is registered for an id.
	ErrNoMailbox = errors.New("no mailbox registered")
	// ErrMailboxType is returned when a mailbox exists with another payload type.
	ErrMailboxType = errors.New("mailbox payload type mismatch")
)

// Hub holds the mailboxes of one plugin instance, keyed by parameter id.
// It is populated once at construction and read-only afterwards.
type Hub struct {
	boxes map[uint32]any
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{boxes: make(map[uint32]any)}
}

// Add registers a mailbox under id.
func (h *Hub) Add(id uint32, box any) error {
	if _, exists := h.boxes[id]; exists {
		return fmt.Errorf("mailbox %d already registered", id)
	}
	h.boxes[id] = box
	return nil
}

// IDs returns the registered ids in ascending order.
func (h *Hub) IDs() []uint32 {
	ids := make([]uint32, 0, len(h.boxes))
	for id := range h.boxes {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Lookup returns the mailbox registered under id with payload type T.
func Lookup[T any](h *Hub, id uint32) (*Mailbox[T], error) {
	box, ok := h.boxes[id]
	if !ok {
		return nil, fmt.Errorf("id %d: %w", id, ErrNoMailbox)
	}
	typed, ok := box.(*Mailbox[T])
	if !ok {
		return nil, fmt.Errorf("id %d holds %T: %w", id, box, ErrMailboxType)
	}
	return typed, nil
}
