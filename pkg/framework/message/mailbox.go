// Package message provides the lock-free conduits used to exchange typed
// values between the audio-processing goroutine and the control goroutines.
package message

import (
	"sync/atomic"
)

const (
	indexMask uint32 = 0x3
	freshBit  uint32 = 0x4
)

// Mailbox is a single-slot, last-write-wins conduit for values of type T.
//
// It is a triple buffer: the producer always owns one slot, the consumer
// always owns another, and the third is exchanged through a single atomic
// word. Publish and Poll never block and never allocate, so either end may
// run on the audio goroutine. Exactly one goroutine may publish and exactly
// one may poll at a time; callers that need more must serialize their side.
//
// T must be a value type (no slices, maps or pointers that both sides would
// end up sharing).
type Mailbox[T any] struct {
	slots [3]T

	// middle holds the index of the exchanged slot and the fresh flag.
	middle atomic.Uint32

	// producer and consumer owned indices
	write uint32
	read  uint32

	published atomic.Uint64
	dropped   atomic.Uint64
}

// NewMailbox creates an empty mailbox.
func NewMailbox[T any]() *Mailbox[T] {
	m := &Mailbox[T]{write: 0, read: 2}
	m.middle.Store(1)
	return m
}

// Publish copies v into the mailbox, replacing any value not yet polled.
func (m *Mailbox[T]) Publish(v *T) {
	m.slots[m.write] = *v
	prev := m.middle.Swap(m.write | freshBit)
	if prev&freshBit != 0 {
		m.dropped.Add(1)
	}
	m.write = prev & indexMask
	m.published.Add(1)
}

// Poll copies the most recently published value into dst and reports whether
// there was one. A value is delivered at most once.
func (m *Mailbox[T]) Poll(dst *T) bool {
	if m.middle.Load()&freshBit == 0 {
		return false
	}
	prev := m.middle.Swap(m.read)
	m.read = prev & indexMask
	*dst = m.slots[m.read]
	return true
}

// Pending reports whether a value is waiting to be polled.
func (m *Mailbox[T]) Pending() bool {
	return m.middle.Load()&freshBit != 0
}

// Published returns the number of values ever published.
func (m *Mailbox[T]) Published() uint64 {
	return m.published.Load()
}

// Dropped returns the number of values overwritten before being polled.
func (m *Mailbox[T]) Dropped() uint64 {
	return m.dropped.Load()
}
