package rt

import (
	"fmt"
	"io"

	"github.com/justyntemme/jsgain/pkg/framework/codec"
)

// MaxSnapshotEntries bounds the number of values in a Snapshot.
const MaxSnapshotEntries = 32

// SnapshotEntry is the normalized value of one host-visible parameter.
type SnapshotEntry struct {
	ID         uint32
	Normalized float64
}

// Snapshot is a fixed-size copy of the audio-side values, published to the
// control side for diagnostics.
type Snapshot struct {
	Blocks  uint64
	Count   int
	Entries [MaxSnapshotEntries]SnapshotEntry
}

// Values returns the populated entries.
func (s *Snapshot) Values() []SnapshotEntry {
	return s.Entries[:s.Count]
}

// SnapshotSerializer encodes a Snapshot as the block count, the entry count
// and the entries.
type SnapshotSerializer struct{}

func (SnapshotSerializer) Write(value Snapshot, w io.Writer) error {
	s := codec.NewWriter(w)
	if err := s.WriteInt64(int64(value.Blocks)); err != nil {
		return err
	}
	if err := s.WriteInt32(int32(value.Count)); err != nil {
		return err
	}
	for _, e := range value.Values() {
		if err := s.WriteInt32(int32(e.ID)); err != nil {
			return err
		}
		if err := s.WriteFloat64(e.Normalized); err != nil {
			return err
		}
	}
	return nil
}

func (SnapshotSerializer) Read(r io.Reader, dst *Snapshot) error {
	s := codec.NewReader(r)
	var tmp Snapshot
	blocks, err := s.ReadInt64()
	if err != nil {
		return err
	}
	count, err := s.ReadInt32()
	if err != nil {
		return err
	}
	if count < 0 || count > MaxSnapshotEntries {
		return fmt.Errorf("snapshot with %d entries: %w", count, codec.ErrInvalidValue)
	}
	tmp.Blocks, tmp.Count = uint64(blocks), int(count)
	for i := range tmp.Values() {
		id, err := s.ReadInt32()
		if err != nil {
			return err
		}
		n, err := s.ReadFloat64()
		if err != nil {
			return err
		}
		tmp.Entries[i] = SnapshotEntry{ID: uint32(id), Normalized: n}
	}
	*dst = tmp
	return nil
}
