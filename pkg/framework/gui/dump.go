package gui

import (
	"fmt"

	"github.com/justyntemme/jsgain/pkg/framework/debug"
	"github.com/justyntemme/jsgain/pkg/framework/param"
	"github.com/justyntemme/jsgain/pkg/framework/rt"
)

// SnapshotTable renders a snapshot published by the audio side.
func SnapshotTable(registry *param.Registry, snap *rt.Snapshot) *debug.ParamTable {
	t := &debug.ParamTable{Title: fmt.Sprintf("RT state after %d blocks", snap.Blocks)}
	for _, e := range snap.Values() {
		d := registry.Get(e.ID)
		if d == nil {
			t.Add(debug.ParamRow{ID: e.ID, Name: "?", Value: fmt.Sprintf("%.4f", e.Normalized)})
			continue
		}
		t.Add(descriptorRow(d, d.FormatNormalized(e.Normalized, 2)))
	}
	return t
}
