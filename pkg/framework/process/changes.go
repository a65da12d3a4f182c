package process

// ParamChange is one normalized parameter value at a sample offset.
type ParamChange struct {
	ID           uint32
	Value        float64
	SampleOffset int32
}

// ParamChanges is a fixed-capacity list of parameter changes for one block.
// Adding never allocates; changes beyond capacity are dropped and counted.
type ParamChanges struct {
	changes []ParamChange
	dropped int
}

// NewParamChanges creates a list holding up to capacity changes.
func NewParamChanges(capacity int) *ParamChanges {
	return &ParamChanges{changes: make([]ParamChange, 0, capacity)}
}

// Add appends a change. It returns false when the list is full.
func (p *ParamChanges) Add(id uint32, value float64, sampleOffset int32) bool {
	if len(p.changes) == cap(p.changes) {
		p.dropped++
		return false
	}
	p.changes = append(p.changes, ParamChange{ID: id, Value: value, SampleOffset: sampleOffset})
	return true
}

// Len returns the number of changes.
func (p *ParamChanges) Len() int {
	return len(p.changes)
}

// At returns the change at index i.
func (p *ParamChanges) At(i int) ParamChange {
	return p.changes[i]
}

// Last returns the latest change of id in the block.
func (p *ParamChanges) Last(id uint32) (ParamChange, bool) {
	for i := len(p.changes) - 1; i >= 0; i-- {
		if p.changes[i].ID == id {
			return p.changes[i], true
		}
	}
	return ParamChange{}, false
}

// Dropped returns the number of changes rejected since the last Reset.
func (p *ParamChanges) Dropped() int {
	return p.dropped
}

// Reset empties the list, keeping its storage.
func (p *ParamChanges) Reset() {
	p.changes = p.changes[:0]
	p.dropped = 0
}
