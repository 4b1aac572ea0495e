package core

import (
	"maps"
	"slices"
)

// FlagVector is one entity's compatibility row.
type FlagVector []bool

// FlagTable holds fixed-width per-entity compatibility rows.
//
// Columns lists the move taught by each compatibility column. When Reserved is
// set, every vector carries one extra leading bit that is never edited, so
// column c lives at bit c+1.
type FlagTable struct {
	Columns  []int              `json:"columns" yaml:"columns"`
	Reserved bool               `json:"reserved,omitempty" yaml:"reserved,omitempty"`
	Rows     map[int]FlagVector `json:"rows" yaml:"rows"`
}

// NewFlagTable returns an empty table with the given column layout.
func NewFlagTable(columns []int, reserved bool) *FlagTable {
	return &FlagTable{
		Columns:  slices.Clone(columns),
		Reserved: reserved,
		Rows:     make(map[int]FlagVector),
	}
}

// Width returns the number of editable compatibility columns.
func (t *FlagTable) Width() int {
	return len(t.Columns)
}

// VectorLen returns the fixed length of every vector.
func (t *FlagTable) VectorLen() int {
	if t.Reserved {
		return len(t.Columns) + 1
	}
	return len(t.Columns)
}

func (t *FlagTable) bit(col int) int {
	if t.Reserved {
		return col + 1
	}
	return col
}

// Get returns column col of an entity. Out-of-range reads return false.
func (t *FlagTable) Get(key, col int) bool {
	if col < 0 || col >= t.Width() {
		return false
	}
	vec := t.Rows[key]
	b := t.bit(col)
	if b >= len(vec) {
		return false
	}
	return vec[b]
}

// Set writes column col of an entity. Out-of-range writes are ignored.
func (t *FlagTable) Set(key, col int, v bool) {
	if col < 0 || col >= t.Width() {
		return
	}
	if t.Rows == nil {
		t.Rows = make(map[int]FlagVector)
	}
	vec := t.Rows[key]
	if len(vec) < t.VectorLen() {
		vec = t.fixed(vec)
	}
	vec[t.bit(col)] = v
	t.Rows[key] = vec
}

// Vector returns a fixed-length copy of an entity's row.
// Absent entities read as all false.
func (t *FlagTable) Vector(key int) FlagVector {
	return t.fixed(t.Rows[key])
}

// Keys returns every entity key present in the table, sorted.
func (t *FlagTable) Keys() []int {
	return slices.Sorted(maps.Keys(t.Rows))
}

// Clone returns a deep copy of the table.
func (t *FlagTable) Clone() *FlagTable {
	out := NewFlagTable(t.Columns, t.Reserved)
	for key, vec := range t.Rows {
		out.Rows[key] = slices.Clone(vec)
	}
	return out
}

// Normalized returns a copy where every vector has exactly VectorLen bits.
func (t *FlagTable) Normalized() *FlagTable {
	out := NewFlagTable(t.Columns, t.Reserved)
	for key, vec := range t.Rows {
		out.Rows[key] = t.fixed(vec)
	}
	return out
}

// fixed copies vec into a new vector of exactly VectorLen bits.
func (t *FlagTable) fixed(vec FlagVector) FlagVector {
	out := make(FlagVector, t.VectorLen())
	copy(out, vec)
	return out
}

// columnDiff returns the compatibility columns switched on and off between two rows.
func (t *FlagTable) columnDiff(before, after FlagVector) (added, removed []int) {
	for col := 0; col < t.Width(); col++ {
		b := t.bit(col)
		was := b < len(before) && before[b]
		now := b < len(after) && after[b]
		switch {
		case now && !was:
			added = append(added, col)
		case was && !now:
			removed = append(removed, col)
		}
	}
	return added, removed
}
