package core

import "slices"

// Slot is one entry of an entity's move list.
// Level is only meaningful for level-up tables.
type Slot struct {
	Move  int `json:"move" yaml:"move"`
	Level int `json:"level,omitempty" yaml:"level,omitempty"`
}

// EmptySlot returns a slot with no move.
func EmptySlot() Slot {
	return Slot{Move: NoMove}
}

// IsEmpty reports whether the slot references no move.
func (s Slot) IsEmpty() bool {
	return s.Move < 0
}

// SlotTable is the shape exchanged with the data layer: entity key -> slots.
type SlotTable map[int][]Slot

// Clone returns a deep copy of the table.
func (t SlotTable) Clone() SlotTable {
	out := make(SlotTable, len(t))
	for key, list := range t {
		out[key] = slices.Clone(list)
	}
	return out
}

// RemoveOutcome reports what RemoveSlot did.
type RemoveOutcome int

const (
	NothingToRemove RemoveOutcome = iota // list was already empty
	SlotRemoved                          // last non-empty slot removed
	SlotsCleared                         // list held only empty slots and was cleared
)

func (o RemoveOutcome) String() string {
	switch o {
	case SlotRemoved:
		return "removed"
	case SlotsCleared:
		return "cleared"
	default:
		return "nothing to remove"
	}
}

// Normalize returns a copy of list with trailing empty slots trimmed.
// Leading and interior empty slots keep their positions. Never mutates list.
func Normalize(list []Slot) []Slot {
	end := len(list)
	for end > 0 && list[end-1].IsEmpty() {
		end--
	}
	out := make([]Slot, end)
	copy(out, list[:end])
	return out
}

// SlotsEqual compares two lists after normalization.
func SlotsEqual(a, b []Slot) bool {
	return slices.Equal(Normalize(a), Normalize(b))
}

// SlotList is the per-entity variable-length slot model.
// Keys that are absent behave as empty lists.
type SlotList struct {
	maxSlots int
	lists    map[int][]Slot
}

// NewSlotList wraps a data-layer table. The table is copied.
func NewSlotList(table SlotTable, maxSlots int) *SlotList {
	l := &SlotList{maxSlots: maxSlots, lists: make(map[int][]Slot, len(table))}
	for key, list := range table {
		l.lists[key] = canonical(list)
	}
	return l
}

// MaxSlots returns the per-entity slot limit.
func (l *SlotList) MaxSlots() int {
	return l.maxSlots
}

// Len returns the stored length of an entity's list, empty slots included.
func (l *SlotList) Len(key int) int {
	return len(l.lists[key])
}

// List returns a copy of an entity's stored list.
func (l *SlotList) List(key int) []Slot {
	return slices.Clone(l.lists[key])
}

// Keys returns every entity key present in the model, sorted.
func (l *SlotList) Keys() []int {
	keys := make([]int, 0, len(l.lists))
	for key := range l.lists {
		keys = append(keys, key)
	}
	slices.Sort(keys)
	return keys
}

// Get returns slot i of an entity, or an empty slot past the end of the list.
func (l *SlotList) Get(key, i int) Slot {
	list := l.lists[key]
	if i < 0 || i >= len(list) {
		return EmptySlot()
	}
	return list[i]
}

// Set writes slot i of an entity, padding with empty slots when i is past the
// end, then trims trailing empty slots.
func (l *SlotList) Set(key, i int, s Slot) error {
	if i < 0 || i >= l.maxSlots {
		return ErrSlotIndex
	}
	if s.Level < 0 || s.Level > MaxLevel {
		return ErrInvalidLevel
	}
	if s.Move < 0 {
		s.Move = NoMove
	}

	list := l.lists[key]
	for len(list) <= i {
		list = append(list, EmptySlot())
	}
	list[i] = s

	end := len(list)
	for end > 0 && list[end-1].IsEmpty() {
		end--
	}
	l.lists[key] = list[:end]
	return nil
}

// AddSlot appends one empty slot. At MaxSlots it returns ErrSlotCapacity and
// leaves the list unchanged.
func (l *SlotList) AddSlot(key int) error {
	list := l.lists[key]
	if len(list) >= l.maxSlots {
		return ErrSlotCapacity
	}
	l.lists[key] = append(list, EmptySlot())
	return nil
}

// RemoveSlot removes the last non-empty slot along with any empty slots after it.
// A list holding only empty slots is cleared.
func (l *SlotList) RemoveSlot(key int) RemoveOutcome {
	list := l.lists[key]
	if len(list) == 0 {
		return NothingToRemove
	}

	for i := len(list) - 1; i >= 0; i-- {
		if !list[i].IsEmpty() {
			l.lists[key] = list[:i]
			return SlotRemoved
		}
	}

	l.lists[key] = nil
	return SlotsCleared
}

// Clone returns a deep copy of the model.
func (l *SlotList) Clone() *SlotList {
	out := &SlotList{maxSlots: l.maxSlots, lists: make(map[int][]Slot, len(l.lists))}
	for key, list := range l.lists {
		out.lists[key] = slices.Clone(list)
	}
	return out
}

// Table returns the normalized form used for persistence.
// Every present key is kept, with trailing empty slots trimmed.
func (l *SlotList) Table() SlotTable {
	out := make(SlotTable, len(l.lists))
	for key, list := range l.lists {
		out[key] = Normalize(list)
	}
	return out
}

// canonical copies a list coming from outside and maps negative moves to NoMove.
func canonical(list []Slot) []Slot {
	out := slices.Clone(list)
	for i := range out {
		if out[i].Move < 0 {
			out[i].Move = NoMove
		}
	}
	return out
}
