package core

import (
	"context"
	"errors"
	"fmt"
)

// Test catalog: index is the move id.
var testMoves = []string{"Tackle", "Growl", "Vine Whip", "Toxic", "Bullet Seed", "Hidden Power"}

const (
	mvTackle = iota
	mvGrowl
	mvVineWhip
	mvToxic
	mvBulletSeed
	mvHiddenPower
)

var testEntities = []Entity{
	{Key: 0, Name: "??????"},
	{Key: 1, Name: "Bulbasaur"},
	{Key: 2, Name: "Ivysaur"},
}

var (
	testLevelUp = Descriptor{Kind: KindLevelUp, Label: "Level-up", Section: "Level-up Moves", Arity: ArityMoveLevel, MaxSlots: 4}
	testEggs    = Descriptor{Kind: KindEggMoves, Label: "Egg Moves", Section: "Egg Moves", Arity: ArityMove, MaxSlots: 3}
	testTM      = Descriptor{
		Kind: KindTMCompat, Label: "TM", Section: "TM Compatibility", Arity: ArityFlags,
		FlagLabel: func(i int, move string, _ bool) string { return fmt.Sprintf("TM%02d %s", i+1, move) },
	}
)

// memData is an in-memory DataLayer for tests.
type memData struct {
	entities []Entity
	moves    []string
	slots    map[TableKind]SlotTable
	flags    map[TableKind]*FlagTable

	writeErr error
	writes   int
}

func newMemData() *memData {
	tm := NewFlagTable([]int{mvToxic, mvBulletSeed}, true)
	tm.Rows[2] = FlagVector{false, false, false}

	return &memData{
		entities: testEntities,
		moves:    testMoves,
		slots: map[TableKind]SlotTable{
			KindLevelUp: {
				1: {{Move: mvTackle, Level: 1}, {Move: mvGrowl, Level: 3}},
			},
			KindEggMoves: {},
		},
		flags: map[TableKind]*FlagTable{KindTMCompat: tm},
	}
}

func (m *memData) Entities() []Entity { return m.entities }
func (m *memData) Moves() []string    { return m.moves }

func (m *memData) SlotTable(kind TableKind) (SlotTable, error) {
	t, ok := m.slots[kind]
	if !ok {
		return nil, fmt.Errorf("unknown table %q", kind)
	}
	return t.Clone(), nil
}

func (m *memData) SetSlotTable(kind TableKind, table SlotTable) error {
	if m.writeErr != nil {
		return m.writeErr
	}
	m.writes++
	m.slots[kind] = table.Clone()
	return nil
}

func (m *memData) FlagTable(kind TableKind) (*FlagTable, error) {
	t, ok := m.flags[kind]
	if !ok {
		return nil, fmt.Errorf("unknown table %q", kind)
	}
	return t.Clone(), nil
}

func (m *memData) SetFlagTable(kind TableKind, table *FlagTable) error {
	if m.writeErr != nil {
		return m.writeErr
	}
	m.writes++
	m.flags[kind] = table.Clone()
	return nil
}

func (m *memData) Icon(key int) ([]byte, error) {
	if key <= 0 || key >= len(m.entities) {
		return nil, ErrNotFound
	}
	return []byte(fmt.Sprintf("icon-%d", key)), nil
}

// recordingSink captures audit entries.
type recordingSink struct {
	sections []string
	entries  [][]string
	err      error
}

func (s *recordingSink) AddEntries(_ context.Context, section string, entries []string) error {
	if s.err != nil {
		return s.err
	}
	if len(entries) == 0 {
		return errors.New("empty entries")
	}
	s.sections = append(s.sections, section)
	s.entries = append(s.entries, entries)
	return nil
}

// mustSession opens a session over fresh test data.
func mustSession(desc Descriptor) (*Session, *memData, *recordingSink) {
	data := newMemData()
	sink := &recordingSink{}
	s, err := NewSession(desc, data, sink)
	if err != nil {
		panic(err)
	}
	return s, data, sink
}
