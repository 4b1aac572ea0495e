package romdata

import (
	"fmt"
	"slices"
	"sync"

	"github.com/JonMunkholm/dexedit/internal/core"
)

// MemoryStore serves a fixture from memory. When opened from a file it writes
// every committed table back to that file.
type MemoryStore struct {
	mu       sync.RWMutex
	entities []core.Entity
	moves    []string
	slots    map[core.TableKind]core.SlotTable
	flags    map[core.TableKind]*core.FlagTable
	icons    map[int][]byte

	path string // fixture file to persist to, empty for memory only
}

// NewMemoryStore copies a fixture into a new store that never touches disk.
func NewMemoryStore(fx *Fixture) *MemoryStore {
	s := &MemoryStore{
		entities: slices.Clone(fx.Entities),
		moves:    slices.Clone(fx.Moves),
		slots:    make(map[core.TableKind]core.SlotTable, len(fx.Slots)),
		flags:    make(map[core.TableKind]*core.FlagTable, len(fx.Flags)),
		icons:    decodeIcons(fx.Icons),
	}
	for kind, table := range fx.Slots {
		s.slots[kind] = table.Clone()
	}
	for kind, table := range fx.Flags {
		s.flags[kind] = table.Clone()
	}
	return s
}

// OpenFixture loads a fixture file and persists commits back to it.
func OpenFixture(path string) (*MemoryStore, error) {
	fx, err := LoadFixture(path)
	if err != nil {
		return nil, err
	}
	s := NewMemoryStore(fx)
	s.path = path
	return s, nil
}

// Entities returns the entity sequence, null entry first.
func (s *MemoryStore) Entities() []core.Entity {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.entities)
}

// Moves returns the move catalog.
func (s *MemoryStore) Moves() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.moves)
}

// SlotTable returns a copy of a slot table. Tables missing from the fixture
// are empty.
func (s *MemoryStore) SlotTable(kind core.TableKind) (core.SlotTable, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if table, ok := s.slots[kind]; ok {
		return table.Clone(), nil
	}
	return core.SlotTable{}, nil
}

// SetSlotTable replaces a slot table.
func (s *MemoryStore) SetSlotTable(kind core.TableKind, table core.SlotTable) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev, had := s.slots[kind]
	s.slots[kind] = table.Clone()
	if err := s.persistLocked(); err != nil {
		if had {
			s.slots[kind] = prev
		} else {
			delete(s.slots, kind)
		}
		return err
	}
	return nil
}

// FlagTable returns a copy of a compatibility table. Flag tables need a
// column layout, so a missing table is an error.
func (s *MemoryStore) FlagTable(kind core.TableKind) (*core.FlagTable, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	table, ok := s.flags[kind]
	if !ok || table == nil {
		return nil, fmt.Errorf("%w: no %s data", core.ErrUnknownTable, kind)
	}
	return table.Clone(), nil
}

// SetFlagTable replaces a compatibility table.
func (s *MemoryStore) SetFlagTable(kind core.TableKind, table *core.FlagTable) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev, had := s.flags[kind]
	s.flags[kind] = table.Clone()
	if err := s.persistLocked(); err != nil {
		if had {
			s.flags[kind] = prev
		} else {
			delete(s.flags, kind)
		}
		return err
	}
	return nil
}

// Icon returns an entity's icon.
func (s *MemoryStore) Icon(key int) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	icon, ok := s.icons[key]
	if !ok {
		return nil, core.ErrNotFound
	}
	return slices.Clone(icon), nil
}

// Fixture returns a snapshot of the store's contents.
func (s *MemoryStore) Fixture() *Fixture {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.fixtureLocked()
}

func (s *MemoryStore) fixtureLocked() *Fixture {
	fx := &Fixture{
		Entities: slices.Clone(s.entities),
		Moves:    slices.Clone(s.moves),
		Slots:    make(map[core.TableKind]core.SlotTable, len(s.slots)),
		Flags:    make(map[core.TableKind]*core.FlagTable, len(s.flags)),
		Icons:    encodeIcons(s.icons),
	}
	for kind, table := range s.slots {
		fx.Slots[kind] = table.Clone()
	}
	for kind, table := range s.flags {
		fx.Flags[kind] = table.Clone()
	}
	return fx
}

func (s *MemoryStore) persistLocked() error {
	if s.path == "" {
		return nil
	}
	return s.fixtureLocked().Save(s.path)
}

// Compile-time interface checks.
var (
	_ core.DataLayer  = (*MemoryStore)(nil)
	_ core.IconSource = (*MemoryStore)(nil)
)
