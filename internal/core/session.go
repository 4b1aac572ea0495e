package core

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
)

// Session owns the live copy of one table and the backup it was loaded from.
//
// Edits mutate only the live copy. SnapshotBackup advances the baseline,
// Restore throws away everything since the last snapshot. A Session is not
// safe for concurrent use; the owning panel serializes access.
type Session struct {
	desc     Descriptor
	data     DataLayer
	sink     AuditSink
	logger   *slog.Logger
	entities []Entity
	resolver *Resolver

	live   tableState
	backup tableState
}

// tableState is one copy of the edited table. Exactly one field is set.
type tableState struct {
	slots *SlotList
	flags *FlagTable
}

func (s tableState) clone() tableState {
	if s.flags != nil {
		return tableState{flags: s.flags.Clone()}
	}
	return tableState{slots: s.slots.Clone()}
}

// SaveResult summarizes a completed save.
type SaveResult struct {
	Changes []ChangeEntry
	Entries []string // Formatted lines sent to the audit sink
}

// NewSession loads a table from the data layer and snapshots it as the baseline.
// A nil sink disables audit logging.
func NewSession(desc Descriptor, data DataLayer, sink AuditSink) (*Session, error) {
	s := &Session{
		desc:     desc,
		data:     data,
		sink:     sink,
		logger:   slog.Default().With("table", string(desc.Kind)),
		entities: slices.Clone(data.Entities()),
		resolver: NewResolver(Catalog{Type: "Move", Names: data.Moves()}),
	}

	if desc.Arity == ArityFlags {
		table, err := data.FlagTable(desc.Kind)
		if err != nil {
			return nil, fmt.Errorf("load %s: %w", desc.Kind, err)
		}
		if table == nil {
			return nil, fmt.Errorf("load %s: unknown table", desc.Kind)
		}
		s.live.flags = table.Clone()
	} else {
		table, err := data.SlotTable(desc.Kind)
		if err != nil {
			return nil, fmt.Errorf("load %s: %w", desc.Kind, err)
		}
		s.live.slots = NewSlotList(table, desc.MaxSlots)
	}

	s.SnapshotBackup()
	return s, nil
}

// Descriptor returns the panel descriptor the session was opened with.
func (s *Session) Descriptor() Descriptor {
	return s.desc
}

// Entities returns the entity sequence as supplied by the data layer.
func (s *Session) Entities() []Entity {
	return s.entities
}

// Resolver returns the move resolver.
func (s *Session) Resolver() *Resolver {
	return s.resolver
}

// Slots returns the live slot model, or nil for flag tables.
func (s *Session) Slots() *SlotList {
	return s.live.slots
}

// Flags returns the live flag table, or nil for slot tables.
func (s *Session) Flags() *FlagTable {
	return s.live.flags
}

// ----------------------------------------------------------------------------
// Write Path
// ----------------------------------------------------------------------------

// ApplyCell writes cell text into the live table.
// This is the only way cell values reach the model.
func (s *Session) ApplyCell(key int, col Column, text string) error {
	switch col.Kind {
	case ColumnMove:
		if s.live.slots == nil {
			return ErrNotEditable
		}
		move, err := s.resolver.Resolve(CleanCell(text))
		if err != nil {
			return err
		}
		slot := s.live.slots.Get(key, col.Slot)
		slot.Move = move
		return s.setSlot(key, col.Slot, slot)

	case ColumnLevel:
		if s.live.slots == nil || s.desc.Arity != ArityMoveLevel {
			return ErrNotEditable
		}
		level, err := ParseLevel(text)
		if err != nil {
			return err
		}
		slot := s.live.slots.Get(key, col.Slot)
		slot.Level = level
		return s.setSlot(key, col.Slot, slot)

	case ColumnFlag:
		if s.live.flags == nil {
			return ErrNotEditable
		}
		s.live.flags.Set(key, col.Flag, ParseFlag(text))
		return nil

	default:
		return ErrNotEditable
	}
}

func (s *Session) setSlot(key, i int, slot Slot) error {
	if err := s.live.slots.Set(key, i, slot); err != nil {
		return &ValidationError{
			Field:   fmt.Sprintf("Slot %d", i+1),
			Message: fmt.Sprintf("%v (maximum %d slots)", err, s.desc.MaxSlots),
			Err:     err,
		}
	}
	return nil
}

// SetFlag writes one compatibility column.
func (s *Session) SetFlag(key, col int, v bool) error {
	if s.live.flags == nil {
		return ErrNotEditable
	}
	s.live.flags.Set(key, col, v)
	return nil
}

// AddSlot appends an empty slot to an entity's list.
func (s *Session) AddSlot(key int) error {
	if s.live.slots == nil {
		return ErrNotEditable
	}
	return s.live.slots.AddSlot(key)
}

// RemoveSlot removes the last slot of an entity's list.
func (s *Session) RemoveSlot(key int) (RemoveOutcome, error) {
	if s.live.slots == nil {
		return NothingToRemove, ErrNotEditable
	}
	return s.live.slots.RemoveSlot(key), nil
}

// ----------------------------------------------------------------------------
// Transaction Model
// ----------------------------------------------------------------------------

// SnapshotBackup makes the live state the new baseline.
func (s *Session) SnapshotBackup() {
	s.backup = s.live.clone()
}

// Restore replaces the live state with the baseline, dropping every edit
// (and every entity key) introduced since the last snapshot.
func (s *Session) Restore() {
	s.live = s.backup.clone()
	s.logger.Debug("session restored")
}

// Dirty reports whether the live state differs from the baseline.
func (s *Session) Dirty() bool {
	return len(s.Diff()) > 0
}

// Save writes the diff to the audit sink, pushes the normalized live table to
// the data layer and advances the baseline. Any failure leaves the baseline
// where it was.
func (s *Session) Save(ctx context.Context) (SaveResult, error) {
	changes := s.Diff()
	entries := FormatEntries(changes)

	// Build the full normalized copy before any external write
	var (
		slots SlotTable
		flags *FlagTable
	)
	if s.live.flags != nil {
		flags = s.live.flags.Normalized()
	} else {
		slots = s.live.slots.Table()
	}

	if len(entries) > 0 && s.sink != nil {
		if err := s.sink.AddEntries(ctx, s.desc.Section, entries); err != nil {
			return SaveResult{}, fmt.Errorf("write audit entries: %w", err)
		}
	}

	var err error
	if flags != nil {
		err = s.data.SetFlagTable(s.desc.Kind, flags)
	} else {
		err = s.data.SetSlotTable(s.desc.Kind, slots)
	}
	if err != nil {
		return SaveResult{}, fmt.Errorf("write back %s: %w", s.desc.Kind, err)
	}

	s.SnapshotBackup()
	s.logger.Info("table saved", "changes", len(changes))

	return SaveResult{Changes: changes, Entries: entries}, nil
}

// ----------------------------------------------------------------------------
// Diff
// ----------------------------------------------------------------------------

// Diff compares the live state against the baseline.
// Each entity key is visited once: entities in data-layer order first, then
// keys only known to the tables in ascending order.
func (s *Session) Diff() []ChangeEntry {
	var changes []ChangeEntry
	for _, entity := range s.diffOrder() {
		if s.live.flags != nil {
			if c, ok := s.diffFlags(entity); ok {
				changes = append(changes, c)
			}
			continue
		}
		if c, ok := s.diffSlots(entity); ok {
			changes = append(changes, c)
		}
	}
	return changes
}

func (s *Session) diffSlots(entity Entity) (ChangeEntry, bool) {
	before := Normalize(s.backup.slots.List(entity.Key))
	after := Normalize(s.live.slots.List(entity.Key))
	if slices.Equal(before, after) {
		return ChangeEntry{}, false
	}
	return ChangeEntry{
		Entity: entity,
		Old:    formatSlots(before, s.resolver, s.desc.Arity),
		New:    formatSlots(after, s.resolver, s.desc.Arity),
	}, true
}

func (s *Session) diffFlags(entity Entity) (ChangeEntry, bool) {
	added, removed := s.live.flags.columnDiff(
		s.backup.flags.Vector(entity.Key),
		s.live.flags.Vector(entity.Key),
	)
	if len(added) == 0 && len(removed) == 0 {
		return ChangeEntry{}, false
	}
	entry := ChangeEntry{Entity: entity, Flags: true}
	for _, col := range added {
		entry.Added = append(entry.Added, s.FlagLabel(col))
	}
	for _, col := range removed {
		entry.Removed = append(entry.Removed, s.FlagLabel(col))
	}
	return entry, true
}

// FlagLabel returns the header for compatibility column col.
func (s *Session) FlagLabel(col int) string {
	var (
		move     string
		repeated bool
	)
	if s.live.flags == nil {
		return ""
	}
	if cols := s.live.flags.Columns; col >= 0 && col < len(cols) {
		move = s.resolver.Format(cols[col])
		for i, id := range cols {
			if i != col && id == cols[col] {
				repeated = true
				break
			}
		}
	}
	switch {
	case s.desc.FlagLabel != nil:
		return s.desc.FlagLabel(col, move, repeated)
	case repeated:
		return fmt.Sprintf("%d %s", col+1, move)
	default:
		return move
	}
}

// diffOrder returns every entity to compare, each key once.
func (s *Session) diffOrder() []Entity {
	seen := make(map[int]bool)
	var order []Entity
	for i, e := range s.entities {
		if i == 0 || seen[e.Key] {
			continue
		}
		seen[e.Key] = true
		order = append(order, e)
	}

	var extra []int
	for _, key := range s.tableKeys() {
		if !seen[key] {
			seen[key] = true
			extra = append(extra, key)
		}
	}
	slices.Sort(extra)
	for _, key := range extra {
		order = append(order, Entity{Key: key})
	}
	return order
}

// tableKeys returns the union of keys stored in live and backup.
func (s *Session) tableKeys() []int {
	if s.live.flags != nil {
		return append(s.live.flags.Keys(), s.backup.flags.Keys()...)
	}
	return append(s.live.slots.Keys(), s.backup.slots.Keys()...)
}
