package core

import (
	"context"
	"fmt"
)

// NoMove marks an empty move reference.
const NoMove = -1

// MaxLevel is the highest level a learnset slot may carry.
const MaxLevel = 100

// Entity is one editable game-data record (a creature).
type Entity struct {
	Key  int    `json:"id" yaml:"id"`
	Name string `json:"name" yaml:"name"`
}

// Label returns the display name used in change logs.
func (e Entity) Label() string {
	if e.Name != "" {
		return e.Name
	}
	return fmt.Sprintf("#%d", e.Key)
}

// TableKind identifies which data-layer table a panel edits.
type TableKind string

const (
	KindLevelUp     TableKind = "levelup"
	KindEggMoves    TableKind = "eggmoves"
	KindTMCompat    TableKind = "tmcompat"
	KindTutorCompat TableKind = "tutorcompat"
)

// SlotArity describes what a table stores per entity.
type SlotArity int

const (
	ArityMove SlotArity = iota
	ArityMoveLevel
	ArityFlags
)

// ColumnKind tells the grid how to read and write a column.
type ColumnKind int

const (
	ColumnID ColumnKind = iota
	ColumnName
	ColumnMove
	ColumnLevel
	ColumnFlag
)

// Column describes one backing grid column.
type Column struct {
	Name string     // Header text (must match CSV header)
	Kind ColumnKind // How the cell is read and written
	Slot int        // Slot index for ColumnMove and ColumnLevel
	Flag int        // Compatibility column index for ColumnFlag
}

// Editable reports whether the column holds table data rather than identity.
func (c Column) Editable() bool {
	return c.Kind != ColumnID && c.Kind != ColumnName
}

// Descriptor configures one panel variant.
type Descriptor struct {
	Kind     TableKind // Unique key: "levelup"
	Label    string    // Display name: "Level-up Learnsets"
	Section  string    // Audit log section name
	Arity    SlotArity // What each entity stores
	MaxSlots int       // Upper bound for slot lists (ignored for flags)

	// FlagLabel renders the header for compatibility column i. repeated is
	// set when another column teaches the same move, and the label must then
	// still be unique. Falls back to "<move>" ("<i+1> <move>" when repeated)
	// when nil.
	FlagLabel func(i int, move string, repeated bool) string
}

// DataLayer is the ROM data-access layer a session reads from and writes back to.
// Entities()[0] is the reserved null entry.
type DataLayer interface {
	Entities() []Entity
	Moves() []string
	SlotTable(kind TableKind) (SlotTable, error)
	SetSlotTable(kind TableKind, table SlotTable) error
	FlagTable(kind TableKind) (*FlagTable, error)
	SetFlagTable(kind TableKind, table *FlagTable) error
}

// AuditSink receives formatted change entries per named section.
// Called only with non-empty entry slices.
type AuditSink interface {
	AddEntries(ctx context.Context, section string, entries []string) error
}

// IconSource is optionally implemented by a DataLayer that can render entity icons.
type IconSource interface {
	Icon(key int) ([]byte, error)
}
