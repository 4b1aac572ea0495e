// Package core provides the tabular edit-session engine behind every editor panel.
//
// This package holds all domain logic independent of any UI or transport layer.
// It can be driven by the web server, the terminal grid, CLI tools, or tests
// without modification.
//
// # Architecture
//
// The package is organized around several key concepts:
//
//   - Descriptors: Registered via the registry, each descriptor configures one
//     panel (table kind, slot arity, maximum slots, audit section, column labels).
//   - Slot model: [SlotList] holds variable-length per-entity move lists,
//     [FlagTable] holds fixed-width compatibility rows.
//   - Resolver: [Resolver] turns free-form cell text into catalog indices.
//   - Session: [Session] owns the live and backup copies and implements
//     snapshot, restore, diff and save.
//   - Grid: [Grid] projects a session into a frozen and a scrollable [View]
//     that stay row-synchronized.
//   - Panel: [Panel] ties one session, one grid and one icon cache together.
//
// # Descriptor Registry
//
// Descriptors are registered at init time using [Register]:
//
//	core.Register(Descriptor{
//	    Kind:     KindEggMoves,
//	    Label:    "Egg Moves",
//	    Section:  "Egg Moves",
//	    Arity:    ArityMove,
//	    MaxSlots: 10,
//	})
//
// # Save Flow
//
//  1. The grid's pending cell edit is committed (or the save is refused)
//  2. [Session.Diff] computes per-entity changes against the backup
//  3. Non-empty change entries go to the [AuditSink] under the descriptor section
//  4. The normalized live table is written back through the [DataLayer]
//  5. The backup advances to the live state
//
// # Error Handling
//
// Technical errors are mapped to user-friendly messages using [MapError].
// Each error category has a unique code:
//
//   - VAL001-VAL003: Validation errors (unknown move, bad level, unknown value)
//   - SLOT001-SLOT002: Slot capacity and slot index errors
//   - GRID001-GRID003: Grid errors (read-only mode, column not editable, no edit)
//   - IMP001-IMP004: CSV import errors
//   - FILE001-FILE005: File errors
//   - TBL001-TBL003: Table and panel lookup errors
//   - SAVE001-SAVE002: Audit and write-back failures during save
package core
