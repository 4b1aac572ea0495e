package core

// changelog.go renders session diffs as human-readable audit lines.
//
// Slot tables log the whole list before and after:
//
//	Bulbasaur: Tackle, Growl -> Tackle, Growl, Vine Whip
//
// Flag tables log the columns that changed:
//
//	Ivysaur: Added TM06 Toxic, TM09 Bullet Seed; Removed TM10 Hidden Power

import (
	"fmt"
	"strings"
	"time"
)

// ChangeEntry is one entity's difference between baseline and live state.
type ChangeEntry struct {
	Entity Entity
	Flags  bool // Flag-table entry: Added/Removed are set instead of Old/New

	Old string // Formatted list before the change
	New string // Formatted list after the change

	Added   []string // Column labels switched on
	Removed []string // Column labels switched off
}

// String formats the entry as a single audit line.
func (c ChangeEntry) String() string {
	if !c.Flags {
		return fmt.Sprintf("%s: %s -> %s", c.Entity.Label(), c.Old, c.New)
	}

	var parts []string
	if len(c.Added) > 0 {
		parts = append(parts, "Added "+strings.Join(c.Added, ", "))
	}
	if len(c.Removed) > 0 {
		parts = append(parts, "Removed "+strings.Join(c.Removed, ", "))
	}
	return fmt.Sprintf("%s: %s", c.Entity.Label(), strings.Join(parts, "; "))
}

// FormatEntries formats every change as an audit line.
func FormatEntries(changes []ChangeEntry) []string {
	if len(changes) == 0 {
		return nil
	}
	out := make([]string, len(changes))
	for i, c := range changes {
		out[i] = c.String()
	}
	return out
}

// FormatLog renders a section of entries as a plain-text log block.
func FormatLog(section string, entries []string, at time.Time) string {
	var b strings.Builder
	fmt.Fprintf(&b, "== %s (%s) ==\n", section, at.Format("2006-01-02 15:04:05"))
	for _, e := range entries {
		b.WriteString(e)
		b.WriteByte('\n')
	}
	b.WriteByte('\n')
	return b.String()
}

// formatSlots renders a normalized slot list for a change entry.
func formatSlots(list []Slot, r *Resolver, arity SlotArity) string {
	if len(list) == 0 {
		return "(none)"
	}
	parts := make([]string, len(list))
	for i, s := range list {
		name := r.Format(s.Move)
		if name == "" {
			name = "-"
		}
		if arity == ArityMoveLevel {
			parts[i] = fmt.Sprintf("Lv %d %s", s.Level, name)
		} else {
			parts[i] = name
		}
	}
	return strings.Join(parts, ", ")
}
