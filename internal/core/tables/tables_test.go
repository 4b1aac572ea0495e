package tables

import (
	"testing"

	"github.com/JonMunkholm/dexedit/internal/core"
)

func TestRegisteredTables(t *testing.T) {
	tests := []struct {
		kind     core.TableKind
		arity    core.SlotArity
		maxSlots int
		section  string
	}{
		{core.KindLevelUp, core.ArityMoveLevel, 20, "Level-up Moves"},
		{core.KindEggMoves, core.ArityMove, 10, "Egg Moves"},
		{core.KindTMCompat, core.ArityFlags, 0, "TM Compatibility"},
		{core.KindTutorCompat, core.ArityFlags, 0, "Tutor Compatibility"},
	}

	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			desc, ok := core.Get(tt.kind)
			if !ok {
				t.Fatalf("table %q not registered", tt.kind)
			}
			if desc.Arity != tt.arity {
				t.Errorf("Arity = %v, want %v", desc.Arity, tt.arity)
			}
			if desc.MaxSlots != tt.maxSlots {
				t.Errorf("MaxSlots = %d, want %d", desc.MaxSlots, tt.maxSlots)
			}
			if desc.Section != tt.section {
				t.Errorf("Section = %q, want %q", desc.Section, tt.section)
			}
		})
	}
}

func TestFlagLabels(t *testing.T) {
	tests := []struct {
		name     string
		label    func(int, string, bool) string
		col      int
		move     string
		repeated bool
		want     string
	}{
		{"tm with move", tmLabel, 5, "Toxic", false, "TM06 Toxic"},
		{"tm without move", tmLabel, 0, "", false, "TM01"},
		{"tm repeated move", tmLabel, 5, "Toxic", true, "TM06 Toxic"},
		{"tutor with move", tutorLabel, 2, "Fire Punch", false, "Fire Punch"},
		{"tutor without move", tutorLabel, 2, "", false, "Tutor 3"},
		{"tutor repeated move", tutorLabel, 2, "Fire Punch", true, "Tutor 3 Fire Punch"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.label(tt.col, tt.move, tt.repeated); got != tt.want {
				t.Errorf("label(%d, %q, %v) = %q, want %q", tt.col, tt.move, tt.repeated, got, tt.want)
			}
		})
	}
}
