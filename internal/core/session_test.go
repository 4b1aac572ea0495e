package core

import (
	"context"
	"errors"
	"slices"
	"strings"
	"testing"
)

func TestSession_BulbasaurScenario(t *testing.T) {
	data := &memData{
		entities: testEntities,
		moves:    []string{"Tackle", "Growl"},
		slots:    map[TableKind]SlotTable{KindEggMoves: {}},
	}
	sink := &recordingSink{}
	s, err := NewSession(testEggs, data, sink)
	if err != nil {
		t.Fatalf("NewSession: %v", err)
	}

	col := Column{Kind: ColumnMove, Slot: 0}
	if err := s.ApplyCell(1, col, "Growl"); err != nil {
		t.Fatalf("ApplyCell: %v", err)
	}
	if got := s.Slots().Get(1, 0); got != (Slot{Move: 1}) {
		t.Errorf("Get(Bulbasaur, 0) = %v, want move 1", got)
	}

	res, err := s.Save(context.Background())
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if want := []string{"Bulbasaur: (none) -> Growl"}; !slices.Equal(res.Entries, want) {
		t.Errorf("Save entries = %v, want %v", res.Entries, want)
	}
	if diff := s.Diff(); len(diff) != 0 {
		t.Errorf("Diff after save = %v, want empty", diff)
	}

	out, err := s.RemoveSlot(1)
	if err != nil {
		t.Fatalf("RemoveSlot: %v", err)
	}
	if out != SlotRemoved {
		t.Errorf("RemoveSlot = %v, want %v", out, SlotRemoved)
	}
	if got := s.Slots().Len(1); got != 0 {
		t.Errorf("Len after remove = %d, want 0", got)
	}
}

func TestSession_IvysaurFlagScenario(t *testing.T) {
	s, _, sink := mustSession(testTM)

	if err := s.SetFlag(2, 1, true); err != nil {
		t.Fatalf("SetFlag: %v", err)
	}

	diff := s.Diff()
	if len(diff) != 1 {
		t.Fatalf("Diff = %v, want one entry", diff)
	}
	if got, want := diff[0].String(), "Ivysaur: Added TM02 Bullet Seed"; got != want {
		t.Errorf("entry = %q, want %q", got, want)
	}

	if _, err := s.Save(context.Background()); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if len(s.Diff()) != 0 {
		t.Error("Diff after save should be empty")
	}
	if len(sink.sections) != 1 || sink.sections[0] != "TM Compatibility" {
		t.Errorf("sink sections = %v, want [TM Compatibility]", sink.sections)
	}
}

func TestSession_FlagDiffAddedAndRemoved(t *testing.T) {
	s, _, _ := mustSession(testTM)
	_ = s.SetFlag(2, 0, true)
	_ = s.SetFlag(2, 1, true)
	if _, err := s.Save(context.Background()); err != nil {
		t.Fatalf("Save: %v", err)
	}

	_ = s.SetFlag(2, 0, false)
	_ = s.SetFlag(1, 1, true)

	got := FormatEntries(s.Diff())
	want := []string{
		"Bulbasaur: Added TM02 Bullet Seed",
		"Ivysaur: Removed TM01 Toxic",
	}
	if !slices.Equal(got, want) {
		t.Errorf("entries = %q, want %q", got, want)
	}
}

func TestSession_SaveThenDiffIsEmpty(t *testing.T) {
	s, data, sink := mustSession(testLevelUp)

	edits := []struct {
		key  int
		col  Column
		text string
	}{
		{1, Column{Kind: ColumnMove, Slot: 2}, "Vine Whip"},
		{1, Column{Kind: ColumnLevel, Slot: 2}, "7"},
		{2, Column{Kind: ColumnMove, Slot: 0}, "#3"},
		{1, Column{Kind: ColumnMove, Slot: 1}, ""},
	}
	for _, e := range edits {
		if err := s.ApplyCell(e.key, e.col, e.text); err != nil {
			t.Fatalf("ApplyCell(%d, %v, %q): %v", e.key, e.col, e.text, err)
		}
	}

	if _, err := s.Save(context.Background()); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if diff := s.Diff(); len(diff) != 0 {
		t.Errorf("Diff after save = %v", diff)
	}
	if s.Dirty() {
		t.Error("Dirty() after save = true")
	}
	if data.writes != 1 {
		t.Errorf("write-backs = %d, want 1", data.writes)
	}

	want := []Slot{{Move: mvTackle, Level: 1}, {Move: NoMove, Level: 3}, {Move: mvVineWhip, Level: 7}}
	if got := data.slots[KindLevelUp][1]; !slices.Equal(got, want) {
		t.Errorf("written Bulbasaur = %v, want %v", got, want)
	}
	if len(sink.entries) != 1 || len(sink.entries[0]) != 2 {
		t.Fatalf("sink entries = %v, want one batch of two", sink.entries)
	}
	if got, want := sink.entries[0][0], "Bulbasaur: Lv 1 Tackle, Lv 3 Growl -> Lv 1 Tackle, Lv 3 -, Lv 7 Vine Whip"; got != want {
		t.Errorf("entry = %q, want %q", got, want)
	}
}

func TestSession_RestoreDropsEditsAndNewKeys(t *testing.T) {
	s, _, _ := mustSession(testLevelUp)
	before := s.Slots().Table()

	_ = s.ApplyCell(1, Column{Kind: ColumnMove, Slot: 0}, "Toxic")
	_ = s.ApplyCell(2, Column{Kind: ColumnMove, Slot: 0}, "Growl")
	_ = s.AddSlot(99)

	s.Restore()

	after := s.Slots().Table()
	if len(after) != len(before) {
		t.Fatalf("keys after restore = %v, want %v", s.Slots().Keys(), before)
	}
	for key, list := range before {
		if !slices.Equal(after[key], list) {
			t.Errorf("key %d = %v, want %v", key, after[key], list)
		}
	}
	if s.Dirty() {
		t.Error("Dirty() after restore = true")
	}
}

func TestSession_RejectedValueLeavesModelUnchanged(t *testing.T) {
	s, _, _ := mustSession(testLevelUp)

	tests := []struct {
		name    string
		col     Column
		text    string
		wantErr error
	}{
		{"unknown move", Column{Kind: ColumnMove, Slot: 0}, "Splash", ErrNotFound},
		{"bad index", Column{Kind: ColumnMove, Slot: 0}, "#999", ErrNotFound},
		{"level too high", Column{Kind: ColumnLevel, Slot: 0}, "101", ErrInvalidLevel},
		{"level not a number", Column{Kind: ColumnLevel, Slot: 0}, "ten", ErrInvalidLevel},
		{"slot past max", Column{Kind: ColumnMove, Slot: 4}, "Growl", ErrSlotIndex},
		{"identity column", Column{Kind: ColumnName}, "Mew", ErrNotEditable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := s.Slots().List(1)
			err := s.ApplyCell(1, tt.col, tt.text)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("error = %v, want %v", err, tt.wantErr)
			}
			if got := s.Slots().List(1); !slices.Equal(got, before) {
				t.Errorf("list changed to %v", got)
			}
		})
	}
}

func TestSession_AuditFailureKeepsBaseline(t *testing.T) {
	s, data, sink := mustSession(testEggs)
	sink.err = errors.New("disk full")

	_ = s.ApplyCell(2, Column{Kind: ColumnMove, Slot: 0}, "Growl")

	_, err := s.Save(context.Background())
	if err == nil || !strings.Contains(err.Error(), "write audit entries") {
		t.Fatalf("Save error = %v, want audit failure", err)
	}
	if data.writes != 0 {
		t.Error("write-back ran after audit failure")
	}
	if !s.Dirty() {
		t.Error("baseline moved after failed save")
	}
}

func TestSession_WriteBackFailureKeepsBaseline(t *testing.T) {
	s, data, _ := mustSession(testEggs)
	data.writeErr = errors.New("rom is read-only")

	_ = s.ApplyCell(2, Column{Kind: ColumnMove, Slot: 0}, "Growl")

	if _, err := s.Save(context.Background()); err == nil {
		t.Fatal("Save should fail")
	}
	if !s.Dirty() {
		t.Error("baseline moved after failed write-back")
	}
}

func TestSession_SaveWithoutChangesSkipsSink(t *testing.T) {
	s, data, sink := mustSession(testEggs)

	res, err := s.Save(context.Background())
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if len(res.Entries) != 0 || len(sink.entries) != 0 {
		t.Errorf("sink called with %v", sink.entries)
	}
	if data.writes != 1 {
		t.Errorf("write-backs = %d, want 1", data.writes)
	}
}

func TestSession_DiffOrder(t *testing.T) {
	data := newMemData()
	data.entities = []Entity{{Key: 0}, {Key: 2, Name: "Ivysaur"}, {Key: 1, Name: "Bulbasaur"}, {Key: 2, Name: "Ivysaur again"}}
	s, err := NewSession(testEggs, data, nil)
	if err != nil {
		t.Fatalf("NewSession: %v", err)
	}

	for _, key := range []int{50, 1, 2, 7} {
		_ = s.ApplyCell(key, Column{Kind: ColumnMove, Slot: 0}, "Tackle")
	}

	var got []string
	for _, c := range s.Diff() {
		got = append(got, c.Entity.Label())
	}
	want := []string{"Ivysaur", "Bulbasaur", "#7", "#50"}
	if !slices.Equal(got, want) {
		t.Errorf("diff order = %v, want %v", got, want)
	}
}
