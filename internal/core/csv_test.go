package core

import (
	"bytes"
	"errors"
	"slices"
	"strings"
	"testing"
)

func TestExportCSV(t *testing.T) {
	g, _ := mustGrid(testLevelUp)

	var buf bytes.Buffer
	if err := ExportCSV(&buf, g); err != nil {
		t.Fatalf("ExportCSV: %v", err)
	}

	want := "ID,Name,Move 1,Lv 1,Move 2,Lv 2\n" +
		"1,Bulbasaur,Tackle,1,Growl,3\n" +
		"2,Ivysaur,,,,\n"
	if buf.String() != want {
		t.Errorf("ExportCSV() =\n%s\nwant\n%s", buf.String(), want)
	}
}

func TestCSV_RoundTrip(t *testing.T) {
	src, _, _ := mustSession(testLevelUp)
	edits := []struct {
		key  int
		col  Column
		text string
	}{
		{1, Column{Kind: ColumnMove, Slot: 2}, "Vine Whip"},
		{1, Column{Kind: ColumnLevel, Slot: 2}, "7"},
		{1, Column{Kind: ColumnMove, Slot: 1}, ""},
		{2, Column{Kind: ColumnMove, Slot: 0}, "Toxic"},
	}
	for _, e := range edits {
		if err := src.ApplyCell(e.key, e.col, e.text); err != nil {
			t.Fatalf("ApplyCell: %v", err)
		}
	}

	var buf bytes.Buffer
	if err := ExportCSV(&buf, NewGrid(src)); err != nil {
		t.Fatalf("ExportCSV: %v", err)
	}

	data := newMemData()
	data.slots[KindLevelUp] = SlotTable{}
	dst, err := NewSession(testLevelUp, data, nil)
	if err != nil {
		t.Fatalf("NewSession: %v", err)
	}
	res, err := ImportCSV(&buf, NewGrid(dst), 0)
	if err != nil {
		t.Fatalf("ImportCSV: %v", err)
	}
	if res.Supplied != 2 || res.Applied != 2 {
		t.Errorf("result = %+v, want 2 supplied and applied", res)
	}

	for _, key := range []int{1, 2} {
		want := Normalize(src.Slots().List(key))
		got := Normalize(dst.Slots().List(key))
		if !slices.Equal(got, want) {
			t.Errorf("key %d: imported %v, want %v", key, got, want)
		}
	}
}

func TestImportCSV_RowFailures(t *testing.T) {
	g, _ := mustGrid(testEggs)
	input := "ID,Name,Move 1,Move 2\n" +
		"1,Bulbasaur,Growl,Splash\n" +
		"2,Ivysaur,Tackle,Toxic\n" +
		"\n" +
		"99,Mew,Tackle,\n"

	res, err := ImportCSV(strings.NewReader(input), g, 0)

	var ie *ImportError
	if !errors.As(err, &ie) {
		t.Fatalf("error = %v, want *ImportError", err)
	}
	if len(ie.Rows) != 1 {
		t.Fatalf("row errors = %v, want 1", ie.Rows)
	}
	if re := ie.Rows[0]; re.Line != 2 || re.Column != "Move 2" || re.Key != "1" {
		t.Errorf("row error = %+v", re)
	}
	if !errors.Is(err, ErrNotFound) {
		t.Error("ImportError should unwrap to the row cause")
	}
	if !strings.Contains(err.Error(), "1 of 3 rows failed") {
		t.Errorf("message = %q", err.Error())
	}

	want := ImportResult{Supplied: 3, Applied: 1, Unmatched: 1, Failed: 1}
	if res.Supplied != want.Supplied || res.Applied != want.Applied ||
		res.Unmatched != want.Unmatched || res.Failed != want.Failed {
		t.Errorf("result = %+v, want %+v", res, want)
	}

	s := g.Session()
	if got := s.Slots().List(1); !slices.Equal(got, mv(mvGrowl)) {
		t.Errorf("Bulbasaur = %v, want values before the failure kept", got)
	}
	if got := s.Slots().List(2); !slices.Equal(got, mv(mvTackle, mvToxic)) {
		t.Errorf("Ivysaur = %v", got)
	}
}

func TestImportCSV_LongHeaderWithMultibyteRune(t *testing.T) {
	g, _ := mustGrid(testLevelUp)
	// The rune straddles the csv reader's 4096-byte buffer.
	header := "ID,Name," + strings.Repeat("a", 4087) + "é"
	input := header + "\n1,Bulbasaur," + "\n"

	res, err := ImportCSV(strings.NewReader(input), g, 0)
	if err != nil {
		t.Fatalf("ImportCSV: %v", err)
	}
	if res.Supplied != 1 || res.Applied != 1 {
		t.Errorf("result = %+v, want 1 supplied and applied", res)
	}
	if len(res.Ignored) != 1 || !strings.HasSuffix(res.Ignored[0], "é") {
		t.Errorf("Ignored = %q, want the long header intact", res.Ignored)
	}
}

func TestImportCSV_GrowsLists(t *testing.T) {
	g, _ := mustGrid(testEggs)
	input := "ID,Move 1,Move 2,Move 3\n2,Tackle,Growl,Toxic\n"

	if _, err := ImportCSV(strings.NewReader(input), g, 0); err != nil {
		t.Fatalf("ImportCSV: %v", err)
	}
	if got := g.Session().Slots().Len(2); got != 3 {
		t.Errorf("Len = %d, want 3", got)
	}
	if got := len(g.Columns()); got != 5 {
		t.Errorf("grid columns = %d, want 5", got)
	}
}

func TestImportCSV_NameKeyWithBOM(t *testing.T) {
	g, _ := mustGrid(testEggs)
	input := "\xEF\xBB\xBFName,Move 1,Notes\n  IVYSAUR ,\"=\"\"Growl\"\"\",hi\n"

	res, err := ImportCSV(strings.NewReader(input), g, 0)
	if err != nil {
		t.Fatalf("ImportCSV: %v", err)
	}
	if res.Applied != 1 {
		t.Errorf("Applied = %d, want 1", res.Applied)
	}
	if !slices.Equal(res.Ignored, []string{"Notes"}) {
		t.Errorf("Ignored = %v, want [Notes]", res.Ignored)
	}
	if got := g.Session().Slots().Get(2, 0).Move; got != mvGrowl {
		t.Errorf("Ivysaur slot 0 = %d, want Growl", got)
	}
}

func TestImportCSV_Flags(t *testing.T) {
	g, _ := mustGrid(testTM)
	input := "ID,TM01 Toxic,TM02 Bullet Seed\n2,x,0\n1,TRUE,1\n"

	if _, err := ImportCSV(strings.NewReader(input), g, 0); err != nil {
		t.Fatalf("ImportCSV: %v", err)
	}
	flags := g.Session().Flags()
	if !flags.Get(2, 0) || flags.Get(2, 1) {
		t.Errorf("Ivysaur = %v", flags.Vector(2))
	}
	if !flags.Get(1, 0) || !flags.Get(1, 1) {
		t.Errorf("Bulbasaur = %v", flags.Vector(1))
	}
}

func TestImportCSV_RepeatedFlagMove(t *testing.T) {
	data := newMemData()
	data.flags[KindTutorCompat] = NewFlagTable([]int{mvToxic, mvGrowl, mvToxic}, false)
	desc := Descriptor{Kind: KindTutorCompat, Label: "Tutors", Section: "Tutors", Arity: ArityFlags}
	s, err := NewSession(desc, data, nil)
	if err != nil {
		t.Fatalf("NewSession: %v", err)
	}
	g := NewGrid(s)

	want := []string{"ID", "Name", "1 Toxic", "Growl", "3 Toxic"}
	if got := g.ColumnNames(); !slices.Equal(got, want) {
		t.Fatalf("ColumnNames() = %q, want %q", got, want)
	}

	input := "ID,1 Toxic,Growl,3 Toxic\n1,0,0,x\n"
	if _, err := ImportCSV(strings.NewReader(input), g, 0); err != nil {
		t.Fatalf("ImportCSV: %v", err)
	}
	if flags := s.Flags(); flags.Get(1, 0) || !flags.Get(1, 2) {
		t.Errorf("Bulbasaur = %v, want only the third column set", flags.Vector(1))
	}
}

func TestImportCSV_Errors(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		limit   int64
		wantErr string
	}{
		{"empty file", "", 0, "empty file"},
		{"no key column", "Move 1\nTackle\n", 0, "missing key column"},
		{"unterminated quote", "ID,Move 1\n1,\"Tackle\n", 0, "invalid csv"},
		{"over size limit", "ID,Name,Move 1\n1,Bulbasaur,Growl\n", 10, "file too large"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, _ := mustGrid(testEggs)
			_, err := ImportCSV(strings.NewReader(tt.input), g, tt.limit)
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %v, want %q", err, tt.wantErr)
			}
			if g.Session().Dirty() {
				t.Error("failed import changed the session")
			}
		})
	}
}
