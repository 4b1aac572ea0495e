package core

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
)

const testPanelKind TableKind = "test_eggs"

func openTestPanel(t *testing.T) (*Panel, *memData, *recordingSink) {
	t.Helper()

	if _, ok := Get(testPanelKind); !ok {
		desc := testEggs
		desc.Kind = testPanelKind
		Register(desc)
	}

	data := newMemData()
	data.slots[testPanelKind] = SlotTable{1: mv(mvTackle)}
	sink := &recordingSink{}
	icons, err := NewIconCache(data, 4)
	if err != nil {
		t.Fatalf("NewIconCache: %v", err)
	}

	p, err := OpenPanel(testPanelKind, data, PanelOptions{Sink: sink, Icons: icons})
	if err != nil {
		t.Fatalf("OpenPanel: %v", err)
	}
	return p, data, sink
}

func TestOpenPanel_UnknownTable(t *testing.T) {
	_, err := OpenPanel("nope", newMemData(), PanelOptions{})
	if err == nil || !strings.Contains(err.Error(), "unknown table") {
		t.Errorf("OpenPanel error = %v, want unknown table", err)
	}
}

func TestPanel_IDsAreUnique(t *testing.T) {
	a, _, _ := openTestPanel(t)
	b, _, _ := openTestPanel(t)
	if a.ID() == "" || a.ID() == b.ID() {
		t.Errorf("panel ids %q and %q should be distinct and non-empty", a.ID(), b.ID())
	}
}

func TestPanel_SaveFlushesPendingEdit(t *testing.T) {
	p, data, sink := openTestPanel(t)
	v := p.Grid().Scrollable()

	if err := v.BeginEdit(0, 0); err != nil {
		t.Fatalf("BeginEdit: %v", err)
	}
	_ = p.Grid().EditText("Growl")

	res, err := p.Save(context.Background())
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if len(res.Entries) != 1 || res.Entries[0] != "Bulbasaur: Tackle -> Growl" {
		t.Errorf("entries = %v", res.Entries)
	}
	if got := data.slots[testPanelKind][1]; len(got) != 1 || got[0].Move != mvGrowl {
		t.Errorf("written = %v, want [Growl]", got)
	}
	if len(sink.sections) != 1 || sink.sections[0] != "Egg Moves" {
		t.Errorf("sections = %v", sink.sections)
	}
}

func TestPanel_SaveRefusedOnBadPendingEdit(t *testing.T) {
	p, data, sink := openTestPanel(t)

	_ = p.Grid().Scrollable().BeginEdit(0, 0)
	_ = p.Grid().EditText("Splash")

	if _, err := p.Save(context.Background()); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Save error = %v, want ErrNotFound", err)
	}
	if data.writes != 0 || len(sink.entries) != 0 {
		t.Error("refused save reached the data layer or sink")
	}
}

func TestPanel_ReloadRestoresAndRefreshes(t *testing.T) {
	p, _, _ := openTestPanel(t)
	g := p.Grid()

	_ = g.AddSlot(0)
	_ = g.AddSlot(0)
	_ = g.Scrollable().SetValue(0, 2, "Toxic")
	if len(g.Columns()) != 5 {
		t.Fatalf("columns = %d, want 5", len(g.Columns()))
	}

	if err := p.Reload(); err != nil {
		t.Fatalf("Reload: %v", err)
	}
	if p.Dirty() {
		t.Error("Dirty after reload")
	}
	if len(g.Columns()) != 3 {
		t.Errorf("columns after reload = %d, want 3", len(g.Columns()))
	}
}

func TestPanel_CloseRestoresAndRejectsUse(t *testing.T) {
	p, _, _ := openTestPanel(t)
	_ = p.Grid().Scrollable().SetValue(1, 0, "Growl")

	p.Close()
	p.Close()

	if p.Session().Dirty() {
		t.Error("Close should discard unsaved edits")
	}
	if _, err := p.Save(context.Background()); !errors.Is(err, ErrPanelClosed) {
		t.Errorf("Save after close = %v, want ErrPanelClosed", err)
	}
	if err := p.Export(&bytes.Buffer{}); !errors.Is(err, ErrPanelClosed) {
		t.Errorf("Export after close = %v, want ErrPanelClosed", err)
	}
}

func TestPanel_ExportImport(t *testing.T) {
	p, _, _ := openTestPanel(t)

	if _, err := p.Import(strings.NewReader("ID,Move 1\n2,Growl\n")); err != nil {
		t.Fatalf("Import: %v", err)
	}

	var buf bytes.Buffer
	if err := p.Export(&buf); err != nil {
		t.Fatalf("Export: %v", err)
	}
	want := "ID,Name,Move 1\n1,Bulbasaur,Tackle\n2,Ivysaur,Growl\n"
	if buf.String() != want {
		t.Errorf("Export =\n%s\nwant\n%s", buf.String(), want)
	}
}

func TestPanel_Icon(t *testing.T) {
	p, _, _ := openTestPanel(t)

	icon, err := p.Icon(1)
	if err != nil {
		t.Fatalf("Icon: %v", err)
	}
	if string(icon) != "icon-2" {
		t.Errorf("Icon(1) = %q, want icon-2", icon)
	}
	if _, err := p.Icon(9); !errors.Is(err, ErrNotFound) {
		t.Errorf("Icon(9) = %v, want ErrNotFound", err)
	}
}
