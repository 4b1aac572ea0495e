package audit

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	_ "modernc.org/sqlite"

	"github.com/JonMunkholm/dexedit/internal/core"
)

var testLines = []string{
	"Bulbasaur: Lv 1 Tackle, Lv 3 Growl -> Lv 1 Tackle, Lv 3 Growl, Lv 7 Vine Whip",
	"Ivysaur: Added TM06 Toxic",
}

// ============================================================================
// FileSink Tests
// ============================================================================

func TestFileSink_AppendsSections(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "changes.log")
	s := NewFileSink(path)
	s.now = func() time.Time { return time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC) }

	ctx := context.Background()
	if err := s.AddEntries(ctx, "Level-up Moves", testLines[:1]); err != nil {
		t.Fatalf("AddEntries: %v", err)
	}
	if err := s.AddEntries(ctx, "TM Compatibility", testLines[1:]); err != nil {
		t.Fatalf("AddEntries: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	want := "== Level-up Moves (2024-03-01 12:00:00) ==\n" + testLines[0] + "\n\n" +
		"== TM Compatibility (2024-03-01 12:00:00) ==\n" + testLines[1] + "\n\n"
	if string(data) != want {
		t.Errorf("log =\n%s\nwant\n%s", data, want)
	}
}

func TestFileSink_CanceledContext(t *testing.T) {
	path := filepath.Join(t.TempDir(), "changes.log")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := NewFileSink(path).AddEntries(ctx, "Egg Moves", testLines); !errors.Is(err, context.Canceled) {
		t.Errorf("AddEntries = %v, want context.Canceled", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("canceled write created the log file")
	}
}

// ============================================================================
// SQLiteSink Tests
// ============================================================================

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", filepath.Join(t.TempDir(), "audit.db"))
	if err != nil {
		t.Fatalf("sql.Open: %v", err)
	}
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestSQLiteSink_StoresProvenance(t *testing.T) {
	ctx := context.Background()
	s, err := NewSQLiteSink(ctx, openTestDB(t))
	if err != nil {
		t.Fatalf("NewSQLiteSink: %v", err)
	}

	editCtx := core.WithAuditInfo(ctx, core.AuditInfo{Actor: "misty", IPAddress: "10.0.0.7", UserAgent: "curl/8"})
	if err := s.AddEntries(editCtx, "Level-up Moves", testLines); err != nil {
		t.Fatalf("AddEntries: %v", err)
	}

	got, err := s.Recent(ctx, Filter{})
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("Recent returned %d entries, want 2", len(got))
	}
	for _, e := range got {
		if e.Actor != "misty" || e.IPAddress != "10.0.0.7" || e.UserAgent != "curl/8" {
			t.Errorf("entry provenance = %+v", e)
		}
		if e.BatchID != got[0].BatchID {
			t.Error("lines of one save should share a batch id")
		}
		if e.ID == "" || e.CreatedAt.IsZero() {
			t.Errorf("entry missing id or timestamp: %+v", e)
		}
	}
	// Same timestamp, so rowid breaks the tie: newest insert first.
	if got[0].Line != testLines[1] {
		t.Errorf("first entry = %q, want newest", got[0].Line)
	}
}

func TestSQLiteSink_FilterAndLimit(t *testing.T) {
	ctx := context.Background()
	s, err := NewSQLiteSink(ctx, openTestDB(t))
	if err != nil {
		t.Fatalf("NewSQLiteSink: %v", err)
	}
	_ = s.AddEntries(ctx, "Egg Moves", []string{"a", "b", "c"})
	_ = s.AddEntries(ctx, "TM Compatibility", []string{"d"})

	tests := []struct {
		name   string
		filter Filter
		want   int
	}{
		{"all", Filter{}, 4},
		{"section", Filter{Section: "Egg Moves"}, 3},
		{"limit", Filter{Limit: 2}, 2},
		{"offset", Filter{Section: "Egg Moves", Offset: 2}, 1},
		{"unknown section", Filter{Section: "Nope"}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := s.Recent(ctx, tt.filter)
			if err != nil {
				t.Fatalf("Recent: %v", err)
			}
			if len(got) != tt.want {
				t.Errorf("Recent(%+v) = %d entries, want %d", tt.filter, len(got), tt.want)
			}
		})
	}
}

// ============================================================================
// PostgresSink Tests
// ============================================================================

func TestPostgresSink(t *testing.T) {
	url := os.Getenv("AUDIT_TEST_DATABASE_URL")
	if url == "" {
		t.Skip("AUDIT_TEST_DATABASE_URL not set")
	}
	ctx := context.Background()
	s, err := ConnectPostgres(ctx, url, PoolOptions{MaxConns: 2})
	if err != nil {
		t.Fatalf("ConnectPostgres: %v", err)
	}
	defer s.Close()

	section := "test-" + time.Now().Format("150405.000000")
	if err := s.AddEntries(ctx, section, testLines); err != nil {
		t.Fatalf("AddEntries: %v", err)
	}
	got, err := s.Recent(ctx, Filter{Section: section})
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(got) != 2 {
		t.Errorf("Recent = %d entries, want 2", len(got))
	}
}

// ============================================================================
// MultiSink Tests
// ============================================================================

type failingSink struct{ err error }

func (f failingSink) AddEntries(context.Context, string, []string) error { return f.err }

func TestMultiSink_StopsAtFirstFailure(t *testing.T) {
	path := filepath.Join(t.TempDir(), "changes.log")
	boom := errors.New("connection refused")
	m := MultiSink{failingSink{boom}, NewFileSink(path)}

	err := m.AddEntries(context.Background(), "Egg Moves", testLines)
	if !errors.Is(err, boom) {
		t.Errorf("AddEntries = %v, want connection refused", err)
	}
	if _, statErr := os.Stat(path); !os.IsNotExist(statErr) {
		t.Error("sinks after a failure should not record the entries")
	}
}

func TestMultiSink_WritesEverySink(t *testing.T) {
	dir := t.TempDir()
	a, b := filepath.Join(dir, "a.log"), filepath.Join(dir, "b.log")
	m := MultiSink{NewFileSink(a), NewFileSink(b)}

	if err := m.AddEntries(context.Background(), "Egg Moves", testLines); err != nil {
		t.Fatalf("AddEntries: %v", err)
	}
	for _, path := range []string{a, b} {
		data, _ := os.ReadFile(path)
		if !strings.Contains(string(data), testLines[0]) {
			t.Errorf("%s missing entries", filepath.Base(path))
		}
	}
}

type historySink struct{ failingSink }

func (historySink) Recent(context.Context, Filter) ([]Entry, error) { return nil, nil }

func TestCombine_HistorySinksFirst(t *testing.T) {
	file := NewFileSink("x.log")
	hist := historySink{}

	multi, ok := Combine(file, hist).(MultiSink)
	if !ok || len(multi) != 2 {
		t.Fatalf("Combine(two) = %T", Combine(file, hist))
	}
	if _, ok := multi[0].(Reader); !ok {
		t.Errorf("first sink = %T, want the history sink", multi[0])
	}
	if multi[1] != core.AuditSink(file) {
		t.Errorf("second sink = %T, want the file sink", multi[1])
	}
}

func TestCombine(t *testing.T) {
	file := NewFileSink("x.log")

	if Combine() != nil {
		t.Error("Combine() should be nil")
	}
	if Combine(nil, file) != file {
		t.Error("Combine with one sink should return it unchanged")
	}
	multi, ok := Combine(file, failingSink{}).(MultiSink)
	if !ok || len(multi) != 2 {
		t.Errorf("Combine(two) = %T", Combine(file, failingSink{}))
	}
	if multi.Reader() != nil {
		t.Error("file sinks keep no queryable history")
	}
}
