package metrics

import (
	"errors"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/JonMunkholm/dexedit/internal/core"
)

func TestRecorder_Observe(t *testing.T) {
	r := New()
	r.Observe("save", core.KindLevelUp, nil, 10*time.Millisecond)
	r.Observe("save", core.KindLevelUp, errors.New("boom"), time.Millisecond)
	r.Observe("save", core.KindLevelUp, nil, time.Millisecond)

	if got := testutil.ToFloat64(r.operations.WithLabelValues("save", "levelup", "success")); got != 2 {
		t.Errorf("success count = %v, want 2", got)
	}
	if got := testutil.ToFloat64(r.operations.WithLabelValues("save", "levelup", "error")); got != 1 {
		t.Errorf("error count = %v, want 1", got)
	}
}

func TestRecorder_SavedAndImported(t *testing.T) {
	r := New()
	r.Saved("Egg Moves", core.SaveResult{Entries: []string{"a", "b"}})
	r.Saved("Egg Moves", core.SaveResult{})
	r.Imported(core.KindEggMoves, core.ImportResult{Supplied: 5, Applied: 3, Unmatched: 1, Failed: 1})

	if got := testutil.ToFloat64(r.audit.WithLabelValues("Egg Moves")); got != 2 {
		t.Errorf("audit entries = %v, want 2", got)
	}
	if got := testutil.ToFloat64(r.importRows.WithLabelValues("eggmoves", "applied")); got != 3 {
		t.Errorf("applied rows = %v, want 3", got)
	}
}

type oneIcon struct{}

func (oneIcon) Icon(key int) ([]byte, error) {
	if key == 1 {
		return []byte("png"), nil
	}
	return nil, core.ErrNotFound
}

func TestRecorder_PanelLifecycle(t *testing.T) {
	r := New()
	icons, err := core.NewIconCache(oneIcon{}, 4)
	if err != nil {
		t.Fatalf("NewIconCache: %v", err)
	}
	_, _ = icons.Icon(1)
	_, _ = icons.Icon(1)

	r.PanelOpened()
	r.PanelOpened()
	r.PanelClosed(icons)

	if got := testutil.ToFloat64(r.panels); got != 1 {
		t.Errorf("open panels = %v, want 1", got)
	}
	if got := testutil.ToFloat64(r.iconLookup.WithLabelValues("hit")); got != 1 {
		t.Errorf("icon hits = %v, want 1", got)
	}
}

func TestRecorder_NilIsNoop(t *testing.T) {
	var r *Recorder
	r.Observe("save", core.KindTMCompat, nil, time.Second)
	r.Saved("x", core.SaveResult{Entries: []string{"a"}})
	r.Imported(core.KindTMCompat, core.ImportResult{})
	r.PanelOpened()
	r.PanelClosed(nil)
}

func TestRecorder_Handler(t *testing.T) {
	r := New()
	r.Observe("export", core.KindEggMoves, nil, time.Millisecond)

	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body, _ := io.ReadAll(rec.Body)
	if !strings.Contains(string(body), `dexedit_operations_total{operation="export",status="success",table="eggmoves"} 1`) {
		t.Errorf("metrics output missing operation counter:\n%s", body)
	}
}
