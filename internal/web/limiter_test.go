package web

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/JonMunkholm/dexedit/internal/config"
)

func TestImportLimiter_AcquireRelease(t *testing.T) {
	l := newImportLimiter(2, time.Second)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		if err := l.acquire(ctx); err != nil {
			t.Fatalf("acquire #%d: %v", i+1, err)
		}
	}
	if got := l.activeCount(); got != 2 {
		t.Errorf("activeCount = %d, want 2", got)
	}
	l.release()
	l.release()
	if got := l.activeCount(); got != 0 {
		t.Errorf("activeCount after release = %d, want 0", got)
	}
}

func TestImportLimiter_TimesOutWhenFull(t *testing.T) {
	l := newImportLimiter(1, 20*time.Millisecond)
	ctx := context.Background()
	if err := l.acquire(ctx); err != nil {
		t.Fatalf("acquire: %v", err)
	}
	defer l.release()

	if err := l.acquire(ctx); !errors.Is(err, errTooManyImports) {
		t.Errorf("acquire when full = %v, want errTooManyImports", err)
	}

	canceled, cancel := context.WithCancel(ctx)
	cancel()
	if err := l.acquire(canceled); !errors.Is(err, context.Canceled) {
		t.Errorf("acquire with canceled ctx = %v, want context.Canceled", err)
	}
}

func TestImportLimiter_WaitForDrain(t *testing.T) {
	l := newImportLimiter(1, time.Second)
	_ = l.acquire(context.Background())

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	if err := l.waitForDrain(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("waitForDrain with active import = %v", err)
	}

	go func() {
		time.Sleep(10 * time.Millisecond)
		l.release()
	}()
	if err := l.waitForDrain(context.Background()); err != nil {
		t.Errorf("waitForDrain: %v", err)
	}
}

func TestImport_BusyServer(t *testing.T) {
	s, _, _ := newTestServer(t, func(c *config.Config) {
		c.Session.MaxConcurrentImports = 1
		c.Session.ImportWait = 10 * time.Millisecond
	})
	st := openEggMoves(t, s)

	if err := s.imports.acquire(context.Background()); err != nil {
		t.Fatalf("acquire: %v", err)
	}
	defer s.imports.release()

	req := newCSVRequest("/api/panels/"+st.ID+"/import", "ID,Move 1\n1,Growl\n")
	rec := serve(s, req)
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "IMP004") {
		t.Errorf("body = %s", rec.Body.String())
	}
}
