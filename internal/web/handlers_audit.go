package web

import (
	"encoding/csv"
	"fmt"
	"net/http"
	"time"

	"github.com/JonMunkholm/dexedit/internal/audit"
	"github.com/JonMunkholm/dexedit/internal/core"
	"github.com/JonMunkholm/dexedit/internal/logging"
)

// AuditHistoryResponse is one page of stored audit lines.
type AuditHistoryResponse struct {
	Enabled bool          `json:"enabled"`
	Entries []audit.Entry `json:"entries"`
	Limit   int           `json:"limit"`
	Offset  int           `json:"offset"`
}

// auditFilter reads section, table, limit and offset query parameters. A
// table kind is resolved to its audit section.
func auditFilter(r *http.Request) (audit.Filter, error) {
	q := r.URL.Query()
	f := audit.Filter{
		Section: q.Get("section"),
		Limit:   parseIntParam(r, "limit", audit.DefaultLimit),
		Offset:  parseIntParam(r, "offset", 0),
	}
	if kind := q.Get("table"); kind != "" {
		desc, ok := core.Get(core.TableKind(kind))
		if !ok {
			return f, fmt.Errorf("%w: %s", core.ErrUnknownTable, kind)
		}
		f.Section = desc.Section
	}
	if f.Limit > 1000 {
		f.Limit = 1000
	}
	return f, nil
}

// handleAuditHistory lists saved diff lines, newest first.
func (s *Server) handleAuditHistory(w http.ResponseWriter, r *http.Request) {
	f, err := auditFilter(r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	if s.history == nil {
		writeJSON(w, AuditHistoryResponse{Entries: []audit.Entry{}, Limit: f.Limit, Offset: f.Offset})
		return
	}

	entries, err := s.history.Recent(r.Context(), f)
	if err != nil {
		s.respondError(w, r, fmt.Errorf("read audit history: %w", err))
		return
	}
	if entries == nil {
		entries = []audit.Entry{}
	}
	writeJSON(w, AuditHistoryResponse{Enabled: true, Entries: entries, Limit: f.Limit, Offset: f.Offset})
}

// handleAuditExport downloads the history as CSV, flushing as it goes.
func (s *Server) handleAuditExport(w http.ResponseWriter, r *http.Request) {
	f, err := auditFilter(r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	if s.history == nil {
		s.respondErrorStatus(w, r, fmt.Errorf("audit history is not enabled"), http.StatusNotFound)
		return
	}
	entries, err := s.history.Recent(r.Context(), f)
	if err != nil {
		s.respondError(w, r, fmt.Errorf("read audit history: %w", err))
		return
	}

	filename := fmt.Sprintf("audit_log_%s.csv", time.Now().Format("20060102_150405"))
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))

	cw := csv.NewWriter(w)
	rc := http.NewResponseController(w)
	if err := cw.Write([]string{"Time", "Section", "Change", "Editor", "IP Address", "Batch"}); err != nil {
		return
	}

	const flushInterval = 500
	for i, e := range entries {
		if err := cw.Write([]string{
			e.CreatedAt.Format(time.RFC3339),
			e.Section,
			e.Line,
			e.Actor,
			e.IPAddress,
			e.BatchID,
		}); err != nil {
			break
		}
		if (i+1)%flushInterval == 0 {
			cw.Flush()
			_ = rc.Flush()
		}
	}
	cw.Flush()

	// Headers are sent, so a late error can only be logged.
	if err := cw.Error(); err != nil {
		logging.FromContext(r.Context()).Warn("audit export interrupted", "error", err)
	}
}
