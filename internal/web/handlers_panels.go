package web

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/a-h/templ"
	"github.com/go-chi/chi/v5"

	"github.com/JonMunkholm/dexedit/internal/core"
	"github.com/JonMunkholm/dexedit/internal/logging"
)

// maxJSONBody caps JSON request bodies; CSV imports have their own limit.
const maxJSONBody = 1 << 20

// ----------------------------------------------------------------------------
// Response Types
// ----------------------------------------------------------------------------

// TableInfo describes one registered table.
type TableInfo struct {
	Kind     core.TableKind `json:"kind"`
	Label    string         `json:"label"`
	Section  string         `json:"section"`
	Arity    string         `json:"arity"`
	MaxSlots int            `json:"maxSlots,omitempty"`
}

// PanelInfo summarizes an open panel.
type PanelInfo struct {
	ID       string         `json:"id"`
	Kind     core.TableKind `json:"kind"`
	Label    string         `json:"label"`
	Rows     int            `json:"rows"`
	Dirty    bool           `json:"dirty"`
	OpenedAt time.Time      `json:"openedAt"`
	LastUsed time.Time      `json:"lastUsed"`
}

// GridState is the full state of a panel's grid.
type GridState struct {
	ID            string         `json:"id"`
	Kind          core.TableKind `json:"kind"`
	Label         string         `json:"label"`
	Columns       []ColumnInfo   `json:"columns"`
	FrozenWidth   int            `json:"frozenWidth"`
	Rows          []RowState     `json:"rows"`
	Frozen        ViewState      `json:"frozen"`
	Scrollable    ViewState      `json:"scrollable"`
	SelectionMode string         `json:"selectionMode"`
	CopyPaste     bool           `json:"copyPaste"`
	Dirty         bool           `json:"dirty"`
	Pending       *PendingState  `json:"pending,omitempty"`
}

// ColumnInfo describes one backing column.
type ColumnInfo struct {
	Name     string `json:"name"`
	Editable bool   `json:"editable"`
}

// RowState is one row's key and formatted cells, in backing column order.
type RowState struct {
	Key   int      `json:"key"`
	Name  string   `json:"name"`
	Cells []string `json:"cells"`
}

// ViewState is one view's selection and scroll position.
type ViewState struct {
	Row       int   `json:"row"`
	Cols      []int `json:"cols"`
	ScrollTop int   `json:"scrollTop"`
}

// PendingState is the cell being edited, in backing coordinates.
type PendingState struct {
	Row  int    `json:"row"`
	Col  int    `json:"col"`
	Text string `json:"text"`
}

// ChangeInfo is one entity's pending change.
type ChangeInfo struct {
	Key  int    `json:"key"`
	Name string `json:"name"`
	Line string `json:"line"`
}

func tableInfo(d core.Descriptor) TableInfo {
	info := TableInfo{Kind: d.Kind, Label: d.Label, Section: d.Section}
	switch d.Arity {
	case core.ArityMove:
		info.Arity, info.MaxSlots = "move", d.MaxSlots
	case core.ArityMoveLevel:
		info.Arity, info.MaxSlots = "move+level", d.MaxSlots
	case core.ArityFlags:
		info.Arity = "flags"
	}
	return info
}

func gridState(p *core.Panel) GridState {
	g := p.Grid()
	desc := p.Descriptor()
	st := GridState{
		ID:          p.ID(),
		Kind:        desc.Kind,
		Label:       desc.Label,
		FrozenWidth: g.FrozenWidth(),
		CopyPaste:   g.CopyPasteMode(),
		Dirty:       p.Dirty(),
		Frozen:      viewState(g.Frozen()),
		Scrollable:  viewState(g.Scrollable()),
	}
	if g.SelectionMode() == core.SelectRows {
		st.SelectionMode = "rows"
	} else {
		st.SelectionMode = "cells"
	}

	cols := g.Columns()
	for _, c := range cols {
		st.Columns = append(st.Columns, ColumnInfo{Name: c.Name, Editable: c.Editable() && !g.CopyPasteMode()})
	}
	st.Rows = make([]RowState, g.RowCount())
	for row := range st.Rows {
		e, _ := g.Row(row)
		cells := make([]string, len(cols))
		for col := range cols {
			cells[col] = g.Value(row, col)
		}
		st.Rows[row] = RowState{Key: e.Key, Name: e.Name, Cells: cells}
	}
	if row, col, text, ok := g.PendingEdit(); ok {
		st.Pending = &PendingState{Row: row, Col: col, Text: text}
	}
	return st
}

func viewState(v core.View) ViewState {
	sel := v.Selection()
	cols := sel.Cols
	if cols == nil {
		cols = []int{}
	}
	return ViewState{Row: sel.Row, Cols: cols, ScrollTop: v.ScrollTop()}
}

// ----------------------------------------------------------------------------
// Panel Access
// ----------------------------------------------------------------------------

// fileResponse is a non-JSON body returned by a panel operation.
type fileResponse struct {
	contentType string
	filename    string
	data        []byte
}

// noContent is returned by operations that answer 204.
type noContent struct{}

// redirectTo sends a form submission back to a page.
type redirectTo string

// withPanel runs fn under the panel's lock, records the operation and writes
// its result.
func (s *Server) withPanel(w http.ResponseWriter, r *http.Request, op string, fn func(p *core.Panel) (any, error)) {
	start := time.Now()
	id := chi.URLParam(r, "panelID")
	entry, ok := s.panels.get(id)
	if !ok {
		s.respondError(w, r, fmt.Errorf("%w: %s", errPanelNotFound, id))
		return
	}

	entry.mu.Lock()
	var (
		resp any
		err  error
	)
	if entry.panel.Closed() {
		err = core.ErrPanelClosed
	} else {
		resp, err = fn(entry.panel)
		entry.lastUsed = time.Now()
	}
	kind := entry.panel.Descriptor().Kind
	entry.mu.Unlock()

	s.observe(op, kind, err, start)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	switch v := resp.(type) {
	case noContent:
		w.WriteHeader(http.StatusNoContent)
	case redirectTo:
		http.Redirect(w, r, string(v), http.StatusSeeOther)
	case templ.Component:
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if err := v.Render(r.Context(), w); err != nil {
			logging.FromContext(r.Context()).Warn("render page", "error", err)
		}
	case fileResponse:
		w.Header().Set("Content-Type", v.contentType)
		if v.filename != "" {
			w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", v.filename))
		}
		w.Header().Set("Content-Length", strconv.Itoa(len(v.data)))
		_, _ = w.Write(v.data)
	default:
		writeJSON(w, v)
	}
}

// decodeJSON reads a small JSON request body into v.
func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxJSONBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return badRequest("invalid JSON body: " + err.Error())
	}
	return nil
}

// parseView maps "frozen" and "scrollable" (the default) to a view id.
func parseView(name string) (core.ViewID, error) {
	switch name {
	case "frozen":
		return core.FrozenView, nil
	case "", "scrollable":
		return core.ScrollableView, nil
	default:
		return 0, badRequest(fmt.Sprintf("unknown view %q", name))
	}
}

// parseRowParam reads the {row} path parameter.
func parseRowParam(r *http.Request) (int, error) {
	row, err := strconv.Atoi(chi.URLParam(r, "row"))
	if err != nil || row < 0 {
		return 0, badRequest("row must be a non-negative integer")
	}
	return row, nil
}

// parseIntParam parses an integer query parameter with a default value.
func parseIntParam(r *http.Request, name string, defaultVal int) int {
	val := r.URL.Query().Get(name)
	if val == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(val)
	if err != nil || i < 0 {
		return defaultVal
	}
	return i
}

// ----------------------------------------------------------------------------
// Tables and Panels
// ----------------------------------------------------------------------------

func (s *Server) handleListTables(w http.ResponseWriter, r *http.Request) {
	all := core.All()
	out := make([]TableInfo, len(all))
	for i, d := range all {
		out[i] = tableInfo(d)
	}
	writeJSON(w, out)
}

func (s *Server) handleListPanels(w http.ResponseWriter, r *http.Request) {
	open := s.panels.list()
	out := make([]PanelInfo, 0, len(open))
	for _, op := range open {
		op.mu.Lock()
		if !op.panel.Closed() {
			desc := op.panel.Descriptor()
			out = append(out, PanelInfo{
				ID:       op.panel.ID(),
				Kind:     desc.Kind,
				Label:    desc.Label,
				Rows:     op.panel.Grid().RowCount(),
				Dirty:    op.panel.Dirty(),
				OpenedAt: op.opened,
				LastUsed: op.lastUsed,
			})
		}
		op.mu.Unlock()
	}
	writeJSON(w, out)
}

type openPanelRequest struct {
	Kind core.TableKind `json:"kind"`
}

func (s *Server) handleOpenPanel(w http.ResponseWriter, r *http.Request) {
	var req openPanelRequest
	if err := decodeJSON(r, &req); err != nil {
		s.respondError(w, r, err)
		return
	}
	p, err := s.openPanel(r, req.Kind)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSONStatus(w, http.StatusCreated, gridState(p))
}

// openPanel opens and registers a panel. The caller may use it until it
// returns; afterwards access goes through withPanel.
func (s *Server) openPanel(r *http.Request, kind core.TableKind) (*core.Panel, error) {
	start := time.Now()

	var source core.IconSource
	if is, ok := s.data.(core.IconSource); ok {
		source = is
	}
	icons, err := core.NewIconCache(source, s.cfg.Session.IconCacheSize)
	if err != nil {
		return nil, err
	}

	p, err := core.OpenPanel(kind, s.data, core.PanelOptions{
		Sink:          s.sink,
		Icons:         icons,
		MaxImportSize: s.cfg.Session.MaxImportSize,
	})
	if err == nil {
		if err = s.panels.add(p, icons); err != nil {
			p.Close()
			err = fmt.Errorf("open %s: %w", kind, err)
		}
	}
	s.observe("open", kind, err, start)
	if err != nil {
		return nil, err
	}

	s.metrics.PanelOpened()
	logging.FromContext(r.Context()).Info("panel opened", "panel", p.ID(), "table", kind)
	return p, nil
}

func (s *Server) handleGetPanel(w http.ResponseWriter, r *http.Request) {
	s.withPanel(w, r, "get", func(p *core.Panel) (any, error) {
		return gridState(p), nil
	})
}

func (s *Server) handleClosePanel(w http.ResponseWriter, r *http.Request) {
	if err := s.closePanel(r); err != nil {
		s.respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// closePanel removes a panel from the registry and discards its unsaved edits.
func (s *Server) closePanel(r *http.Request) error {
	id := chi.URLParam(r, "panelID")
	entry, ok := s.panels.remove(id)
	if !ok {
		return fmt.Errorf("%w: %s", errPanelNotFound, id)
	}

	entry.mu.Lock()
	dirty := entry.panel.Dirty()
	entry.panel.Close()
	entry.mu.Unlock()

	s.metrics.PanelClosed(entry.icons)
	logging.FromContext(r.Context()).Info("panel closed", "panel", id, "discarded_edits", dirty)
	return nil
}

// ----------------------------------------------------------------------------
// Transactions
// ----------------------------------------------------------------------------

func (s *Server) handleDiff(w http.ResponseWriter, r *http.Request) {
	s.withPanel(w, r, "diff", func(p *core.Panel) (any, error) {
		return diffResponse(p.Diff()), nil
	})
}

func diffResponse(changes []core.ChangeEntry) map[string]any {
	out := make([]ChangeInfo, len(changes))
	for i, c := range changes {
		out[i] = ChangeInfo{Key: c.Entity.Key, Name: c.Entity.Name, Line: c.String()}
	}
	return map[string]any{"dirty": len(changes) > 0, "changes": out}
}

func (s *Server) handleSave(w http.ResponseWriter, r *http.Request) {
	s.withPanel(w, r, "save", func(p *core.Panel) (any, error) {
		res, err := p.Save(r.Context())
		if err != nil {
			return nil, err
		}
		s.metrics.Saved(p.Descriptor().Section, res)
		logging.FromContext(r.Context()).Info("panel saved",
			"panel", p.ID(), "table", p.Descriptor().Kind, "entries", len(res.Entries))
		resp := diffResponse(res.Changes)
		resp["saved"] = len(res.Changes)
		resp["dirty"] = false
		return resp, nil
	})
}

func (s *Server) handleReload(w http.ResponseWriter, r *http.Request) {
	s.withPanel(w, r, "reload", func(p *core.Panel) (any, error) {
		if err := p.Reload(); err != nil {
			return nil, err
		}
		return gridState(p), nil
	})
}
