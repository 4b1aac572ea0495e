package web

import (
	"net/http"

	"github.com/JonMunkholm/dexedit/internal/core"
)

// Cell coordinates in requests are view-local: col 0 of the scrollable view
// is the first column after ID and Name.

type cellRequest struct {
	View  string `json:"view"`
	Row   int    `json:"row"`
	Col   int    `json:"col"`
	Value string `json:"value"`
}

func (s *Server) handleSetCell(w http.ResponseWriter, r *http.Request) {
	var req cellRequest
	if err := decodeJSON(r, &req); err != nil {
		s.respondError(w, r, err)
		return
	}
	id, err := parseView(req.View)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	s.withPanel(w, r, "set_cell", func(p *core.Panel) (any, error) {
		if err := p.Grid().View(id).SetValue(req.Row, req.Col, req.Value); err != nil {
			return nil, err
		}
		return gridState(p), nil
	})
}

func (s *Server) handleAddSlot(w http.ResponseWriter, r *http.Request) {
	row, err := parseRowParam(r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	s.withPanel(w, r, "add_slot", func(p *core.Panel) (any, error) {
		if err := p.Grid().AddSlot(row); err != nil {
			return nil, err
		}
		return gridState(p), nil
	})
}

func (s *Server) handleRemoveSlot(w http.ResponseWriter, r *http.Request) {
	row, err := parseRowParam(r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	s.withPanel(w, r, "remove_slot", func(p *core.Panel) (any, error) {
		outcome, err := p.Grid().RemoveSlot(row)
		if err != nil {
			return nil, err
		}
		return map[string]any{"outcome": outcome.String(), "grid": gridState(p)}, nil
	})
}

// ----------------------------------------------------------------------------
// In-cell Editing
// ----------------------------------------------------------------------------

func (s *Server) handleBeginEdit(w http.ResponseWriter, r *http.Request) {
	var req cellRequest
	if err := decodeJSON(r, &req); err != nil {
		s.respondError(w, r, err)
		return
	}
	id, err := parseView(req.View)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	s.withPanel(w, r, "begin_edit", func(p *core.Panel) (any, error) {
		if err := p.Grid().View(id).BeginEdit(req.Row, req.Col); err != nil {
			return nil, err
		}
		return gridState(p).Pending, nil
	})
}

type editTextRequest struct {
	Text string `json:"text"`
}

func (s *Server) handleEditText(w http.ResponseWriter, r *http.Request) {
	var req editTextRequest
	if err := decodeJSON(r, &req); err != nil {
		s.respondError(w, r, err)
		return
	}
	s.withPanel(w, r, "edit_text", func(p *core.Panel) (any, error) {
		if err := p.Grid().EditText(req.Text); err != nil {
			return nil, err
		}
		return gridState(p).Pending, nil
	})
}

func (s *Server) handleCommitEdit(w http.ResponseWriter, r *http.Request) {
	s.withPanel(w, r, "commit_edit", func(p *core.Panel) (any, error) {
		if err := p.Grid().CommitEdit(); err != nil {
			return nil, err
		}
		return gridState(p), nil
	})
}

func (s *Server) handleCancelEdit(w http.ResponseWriter, r *http.Request) {
	s.withPanel(w, r, "cancel_edit", func(p *core.Panel) (any, error) {
		p.Grid().CancelEdit()
		return noContent{}, nil
	})
}

// ----------------------------------------------------------------------------
// View State
// ----------------------------------------------------------------------------

type selectRequest struct {
	View  string `json:"view"`
	Row   int    `json:"row"`
	Cols  []int  `json:"cols"`
	Click bool   `json:"click"` // Treat as a click on Cols[0]; re-clicking the selected ID clears
}

func (s *Server) handleSelect(w http.ResponseWriter, r *http.Request) {
	var req selectRequest
	if err := decodeJSON(r, &req); err != nil {
		s.respondError(w, r, err)
		return
	}
	id, err := parseView(req.View)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	if req.Click && len(req.Cols) != 1 {
		s.respondError(w, r, badRequest("a click names exactly one column"))
		return
	}
	s.withPanel(w, r, "select", func(p *core.Panel) (any, error) {
		v := p.Grid().View(id)
		switch {
		case req.Click:
			v.Click(req.Row, req.Cols[0])
		case req.Row < 0:
			v.ClearSelection()
		default:
			v.Select(req.Row, req.Cols...)
		}
		g := p.Grid()
		return map[string]ViewState{
			"frozen":     viewState(g.Frozen()),
			"scrollable": viewState(g.Scrollable()),
		}, nil
	})
}

type scrollRequest struct {
	View string `json:"view"`
	Top  int    `json:"top"`
}

func (s *Server) handleScroll(w http.ResponseWriter, r *http.Request) {
	var req scrollRequest
	if err := decodeJSON(r, &req); err != nil {
		s.respondError(w, r, err)
		return
	}
	id, err := parseView(req.View)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	s.withPanel(w, r, "scroll", func(p *core.Panel) (any, error) {
		g := p.Grid()
		g.View(id).ScrollTo(req.Top)
		return map[string]int{
			"frozen":     g.Frozen().ScrollTop(),
			"scrollable": g.Scrollable().ScrollTop(),
		}, nil
	})
}

type modeRequest struct {
	CopyPaste *bool   `json:"copyPaste"`
	Selection *string `json:"selection"` // "cells" or "rows"
}

func (s *Server) handleSetMode(w http.ResponseWriter, r *http.Request) {
	var req modeRequest
	if err := decodeJSON(r, &req); err != nil {
		s.respondError(w, r, err)
		return
	}
	var mode core.SelectionMode
	if req.Selection != nil {
		switch *req.Selection {
		case "cells":
			mode = core.SelectCells
		case "rows":
			mode = core.SelectRows
		default:
			s.respondError(w, r, badRequest("selection must be cells or rows"))
			return
		}
	}
	s.withPanel(w, r, "set_mode", func(p *core.Panel) (any, error) {
		g := p.Grid()
		if req.CopyPaste != nil {
			g.SetCopyPasteMode(*req.CopyPaste)
		}
		if req.Selection != nil {
			g.SetSelectionMode(mode)
		}
		return gridState(p), nil
	})
}
