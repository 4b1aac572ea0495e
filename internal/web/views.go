package web

// views.go renders the browser pages. They are plain server-rendered HTML:
// every change is a form post that redirects back to the panel page.

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/a-h/templ"
	"github.com/go-chi/chi/v5"

	"github.com/JonMunkholm/dexedit/internal/core"
)

const pageStyle = `body{font-family:sans-serif;margin:1.5rem;color:#222}
table{border-collapse:collapse}
td,th{border:1px solid #ccc;padding:2px 6px;white-space:nowrap}
th{background:#f3f3f3}
.grid{overflow-x:auto;max-width:100%}
.frozen{position:sticky;background:#fafafa;z-index:1}
.frozen.c0{left:0}.frozen.c1{left:4rem}
.dirty{color:#b00}
input.cell{width:8rem;border:0;background:transparent}
form.inline{display:inline}`

// page wraps body in the shared layout.
func page(title string, body templ.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if _, err := fmt.Fprintf(w, "<!DOCTYPE html><html><head><meta charset=\"utf-8\"><title>%s</title><style>%s</style></head><body>",
			templ.EscapeString(title), pageStyle); err != nil {
			return err
		}
		if err := body.Render(ctx, w); err != nil {
			return err
		}
		_, err := io.WriteString(w, "</body></html>")
		return err
	})
}

// indexBody lists the tables that can be opened and the panels already open.
func indexBody(tables []TableInfo, open []PanelInfo) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var b strings.Builder
		b.WriteString("<h1>Tables</h1><table><tr><th>Table</th><th>Kind</th><th>Layout</th><th></th></tr>")
		for _, t := range tables {
			fmt.Fprintf(&b, "<tr><td>%s</td><td>%s</td><td>%s</td><td>"+
				"<form class=\"inline\" method=\"post\" action=\"/panels\"><input type=\"hidden\" name=\"kind\" value=\"%s\"><button>Open</button></form></td></tr>",
				templ.EscapeString(t.Label), templ.EscapeString(string(t.Kind)),
				templ.EscapeString(t.Arity), templ.EscapeString(string(t.Kind)))
		}
		b.WriteString("</table>")

		b.WriteString("<h2>Open panels</h2>")
		if len(open) == 0 {
			b.WriteString("<p>None.</p>")
		} else {
			b.WriteString("<ul>")
			for _, p := range open {
				dirty := ""
				if p.Dirty {
					dirty = " <span class=\"dirty\">(unsaved)</span>"
				}
				fmt.Fprintf(&b, "<li><a href=\"/panels/%s\">%s</a> %d rows%s</li>",
					templ.EscapeString(p.ID), templ.EscapeString(p.Label), p.Rows, dirty)
			}
			b.WriteString("</ul>")
		}
		_, err := io.WriteString(w, b.String())
		return err
	})
}

// panelBody renders one grid. The frozen ID and Name columns stay pinned
// while the rest scroll horizontally.
func panelBody(st GridState, changes []ChangeInfo) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var b strings.Builder
		base := "/panels/" + templ.EscapeString(st.ID)

		fmt.Fprintf(&b, "<p><a href=\"/\">Tables</a></p><h1>%s</h1>", templ.EscapeString(st.Label))
		fmt.Fprintf(&b, "<p><form class=\"inline\" method=\"post\" action=\"%s/save\"><button>Save</button></form> "+
			"<form class=\"inline\" method=\"post\" action=\"%s/reload\"><button>Reload</button></form> "+
			"<form class=\"inline\" method=\"post\" action=\"%s/close\"><button>Close</button></form> "+
			"<a href=\"/api%s/export\">Export CSV</a></p>", base, base, base, base)
		fmt.Fprintf(&b, "<form method=\"post\" action=\"%s/import\" enctype=\"multipart/form-data\">"+
			"<input type=\"file\" name=\"file\" accept=\".csv\"> <button>Import</button></form>", base)

		b.WriteString("<div class=\"grid\"><table><tr>")
		for i, c := range st.Columns {
			fmt.Fprintf(&b, "<th%s>%s</th>", frozenClass(i, st.FrozenWidth), templ.EscapeString(c.Name))
		}
		if st.Kind != core.KindTMCompat && st.Kind != core.KindTutorCompat {
			b.WriteString("<th>Slots</th>")
		}
		b.WriteString("</tr>")

		for row, rs := range st.Rows {
			b.WriteString("<tr>")
			for col, cell := range rs.Cells {
				fmt.Fprintf(&b, "<td%s>", frozenClass(col, st.FrozenWidth))
				if st.Columns[col].Editable {
					fmt.Fprintf(&b, "<form class=\"inline\" method=\"post\" action=\"%s/cell\">"+
						"<input type=\"hidden\" name=\"row\" value=\"%d\"><input type=\"hidden\" name=\"col\" value=\"%d\">"+
						"<input class=\"cell\" name=\"value\" value=\"%s\"></form>",
						base, row, col, templ.EscapeString(cell))
				} else if col == 0 {
					fmt.Fprintf(&b, "<a href=\"/api%s/rows/%d/icon\">%s</a>", base, row, templ.EscapeString(cell))
				} else {
					b.WriteString(templ.EscapeString(cell))
				}
				b.WriteString("</td>")
			}
			if st.Kind != core.KindTMCompat && st.Kind != core.KindTutorCompat {
				fmt.Fprintf(&b, "<td><form class=\"inline\" method=\"post\" action=\"%s/rows/%d/add\"><button>+</button></form>"+
					"<form class=\"inline\" method=\"post\" action=\"%s/rows/%d/remove\"><button>-</button></form></td>",
					base, row, base, row)
			}
			b.WriteString("</tr>")
		}
		b.WriteString("</table></div>")

		if len(changes) > 0 {
			b.WriteString("<h2 class=\"dirty\">Unsaved changes</h2><ul>")
			for _, c := range changes {
				fmt.Fprintf(&b, "<li><code>%s</code></li>", templ.EscapeString(c.Line))
			}
			b.WriteString("</ul>")
		}
		_, err := io.WriteString(w, b.String())
		return err
	})
}

func frozenClass(col, frozenWidth int) string {
	if col < frozenWidth {
		return fmt.Sprintf(" class=\"frozen c%d\"", col)
	}
	return ""
}

// ----------------------------------------------------------------------------
// Page Handlers
// ----------------------------------------------------------------------------

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	all := core.All()
	tables := make([]TableInfo, len(all))
	for i, d := range all {
		tables[i] = tableInfo(d)
	}

	var open []PanelInfo
	for _, op := range s.panels.list() {
		op.mu.Lock()
		if !op.panel.Closed() {
			open = append(open, PanelInfo{
				ID:    op.panel.ID(),
				Kind:  op.panel.Descriptor().Kind,
				Label: op.panel.Descriptor().Label,
				Rows:  op.panel.Grid().RowCount(),
				Dirty: op.panel.Dirty(),
			})
		}
		op.mu.Unlock()
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_ = page("dexedit", indexBody(tables, open)).Render(r.Context(), w)
}

func (s *Server) handlePanelPage(w http.ResponseWriter, r *http.Request) {
	s.withPanel(w, r, "page", func(p *core.Panel) (any, error) {
		st := gridState(p)
		changes := diffResponse(p.Diff())["changes"].([]ChangeInfo)
		return page(st.Label, panelBody(st, changes)), nil
	})
}

// ----------------------------------------------------------------------------
// Form Actions
// ----------------------------------------------------------------------------

func panelURL(r *http.Request) redirectTo {
	return redirectTo("/panels/" + chi.URLParam(r, "panelID"))
}

func (s *Server) handleOpenPanelForm(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		s.respondError(w, r, badRequest(err.Error()))
		return
	}
	p, err := s.openPanel(r, core.TableKind(r.PostFormValue("kind")))
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	http.Redirect(w, r, "/panels/"+p.ID(), http.StatusSeeOther)
}

// handleCellForm sets a cell by backing column.
func (s *Server) handleCellForm(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		s.respondError(w, r, badRequest(err.Error()))
		return
	}
	row, errRow := strconv.Atoi(r.PostFormValue("row"))
	col, errCol := strconv.Atoi(r.PostFormValue("col"))
	if errRow != nil || errCol != nil {
		s.respondError(w, r, badRequest("row and col must be integers"))
		return
	}
	value := r.PostFormValue("value")
	s.withPanel(w, r, "set_cell", func(p *core.Panel) (any, error) {
		return panelURL(r), p.Grid().SetValue(row, col, value)
	})
}

func (s *Server) handleSlotForm(add bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		row, err := parseRowParam(r)
		if err != nil {
			s.respondError(w, r, err)
			return
		}
		op := "add_slot"
		if !add {
			op = "remove_slot"
		}
		s.withPanel(w, r, op, func(p *core.Panel) (any, error) {
			if add {
				return panelURL(r), p.Grid().AddSlot(row)
			}
			_, err := p.Grid().RemoveSlot(row)
			return panelURL(r), err
		})
	}
}

func (s *Server) handleSaveForm(w http.ResponseWriter, r *http.Request) {
	s.withPanel(w, r, "save", func(p *core.Panel) (any, error) {
		res, err := p.Save(r.Context())
		if err != nil {
			return nil, err
		}
		s.metrics.Saved(p.Descriptor().Section, res)
		return panelURL(r), nil
	})
}

func (s *Server) handleReloadForm(w http.ResponseWriter, r *http.Request) {
	s.withPanel(w, r, "reload", func(p *core.Panel) (any, error) {
		return panelURL(r), p.Reload()
	})
}

func (s *Server) handleImportForm(w http.ResponseWriter, r *http.Request) {
	if err := s.imports.acquire(r.Context()); err != nil {
		s.respondError(w, r, err)
		return
	}
	defer s.imports.release()

	limit := s.cfg.Session.MaxImportSize
	if limit <= 0 {
		limit = core.DefaultMaxImportSize
	}
	r.Body = http.MaxBytesReader(w, r.Body, limit+multipartOverhead)
	src, _, err := importSource(r, limit)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	defer src.Close()

	s.withPanel(w, r, "import", func(p *core.Panel) (any, error) {
		res, err := p.Import(src)
		s.metrics.Imported(p.Descriptor().Kind, res)
		return panelURL(r), err
	})
}

func (s *Server) handleCloseForm(w http.ResponseWriter, r *http.Request) {
	if err := s.closePanel(r); err != nil {
		s.respondError(w, r, err)
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}
