// Package tui is a terminal front end for a single editor panel.
//
// The grid is drawn as two panes: the frozen ID and Name columns on the left
// and the slot or flag columns on the right, which scroll horizontally. Both
// panes share the vertical scroll position and the selected row.
package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/JonMunkholm/dexedit/internal/core"
)

const (
	defaultWidth  = 100
	defaultHeight = 24
	minCellWidth  = 3
	maxCellWidth  = 18
	chromeHeight  = 7 // title, pane borders, header, status and help lines
)

// Model is the bubbletea model for one panel.
type Model struct {
	ctx   context.Context
	panel *core.Panel

	width  int
	height int

	// Cursor in backing coordinates. Columns below the frozen width belong
	// to the frozen pane.
	row int
	col int

	colOffset int // first visible scrollable column

	editing  bool
	input    textinput.Model
	showDiff bool

	status   string
	err      error
	quitting bool
	armed    bool // quit pressed once with unsaved edits
}

// New returns a model for p. ctx is passed to Save.
func New(ctx context.Context, p *core.Panel) Model {
	ti := textinput.New()
	ti.Prompt = "› "
	ti.CharLimit = 64

	m := Model{
		ctx:    ctx,
		panel:  p,
		width:  defaultWidth,
		height: defaultHeight,
		input:  ti,
		col:    p.Grid().FrozenWidth(),
	}
	if p.Grid().RowCount() > 0 {
		m.moveTo(0, m.col)
	}
	return m
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.keepVisible()
		return m, nil

	case tea.KeyMsg:
		if m.editing {
			return m.updateEditing(msg)
		}
		return m.updateBrowsing(msg)
	}
	return m, nil
}

func (m Model) updateEditing(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	g := m.panel.Grid()
	switch msg.Type {
	case tea.KeyEsc:
		g.CancelEdit()
		m.stopEditing()
		m.status = "edit cancelled"
		return m, nil
	case tea.KeyEnter:
		m.commitInput()
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	_ = g.EditText(m.input.Value())
	return m, cmd
}

// commitInput applies the text input to the pending edit.
func (m *Model) commitInput() {
	g := m.panel.Grid()
	if err := g.EditText(m.input.Value()); err != nil && !errors.Is(err, core.ErrNoPendingEdit) {
		m.setErr(err)
	}
	err := g.CommitEdit()
	m.stopEditing()
	if err != nil {
		m.setErr(err)
		return
	}
	m.status = "updated " + g.Columns()[m.col].Name
}

func (m *Model) stopEditing() {
	m.editing = false
	m.input.Blur()
	m.input.SetValue("")
}

func (m Model) updateBrowsing(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	g := m.panel.Grid()
	m.err = nil
	if !key.Matches(msg, keys.Quit) {
		m.armed = false
	}

	switch {
	case key.Matches(msg, keys.Quit):
		if m.panel.Dirty() && !m.armed {
			m.armed = true
			m.status = "unsaved changes, press q again to discard them"
			return m, nil
		}
		m.quitting = true
		return m, tea.Quit

	case key.Matches(msg, keys.Up):
		m.moveTo(m.row-1, m.col)
	case key.Matches(msg, keys.Down):
		m.moveTo(m.row+1, m.col)
	case key.Matches(msg, keys.Left):
		m.moveTo(m.row, m.col-1)
	case key.Matches(msg, keys.Right):
		m.moveTo(m.row, m.col+1)
	case key.Matches(msg, keys.PageUp):
		m.moveTo(m.row-m.bodyHeight(), m.col)
	case key.Matches(msg, keys.PageDown):
		m.moveTo(m.row+m.bodyHeight(), m.col)
	case key.Matches(msg, keys.SwitchPane):
		if m.col < g.FrozenWidth() {
			m.moveTo(m.row, g.FrozenWidth())
		} else {
			m.moveTo(m.row, 0)
		}

	case key.Matches(msg, keys.Click):
		view, local := m.viewAt(m.col)
		view.Click(m.row, local)

	case key.Matches(msg, keys.Edit):
		m.beginEdit()
		if m.editing {
			return m, textinput.Blink
		}

	case key.Matches(msg, keys.AddSlot):
		if err := g.AddSlot(m.row); err != nil {
			m.setErr(err)
		} else {
			m.status = "slot added"
		}
	case key.Matches(msg, keys.RemoveSlot):
		outcome, err := g.RemoveSlot(m.row)
		if err != nil {
			m.setErr(err)
		} else {
			m.status = "remove slot: " + outcome.String()
		}

	case key.Matches(msg, keys.CopyPaste):
		g.SetCopyPasteMode(!g.CopyPasteMode())
		if g.CopyPasteMode() {
			m.status = "copy/paste mode: editing disabled"
		} else {
			m.status = "copy/paste mode off"
		}
	case key.Matches(msg, keys.RowSelect):
		if g.SelectionMode() == core.SelectRows {
			g.SetSelectionMode(core.SelectCells)
			m.status = "cell selection"
		} else {
			g.SetSelectionMode(core.SelectRows)
			m.status = "row selection"
		}
		m.moveTo(m.row, m.col)

	case key.Matches(msg, keys.Diff):
		m.showDiff = !m.showDiff

	case key.Matches(msg, keys.Save):
		m.save()
	case key.Matches(msg, keys.Reload):
		if err := m.panel.Reload(); err != nil {
			m.setErr(err)
		} else {
			m.status = "reloaded, unsaved edits discarded"
			m.moveTo(m.row, m.col)
		}
	}
	return m, nil
}

func (m *Model) beginEdit() {
	g := m.panel.Grid()
	view, local := m.viewAt(m.col)
	if err := view.BeginEdit(m.row, local); err != nil {
		m.setErr(err)
		return
	}
	_, _, text, _ := g.PendingEdit()
	m.input.SetValue(text)
	m.input.CursorEnd()
	m.input.Focus()
	m.editing = true
	m.status = ""
}

func (m *Model) save() {
	res, err := m.panel.Save(m.ctx)
	if err != nil {
		m.setErr(err)
		return
	}
	if len(res.Changes) == 0 {
		m.status = "nothing to save"
		return
	}
	m.status = fmt.Sprintf("saved %d change(s)", len(res.Changes))
}

func (m *Model) setErr(err error) {
	m.err = err
	m.status = ""
}

// viewAt maps a backing column to its view and view-local index.
func (m *Model) viewAt(col int) (core.View, int) {
	g := m.panel.Grid()
	if fw := g.FrozenWidth(); col >= fw {
		return g.Scrollable(), col - fw
	}
	return g.Frozen(), col
}

// moveTo clamps the cursor, selects it in its view and scrolls it into sight.
func (m *Model) moveTo(row, col int) {
	g := m.panel.Grid()
	if n := g.RowCount(); row >= n {
		row = n - 1
	}
	if row < 0 {
		row = 0
	}
	if n := len(g.Columns()); col >= n {
		col = n - 1
	}
	if col < 0 {
		col = 0
	}
	m.row, m.col = row, col
	if g.RowCount() == 0 {
		return
	}
	view, local := m.viewAt(col)
	view.Select(row, local)
	m.keepVisible()
}

func (m *Model) keepVisible() {
	g := m.panel.Grid()
	top := g.Frozen().ScrollTop()
	body := m.bodyHeight()
	switch {
	case m.row < top:
		g.Frozen().ScrollTo(m.row)
	case m.row >= top+body:
		g.Frozen().ScrollTo(m.row - body + 1)
	}

	fw := g.FrozenWidth()
	if m.col < fw {
		return
	}
	local := m.col - fw
	if local < m.colOffset {
		m.colOffset = local
	}
	for m.colOffset < local && !m.columnVisible(local) {
		m.colOffset++
	}
}

func (m *Model) bodyHeight() int {
	h := m.height - chromeHeight
	if m.showDiff {
		h -= 6
	}
	if h < 1 {
		h = 1
	}
	return h
}

// columnVisible reports whether scrollable column local fits on screen when
// drawing starts at colOffset.
func (m *Model) columnVisible(local int) bool {
	widths := m.columnWidths()
	fw := m.panel.Grid().FrozenWidth()
	avail := m.scrollableWidth(widths)
	used := 0
	for c := m.colOffset; c <= local; c++ {
		used += widths[fw+c] + 1
	}
	return used <= avail
}

func (m *Model) scrollableWidth(widths []int) int {
	frozen := 0
	for c := 0; c < m.panel.Grid().FrozenWidth(); c++ {
		frozen += widths[c] + 1
	}
	// Two panes with a border on each side.
	avail := m.width - frozen - 4
	if avail < maxCellWidth {
		avail = maxCellWidth
	}
	return avail
}

// columnWidths sizes each backing column to its header and visible values.
func (m *Model) columnWidths() []int {
	g := m.panel.Grid()
	cols := g.Columns()
	widths := make([]int, len(cols))
	top := g.Frozen().ScrollTop()
	bottom := min(top+m.bodyHeight(), g.RowCount())
	for c, col := range cols {
		w := lipgloss.Width(col.Name)
		for r := top; r < bottom; r++ {
			w = max(w, lipgloss.Width(g.Value(r, c)))
		}
		widths[c] = min(max(w, minCellWidth), maxCellWidth)
	}
	return widths
}

// Quitting reports whether the user asked to leave.
func (m Model) Quitting() bool { return m.quitting }

// Run starts the terminal UI on p and blocks until the user quits.
func Run(ctx context.Context, p *core.Panel) error {
	prog := tea.NewProgram(New(ctx, p), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := prog.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return ctx.Err()
	}
	return err
}

// fit pads or truncates s to exactly w cells.
func fit(s string, w int) string {
	if lipgloss.Width(s) > w {
		r := []rune(s)
		for len(r) > 0 && lipgloss.Width(string(r))+1 > w {
			r = r[:len(r)-1]
		}
		s = string(r) + "…"
	}
	return s + strings.Repeat(" ", max(0, w-lipgloss.Width(s)))
}
