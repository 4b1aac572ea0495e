package tui

import (
	"fmt"
	"slices"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/JonMunkholm/dexedit/internal/core"
)

// View implements tea.Model.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	g := m.panel.Grid()
	desc := m.panel.Descriptor()

	var b strings.Builder
	title := titleStyle.Render(desc.Label)
	if m.panel.Dirty() {
		title += " " + dirtyStyle.Render("[modified]")
	}
	if g.CopyPasteMode() {
		title += " " + readOnlyStyle.Render("[copy/paste]")
	}
	b.WriteString(title + "\n")

	if g.RowCount() == 0 {
		b.WriteString(readOnlyStyle.Render("no entities") + "\n")
		b.WriteString(m.footer())
		return b.String()
	}

	widths := m.columnWidths()
	fw := g.FrozenWidth()
	frozenCols := make([]int, 0, fw)
	for c := 0; c < fw; c++ {
		frozenCols = append(frozenCols, c)
	}

	var scrollCols []int
	avail := m.scrollableWidth(widths)
	used := 0
	for c := fw + m.colOffset; c < len(widths); c++ {
		if used+widths[c]+1 > avail && len(scrollCols) > 0 {
			break
		}
		scrollCols = append(scrollCols, c)
		used += widths[c] + 1
	}

	frozenStyle, scrollStyle := paneUnfocusedStyle, paneFocusedStyle
	if m.col < fw {
		frozenStyle, scrollStyle = paneFocusedStyle, paneUnfocusedStyle
	}
	left := frozenStyle.Render(m.renderPane(core.FrozenView, frozenCols, widths))
	right := scrollStyle.Render(m.renderPane(core.ScrollableView, scrollCols, widths))
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, left, right) + "\n")

	if m.showDiff {
		b.WriteString(m.renderDiff())
	}
	b.WriteString(m.footer())
	return b.String()
}

// renderPane draws the header and visible rows of one view.
func (m Model) renderPane(id core.ViewID, cols []int, widths []int) string {
	g := m.panel.Grid()
	view := g.View(id)
	sel := view.Selection()
	fw := 0
	if id == core.ScrollableView {
		fw = g.FrozenWidth()
	}
	names := g.ColumnNames()

	var lines []string
	header := make([]string, len(cols))
	for i, c := range cols {
		header[i] = headerStyle.Render(fit(names[c], widths[c]))
	}
	lines = append(lines, strings.Join(header, " "))

	top := view.ScrollTop()
	bottom := min(top+m.bodyHeight(), g.RowCount())
	pendingRow, pendingCol, _, pending := g.PendingEdit()
	for r := top; r < bottom; r++ {
		cells := make([]string, len(cols))
		for i, c := range cols {
			text := g.Value(r, c)
			if m.editing && pending && r == pendingRow && c == pendingCol {
				cells[i] = fit(m.input.View(), widths[c])
				continue
			}
			cell := fit(text, widths[c])
			switch {
			case r == sel.Row && slices.Contains(sel.Cols, c-fw):
				cell = cellSelectedStyle.Render(cell)
			case r == sel.Row:
				cell = rowSelectedStyle.Render(cell)
			case !g.Editable(r, c):
				cell = readOnlyStyle.Render(cell)
			}
			cells[i] = cell
		}
		lines = append(lines, strings.Join(cells, " "))
	}
	return strings.Join(lines, "\n")
}

func (m Model) renderDiff() string {
	changes := m.panel.Diff()
	var b strings.Builder
	b.WriteString(titleStyle.Render(fmt.Sprintf("Changes (%d)", len(changes))) + "\n")
	const maxLines = 5
	for i, c := range changes {
		if i == maxLines {
			b.WriteString(readOnlyStyle.Render(fmt.Sprintf("… %d more", len(changes)-maxLines)) + "\n")
			break
		}
		b.WriteString("  " + c.String() + "\n")
	}
	return b.String()
}

func (m Model) footer() string {
	var b strings.Builder
	switch {
	case m.err != nil:
		b.WriteString(errorStyle.Render(core.FormatUserError(m.err)))
	case m.status != "":
		b.WriteString(statusStyle.Render(m.status))
	}
	b.WriteString("\n")

	help := keys.shortHelp()
	parts := make([]string, len(help))
	for i, k := range help {
		h := k.Help()
		parts[i] = h.Key + " " + h.Desc
	}
	b.WriteString(helpStyle.Render(strings.Join(parts, " • ")))
	return b.String()
}
