package core

// grid.go projects a session into a frozen and a scrollable view.
//
// Both views address the same backing column list. The frozen view shows the
// first frozenWidth columns (ID, Name); the scrollable view shows the rest, so
// scrollable column c is backing column c+frozenWidth. Each view keeps its own
// selection and scroll position; any change is mirrored to the sibling under
// a re-entrancy guard so that the mirrored update does not bounce back.

import (
	"fmt"
	"strconv"
	"strings"
)

// ViewID names one of the two grid views.
type ViewID int

const (
	FrozenView ViewID = iota
	ScrollableView
)

func (v ViewID) sibling() ViewID {
	if v == FrozenView {
		return ScrollableView
	}
	return FrozenView
}

// SelectionMode controls how far a selection extends across columns.
type SelectionMode int

const (
	SelectCells SelectionMode = iota // selection covers the clicked cells
	SelectRows                       // selection covers every column of both views
)

// Selection is one view's selected row and view-local columns. Row is -1 when
// nothing is selected.
type Selection struct {
	Row  int
	Cols []int
}

// View is one column-partitioned projection of a grid.
type View interface {
	ID() ViewID
	RowCount() int
	ColumnCount() int
	Column(col int) Column
	BackingColumn(col int) int
	Value(row, col int) string
	Editable(row, col int) bool
	SetValue(row, col int, text string) error
	BeginEdit(row, col int) error

	Select(row int, cols ...int)
	Click(row, col int)
	ClearSelection()
	Selection() Selection
	ScrollTo(top int)
	ScrollTop() int
}

type viewState struct {
	sel       Selection
	scrollTop int
}

type pendingEdit struct {
	row  int
	col  int // backing column
	text string
}

// Grid adapts a session to a row/column addressable table.
type Grid struct {
	session     *Session
	rows        []Entity
	rowByKey    map[int]int
	columns     []Column
	frozenWidth int
	slotColumns int

	views     [2]viewState
	mode      SelectionMode
	syncing   bool
	copyPaste bool
	pending   *pendingEdit
}

// NewGrid builds a grid over a session. Entity 0 is the reserved null entry
// and duplicate keys keep their first occurrence.
func NewGrid(s *Session) *Grid {
	g := &Grid{
		session:     s,
		rowByKey:    make(map[int]int),
		frozenWidth: 2,
	}
	for i, e := range s.Entities() {
		if i == 0 {
			continue
		}
		if _, dup := g.rowByKey[e.Key]; dup {
			continue
		}
		g.rowByKey[e.Key] = len(g.rows)
		g.rows = append(g.rows, e)
	}
	for id := range g.views {
		g.views[id].sel.Row = -1
	}
	g.Refresh()
	return g
}

// Session returns the session the grid writes through.
func (g *Grid) Session() *Session {
	return g.session
}

// Frozen returns the identifier-column view.
func (g *Grid) Frozen() View {
	return gridView{g: g, id: FrozenView}
}

// Scrollable returns the data-column view.
func (g *Grid) Scrollable() View {
	return gridView{g: g, id: ScrollableView}
}

// View returns a view by id.
func (g *Grid) View(id ViewID) View {
	return gridView{g: g, id: id}
}

// RowCount returns the number of editable entity rows.
func (g *Grid) RowCount() int {
	return len(g.rows)
}

// Row returns the entity shown on a row.
func (g *Grid) Row(row int) (Entity, bool) {
	if row < 0 || row >= len(g.rows) {
		return Entity{}, false
	}
	return g.rows[row], true
}

// RowByKey returns the row of an entity key.
func (g *Grid) RowByKey(key int) (int, bool) {
	row, ok := g.rowByKey[key]
	return row, ok
}

// RowByName returns the first row whose entity name matches, ignoring case and spacing.
func (g *Grid) RowByName(name string) (int, bool) {
	want := foldName(name)
	if want == "" {
		return 0, false
	}
	for i, e := range g.rows {
		if foldName(e.Name) == want {
			return i, true
		}
	}
	return 0, false
}

// Columns returns every backing column in display order.
func (g *Grid) Columns() []Column {
	return g.columns
}

// ColumnNames returns the header of every backing column.
func (g *Grid) ColumnNames() []string {
	names := make([]string, len(g.columns))
	for i, c := range g.columns {
		names[i] = c.Name
	}
	return names
}

// FrozenWidth returns the number of leading frozen columns.
func (g *Grid) FrozenWidth() int {
	return g.frozenWidth
}

// Refresh rebuilds the column layout from the live table, drops any pending
// edit and clamps both views' state. Call after the session was restored.
func (g *Grid) Refresh() {
	g.pending = nil
	g.slotColumns = 0
	g.syncColumns()
	for id := range g.views {
		st := &g.views[id]
		if st.sel.Row >= len(g.rows) {
			st.sel = Selection{Row: -1}
		}
		st.sel.Cols = g.clampCols(ViewID(id), st.sel.Cols)
		st.scrollTop = g.clampRow(st.scrollTop)
	}
}

// syncColumns grows the slot columns to fit the longest live list.
// Slot columns never shrink outside Refresh.
func (g *Grid) syncColumns() {
	desc := g.session.Descriptor()

	if desc.Arity == ArityFlags {
		if g.columns != nil {
			return
		}
		g.columns = g.identityColumns()
		flags := g.session.Flags()
		for i := 0; i < flags.Width(); i++ {
			g.columns = append(g.columns, Column{Name: g.session.FlagLabel(i), Kind: ColumnFlag, Flag: i})
		}
		return
	}

	want := max(g.slotColumns, 1)
	slots := g.session.Slots()
	for _, e := range g.rows {
		want = max(want, slots.Len(e.Key))
	}
	want = min(want, desc.MaxSlots)
	if want == g.slotColumns && g.columns != nil {
		return
	}

	g.slotColumns = want
	g.columns = g.identityColumns()
	for i := 0; i < want; i++ {
		g.columns = append(g.columns, Column{Name: moveColumnName(i), Kind: ColumnMove, Slot: i})
		if desc.Arity == ArityMoveLevel {
			g.columns = append(g.columns, Column{Name: levelColumnName(i), Kind: ColumnLevel, Slot: i})
		}
	}
}

func (g *Grid) identityColumns() []Column {
	return []Column{
		{Name: "ID", Kind: ColumnID},
		{Name: "Name", Kind: ColumnName},
	}
}

func moveColumnName(slot int) string  { return fmt.Sprintf("Move %d", slot+1) }
func levelColumnName(slot int) string { return fmt.Sprintf("Lv %d", slot+1) }

// ColumnByName finds the column a CSV header refers to. Slot headers past the
// current layout ("Move 12") are accepted up to the descriptor's MaxSlots.
func (g *Grid) ColumnByName(name string) (Column, bool) {
	key := foldName(CleanCell(name))
	for _, c := range g.columns {
		if foldName(c.Name) == key {
			return c, true
		}
	}

	desc := g.session.Descriptor()
	if desc.Arity == ArityFlags {
		return Column{}, false
	}
	if n, ok := slotNumber(key, "move"); ok && n <= desc.MaxSlots {
		return Column{Name: moveColumnName(n - 1), Kind: ColumnMove, Slot: n - 1}, true
	}
	if desc.Arity == ArityMoveLevel {
		if n, ok := slotNumber(key, "lv"); ok && n <= desc.MaxSlots {
			return Column{Name: levelColumnName(n - 1), Kind: ColumnLevel, Slot: n - 1}, true
		}
	}
	return Column{}, false
}

// slotNumber parses "<prefix> <n>" with n >= 1.
func slotNumber(key, prefix string) (int, bool) {
	rest, ok := strings.CutPrefix(key, prefix)
	if !ok {
		return 0, false
	}
	n, err := strconv.Atoi(strings.TrimSpace(rest))
	if err != nil || n < 1 {
		return 0, false
	}
	return n, true
}

// ----------------------------------------------------------------------------
// Cell Access
// ----------------------------------------------------------------------------

// Value formats a backing cell for display and export.
func (g *Grid) Value(row, col int) string {
	if row < 0 || row >= len(g.rows) || col < 0 || col >= len(g.columns) {
		return ""
	}
	e := g.rows[row]
	c := g.columns[col]
	r := g.session.Resolver()

	switch c.Kind {
	case ColumnID:
		return strconv.Itoa(e.Key)
	case ColumnName:
		return e.Name
	case ColumnMove:
		return r.Format(g.session.Slots().Get(e.Key, c.Slot).Move)
	case ColumnLevel:
		slots := g.session.Slots()
		if c.Slot >= slots.Len(e.Key) {
			return ""
		}
		return strconv.Itoa(slots.Get(e.Key, c.Slot).Level)
	case ColumnFlag:
		return FormatFlag(g.session.Flags().Get(e.Key, c.Flag))
	}
	return ""
}

// Editable reports whether a backing cell accepts user edits.
func (g *Grid) Editable(row, col int) bool {
	if g.copyPaste {
		return false
	}
	if row < 0 || row >= len(g.rows) || col < 0 || col >= len(g.columns) {
		return false
	}
	return g.columns[col].Editable()
}

// SetValue applies user text to a backing cell through the session.
// A rejected value leaves the model unchanged.
func (g *Grid) SetValue(row, col int, text string) error {
	if g.copyPaste {
		return ErrReadOnly
	}
	if !g.Editable(row, col) {
		return ErrNotEditable
	}
	if err := g.session.ApplyCell(g.rows[row].Key, g.columns[col], text); err != nil {
		return err
	}
	g.syncColumns()
	return nil
}

// AddSlot appends an empty slot to a row's list and widens the grid if needed.
func (g *Grid) AddSlot(row int) error {
	e, ok := g.Row(row)
	if !ok {
		return ErrSlotIndex
	}
	if err := g.session.AddSlot(e.Key); err != nil {
		return err
	}
	g.syncColumns()
	return nil
}

// RemoveSlot removes the last slot of a row's list.
func (g *Grid) RemoveSlot(row int) (RemoveOutcome, error) {
	e, ok := g.Row(row)
	if !ok {
		return NothingToRemove, ErrSlotIndex
	}
	return g.session.RemoveSlot(e.Key)
}

// SetCopyPasteMode toggles the read-only mode. Only UI editability changes.
func (g *Grid) SetCopyPasteMode(on bool) {
	g.copyPaste = on
	if on {
		g.pending = nil
	}
}

// CopyPasteMode reports whether cell editing is disabled.
func (g *Grid) CopyPasteMode() bool {
	return g.copyPaste
}

// ----------------------------------------------------------------------------
// Pending Edit
// ----------------------------------------------------------------------------

func (g *Grid) beginEdit(row, col int) error {
	if g.copyPaste {
		return ErrReadOnly
	}
	if !g.Editable(row, col) {
		return ErrNotEditable
	}
	g.pending = &pendingEdit{row: row, col: col, text: g.Value(row, col)}
	return nil
}

// EditText replaces the text of the pending edit.
func (g *Grid) EditText(text string) error {
	if g.pending == nil {
		return ErrNoPendingEdit
	}
	g.pending.text = text
	return nil
}

// PendingEdit returns the cell and text being edited.
func (g *Grid) PendingEdit() (row, col int, text string, ok bool) {
	if g.pending == nil {
		return 0, 0, "", false
	}
	return g.pending.row, g.pending.col, g.pending.text, true
}

// CommitEdit applies the pending edit, if any. The edit is dropped either way;
// a rejected value leaves the cell unchanged.
func (g *Grid) CommitEdit() error {
	p := g.pending
	if p == nil {
		return nil
	}
	g.pending = nil
	return g.SetValue(p.row, p.col, p.text)
}

// CancelEdit drops the pending edit.
func (g *Grid) CancelEdit() {
	g.pending = nil
}

// ----------------------------------------------------------------------------
// Selection and Scroll Synchronization
// ----------------------------------------------------------------------------

// SetSelectionMode switches between cell and full-row selection.
func (g *Grid) SetSelectionMode(mode SelectionMode) {
	g.mode = mode
	for id := range g.views {
		if row := g.views[id].sel.Row; row >= 0 {
			g.setSelection(ViewID(id), row, g.views[id].sel.Cols)
			break
		}
	}
}

// SelectionMode returns the active selection mode.
func (g *Grid) SelectionMode() SelectionMode {
	return g.mode
}

// viewWidth returns the number of columns a view exposes.
func (g *Grid) viewWidth(id ViewID) int {
	if id == FrozenView {
		return min(g.frozenWidth, len(g.columns))
	}
	return max(len(g.columns)-g.frozenWidth, 0)
}

func (g *Grid) viewOffset(id ViewID) int {
	if id == FrozenView {
		return 0
	}
	return g.frozenWidth
}

func (g *Grid) allCols(id ViewID) []int {
	cols := make([]int, g.viewWidth(id))
	for i := range cols {
		cols[i] = i
	}
	return cols
}

func (g *Grid) clampCols(id ViewID, cols []int) []int {
	var out []int
	for _, c := range cols {
		if c >= 0 && c < g.viewWidth(id) {
			out = append(out, c)
		}
	}
	return out
}

func (g *Grid) clampRow(row int) int {
	return max(min(row, len(g.rows)-1), 0)
}

// setSelection updates one view and mirrors the row to its sibling.
func (g *Grid) setSelection(id ViewID, row int, cols []int) {
	sel := Selection{Row: -1}
	if row >= 0 && row < len(g.rows) {
		sel.Row = row
		if g.mode == SelectRows {
			sel.Cols = g.allCols(id)
		} else {
			sel.Cols = g.clampCols(id, cols)
		}
	}
	g.views[id].sel = sel

	if g.syncing {
		return
	}
	g.syncing = true
	defer func() { g.syncing = false }()

	// The sibling gets the same row; in cell mode it keeps no columns of its own.
	g.setSelection(id.sibling(), sel.Row, nil)
}

// setScroll updates one view's scroll position and mirrors it.
func (g *Grid) setScroll(id ViewID, top int) {
	g.views[id].scrollTop = g.clampRow(top)

	if g.syncing {
		return
	}
	g.syncing = true
	defer func() { g.syncing = false }()

	g.setScroll(id.sibling(), top)
}

// click handles a user click; clicking the selected row's ID cell again
// clears the selection in both views.
func (g *Grid) click(id ViewID, row, col int) {
	backing := col + g.viewOffset(id)
	cur := g.views[id].sel.Row
	if backing < len(g.columns) && g.columns[backing].Kind == ColumnID && cur == row && row >= 0 {
		g.setSelection(id, -1, nil)
		return
	}
	g.setSelection(id, row, []int{col})
}

// ----------------------------------------------------------------------------
// gridView
// ----------------------------------------------------------------------------

// gridView is a thin projection of a grid onto a column range.
type gridView struct {
	g  *Grid
	id ViewID
}

func (v gridView) ID() ViewID         { return v.id }
func (v gridView) RowCount() int      { return v.g.RowCount() }
func (v gridView) ColumnCount() int   { return v.g.viewWidth(v.id) }
func (v gridView) ScrollTop() int     { return v.g.views[v.id].scrollTop }
func (v gridView) ScrollTo(top int)   { v.g.setScroll(v.id, top) }
func (v gridView) ClearSelection()    { v.g.setSelection(v.id, -1, nil) }
func (v gridView) Click(row, col int) { v.g.click(v.id, row, col) }

func (v gridView) BackingColumn(col int) int {
	return col + v.g.viewOffset(v.id)
}

func (v gridView) Column(col int) Column {
	if col < 0 || col >= v.ColumnCount() {
		return Column{}
	}
	return v.g.columns[v.BackingColumn(col)]
}

func (v gridView) Value(row, col int) string {
	if col < 0 || col >= v.ColumnCount() {
		return ""
	}
	return v.g.Value(row, v.BackingColumn(col))
}

func (v gridView) Editable(row, col int) bool {
	if col < 0 || col >= v.ColumnCount() {
		return false
	}
	return v.g.Editable(row, v.BackingColumn(col))
}

func (v gridView) SetValue(row, col int, text string) error {
	if col < 0 || col >= v.ColumnCount() {
		return ErrNotEditable
	}
	return v.g.SetValue(row, v.BackingColumn(col), text)
}

func (v gridView) BeginEdit(row, col int) error {
	if col < 0 || col >= v.ColumnCount() {
		return ErrNotEditable
	}
	return v.g.beginEdit(row, v.BackingColumn(col))
}

func (v gridView) Select(row int, cols ...int) {
	v.g.setSelection(v.id, row, cols)
}

func (v gridView) Selection() Selection {
	sel := v.g.views[v.id].sel
	sel.Cols = append([]int(nil), sel.Cols...)
	return sel
}
