package core

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/google/uuid"
)

// PanelOptions configures OpenPanel.
type PanelOptions struct {
	Sink          AuditSink  // nil disables audit logging
	Icons         *IconCache // nil disables icons
	MaxImportSize int64      // <= 0 uses DefaultMaxImportSize
}

// Panel is one open editor: a session, the grid over it and its icon cache.
// A Panel is owned by a single caller at a time.
type Panel struct {
	id     string
	desc   Descriptor
	sess   *Session
	grid   *Grid
	icons  *IconCache
	limit  int64
	closed bool
	logger *slog.Logger
}

// OpenPanel loads the registered table of the given kind and opens a panel over it.
func OpenPanel(kind TableKind, data DataLayer, opts PanelOptions) (*Panel, error) {
	desc, ok := Get(kind)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownTable, kind)
	}

	sess, err := NewSession(desc, data, opts.Sink)
	if err != nil {
		return nil, err
	}

	id := uuid.NewString()
	p := &Panel{
		id:     id,
		desc:   desc,
		sess:   sess,
		grid:   NewGrid(sess),
		icons:  opts.Icons,
		limit:  opts.MaxImportSize,
		logger: slog.Default().With("panel", id, "table", string(kind)),
	}
	p.logger.Debug("panel opened", "rows", p.grid.RowCount())
	return p, nil
}

// ID returns the panel's unique identifier.
func (p *Panel) ID() string { return p.id }

// Descriptor returns the descriptor the panel was opened with.
func (p *Panel) Descriptor() Descriptor { return p.desc }

// Grid returns the panel's grid.
func (p *Panel) Grid() *Grid { return p.grid }

// Session returns the panel's edit session.
func (p *Panel) Session() *Session { return p.sess }

// Closed reports whether Close was called.
func (p *Panel) Closed() bool { return p.closed }

// Diff previews what Save would log.
func (p *Panel) Diff() []ChangeEntry {
	return p.sess.Diff()
}

// Dirty reports whether the panel has unsaved edits.
func (p *Panel) Dirty() bool {
	return p.sess.Dirty()
}

// Save commits the pending cell edit, then saves the session. A rejected
// pending value refuses the save and leaves everything as it was.
func (p *Panel) Save(ctx context.Context) (SaveResult, error) {
	if p.closed {
		return SaveResult{}, ErrPanelClosed
	}
	if err := p.grid.CommitEdit(); err != nil {
		return SaveResult{}, fmt.Errorf("commit pending edit: %w", err)
	}
	return p.sess.Save(ctx)
}

// Reload discards every edit since the last save, including a pending cell edit.
func (p *Panel) Reload() error {
	if p.closed {
		return ErrPanelClosed
	}
	p.grid.CancelEdit()
	p.sess.Restore()
	p.grid.Refresh()
	return nil
}

// Close discards unsaved edits and releases the icon cache.
// Closing twice is a no-op.
func (p *Panel) Close() {
	if p.closed {
		return
	}
	p.grid.CancelEdit()
	p.sess.Restore()
	if p.icons != nil {
		p.icons.Purge()
	}
	p.closed = true
	p.logger.Debug("panel closed")
}

// Export writes the grid as CSV.
func (p *Panel) Export(w io.Writer) error {
	if p.closed {
		return ErrPanelClosed
	}
	return ExportCSV(w, p.grid)
}

// Import applies a CSV file to the live table. The pending cell edit is
// dropped first so it cannot overwrite imported values later.
func (p *Panel) Import(r io.Reader) (ImportResult, error) {
	if p.closed {
		return ImportResult{}, ErrPanelClosed
	}
	p.grid.CancelEdit()
	return ImportCSV(r, p.grid, p.limit)
}

// Icon returns the icon of the entity shown on a row.
func (p *Panel) Icon(row int) ([]byte, error) {
	if p.closed {
		return nil, ErrPanelClosed
	}
	e, ok := p.grid.Row(row)
	if !ok {
		return nil, fmt.Errorf("row %d: %w", row, ErrNotFound)
	}
	if p.icons == nil {
		return nil, fmt.Errorf("icon %d: %w", e.Key, ErrNotFound)
	}
	return p.icons.Icon(e.Key)
}
