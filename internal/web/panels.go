package web

import (
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/JonMunkholm/dexedit/internal/core"
)

var (
	errPanelNotFound = errors.New("panel not found")
	errPanelLimit    = errors.New("panel limit reached")
)

// openPanel pairs a core panel with the lock that serializes requests to it.
// core.Panel is single-owner, so every access goes through mu.
type openPanel struct {
	mu       sync.Mutex
	panel    *core.Panel
	icons    *core.IconCache
	opened   time.Time
	lastUsed time.Time
}

// panelRegistry tracks the panels opened through the server.
type panelRegistry struct {
	mu     sync.Mutex
	panels map[string]*openPanel
	limit  int
}

func newPanelRegistry(limit int) *panelRegistry {
	return &panelRegistry{panels: make(map[string]*openPanel), limit: limit}
}

func (r *panelRegistry) add(p *core.Panel, icons *core.IconCache) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.limit > 0 && len(r.panels) >= r.limit {
		return fmt.Errorf("%w (%d open)", errPanelLimit, len(r.panels))
	}
	now := time.Now()
	r.panels[p.ID()] = &openPanel{panel: p, icons: icons, opened: now, lastUsed: now}
	return nil
}

func (r *panelRegistry) get(id string) (*openPanel, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	op, ok := r.panels[id]
	return op, ok
}

// remove drops a panel from the registry and returns it for closing.
func (r *panelRegistry) remove(id string) (*openPanel, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	op, ok := r.panels[id]
	delete(r.panels, id)
	return op, ok
}

// list returns the open panels, oldest first.
func (r *panelRegistry) list() []*openPanel {
	r.mu.Lock()
	out := make([]*openPanel, 0, len(r.panels))
	for _, op := range r.panels {
		out = append(out, op)
	}
	r.mu.Unlock()

	slices.SortFunc(out, func(a, b *openPanel) int {
		if c := a.opened.Compare(b.opened); c != 0 {
			return c
		}
		if a.panel.ID() < b.panel.ID() {
			return -1
		}
		return 1
	})
	return out
}

// closeAll closes every panel, discarding unsaved edits.
func (r *panelRegistry) closeAll() []*openPanel {
	r.mu.Lock()
	all := make([]*openPanel, 0, len(r.panels))
	for id, op := range r.panels {
		all = append(all, op)
		delete(r.panels, id)
	}
	r.mu.Unlock()

	for _, op := range all {
		op.mu.Lock()
		op.panel.Close()
		op.mu.Unlock()
	}
	return all
}
