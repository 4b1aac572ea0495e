package audit

import (
	"context"
	"fmt"
	"slices"

	"github.com/JonMunkholm/dexedit/internal/core"
)

// MultiSink writes to each sink in order and stops at the first failure,
// which fails the save. Sinks before the failing one keep what they wrote, so
// a retried save records those entries twice. Combine puts the transactional
// sinks first to keep that window small: a SQL sink that fails writes nothing.
type MultiSink []core.AuditSink

// AddEntries forwards the entries to each sink.
func (m MultiSink) AddEntries(ctx context.Context, section string, entries []string) error {
	for i, s := range m {
		if err := s.AddEntries(ctx, section, entries); err != nil {
			if i > 0 {
				return fmt.Errorf("audit sink %d of %d (earlier sinks already recorded the entries): %w", i+1, len(m), err)
			}
			return err
		}
	}
	return nil
}

// Recent reads from the first sink that keeps history.
func (m MultiSink) Recent(ctx context.Context, f Filter) ([]Entry, error) {
	if r := m.Reader(); r != nil {
		return r.Recent(ctx, f)
	}
	return nil, nil
}

// Reader returns the first sink that can list history, or nil.
func (m MultiSink) Reader() Reader {
	for _, s := range m {
		if r, ok := s.(Reader); ok {
			return r
		}
	}
	return nil
}

// Combine returns nil for no sinks, the sink itself for one, and a MultiSink
// otherwise. Sinks that keep queryable history are moved to the front,
// keeping their relative order.
func Combine(sinks ...core.AuditSink) core.AuditSink {
	var kept MultiSink
	for _, s := range sinks {
		if s != nil {
			kept = append(kept, s)
		}
	}
	slices.SortStableFunc(kept, func(a, b core.AuditSink) int {
		return historyRank(a) - historyRank(b)
	})
	switch len(kept) {
	case 0:
		return nil
	case 1:
		return kept[0]
	default:
		return kept
	}
}

func historyRank(s core.AuditSink) int {
	if _, ok := s.(Reader); ok {
		return 0
	}
	return 1
}
