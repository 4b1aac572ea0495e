// Package audit provides the sinks saved table diffs are written to.
//
// Every sink implements core.AuditSink. FileSink appends the formatted lines
// verbatim to a plain-text log. SQLiteSink and PostgresSink keep one row per
// line together with the edit provenance found in the request context
// (core.AuditInfo). MultiSink fans out to several sinks.
package audit

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/JonMunkholm/dexedit/internal/core"
)

// Entry is one stored audit line.
type Entry struct {
	ID        string    `json:"id"`
	Section   string    `json:"section"`
	Line      string    `json:"line"`
	Actor     string    `json:"actor,omitempty"`
	IPAddress string    `json:"ipAddress,omitempty"`
	UserAgent string    `json:"userAgent,omitempty"`
	BatchID   string    `json:"batchId"`
	CreatedAt time.Time `json:"createdAt"`
}

// Filter narrows a history query.
type Filter struct {
	Section string // Exact section name, empty for all
	Limit   int    // <= 0 uses DefaultLimit
	Offset  int
}

// DefaultLimit caps history queries without an explicit limit.
const DefaultLimit = 100

func (f Filter) limit() int {
	if f.Limit <= 0 {
		return DefaultLimit
	}
	return f.Limit
}

// Reader is implemented by sinks that can list what they stored, newest first.
type Reader interface {
	Recent(ctx context.Context, f Filter) ([]Entry, error)
}

// newEntries stamps one save's lines with a shared batch id and the
// provenance carried by ctx.
func newEntries(ctx context.Context, section string, lines []string, now time.Time) []Entry {
	info := core.AuditInfoFrom(ctx)
	batch := uuid.NewString()
	out := make([]Entry, len(lines))
	for i, line := range lines {
		out[i] = Entry{
			ID:        uuid.NewString(),
			Section:   section,
			Line:      line,
			Actor:     info.Actor,
			IPAddress: info.IPAddress,
			UserAgent: info.UserAgent,
			BatchID:   batch,
			CreatedAt: now,
		}
	}
	return out
}
