package core

import "context"

type contextKey string

const ctxKeyAuditInfo contextKey = "audit_info"

// AuditInfo describes who made an edit. Audit sinks that keep structured
// records store it next to each entry.
type AuditInfo struct {
	Actor     string // Free-form editor name, "cli" or "tui" for local tools
	IPAddress string
	UserAgent string
}

// WithAuditInfo attaches edit provenance to ctx.
func WithAuditInfo(ctx context.Context, info AuditInfo) context.Context {
	return context.WithValue(ctx, ctxKeyAuditInfo, info)
}

// AuditInfoFrom returns the provenance attached to ctx, or the zero value.
func AuditInfoFrom(ctx context.Context) AuditInfo {
	if v, ok := ctx.Value(ctxKeyAuditInfo).(AuditInfo); ok {
		return v
	}
	return AuditInfo{}
}
