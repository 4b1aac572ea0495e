package middleware

import (
	"net/http"
	"strings"

	"github.com/JonMunkholm/dexedit/internal/core"
)

// EditorHeader names the request header carrying the editor's display name.
const EditorHeader = "X-Editor"

// AuditInfo attaches edit provenance to the request context so audit sinks
// can record who saved what. Run it after TrustedRealIP.
func AuditInfo(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		actor := strings.TrimSpace(r.Header.Get(EditorHeader))
		if len(actor) > 64 {
			actor = actor[:64]
		}
		ctx := core.WithAuditInfo(r.Context(), core.AuditInfo{
			Actor:     actor,
			IPAddress: ClientIP(r),
			UserAgent: r.UserAgent(),
		})
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
