// Package web serves the table editor over HTTP.
//
// Panels are opened through the API and live in memory until closed. Each
// request against a panel holds that panel's lock for its whole duration, so
// the single-owner core model is never touched by two requests at once.
package web

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/JonMunkholm/dexedit/internal/audit"
	"github.com/JonMunkholm/dexedit/internal/config"
	"github.com/JonMunkholm/dexedit/internal/core"
	"github.com/JonMunkholm/dexedit/internal/metrics"
	"github.com/JonMunkholm/dexedit/internal/web/middleware"
)

// Options wires the server to its collaborators.
type Options struct {
	Data    core.DataLayer
	Sink    core.AuditSink    // nil disables audit logging
	History audit.Reader      // nil disables the history endpoint
	Metrics *metrics.Recorder // nil disables /metrics
	Config  *config.Config
}

// Server is the HTTP server for the table editor.
type Server struct {
	data    core.DataLayer
	sink    core.AuditSink
	history audit.Reader
	metrics *metrics.Recorder
	cfg     *config.Config
	panels  *panelRegistry
	imports *importLimiter
	router  *chi.Mux
	server  *http.Server
}

// NewServer creates a Server and its routes.
func NewServer(opts Options) *Server {
	cfg := opts.Config
	if cfg == nil {
		cfg = &config.Config{}
	}
	s := &Server{
		data:    opts.Data,
		sink:    opts.Sink,
		history: opts.History,
		metrics: opts.Metrics,
		cfg:     cfg,
		panels:  newPanelRegistry(cfg.Session.MaxPanels),
		imports: newImportLimiter(cfg.Session.MaxConcurrentImports, cfg.Session.ImportWait),
		router:  chi.NewRouter(),
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

// setupMiddleware configures middleware for all routes.
func (s *Server) setupMiddleware() {
	s.router.Use(chimw.RequestID)
	s.router.Use(middleware.TrustedRealIP(s.cfg.Security.TrustedProxies))
	s.router.Use(middleware.AuditInfo)
	s.router.Use(middleware.Logger)
	s.router.Use(chimw.Recoverer)
	if s.cfg.Server.RequestTimeout > 0 {
		s.router.Use(chimw.Timeout(s.cfg.Server.RequestTimeout))
	}
	s.router.Use(securityHeaders)
}

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() {
	s.router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]string{"status": "ok"})
	})
	if s.metrics != nil {
		s.router.Handle("/metrics", s.metrics.Handler())
	}

	// Pages and their form actions
	s.router.Group(func(r chi.Router) {
		r.Use(middleware.APIKeyAuth(s.cfg.Security.APIKeys))

		r.Get("/", s.handleIndex)
		r.Post("/panels", s.handleOpenPanelForm)
		r.Route("/panels/{panelID}", func(r chi.Router) {
			r.Get("/", s.handlePanelPage)
			r.Post("/cell", s.handleCellForm)
			r.Post("/rows/{row}/add", s.handleSlotForm(true))
			r.Post("/rows/{row}/remove", s.handleSlotForm(false))
			r.Post("/save", s.handleSaveForm)
			r.Post("/reload", s.handleReloadForm)
			r.Post("/import", s.handleImportForm)
			r.Post("/close", s.handleCloseForm)
		})
	})

	// API routes
	s.router.Route("/api", func(r chi.Router) {
		r.Use(middleware.APIKeyAuth(s.cfg.Security.APIKeys))

		r.Get("/tables", s.handleListTables)
		r.Get("/audit", s.handleAuditHistory)
		r.Get("/audit/export", s.handleAuditExport)

		r.Get("/panels", s.handleListPanels)
		r.Post("/panels", s.handleOpenPanel)

		r.Route("/panels/{panelID}", func(r chi.Router) {
			r.Get("/", s.handleGetPanel)
			r.Delete("/", s.handleClosePanel)

			// Cells and slots
			r.Put("/cells", s.handleSetCell)
			r.Post("/rows/{row}/slots", s.handleAddSlot)
			r.Delete("/rows/{row}/slots", s.handleRemoveSlot)
			r.Get("/rows/{row}/icon", s.handleIcon)

			// In-cell editing
			r.Post("/edit", s.handleBeginEdit)
			r.Put("/edit", s.handleEditText)
			r.Post("/edit/commit", s.handleCommitEdit)
			r.Delete("/edit", s.handleCancelEdit)

			// View state
			r.Post("/select", s.handleSelect)
			r.Post("/scroll", s.handleScroll)
			r.Put("/mode", s.handleSetMode)

			// Transactions
			r.Get("/diff", s.handleDiff)
			r.Post("/save", s.handleSave)
			r.Post("/reload", s.handleReload)

			// CSV
			r.Get("/export", s.handleExport)
			r.Post("/import", s.handleImport)
		})
	})
}

// Start begins listening for HTTP requests.
func (s *Server) Start() error {
	sc := s.cfg.Server
	s.server = &http.Server{
		Addr:         sc.Addr(),
		Handler:      s.router,
		ReadTimeout:  sc.ReadTimeout,
		WriteTimeout: sc.WriteTimeout,
		IdleTimeout:  sc.IdleTimeout,
	}

	slog.Info("server listening", "addr", sc.Addr())
	err := s.server.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Shutdown stops accepting requests, waits for in-flight ones and running
// imports, then closes every open panel. Unsaved edits are discarded.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	if s.server != nil {
		err = s.server.Shutdown(ctx)
	}
	if n := s.imports.activeCount(); n > 0 {
		slog.Info("waiting for imports to complete", "active", n)
		if werr := s.imports.waitForDrain(ctx); werr != nil {
			slog.Warn("imports did not complete in time", "error", werr)
		}
	}
	for _, op := range s.panels.closeAll() {
		if op.panel.Dirty() {
			slog.Warn("discarding unsaved edits", "panel", op.panel.ID(), "table", op.panel.Descriptor().Kind)
		}
		s.metrics.PanelClosed(op.icons)
	}
	return err
}

// Router returns the underlying chi router for testing.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// observe records an operation in the metrics recorder.
func (s *Server) observe(op string, kind core.TableKind, err error, start time.Time) {
	s.metrics.Observe(op, kind, err, time.Since(start))
}

// securityHeaders adds security headers to all responses.
func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Content-Security-Policy", "default-src 'self'; style-src 'self' 'unsafe-inline'; img-src 'self' data:")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
		next.ServeHTTP(w, r)
	})
}

// writeJSON encodes v as JSON and writes it to w.
// Logs encoding errors since headers are already sent.
func writeJSON(w http.ResponseWriter, v any) {
	writeJSONStatus(w, http.StatusOK, v)
}

func writeJSONStatus(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("json encode error", "error", err)
	}
}
