package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/JonMunkholm/dexedit/internal/audit"
	"github.com/JonMunkholm/dexedit/internal/config"
	"github.com/JonMunkholm/dexedit/internal/core"
	"github.com/JonMunkholm/dexedit/internal/romdata"
)

// app holds the data layer and audit sinks built from the configuration.
type app struct {
	cfg     *config.Config
	data    core.DataLayer
	sink    core.AuditSink
	history audit.Reader
	closers []func()
}

// openApp opens the configured data layer and audit sinks. With both a
// fixture and a database configured, an empty database is seeded from the
// fixture first.
func openApp(ctx context.Context, cfg *config.Config) (a *app, retErr error) {
	a = &app{cfg: cfg}
	defer func() {
		if retErr != nil {
			a.Close()
		}
	}()

	var sqlite *romdata.SQLiteStore
	switch {
	case cfg.Data.DB != "":
		store, err := romdata.OpenSQLite(cfg.Data.DB)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, func() { _ = store.Close() })
		if store.Empty() && cfg.Data.Fixture != "" {
			fx, err := romdata.LoadFixture(cfg.Data.Fixture)
			if err != nil {
				return nil, err
			}
			if err := store.Seed(ctx, fx); err != nil {
				return nil, fmt.Errorf("seed %s: %w", cfg.Data.DB, err)
			}
			slog.Info("seeded database from fixture", "db", cfg.Data.DB, "fixture", cfg.Data.Fixture)
		}
		if store.Empty() {
			return nil, errors.New("database is empty: seed it with --fixture")
		}
		sqlite = store
		a.data = store
	case cfg.Data.Fixture != "":
		store, err := romdata.OpenFixture(cfg.Data.Fixture)
		if err != nil {
			return nil, err
		}
		a.data = store
	default:
		return nil, errors.New("no data source: set --fixture or --db")
	}

	var sinks []core.AuditSink
	if cfg.Audit.LogFile != "" {
		sinks = append(sinks, audit.NewFileSink(cfg.Audit.LogFile))
	}
	if cfg.Audit.SQLite && sqlite != nil {
		s, err := audit.NewSQLiteSink(ctx, sqlite.DB())
		if err != nil {
			return nil, err
		}
		sinks = append(sinks, s)
	}
	if cfg.Audit.DatabaseURL != "" {
		pg, err := audit.ConnectPostgres(ctx, cfg.Audit.DatabaseURL, audit.PoolOptions{
			MaxConns:        int32(cfg.Audit.MaxConns),
			MinConns:        int32(cfg.Audit.MinConns),
			MaxConnLifetime: cfg.Audit.MaxConnLifetime,
			MaxConnIdleTime: cfg.Audit.MaxConnIdleTime,
		})
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, pg.Close)
		sinks = append(sinks, pg)
	}

	a.sink = audit.Combine(sinks...)
	switch s := a.sink.(type) {
	case audit.MultiSink:
		a.history = s.Reader()
	case audit.Reader:
		a.history = s
	}
	return a, nil
}

// openPanel opens a panel on the app's data layer.
func (a *app) openPanel(kind string) (*core.Panel, error) {
	var icons *core.IconCache
	if src, ok := a.data.(core.IconSource); ok {
		c, err := core.NewIconCache(src, a.cfg.Session.IconCacheSize)
		if err != nil {
			return nil, err
		}
		icons = c
	}
	return core.OpenPanel(core.TableKind(kind), a.data, core.PanelOptions{
		Sink:          a.sink,
		Icons:         icons,
		MaxImportSize: a.cfg.Session.MaxImportSize,
	})
}

// Close releases everything openApp acquired, newest first.
func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}
