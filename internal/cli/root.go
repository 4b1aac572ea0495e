// Package cli wires the editor's commands: the HTTP server, the terminal UI
// and batch CSV export and import.
package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/dexedit/internal/config"
	_ "github.com/JonMunkholm/dexedit/internal/core/tables" // Register all tables
	"github.com/JonMunkholm/dexedit/internal/logging"
)

// globalFlags override the environment for a single invocation.
type globalFlags struct {
	fixture  string
	db       string
	auditLog string
	logLevel string
}

func (f *globalFlags) options(cmd *cobra.Command) []config.Option {
	var opts []config.Option
	if cmd.Flags().Changed("fixture") {
		opts = append(opts, func(c *config.Config) { c.Data.Fixture = f.fixture })
	}
	if cmd.Flags().Changed("db") {
		opts = append(opts, func(c *config.Config) { c.Data.DB = f.db })
	}
	if cmd.Flags().Changed("audit-log") {
		opts = append(opts, func(c *config.Config) { c.Audit.LogFile = f.auditLog })
	}
	if cmd.Flags().Changed("log-level") {
		opts = append(opts, func(c *config.Config) { c.Logging.Level = f.logLevel })
	}
	return opts
}

// loadConfig reads the environment, applies the command line flags and sets
// up logging.
func (f *globalFlags) loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(f.options(cmd)...)
	if err != nil {
		return nil, err
	}
	logging.SetupTo(cmd.ErrOrStderr(), cfg.Logging.Level, cfg.Logging.Format)
	return cfg, nil
}

// Execute runs the root command.
func Execute(ctx context.Context) error {
	return NewRoot().ExecuteContext(ctx)
}

// NewRoot builds the command tree.
func NewRoot() *cobra.Command {
	flags := &globalFlags{}
	root := &cobra.Command{
		Use:           "dexedit",
		Short:         "Edit learnset and compatibility tables of a game data dump",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	pf := root.PersistentFlags()
	pf.StringVar(&flags.fixture, "fixture", "", "YAML fixture to edit (env DEXEDIT_FIXTURE)")
	pf.StringVar(&flags.db, "db", "", "SQLite store path (env DEXEDIT_DB)")
	pf.StringVar(&flags.auditLog, "audit-log", "", "plain-text change log, empty disables (env AUDIT_LOG_FILE)")
	pf.StringVar(&flags.logLevel, "log-level", "", "debug, info, warn or error (env LOG_LEVEL)")

	root.AddCommand(
		serveCmd(flags),
		tuiCmd(flags),
		tablesCmd(),
		exportCmd(flags),
		importCmd(flags),
		historyCmd(flags),
		seedCmd(flags),
	)
	return root
}
