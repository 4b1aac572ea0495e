package cli

import (
	"errors"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/dexedit/internal/audit"
	"github.com/JonMunkholm/dexedit/internal/core"
)

func historyCmd(flags *globalFlags) *cobra.Command {
	var (
		table string
		limit int
	)
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show saved changes, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := flags.loadConfig(cmd)
			if err != nil {
				return err
			}
			a, err := openApp(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer a.Close()

			if a.history == nil {
				return errors.New("no queryable audit store: use --db or AUDIT_DATABASE_URL")
			}
			f := audit.Filter{Limit: limit}
			if table != "" {
				desc, ok := core.Get(core.TableKind(table))
				if !ok {
					return fmt.Errorf("%w: %s", core.ErrUnknownTable, table)
				}
				f.Section = desc.Section
			}

			entries, err := a.history.Recent(cmd.Context(), f)
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			for _, e := range entries {
				actor := e.Actor
				if actor == "" {
					actor = "-"
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", e.CreatedAt.Local().Format(time.DateTime), e.Section, actor, e.Line)
			}
			return w.Flush()
		},
	}
	cmd.Flags().StringVar(&table, "table", "", "only this table kind")
	cmd.Flags().IntVar(&limit, "limit", audit.DefaultLimit, "maximum entries")
	return cmd
}
