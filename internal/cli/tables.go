package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/dexedit/internal/core"
)

func tablesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tables",
		Short: "List the editable tables",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "KIND\tLABEL\tSECTION\tSLOTS")
			for _, d := range core.All() {
				slots := "-"
				if d.Arity != core.ArityFlags {
					slots = fmt.Sprint(d.MaxSlots)
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", d.Kind, d.Label, d.Section, slots)
			}
			return w.Flush()
		},
	}
}
