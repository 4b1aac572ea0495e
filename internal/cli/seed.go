package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/dexedit/internal/romdata"
)

func seedCmd(flags *globalFlags) *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load a fixture into the SQLite store",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := flags.loadConfig(cmd)
			if err != nil {
				return err
			}
			if cfg.Data.DB == "" || cfg.Data.Fixture == "" {
				return errors.New("seed needs both --fixture and --db")
			}

			fx, err := romdata.LoadFixture(cfg.Data.Fixture)
			if err != nil {
				return err
			}
			store, err := romdata.OpenSQLite(cfg.Data.DB)
			if err != nil {
				return err
			}
			defer store.Close()

			if !store.Empty() && !force {
				return fmt.Errorf("%s already holds data, use --force to replace it", cfg.Data.DB)
			}
			if err := store.Seed(cmd.Context(), fx); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "seeded %s with %d entities and %d tables\n",
				cfg.Data.DB, len(fx.Entities)-1, len(fx.Slots)+len(fx.Flags))
			return nil
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "replace existing data")
	return cmd
}
