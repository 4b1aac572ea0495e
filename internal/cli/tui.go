package cli

import (
	"io"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/dexedit/internal/logging"
	"github.com/JonMunkholm/dexedit/internal/tui"
)

// runTUI is swapped out in tests.
var runTUI = tui.Run

func tuiCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "tui <table>",
		Short: "Edit a table in the terminal",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := flags.loadConfig(cmd)
			if err != nil {
				return err
			}
			// Log output would draw over the grid.
			logging.SetupTo(io.Discard, cfg.Logging.Level, cfg.Logging.Format)

			a, err := openApp(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer a.Close()

			p, err := a.openPanel(args[0])
			if err != nil {
				return err
			}
			defer p.Close()
			return runTUI(cmd.Context(), p)
		},
	}
}
