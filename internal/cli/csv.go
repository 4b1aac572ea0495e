package cli

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/dexedit/internal/core"
)

func exportCmd(flags *globalFlags) *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "export <table>",
		Short: "Write a table as CSV",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) (retErr error) {
			cfg, err := flags.loadConfig(cmd)
			if err != nil {
				return err
			}
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

			var w io.Writer = cmd.OutOrStdout()
			if output != "" && output != "-" {
				f, err := os.Create(output)
				if err != nil {
					return fmt.Errorf("create output: %w", err)
				}
				defer func() {
					if err := f.Close(); err != nil && retErr == nil {
						retErr = err
					}
				}()
				w = f
			}
			return p.Export(w)
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "file to write, stdout when empty")
	return cmd
}

func importCmd(flags *globalFlags) *cobra.Command {
	var save bool
	cmd := &cobra.Command{
		Use:   "import <table> <file.csv>",
		Short: "Apply a CSV to a table and show the changes",
		Long: "Apply a CSV to a table and print the resulting change lines. " +
			"Nothing is written unless --save is given.",
		Args: cobra.ExactArgs(2),
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

			p, err := a.openPanel(args[0])
			if err != nil {
				return err
			}
			defer p.Close()

			f, err := os.Open(args[1])
			if err != nil {
				return fmt.Errorf("open csv: %w", err)
			}
			defer f.Close()

			out := cmd.OutOrStdout()
			res, err := p.Import(f)
			var ie *core.ImportError
			if errors.As(err, &ie) {
				for _, re := range ie.Rows {
					fmt.Fprintf(out, "line %d (%s) %s: %v\n", re.Line, re.Key, re.Column, re.Err)
				}
				fmt.Fprintln(out, importSummary(res))
				fmt.Fprintln(out, "nothing saved")
				return err
			}
			if err != nil {
				return err
			}
			fmt.Fprintln(out, importSummary(res))
			for _, h := range res.Ignored {
				fmt.Fprintf(out, "ignored column %q\n", h)
			}

			changes := p.Diff()
			for _, c := range changes {
				fmt.Fprintln(out, c.String())
			}
			if len(changes) == 0 {
				fmt.Fprintln(out, "no changes")
				return nil
			}
			if !save {
				fmt.Fprintln(out, "dry run, use --save to write")
				return nil
			}
			saved, err := p.Save(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "saved %d change(s) to %s\n", len(saved.Changes), p.Descriptor().Section)
			return nil
		},
	}
	cmd.Flags().BoolVar(&save, "save", false, "write the changes and log them")
	return cmd
}

func importSummary(res core.ImportResult) string {
	s := fmt.Sprintf("%d rows: %d applied, %d unmatched", res.Supplied, res.Applied, res.Unmatched)
	if res.Failed > 0 {
		s += fmt.Sprintf(", %d failed", res.Failed)
	}
	return s
}
