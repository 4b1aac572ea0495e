package cli

import (
	"context"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/dexedit/internal/core"
	"github.com/JonMunkholm/dexedit/internal/metrics"
	"github.com/JonMunkholm/dexedit/internal/web"
)

func serveCmd(flags *globalFlags) *cobra.Command {
	var (
		host string
		port int
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the editor over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := flags.loadConfig(cmd)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("host") {
				cfg.Server.Host = host
			}
			if cmd.Flags().Changed("port") {
				cfg.Server.Port = port
			}
			slog.Info("configuration loaded", "config", cfg.String())

			ctx := cmd.Context()
			a, err := openApp(ctx, cfg)
			if err != nil {
				return err
			}
			defer a.Close()

			slog.Info("tables registered", "count", core.TableCount())

			server := web.NewServer(web.Options{
				Data:    a.data,
				Sink:    a.sink,
				History: a.history,
				Metrics: metrics.New(),
				Config:  cfg,
			})

			errCh := make(chan error, 1)
			go func() { errCh <- server.Start() }()

			select {
			case err := <-errCh:
				return err
			case <-ctx.Done():
			}

			slog.Info("shutting down...")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
			defer cancel()
			if err := server.Shutdown(shutdownCtx); err != nil {
				slog.Error("shutdown error", "error", err)
				return err
			}
			if err := <-errCh; err != nil {
				return err
			}
			slog.Info("server stopped", "at", time.Now().Format(time.RFC3339))
			return nil
		},
	}
	cmd.Flags().StringVar(&host, "host", "", "interface to bind (env SERVER_HOST)")
	cmd.Flags().IntVar(&port, "port", 0, "port to listen on (env SERVER_PORT)")
	return cmd
}
