package commands

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/teslashibe/go-nyaya/internal/config"
	"github.com/teslashibe/go-nyaya/internal/log"
	"github.com/teslashibe/go-nyaya/pkg/session"
	"github.com/teslashibe/go-nyaya/pkg/web"
)

// serve: run the web UI and JSON API until interrupted.
func serveCmd() *cobra.Command {
	var (
		port  int
		debug bool
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the web UI and API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("port") {
				cfg.Port = port
			}
			if cmd.Flags().Changed("debug") {
				cfg.Debug = debug
			}

			provider, err := newProvider(cfg)
			if err != nil {
				return err
			}
			defer provider.Close()

			srv := web.NewServer(provider,
				web.WithLogger(log.L()),
				web.WithDebug(cfg.Debug),
				web.WithSessionOptions(
					session.WithModel(cfg.Model),
					session.WithCopyAck(cfg.CopyAck),
				),
			)

			log.Component("serve").Info("listening", "addr", cfg.Addr(), "model", cfg.Model)
			errCh := make(chan error, 1)
			go func() { errCh <- srv.Listen(cfg.Addr()) }()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			select {
			case err := <-errCh:
				return err
			case <-ctx.Done():
			}

			log.Component("serve").Info("shutting down", "addr", cfg.Addr())
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	}
	cmd.Flags().IntVar(&port, "port", config.DefaultPort, "HTTP port (env NYAYA_PORT)")
	cmd.Flags().BoolVar(&debug, "debug", false, "log every request")
	return cmd
}
