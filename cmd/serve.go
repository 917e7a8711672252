package cmd

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"wiki-api/pkg/server"
)

func newServeCmd(a *app) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if addr != "" {
				a.cfg.Addr = addr
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			s, err := a.openStore(ctx)
			if err != nil {
				return err
			}
			return server.New(a.cfg, s, a.logger).Run(ctx)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default :3000, or :$PORT)")
	return cmd
}
