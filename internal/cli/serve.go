package cli

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/serenespa/admin-console/internal/web"
	"github.com/spf13/cobra"
)

func newServeCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the admin console",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			a, err := newApp(o.cfg)
			if err != nil {
				return err
			}
			up, err := a.uploader(ctx)
			if err != nil {
				return fmt.Errorf("media uploader: %w", err)
			}
			rdb := a.redisClient(ctx)
			if rdb != nil {
				defer rdb.Close()
			}
			console, err := web.New(web.Options{
				Config:   a.cfg,
				State:    a.state,
				Verifier: a.verifier,
				Manager:  a.manager,
				Catalog:  a.catalog,
				Uploader: up,
				Redis:    rdb,
			})
			if err != nil {
				return err
			}
			return console.Serve(ctx, a.cfg.Server.Host+":"+a.cfg.Server.Port)
		},
	}
}
