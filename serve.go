// serve.go
package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/ViniZap4/moodlog-server/auth"
	"github.com/ViniZap4/moodlog-server/events"
	httpapi "github.com/ViniZap4/moodlog-server/http"
)

func newServeCmd(open opener) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the mood log HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			rt, err := open(cmd, true)
			if err != nil {
				return err
			}
			defer rt.Close()

			hash := []byte(rt.cfg.PasswordHash)
			if len(hash) == 0 {
				if hash, err = auth.HashPassword(rt.cfg.Password, 0); err != nil {
					return err
				}
			}

			hub := events.NewHub(rt.log)
			srv := httpapi.NewServer(httpapi.Config{
				Addr:         rt.cfg.Addr,
				PasswordHash: hash,
				Logger:       rt.log,
			}, rt.store, hub)

			g, gctx := errgroup.WithContext(ctx)
			g.Go(func() error {
				hub.Run(gctx)
				return nil
			})
			g.Go(func() error {
				return srv.Run(gctx)
			})

			err = g.Wait()
			rt.log.Info().Msg("server stopped")
			return err
		},
	}
}
