package main

import (
	"context"
	"errors"
	"net/http"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

func (a *app) serveCommand() *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server and the scheduled publishing worker",
		RunE: func(cmd *cobra.Command, args []string) error {
			module, cfg, err := a.open()
			if err != nil {
				return err
			}
			defer module.Close()

			ctx := cmd.Context()
			if err := module.Bootstrap(ctx); err != nil {
				return err
			}
			handler, err := module.Handler()
			if err != nil {
				return err
			}
			if addr == "" {
				addr = cfg.HTTP.Addr
			}
			server := &http.Server{
				Addr:         addr,
				Handler:      handler,
				ReadTimeout:  cfg.HTTP.ReadTimeout,
				WriteTimeout: cfg.HTTP.WriteTimeout,
			}
			logger := module.Logger()

			group, gctx := errgroup.WithContext(ctx)
			group.Go(func() error {
				logger.Info("http.server.listening", "addr", addr)
				if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					return err
				}
				return nil
			})
			if cfg.Jobs.Enabled {
				group.Go(func() error {
					return module.Worker().Run(gctx)
				})
			}
			group.Go(func() error {
				<-gctx.Done()
				shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), cfg.HTTP.ShutdownTimeout)
				defer cancel()
				logger.Info("http.server.shutdown", "timeout", cfg.HTTP.ShutdownTimeout)
				return server.Shutdown(shutdownCtx)
			})
			return group.Wait()
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (defaults to FOLIO_HTTP_ADDR)")
	return cmd
}
