package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/brianmay/penguin-nurse/internal/api"
	"github.com/brianmay/penguin-nurse/internal/storage"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := setup()
		if err != nil {
			return err
		}
		defer logger.Sync()

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		store, err := storage.Open(ctx, cfg, logger)
		if err != nil {
			return err
		}
		defer store.Close()

		app, err := api.NewApplication(cfg, store, logger)
		if err != nil {
			return err
		}
		if cfg.Env == "production" {
			gin.SetMode(gin.ReleaseMode)
		}
		srv := &http.Server{
			Addr:              cfg.ListenAddr,
			Handler:           api.NewRouter(app),
			ReadHeaderTimeout: 10 * time.Second,
		}

		bgCtx, cancel := context.WithCancel(ctx)
		wait := app.RunBackground(bgCtx)
		defer func() {
			cancel()
			wait()
		}()

		errCh := make(chan error, 1)
		go func() {
			logger.Infof("listening on %s (storage=%s)", cfg.ListenAddr, cfg.DBType)
			errCh <- srv.ListenAndServe()
		}()

		select {
		case err := <-errCh:
			if !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		case <-ctx.Done():
		}

		logger.Info("shutting down")
		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancelShutdown()
		return srv.Shutdown(shutdownCtx)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
