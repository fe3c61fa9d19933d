package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v5"
	"github.com/spf13/cobra"

	"github.com/datallboy/gonntp/internal/api"
	"github.com/datallboy/gonntp/internal/poster"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP posting API",
	RunE: func(cmd *cobra.Command, args []string) error {
		appCtx, err := bootstrap()
		if err != nil {
			return err
		}
		defer appCtx.Close()

		svc, err := poster.NewService(appCtx)
		if err != nil {
			return err
		}

		e := echo.New()
		api.RegisterRoutes(e, appCtx, svc)

		srv := &http.Server{
			Addr:              ":" + appCtx.Config.Port,
			Handler:           e,
			ReadHeaderTimeout: 10 * time.Second,
		}

		errCh := make(chan error, 1)
		go func() {
			appCtx.Logger.Info("API listening on %s", srv.Addr)
			errCh <- srv.ListenAndServe()
		}()

		select {
		case err := <-errCh:
			if errors.Is(err, http.ErrServerClosed) {
				return nil
			}
			return err
		case <-cmd.Context().Done():
			appCtx.Logger.Info("Shutting down API")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		}
	},
}
