package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/bryanwahyu/aidetect/internal/infra/httpserver"
	"github.com/bryanwahyu/aidetect/internal/middleware"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := bootstrap(ctx)
		if err != nil {
			return err
		}
		defer a.Close()

		var limiter *middleware.RateLimiter
		if a.cfg.RateLimit.RequestsPerSecond > 0 {
			limiter = middleware.NewRateLimiter(a.cfg.RateLimit.RequestsPerSecond, a.cfg.RateLimit.Burst)
			defer limiter.Stop()
		}

		handler := httpserver.NewRouter(httpserver.Options{
			Service:      a.svc,
			Log:          a.log,
			APIKeys:      a.cfg.Auth.APIKeys,
			RateLimiter:  limiter,
			CORSOrigins:  a.cfg.Server.CORSOrigins,
			MaxBodyBytes: a.cfg.Server.MaxBodyBytes,
			HealthCheckers: map[string]middleware.HealthChecker{
				"database": &middleware.DatabaseHealthChecker{DB: a.store.DB},
			},
		})

		addr := fmt.Sprintf(":%d", a.cfg.Server.Port)
		srv := &http.Server{
			Addr:         addr,
			Handler:      handler,
			ReadTimeout:  a.cfg.Server.ReadTimeout,
			WriteTimeout: a.cfg.Server.WriteTimeout,
			IdleTimeout:  a.cfg.Server.IdleTimeout,
		}

		errCh := make(chan error, 1)
		go func() {
			a.log.Info("server listening", zap.String("addr", addr))
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- err
			}
			close(errCh)
		}()

		// graceful shutdown
		stop := make(chan os.Signal, 1)
		signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
		defer signal.Stop(stop)

		select {
		case err := <-errCh:
			if err != nil {
				return fmt.Errorf("server error: %w", err)
			}
			return nil
		case <-stop:
		}
		a.log.Info("shutting down server...")

		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(sctx); err != nil {
			a.log.Error("shutdown error", zap.Error(err))
			return err
		}
		return nil
	},
}
