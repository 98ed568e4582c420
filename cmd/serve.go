package cmd

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/cristianadrielbraun/qrstore/internal/handlers"
	"github.com/cristianadrielbraun/qrstore/internal/logging"
)

const shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return runServe(ctx)
	},
}

func runServe(ctx context.Context) error {
	a, err := newApp(ctx)
	if err != nil {
		return err
	}

	h := handlers.New(a.svc, a.store, a.fetcher,
		handlers.WithBaseURL(a.cfg.BaseURL),
		handlers.WithEnvironment(a.cfg.Env),
		handlers.WithMaxUpload(a.cfg.LogoMaxBytes),
		handlers.WithLogger(a.logger),
	)
	srv := &http.Server{
		Addr:              a.cfg.Addr(),
		Handler:           h.Router(a.cfg.GinMode),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("qrstore listening", slog.String("addr", srv.Addr), slog.String("environment", a.cfg.Env))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	slog.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("graceful shutdown failed", logging.Error(err))
		return err
	}
	return nil
}
