// Package app wires the service together and owns the HTTP server lifecycle.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/httplog/v2"
	"golang.org/x/sync/errgroup"

	delivery "github.com/vadimbarashkov/shorturls/internal/adapter/delivery/http"
	"github.com/vadimbarashkov/shorturls/internal/config"
	"github.com/vadimbarashkov/shorturls/internal/logging"
	"github.com/vadimbarashkov/shorturls/internal/repository/memory"
	"github.com/vadimbarashkov/shorturls/internal/usecase"
)

// Run starts the service and blocks until ctx is cancelled or the server
// fails. The registry lives and dies with the process.
func Run(ctx context.Context, cfg *config.Config) error {
	const op = "app.Run"

	logger := httplog.NewLogger("shorturls", httplog.Options{
		LogLevel: slog.LevelInfo,
		Concise:  cfg.Env != config.EnvProd,
		JSON:     cfg.Env == config.EnvProd,
	})

	if cfg.RemoteLogger.URL != "" {
		sink := logging.NewRemoteSink(
			cfg.RemoteLogger.URL,
			cfg.RemoteLogger.Stack,
			cfg.RemoteLogger.Timeout,
			cfg.RemoteLogger.BufferSize,
		)
		defer func() {
			closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			if err := sink.Close(closeCtx); err != nil {
				logger.Warn("remote log sink didn't drain in time", slog.Any("err", err))
			}
		}()

		logger.Logger = slog.New(logging.NewTeeHandler(logger.Logger.Handler(), sink))
	}

	urlRepo := memory.NewURLRepository()
	urlUseCase := usecase.New(
		urlRepo,
		logger.Logger,
		cfg.Shortener.ShortCodeLength,
		cfg.Shortener.DefaultValidity,
	)

	r := delivery.NewRouter(logger, urlUseCase, cfg.BaseURL)

	server := &http.Server{
		Addr:           cfg.HTTPServer.Addr(),
		Handler:        r,
		ReadTimeout:    cfg.HTTPServer.ReadTimeout,
		WriteTimeout:   cfg.HTTPServer.WriteTimeout,
		IdleTimeout:    cfg.HTTPServer.IdleTimeout,
		MaxHeaderBytes: cfg.HTTPServer.MaxHeaderBytes,
		BaseContext: func(_ net.Listener) context.Context {
			return ctx
		},
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		var err error

		switch cfg.Env {
		case config.EnvProd:
			err = server.ListenAndServeTLS(cfg.HTTPServer.CertFile, cfg.HTTPServer.KeyFile)
		default:
			err = server.ListenAndServe()
		}

		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("%s: server error occurred: %w", op, err)
		}

		return nil
	})

	g.Go(func() error {
		<-ctx.Done()

		if err := server.Shutdown(context.Background()); err != nil {
			return fmt.Errorf("%s: failed to shutdown server: %w", op, err)
		}

		return nil
	})

	return g.Wait()
}
