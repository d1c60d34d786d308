package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/allisson/pii-vault/internal/app"
	"github.com/allisson/pii-vault/internal/config"
	apperrors "github.com/allisson/pii-vault/internal/errors"
)

// RunWorker runs the migration workers continuously: one bounded batch per
// interval for the configured source versions, until SIGINT/SIGTERM. Unlike
// the one-shot commands it keeps running after a worker reports Done, since
// concurrent traffic can leave new stragglers on the source version. A zero
// source version disables the corresponding worker.
func RunWorker(ctx context.Context, keySourceVersion, indexSourceVersion uint) error {
	if keySourceVersion == 0 && indexSourceVersion == 0 {
		return fmt.Errorf("at least one of --key-source or --index-source must be set")
	}

	cfg := config.Load()
	gin.SetMode(cfg.GetGinMode())

	container := app.NewContainer(cfg)
	logger := container.Logger()
	logger.Info("starting migration worker",
		slog.Uint64("key_source_version", uint64(keySourceVersion)),
		slog.Uint64("index_source_version", uint64(indexSourceVersion)),
		slog.Duration("interval", cfg.WorkerInterval),
	)

	defer closeContainer(container, logger)

	metricsServer, err := container.MetricsServer()
	if err != nil {
		return fmt.Errorf("failed to initialize metrics server: %w", err)
	}

	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	serverErr := make(chan error, 1)
	if cfg.MetricsEnabled {
		go func() {
			if err := metricsServer.Start(ctx); err != nil {
				serverErr <- fmt.Errorf("metrics server error: %w", err)
			}
		}()
	}

	runBatches := func(tickCtx context.Context) error {
		if keySourceVersion != 0 {
			reencrypt, err := container.ReencryptUseCase()
			if err != nil {
				return err
			}
			if _, err := reencrypt.Run(tickCtx, keySourceVersion); err != nil {
				if apperrors.Is(err, apperrors.ErrFatalConfig) {
					return err
				}
				logger.Error("re-encryption batch failed", slog.Any("error", err))
			}
		}

		if indexSourceVersion != 0 {
			rotateIndex, err := container.RotateIndexUseCase()
			if err != nil {
				return err
			}
			if _, err := rotateIndex.Run(tickCtx, indexSourceVersion); err != nil {
				if apperrors.Is(err, apperrors.ErrFatalConfig) {
					return err
				}
				logger.Error("blind-index rotation batch failed", slog.Any("error", err))
			}
		}

		return nil
	}

	ticker := time.NewTicker(cfg.WorkerInterval)
	defer ticker.Stop()

	if err := runBatches(ctx); err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			logger.Info("shutdown signal received")
			shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.DBConnMaxLifetime)
			defer shutdownCancel()

			if cfg.MetricsEnabled {
				if err := metricsServer.Shutdown(shutdownCtx); err != nil {
					return fmt.Errorf("metrics server shutdown: %w", err)
				}
			}
			return nil
		case err := <-serverErr:
			return err
		case <-ticker.C:
			if err := runBatches(ctx); err != nil {
				return err
			}
		}
	}
}
