package commands

import (
	"context"
	"fmt"
	"log/slog"

	recordsUsecase "github.com/allisson/pii-vault/internal/records/usecase"
)

// RunRotateBlindIndex drives the blind-index rotation to completion: tokens
// computed under the source index key version are recomputed under the
// active_write key in bounded batches. Sealed payloads are never touched.
func RunRotateBlindIndex(
	ctx context.Context,
	rotateIndex recordsUsecase.RotateIndexUseCase,
	logger *slog.Logger,
	sourceVersion uint,
) error {
	logger.Info("starting blind-index rotation",
		slog.Uint64("source_version", uint64(sourceVersion)),
	)

	var totalMigrated, totalConflicts, totalFailures int64

	for {
		result, err := rotateIndex.Run(ctx, sourceVersion)
		if err != nil {
			return fmt.Errorf("failed to run blind-index rotation batch: %w", err)
		}

		totalMigrated += result.Migrated
		totalConflicts += result.Conflicts
		totalFailures += result.Failures

		logger.Info("blind-index rotation batch completed",
			slog.String("batch_id", result.BatchID.String()),
			slog.Int64("migrated", result.Migrated),
			slog.Int64("conflicts", result.Conflicts),
			slog.Int64("failures", result.Failures),
			slog.Int64("remaining", result.Remaining),
			slog.Duration("elapsed", result.Elapsed),
		)

		if result.Done() {
			break
		}

		if result.Migrated == 0 && result.Conflicts == 0 {
			return fmt.Errorf(
				"blind-index rotation stalled with %d records remaining on version %d",
				result.Remaining, sourceVersion,
			)
		}
	}

	logger.Info("blind-index rotation completed",
		slog.Uint64("source_version", uint64(sourceVersion)),
		slog.Int64("total_migrated", totalMigrated),
		slog.Int64("total_conflicts", totalConflicts),
		slog.Int64("total_failures", totalFailures),
	)

	return nil
}
