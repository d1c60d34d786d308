package commands

import (
	"context"
	"fmt"
	"log/slog"

	recordsUsecase "github.com/allisson/pii-vault/internal/records/usecase"
)

// RunReencryptRecords drives the re-encryption migration to completion: it
// invokes the worker in bounded batches until no records remain on the source
// key version. Safe to interrupt and restart; records already migrated are
// never revisited.
func RunReencryptRecords(
	ctx context.Context,
	reencrypt recordsUsecase.ReencryptUseCase,
	logger *slog.Logger,
	sourceVersion uint,
) error {
	logger.Info("starting re-encryption migration",
		slog.Uint64("source_version", uint64(sourceVersion)),
	)

	var totalMigrated, totalConflicts, totalFailures int64

	for {
		result, err := reencrypt.Run(ctx, sourceVersion)
		if err != nil {
			return fmt.Errorf("failed to run re-encryption batch: %w", err)
		}

		totalMigrated += result.Migrated
		totalConflicts += result.Conflicts
		totalFailures += result.Failures

		logger.Info("re-encryption batch completed",
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

		// A batch that moved nothing forward means every remaining record is
		// failing; stop instead of spinning on them.
		if result.Migrated == 0 && result.Conflicts == 0 {
			return fmt.Errorf(
				"re-encryption stalled with %d records remaining on version %d",
				result.Remaining, sourceVersion,
			)
		}
	}

	logger.Info("re-encryption migration completed",
		slog.Uint64("source_version", uint64(sourceVersion)),
		slog.Int64("total_migrated", totalMigrated),
		slog.Int64("total_conflicts", totalConflicts),
		slog.Int64("total_failures", totalFailures),
	)

	return nil
}
