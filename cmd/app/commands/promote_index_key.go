package commands

import (
	"context"
	"fmt"
	"log/slog"

	blindindexUsecase "github.com/allisson/pii-vault/internal/blindindex/usecase"
)

// RunPromoteIndexKey moves a future index key to active_write, demoting the
// current one to decrypt_only in the same transaction. Demoted keys stay
// usable for lookups against tokens written before rotation.
func RunPromoteIndexKey(
	ctx context.Context,
	indexKeys blindindexUsecase.IndexKeyUseCase,
	logger *slog.Logger,
	version uint,
) error {
	logger.Info("promoting index key", slog.Uint64("version", uint64(version)))

	if err := indexKeys.Promote(ctx, version); err != nil {
		return fmt.Errorf("failed to promote index key %d: %w", version, err)
	}

	logger.Info("index key promoted", slog.Uint64("version", uint64(version)))
	return nil
}

// RunRollbackIndexKey re-promotes a decrypt_only index key to active_write.
func RunRollbackIndexKey(
	ctx context.Context,
	indexKeys blindindexUsecase.IndexKeyUseCase,
	logger *slog.Logger,
	version uint,
) error {
	logger.Info("rolling back to index key", slog.Uint64("version", uint64(version)))

	if err := indexKeys.Rollback(ctx, version); err != nil {
		return fmt.Errorf("failed to rollback to index key %d: %w", version, err)
	}

	logger.Info("index key reinstated as active", slog.Uint64("version", uint64(version)))
	return nil
}

// RunRetireIndexKey moves a decrypt_only index key to retired. Refuses while
// live records still carry tokens under the version, unless force is set.
func RunRetireIndexKey(
	ctx context.Context,
	indexKeys blindindexUsecase.IndexKeyUseCase,
	logger *slog.Logger,
	version uint,
	force bool,
) error {
	logger.Info("retiring index key",
		slog.Uint64("version", uint64(version)),
		slog.Bool("force", force),
	)

	if err := indexKeys.Retire(ctx, version, force); err != nil {
		return fmt.Errorf("failed to retire index key %d: %w", version, err)
	}

	logger.Info("index key retired", slog.Uint64("version", uint64(version)))
	return nil
}
