package commands

import (
	"context"
	"fmt"
	"log/slog"

	keyringUsecase "github.com/allisson/pii-vault/internal/keyring/usecase"
)

// RunRollbackKeyVersion re-promotes a decrypt_only key version to active_write,
// demoting the currently active version. Used when a promoted version turns out
// to be bad before the population has migrated.
func RunRollbackKeyVersion(
	ctx context.Context,
	registry keyringUsecase.RegistryUseCase,
	logger *slog.Logger,
	version uint,
) error {
	logger.Info("rolling back to key version", slog.Uint64("version", uint64(version)))

	if err := registry.Rollback(ctx, version); err != nil {
		return fmt.Errorf("failed to rollback to key version %d: %w", version, err)
	}

	logger.Info("key version reinstated as active", slog.Uint64("version", uint64(version)))
	return nil
}
