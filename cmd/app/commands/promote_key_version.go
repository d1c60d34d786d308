package commands

import (
	"context"
	"fmt"
	"log/slog"

	keyringUsecase "github.com/allisson/pii-vault/internal/keyring/usecase"
)

// RunPromoteKeyVersion moves a future key version to active_write. Any prior
// active_write version is demoted to decrypt_only in the same transaction, so
// there is never a moment with two writable versions.
func RunPromoteKeyVersion(
	ctx context.Context,
	registry keyringUsecase.RegistryUseCase,
	logger *slog.Logger,
	version uint,
) error {
	logger.Info("promoting key version", slog.Uint64("version", uint64(version)))

	if err := registry.Promote(ctx, version); err != nil {
		return fmt.Errorf("failed to promote key version %d: %w", version, err)
	}

	logger.Info("key version promoted", slog.Uint64("version", uint64(version)))
	return nil
}
