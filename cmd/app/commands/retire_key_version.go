package commands

import (
	"context"
	"fmt"
	"log/slog"

	keyringUsecase "github.com/allisson/pii-vault/internal/keyring/usecase"
)

// RunRetireKeyVersion moves a decrypt_only key version to retired. The command
// refuses while live records still carry the version; force acknowledges that
// those records become permanently unreadable.
func RunRetireKeyVersion(
	ctx context.Context,
	registry keyringUsecase.RegistryUseCase,
	logger *slog.Logger,
	version uint,
	force bool,
) error {
	logger.Info("retiring key version",
		slog.Uint64("version", uint64(version)),
		slog.Bool("force", force),
	)

	if err := registry.Retire(ctx, version, force); err != nil {
		return fmt.Errorf("failed to retire key version %d: %w", version, err)
	}

	logger.Info("key version retired", slog.Uint64("version", uint64(version)))
	return nil
}
