package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	blindindexUsecase "github.com/allisson/pii-vault/internal/blindindex/usecase"
)

// RunCreateIndexKey provisions a new blind-index key in the future state. The
// HMAC key is generated and KMS-wrapped; tokens are not computed under it until
// it is promoted.
func RunCreateIndexKey(
	ctx context.Context,
	indexKeys blindindexUsecase.IndexKeyUseCase,
	logger *slog.Logger,
	writer io.Writer,
) error {
	logger.Info("creating index key")

	key, err := indexKeys.Create(ctx)
	if err != nil {
		return fmt.Errorf("failed to create index key: %w", err)
	}

	logger.Info("index key created",
		slog.Uint64("version", uint64(key.Version)),
		slog.String("state", string(key.State)),
	)

	fmt.Fprintf(writer, "created index key version %d in state %s\n", key.Version, key.State)
	return nil
}
