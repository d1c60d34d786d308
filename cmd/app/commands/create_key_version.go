package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	keyringUsecase "github.com/allisson/pii-vault/internal/keyring/usecase"
)

// RunCreateKeyVersion provisions a new sealing key version in the future state.
// Fresh RSA material is generated and the private key is wrapped by the KMS
// keeper before it touches storage. The version does not receive writes until
// it is promoted.
func RunCreateKeyVersion(
	ctx context.Context,
	registry keyringUsecase.RegistryUseCase,
	logger *slog.Logger,
	writer io.Writer,
	algorithmStr string,
) error {
	logger.Info("creating key version", slog.String("algorithm", algorithmStr))

	algorithm, err := parseAlgorithm(algorithmStr)
	if err != nil {
		return err
	}

	kv, err := registry.Create(ctx, algorithm)
	if err != nil {
		return fmt.Errorf("failed to create key version: %w", err)
	}

	logger.Info("key version created",
		slog.Uint64("version", uint64(kv.Version)),
		slog.String("state", string(kv.State)),
		slog.String("algorithm", string(kv.Algorithm)),
	)

	fmt.Fprintf(writer, "created key version %d (%s) in state %s\n", kv.Version, kv.Algorithm, kv.State)
	return nil
}
