package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"

	cryptoDomain "github.com/allisson/pii-vault/internal/crypto/domain"
	keyringUsecase "github.com/allisson/pii-vault/internal/keyring/usecase"
)

// sealedEnvelope is the CLI wire shape for a sealed value: the base64 envelope
// contract plus the key version the data key was wrapped under.
type sealedEnvelope struct {
	KeyVersion uint `json:"key_version"`
	cryptoDomain.Envelope
}

// RunSealValue seals a value under the active_write key version and writes the
// resulting envelope as JSON. The output can be fed back to RunRevealEnvelope.
func RunSealValue(
	ctx context.Context,
	registry keyringUsecase.KeyResolver,
	logger *slog.Logger,
	writer io.Writer,
	value string,
) error {
	sealer, err := registry.SealerForWrite(ctx)
	if err != nil {
		return fmt.Errorf("failed to resolve sealing key: %w", err)
	}

	payload, err := sealer.Seal([]byte(value))
	if err != nil {
		return fmt.Errorf("failed to seal value: %w", err)
	}

	logger.Info("value sealed", slog.Uint64("key_version", uint64(sealer.KeyVersion())))

	output := sealedEnvelope{
		KeyVersion: sealer.KeyVersion(),
		Envelope:   payload.Wire(),
	}

	data, err := json.MarshalIndent(output, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal envelope: %w", err)
	}

	fmt.Fprintf(writer, "%s\n", data)
	return nil
}

// RunRevealEnvelope reads a JSON envelope from the reader, validates the wire
// fields, and unseals it with the opener for its key version.
func RunRevealEnvelope(
	ctx context.Context,
	registry keyringUsecase.KeyResolver,
	logger *slog.Logger,
	tuple IOTuple,
) error {
	data, err := io.ReadAll(tuple.Reader)
	if err != nil {
		return fmt.Errorf("failed to read envelope: %w", err)
	}

	var input sealedEnvelope
	if err := json.Unmarshal(data, &input); err != nil {
		return fmt.Errorf("failed to parse envelope: %w", err)
	}

	if input.KeyVersion == 0 {
		return fmt.Errorf("envelope is missing key_version")
	}

	if err := input.Envelope.Validate(); err != nil {
		return fmt.Errorf("invalid envelope: %w", err)
	}

	payload, err := input.Envelope.Decode()
	if err != nil {
		return fmt.Errorf("failed to decode envelope: %w", err)
	}

	opener, err := registry.OpenerForRead(ctx, input.KeyVersion)
	if err != nil {
		return fmt.Errorf("failed to resolve key version %d: %w", input.KeyVersion, err)
	}

	plaintext, err := opener.Open(payload)
	if err != nil {
		return fmt.Errorf("failed to unseal envelope: %w", err)
	}
	defer cryptoDomain.Zero(plaintext)

	logger.Info("envelope unsealed", slog.Uint64("key_version", uint64(input.KeyVersion)))

	fmt.Fprintf(tuple.Writer, "%s\n", plaintext)
	return nil
}
