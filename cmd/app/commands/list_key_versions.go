package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	keyringUsecase "github.com/allisson/pii-vault/internal/keyring/usecase"
)

type keyVersionOutput struct {
	Version    uint       `json:"version"`
	State      string     `json:"state"`
	Algorithm  string     `json:"algorithm"`
	CreatedAt  time.Time  `json:"created_at"`
	PromotedAt *time.Time `json:"promoted_at,omitempty"`
	RetiredAt  *time.Time `json:"retired_at,omitempty"`
}

// RunListKeyVersions prints all registered key versions, newest first.
// Supports "text" and "json" output formats.
func RunListKeyVersions(
	ctx context.Context,
	registry keyringUsecase.RegistryUseCase,
	writer io.Writer,
	format string,
) error {
	versions, err := registry.List(ctx)
	if err != nil {
		return fmt.Errorf("failed to list key versions: %w", err)
	}

	switch format {
	case "json":
		output := make([]keyVersionOutput, 0, len(versions))
		for _, kv := range versions {
			output = append(output, keyVersionOutput{
				Version:    kv.Version,
				State:      string(kv.State),
				Algorithm:  string(kv.Algorithm),
				CreatedAt:  kv.CreatedAt,
				PromotedAt: kv.PromotedAt,
				RetiredAt:  kv.RetiredAt,
			})
		}
		encoder := json.NewEncoder(writer)
		encoder.SetIndent("", "  ")
		return encoder.Encode(output)
	case "text":
		if len(versions) == 0 {
			fmt.Fprintln(writer, "no key versions registered")
			return nil
		}
		fmt.Fprintf(writer, "%-10s %-14s %-20s %s\n", "VERSION", "STATE", "ALGORITHM", "CREATED")
		for _, kv := range versions {
			fmt.Fprintf(writer, "%-10d %-14s %-20s %s\n",
				kv.Version, kv.State, kv.Algorithm, kv.CreatedAt.Format(time.RFC3339))
		}
		return nil
	default:
		return fmt.Errorf("invalid format: %s (valid options: text, json)", format)
	}
}

// RunExportPublicKey writes the PEM-encoded public key of a readable version.
// Sealing-side processes can use it to seal without access to the registry.
func RunExportPublicKey(
	ctx context.Context,
	registry keyringUsecase.RegistryUseCase,
	writer io.Writer,
	version uint,
) error {
	kv, err := registry.ResolveForRead(ctx, version)
	if err != nil {
		return fmt.Errorf("failed to resolve key version %d: %w", version, err)
	}

	if _, err := writer.Write(kv.PublicKeyPEM); err != nil {
		return fmt.Errorf("failed to write public key: %w", err)
	}
	return nil
}
