package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	blindindexUsecase "github.com/allisson/pii-vault/internal/blindindex/usecase"
)

type indexKeyOutput struct {
	Version    uint       `json:"version"`
	State      string     `json:"state"`
	CreatedAt  time.Time  `json:"created_at"`
	PromotedAt *time.Time `json:"promoted_at,omitempty"`
	RetiredAt  *time.Time `json:"retired_at,omitempty"`
}

// RunListIndexKeys prints all registered blind-index keys, newest first.
// Supports "text" and "json" output formats.
func RunListIndexKeys(
	ctx context.Context,
	indexKeys blindindexUsecase.IndexKeyUseCase,
	writer io.Writer,
	format string,
) error {
	keys, err := indexKeys.List(ctx)
	if err != nil {
		return fmt.Errorf("failed to list index keys: %w", err)
	}

	switch format {
	case "json":
		output := make([]indexKeyOutput, 0, len(keys))
		for _, key := range keys {
			output = append(output, indexKeyOutput{
				Version:    key.Version,
				State:      string(key.State),
				CreatedAt:  key.CreatedAt,
				PromotedAt: key.PromotedAt,
				RetiredAt:  key.RetiredAt,
			})
		}
		encoder := json.NewEncoder(writer)
		encoder.SetIndent("", "  ")
		return encoder.Encode(output)
	case "text":
		if len(keys) == 0 {
			fmt.Fprintln(writer, "no index keys registered")
			return nil
		}
		fmt.Fprintf(writer, "%-10s %-14s %s\n", "VERSION", "STATE", "CREATED")
		for _, key := range keys {
			fmt.Fprintf(writer, "%-10d %-14s %s\n",
				key.Version, key.State, key.CreatedAt.Format(time.RFC3339))
		}
		return nil
	default:
		return fmt.Errorf("invalid format: %s (valid options: text, json)", format)
	}
}
