// Package usecase defines the business logic for the blind-index key registry:
// lifecycle transitions and construction of tokenizers for resolved versions.
// The lifecycle mirrors the sealing key registry but the two rotate
// independently.
package usecase

import (
	"context"

	blindindexDomain "github.com/allisson/pii-vault/internal/blindindex/domain"
	blindindexService "github.com/allisson/pii-vault/internal/blindindex/service"
)

// IndexKeyRepository defines the interface for blind-index key persistence.
type IndexKeyRepository interface {
	// Create stores a new index key.
	Create(ctx context.Context, key *blindindexDomain.IndexKey) error

	// GetByVersion retrieves an index key by its version number.
	// Returns ErrUnknownIndexKey if the version was never registered.
	GetByVersion(ctx context.Context, version uint) (*blindindexDomain.IndexKey, error)

	// GetActive retrieves the single active_write index key.
	// Returns ErrNoActiveIndexKey if none is configured.
	GetActive(ctx context.Context) (*blindindexDomain.IndexKey, error)

	// List retrieves all index keys ordered by version descending.
	List(ctx context.Context) ([]*blindindexDomain.IndexKey, error)

	// Update persists lifecycle changes to an existing index key.
	Update(ctx context.Context, key *blindindexDomain.IndexKey) error
}

// IndexReferenceCounter reports how many live records still carry tokens
// computed under an index key version.
type IndexReferenceCounter interface {
	CountByIndexKeyVersion(ctx context.Context, version uint) (int64, error)
}

// TokenizerProvider is the token-computation capability consumed by record and
// migration use cases.
type TokenizerProvider interface {
	// TokenizerForWrite returns a tokenizer for the active_write index key.
	TokenizerForWrite(ctx context.Context) (blindindexService.Tokenizer, error)

	// TokenizerFor returns a tokenizer for a specific usable index key version.
	TokenizerFor(ctx context.Context, version uint) (blindindexService.Tokenizer, error)
}

// IndexKeyUseCase orchestrates the blind-index key lifecycle.
type IndexKeyUseCase interface {
	TokenizerProvider

	// Create provisions a new future index key with KMS-wrapped material.
	Create(ctx context.Context) (*blindindexDomain.IndexKey, error)

	// Promote moves a future index key to active_write, demoting the current one.
	Promote(ctx context.Context, version uint) error

	// Rollback re-promotes a decrypt_only index key to active_write.
	Rollback(ctx context.Context, version uint) error

	// Retire moves a decrypt_only index key to retired. Refuses while live
	// records still carry tokens under the version, unless force is set.
	Retire(ctx context.Context, version uint, force bool) error

	// List returns all index keys, newest first.
	List(ctx context.Context) ([]*blindindexDomain.IndexKey, error)
}
