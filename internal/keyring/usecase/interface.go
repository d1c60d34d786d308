// Package usecase defines the business logic for the key-version registry:
// lifecycle transitions, write/read resolution, and construction of the
// sealing and unsealing capabilities for resolved versions.
package usecase

import (
	"context"

	cryptoDomain "github.com/allisson/pii-vault/internal/crypto/domain"
	cryptoService "github.com/allisson/pii-vault/internal/crypto/service"
	keyringDomain "github.com/allisson/pii-vault/internal/keyring/domain"
)

// KeyVersionRepository defines the interface for key-version persistence.
//
// Implementations must support transaction-aware operations through context
// propagation (database.GetTx), enabling the atomic demote+promote performed
// during rotation.
//
// Available implementations:
//   - PostgreSQLKeyVersionRepository: native UUID and BYTEA types
//   - MySQLKeyVersionRepository: BINARY(16) UUIDs and BLOB binary data
type KeyVersionRepository interface {
	// Create stores a new key version.
	Create(ctx context.Context, kv *keyringDomain.KeyVersion) error

	// GetByVersion retrieves a key version by its version number.
	// Returns ErrUnknownKeyVersion if the version was never registered.
	GetByVersion(ctx context.Context, version uint) (*keyringDomain.KeyVersion, error)

	// GetActive retrieves the single active_write key version.
	// Returns ErrNoActiveKeyVersion if none is configured.
	GetActive(ctx context.Context) (*keyringDomain.KeyVersion, error)

	// List retrieves all key versions ordered by version descending.
	List(ctx context.Context) ([]*keyringDomain.KeyVersion, error)

	// Update persists lifecycle changes to an existing key version.
	Update(ctx context.Context, kv *keyringDomain.KeyVersion) error
}

// ReferenceCounter reports how many live records still carry a key version.
// Used as retirement evidence: a version may only be retired without force
// once its count reaches zero.
type ReferenceCounter interface {
	CountByKeyVersion(ctx context.Context, version uint) (int64, error)
}

// KeyResolver is the key-resolution capability consumed by record and
// migration use cases: it resolves versions and hands out the matching
// sealing or unsealing capability, never raw private key material.
type KeyResolver interface {
	// SealerForWrite returns a sealer for the single active_write version.
	// Returns ErrNoActiveKeyVersion if none is configured (fatal, not retried).
	SealerForWrite(ctx context.Context) (cryptoService.Sealer, error)

	// OpenerForRead returns an opener for a version that is active_write or
	// decrypt_only. Returns ErrRetiredKeyVersion for retired versions and
	// ErrUnknownKeyVersion for versions never registered.
	OpenerForRead(ctx context.Context, version uint) (cryptoService.Opener, error)
}

// RegistryUseCase orchestrates the key-version lifecycle.
type RegistryUseCase interface {
	KeyResolver

	// Create provisions a new future key version with freshly generated,
	// KMS-wrapped material. The version number is one past the highest
	// registered version.
	Create(ctx context.Context, alg cryptoDomain.Algorithm) (*keyringDomain.KeyVersion, error)

	// ResolveForWrite returns the single active_write version.
	ResolveForWrite(ctx context.Context) (*keyringDomain.KeyVersion, error)

	// ResolveForRead returns the version if it is readable. Distinguishes
	// retired (gone by policy) from unknown (never registered).
	ResolveForRead(ctx context.Context, version uint) (*keyringDomain.KeyVersion, error)

	// Promote moves a future version to active_write, demoting any prior
	// active_write version to decrypt_only in the same transaction.
	Promote(ctx context.Context, version uint) error

	// Rollback re-promotes a decrypt_only version to active_write, demoting
	// the current active_write version. Operator-invoked only.
	Rollback(ctx context.Context, version uint) error

	// Retire moves a decrypt_only version to retired. Refuses with
	// ErrOutstandingReferences while live records still carry the version,
	// unless force acknowledges those records become unreadable.
	Retire(ctx context.Context, version uint, force bool) error

	// List returns all key versions, newest first.
	List(ctx context.Context) ([]*keyringDomain.KeyVersion, error)
}
