// Package usecase defines the business logic for protected records: sealing
// on write, version-tagged unsealing on read, deterministic blind-index
// lookup, and the online migration workers that move the population to a new
// key version under live traffic.
package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	recordsDomain "github.com/allisson/pii-vault/internal/records/domain"
)

// RecordRepository defines the interface for record persistence.
//
// The conditional updates (UpdateSealed, UpdateIndexToken) compare the stored
// version tag and report whether a row was written. Implementations must
// support transaction-aware operations through context propagation
// (database.GetTx).
//
// Available implementations:
//   - PostgreSQLRecordRepository: native UUID and BYTEA types
//   - MySQLRecordRepository: BINARY(16) UUIDs and BLOB binary data
type RecordRepository interface {
	// Create stores a new record.
	Create(ctx context.Context, record *recordsDomain.Record) error

	// GetByID retrieves a record by its identifier.
	// Returns ErrRecordNotFound if it does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*recordsDomain.Record, error)

	// GetByIndexToken retrieves all records matching a blind-index token.
	GetByIndexToken(ctx context.Context, token string) ([]*recordsDomain.Record, error)

	// Overwrite replaces all mutable fields unconditionally.
	Overwrite(ctx context.Context, record *recordsDomain.Record) error

	// UpdateSealed writes the sealed fields only if the stored key version
	// still matches expectedKeyVersion. Returns false on a lost race.
	UpdateSealed(ctx context.Context, record *recordsDomain.Record, expectedKeyVersion uint) (bool, error)

	// UpdateIndexToken rewrites the token only if the stored index key version
	// still matches expectedIndexKeyVersion. Returns false on a lost race.
	UpdateIndexToken(ctx context.Context, record *recordsDomain.Record, expectedIndexKeyVersion uint) (bool, error)

	// ListByKeyVersion retrieves up to limit records sealed under a key
	// version, oldest updated first.
	ListByKeyVersion(ctx context.Context, version uint, limit int) ([]*recordsDomain.Record, error)

	// CountByKeyVersion counts records sealed under a key version.
	CountByKeyVersion(ctx context.Context, version uint) (int64, error)

	// ListByIndexKeyVersion retrieves up to limit records tokenized under an
	// index key version, oldest updated first.
	ListByIndexKeyVersion(ctx context.Context, version uint, limit int) ([]*recordsDomain.Record, error)

	// CountByIndexKeyVersion counts records tokenized under an index key version.
	CountByIndexKeyVersion(ctx context.Context, version uint) (int64, error)

	// Delete removes a record. Returns ErrRecordNotFound if it does not exist.
	Delete(ctx context.Context, id uuid.UUID) error
}

// RecordUseCase orchestrates sealing, unsealing, and blind-index lookup for
// protected records.
type RecordUseCase interface {
	// Create seals value under the active_write key version and stores it with
	// a blind-index token under the active_write index key. Returns
	// ErrDuplicateValue if the value is already stored under any usable index
	// key version.
	Create(ctx context.Context, value []byte) (*recordsDomain.Record, error)

	// Get retrieves a record without revealing the plaintext.
	Get(ctx context.Context, id uuid.UUID) (*recordsDomain.Record, error)

	// Reveal unseals a record using the opener for its tagged key version.
	Reveal(ctx context.Context, id uuid.UUID) ([]byte, error)

	// Overwrite re-seals a record with a new value under the current
	// active_write versions. Application overwrites win over in-flight
	// migration unconditionally.
	Overwrite(ctx context.Context, id uuid.UUID, value []byte) (*recordsDomain.Record, error)

	// FindByValue returns all records whose plaintext equals value, located
	// through the blind index without decrypting anything.
	FindByValue(ctx context.Context, value []byte) ([]*recordsDomain.Record, error)

	// Delete removes a record.
	Delete(ctx context.Context, id uuid.UUID) error
}

// MigrationResult summarizes one migration batch.
type MigrationResult struct {
	BatchID   uuid.UUID
	Migrated  int64
	Conflicts int64
	Failures  int64
	Remaining int64
	Elapsed   time.Duration
}

// Done reports whether no records remain on the source version.
func (r *MigrationResult) Done() bool {
	return r.Remaining == 0
}

// ReencryptUseCase drives the online re-encryption migration: it moves records
// from a source key version to the current active_write version in bounded
// batches, safe to run under concurrent application traffic and safe to
// restart at any point.
type ReencryptUseCase interface {
	// Run processes one batch of records sealed under sourceVersion. Callers
	// invoke it repeatedly until Done.
	Run(ctx context.Context, sourceVersion uint) (*MigrationResult, error)
}

// RotateIndexUseCase drives the blind-index rotation: it recomputes tokens
// from sourceVersion under the active_write index key, one bounded batch per
// invocation, without touching the sealed payloads.
type RotateIndexUseCase interface {
	Run(ctx context.Context, sourceVersion uint) (*MigrationResult, error)
}

// WorkerConfig carries the operational policy knobs for migration workers.
type WorkerConfig struct {
	// BatchSize is the maximum number of records fetched per invocation.
	BatchSize int
	// Concurrency is the number of records processed in parallel.
	Concurrency int
	// RatePerSec throttles record processing across a run; zero disables.
	RatePerSec float64
	// RetryAttempts caps retries for transient backend failures.
	RetryAttempts int
	// RetryBaseDelay is the initial backoff delay.
	RetryBaseDelay time.Duration
	// RetryMaxDelay caps the exponential backoff delay.
	RetryMaxDelay time.Duration
}
