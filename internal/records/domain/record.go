// Package domain defines the persisted record envelope: the versioned
// representation of one sealed value together with its blind-index token.
package domain

import (
	"time"

	"github.com/google/uuid"

	cryptoDomain "github.com/allisson/pii-vault/internal/crypto/domain"
)

// Record is one sealed value at rest.
//
// The four sealed fields plus the key-version tag always change together:
// either through a full application overwrite (fresh nonce, current
// active_write version) or through the migration worker's conditional write.
// Partial edits of sealed fields never happen. The index token is keyed by its
// own index-key version and is untouched by sealing-key rotation.
type Record struct {
	ID               uuid.UUID // Unique identifier (UUIDv7)
	Ciphertext       []byte    // AEAD ciphertext without the tag
	WrappedKey       []byte    // Data key wrapped with the version's public key
	Nonce            []byte    // 96-bit AEAD nonce, fresh per seal
	Tag              []byte    // 128-bit authentication tag
	KeyVersion       uint      // Sealing key version the record is sealed under
	IndexToken       string    // Deterministic blind-index token, hex encoded
	IndexKeyVersion  uint      // Index key version the token is computed under
	CreatedAt        time.Time
	UpdatedAt        time.Time
	ReencryptedAt    *time.Time // Set by the migration worker only
	MigrationBatchID *uuid.UUID // Batch that last migrated the record
}

// Sealed returns the record's sealed payload.
func (r *Record) Sealed() cryptoDomain.SealedPayload {
	return cryptoDomain.SealedPayload{
		Ciphertext: r.Ciphertext,
		WrappedKey: r.WrappedKey,
		Nonce:      r.Nonce,
		Tag:        r.Tag,
	}
}

// SetSealed replaces all versioned fields from a fresh seal. Used by overwrite
// paths; the migration worker additionally stamps ReencryptedAt and the batch.
func (r *Record) SetSealed(payload cryptoDomain.SealedPayload, keyVersion uint, now time.Time) {
	r.Ciphertext = payload.Ciphertext
	r.WrappedKey = payload.WrappedKey
	r.Nonce = payload.Nonce
	r.Tag = payload.Tag
	r.KeyVersion = keyVersion
	r.UpdatedAt = now
}

// SetMigrated replaces all versioned fields from a migration reseal, stamping
// the re-encryption timestamp and the migration batch.
func (r *Record) SetMigrated(
	payload cryptoDomain.SealedPayload,
	keyVersion uint,
	batchID uuid.UUID,
	now time.Time,
) {
	r.SetSealed(payload, keyVersion, now)
	r.ReencryptedAt = &now
	r.MigrationBatchID = &batchID
}

// SetIndexToken replaces the blind-index token and its key-version tag.
func (r *Record) SetIndexToken(token string, indexKeyVersion uint, now time.Time) {
	r.IndexToken = token
	r.IndexKeyVersion = indexKeyVersion
	r.UpdatedAt = now
}
