// Package domain defines the key-version registry model.
//
// A key version is a named generation of hybrid key material (an RSA key pair
// used to wrap per-record data keys) with an explicit lifecycle state. At most
// one version is active for writes at any instant; versions move forward
// through future → active_write → decrypt_only → retired, with an explicit
// operator rollback from decrypt_only back to active_write as the only
// backward transition.
package domain

import (
	"time"

	"github.com/google/uuid"

	cryptoDomain "github.com/allisson/pii-vault/internal/crypto/domain"
)

// State represents the lifecycle state of a key version.
type State string

const (
	// StateFuture marks a provisioned version not yet used for writes.
	StateFuture State = "future"

	// StateActiveWrite marks the single version new seals are produced under.
	StateActiveWrite State = "active_write"

	// StateDecryptOnly marks a version still readable but no longer written.
	StateDecryptOnly State = "decrypt_only"

	// StateRetired marks a version whose material is no longer resolvable.
	// Records still tagged with a retired version are unreadable by policy.
	StateRetired State = "retired"
)

// Valid reports whether s is a known lifecycle state.
func (s State) Valid() bool {
	switch s {
	case StateFuture, StateActiveWrite, StateDecryptOnly, StateRetired:
		return true
	}
	return false
}

// CanTransition reports whether the state machine permits moving from s to next.
// Forward-only, except the decrypt_only → active_write operator rollback.
func (s State) CanTransition(next State) bool {
	switch s {
	case StateFuture:
		return next == StateActiveWrite
	case StateActiveWrite:
		return next == StateDecryptOnly
	case StateDecryptOnly:
		return next == StateRetired || next == StateActiveWrite
	case StateRetired:
		return false
	}
	return false
}

// KeyVersion represents one generation of sealing key material.
//
// The private key is never held in plaintext here: EncryptedPrivateKey is the
// PKCS#8 DER encoding wrapped by the KMS keeper, and is only unwrapped by the
// key-material service on the unsealing side. The public key is stored as a
// SubjectPublicKeyInfo PEM and is safe to distribute to sealing-side processes.
type KeyVersion struct {
	ID                  uuid.UUID              // Unique identifier (UUIDv7)
	Version             uint                   // Monotonic version number, unique per registry
	State               State                  // Lifecycle state
	Algorithm           cryptoDomain.Algorithm // Payload AEAD algorithm for seals under this version
	PublicKeyPEM        []byte                 // SubjectPublicKeyInfo PEM, safe to distribute
	EncryptedPrivateKey []byte                 // PKCS#8 DER wrapped by the KMS keeper
	CreatedAt           time.Time
	PromotedAt          *time.Time // Set when the version first becomes active_write
	RetiredAt           *time.Time // Set when the version is retired
}

// TransitionTo moves the key version to the next state, stamping the lifecycle
// timestamps. Invalid moves are rejected rather than silently applied.
func (kv *KeyVersion) TransitionTo(next State, now time.Time) error {
	if !next.Valid() {
		return ErrInvalidTransition
	}
	if !kv.State.CanTransition(next) {
		return ErrInvalidTransition
	}

	switch next {
	case StateActiveWrite:
		if kv.PromotedAt == nil {
			kv.PromotedAt = &now
		}
	case StateRetired:
		kv.RetiredAt = &now
	}

	kv.State = next
	return nil
}

// Readable reports whether material for this version may be resolved for reads.
func (kv *KeyVersion) Readable() bool {
	return kv.State == StateActiveWrite || kv.State == StateDecryptOnly
}
