// Package domain defines the blind-index key model.
//
// Blind-index keys are 256-bit HMAC keys versioned independently from the
// sealing key registry: rotating sealing keys never changes index tokens, and
// rotating index keys never touches sealed payloads. The lifecycle reuses the
// sealing registry's state machine.
package domain

import (
	"time"

	"github.com/google/uuid"

	keyringDomain "github.com/allisson/pii-vault/internal/keyring/domain"
)

// IndexKey represents one generation of blind-index HMAC key material.
//
// The key itself is stored only in KMS-wrapped form. Tokens produced under a
// key version are deterministic for that version, so equality search works,
// and carry no information about the sealing key that protects the payload.
type IndexKey struct {
	ID           uuid.UUID           // Unique identifier (UUIDv7)
	Version      uint                // Monotonic version number, unique per registry
	State        keyringDomain.State // Lifecycle state, same machine as sealing keys
	EncryptedKey []byte              // 256-bit HMAC key wrapped by the KMS keeper
	CreatedAt    time.Time
	PromotedAt   *time.Time
	RetiredAt    *time.Time
}

// TransitionTo moves the index key to the next state, stamping timestamps.
func (k *IndexKey) TransitionTo(next keyringDomain.State, now time.Time) error {
	if !next.Valid() {
		return keyringDomain.ErrInvalidTransition
	}
	if !k.State.CanTransition(next) {
		return keyringDomain.ErrInvalidTransition
	}

	switch next {
	case keyringDomain.StateActiveWrite:
		if k.PromotedAt == nil {
			k.PromotedAt = &now
		}
	case keyringDomain.StateRetired:
		k.RetiredAt = &now
	}

	k.State = next
	return nil
}

// Usable reports whether tokens may still be computed under this key version.
// Unlike sealing keys, decrypt_only index keys stay usable for lookups against
// tokens written before rotation.
func (k *IndexKey) Usable() bool {
	return k.State == keyringDomain.StateActiveWrite || k.State == keyringDomain.StateDecryptOnly
}
