package domain

import (
	"github.com/allisson/pii-vault/internal/errors"
)

// Cryptographic operation error definitions.
//
// These domain-specific errors wrap standard errors from internal/errors.
// Cryptographic failures are always surfaced to the caller, never swallowed
// or retried automatically: retrying an authentication failure cannot fix
// corrupted data.
var (
	// ErrInitialization indicates the key material handed to a cipher was
	// malformed or uses an unsupported scheme.
	ErrInitialization = errors.Wrap(errors.ErrInvalidInput, "cipher initialization failed")

	// ErrNotInitialized indicates a seal or open was attempted before the
	// cipher was given key material.
	ErrNotInitialized = errors.New("cipher not initialized")

	// ErrEncryption indicates a primitive failure during sealing (key or
	// nonce generation, AEAD seal, key wrapping).
	ErrEncryption = errors.New("encryption failed")

	// ErrAuthenticationFailed indicates the authentication tag did not verify.
	// The payload was tampered with or corrupted; no partially decrypted bytes
	// are ever released alongside this error, and it is never downgraded to a
	// generic decryption failure.
	ErrAuthenticationFailed = errors.New("payload authentication failed")

	// ErrUnsupportedAlgorithm indicates the requested AEAD algorithm is not
	// supported. Supported: aes-gcm, chacha20-poly1305.
	ErrUnsupportedAlgorithm = errors.Wrap(errors.ErrInvalidInput, "unsupported algorithm")

	// ErrInvalidKeySize indicates a symmetric key of the wrong length. All
	// data keys are exactly 32 bytes (256 bits).
	ErrInvalidKeySize = errors.Wrap(errors.ErrInvalidInput, "invalid key size")
)
