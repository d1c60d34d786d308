// Package service implements the hybrid sealing primitive: AEAD ciphers for
// record payloads and the sealer/opener pair that wraps the per-record data
// key with a versioned RSA key pair.
//
// Sealing and unsealing are deliberately modeled as two distinct roles with
// disjoint operations. A Sealer holds only public key material and can never
// be coerced into a private-key operation; an Opener holds the private key
// and never seals.
package service

import (
	cryptoDomain "github.com/allisson/pii-vault/internal/crypto/domain"
)

// AEAD defines the interface for Authenticated Encryption with Associated Data.
type AEAD interface {
	// Encrypt encrypts plaintext with optional AAD and returns ciphertext
	// (with the tag appended) and the freshly generated nonce.
	Encrypt(plaintext, aad []byte) (ciphertext, nonce []byte, err error)

	// Decrypt decrypts ciphertext using the provided nonce and AAD.
	Decrypt(ciphertext, nonce, aad []byte) ([]byte, error)
}

// AEADManager defines the interface for creating AEAD cipher instances.
type AEADManager interface {
	// CreateCipher creates an AEAD cipher instance for the specified algorithm.
	CreateCipher(key []byte, alg cryptoDomain.Algorithm) (AEAD, error)
}

// Sealer is the sealing-side capability: it holds an imported public key and
// produces sealed payloads. Every call generates a fresh single-use 256-bit
// data key and a fresh 96-bit nonce, so sealing the same plaintext twice is
// observably non-deterministic in ciphertext, nonce, and wrapped key.
type Sealer interface {
	// Seal encrypts plaintext and wraps the transient data key.
	Seal(plaintext []byte) (cryptoDomain.SealedPayload, error)

	// KeyVersion returns the key version this sealer seals under.
	KeyVersion() uint
}

// Opener is the unsealing-side capability: it holds private key material and
// reverses a seal. Only a principal holding the private key can construct one.
type Opener interface {
	// Open unwraps the data key and decrypts the payload. Returns
	// ErrAuthenticationFailed if the tag does not verify; no partially
	// decrypted bytes are released in that case.
	Open(payload cryptoDomain.SealedPayload) ([]byte, error)
}
