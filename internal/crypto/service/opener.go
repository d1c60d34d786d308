package service

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"

	cryptoDomain "github.com/allisson/pii-vault/internal/crypto/domain"
)

// HybridOpener implements Opener for one key version's private key.
//
// The private key is read-only after construction and may be shared across
// concurrent Open calls without locking; each call owns its transient data
// key and buffers.
type HybridOpener struct {
	priv        *rsa.PrivateKey
	aeadManager AEADManager
	alg         cryptoDomain.Algorithm
}

// NewOpener returns an opener for the given private key and payload algorithm.
// Returns ErrInitialization if the key is missing or the algorithm unsupported.
func NewOpener(
	priv *rsa.PrivateKey,
	alg cryptoDomain.Algorithm,
	aeadManager AEADManager,
) (*HybridOpener, error) {
	if priv == nil {
		return nil, cryptoDomain.ErrInitialization
	}
	if !alg.Valid() {
		return nil, cryptoDomain.ErrUnsupportedAlgorithm
	}

	return &HybridOpener{
		priv:        priv,
		aeadManager: aeadManager,
		alg:         alg,
	}, nil
}

// Open unwraps the data key with RSA-OAEP-SHA256 and decrypts the payload.
//
// Any unwrap or tag-verification failure is reported as
// ErrAuthenticationFailed: the payload was tampered with or corrupted, and no
// partially decrypted bytes are released. The specific primitive failure is
// not disclosed to avoid aiding attackers.
func (o *HybridOpener) Open(payload cryptoDomain.SealedPayload) ([]byte, error) {
	if o == nil || o.priv == nil {
		return nil, cryptoDomain.ErrNotInitialized
	}

	// The AEAD primitives panic on a wrong-length nonce, so a truncated or
	// corrupted field must be rejected here like any other corruption.
	if len(payload.Nonce) != cryptoDomain.NonceSize || len(payload.Tag) != cryptoDomain.TagSize {
		return nil, cryptoDomain.ErrAuthenticationFailed
	}

	dek, err := rsa.DecryptOAEP(sha256.New(), rand.Reader, o.priv, payload.WrappedKey, nil)
	if err != nil {
		return nil, cryptoDomain.ErrAuthenticationFailed
	}
	defer cryptoDomain.Zero(dek)

	aead, err := o.aeadManager.CreateCipher(dek, o.alg)
	if err != nil {
		// An unwrapped key of the wrong size means the wrapped key field was
		// corrupted in a way OAEP did not catch.
		return nil, cryptoDomain.ErrAuthenticationFailed
	}

	sealed := make([]byte, 0, len(payload.Ciphertext)+len(payload.Tag))
	sealed = append(sealed, payload.Ciphertext...)
	sealed = append(sealed, payload.Tag...)

	plaintext, err := aead.Decrypt(sealed, payload.Nonce, nil)
	if err != nil {
		return nil, cryptoDomain.ErrAuthenticationFailed
	}

	return plaintext, nil
}
