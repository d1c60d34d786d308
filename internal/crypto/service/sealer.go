package service

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"crypto/x509"
	"encoding/pem"

	cryptoDomain "github.com/allisson/pii-vault/internal/crypto/domain"
	apperrors "github.com/allisson/pii-vault/internal/errors"
)

// HybridSealer implements Sealer for one key version.
//
// It holds only the version's public key, imported once at construction, so a
// sealing-side process never has access to private-key-dependent operations.
// After construction the sealer is read-only and safe for concurrent use:
// every Seal call owns its own transient data key and buffers.
type HybridSealer struct {
	pub         *rsa.PublicKey
	aeadManager AEADManager
	alg         cryptoDomain.Algorithm
	version     uint
}

// NewSealer imports a SubjectPublicKeyInfo PEM public key and returns a sealer
// bound to the given key version and payload algorithm.
// Returns ErrInitialization if the material is malformed or uses an
// unsupported scheme.
func NewSealer(
	publicKeyPEM []byte,
	alg cryptoDomain.Algorithm,
	version uint,
	aeadManager AEADManager,
) (*HybridSealer, error) {
	if !alg.Valid() {
		return nil, cryptoDomain.ErrUnsupportedAlgorithm
	}

	block, _ := pem.Decode(publicKeyPEM)
	if block == nil || block.Type != "PUBLIC KEY" {
		return nil, apperrors.Wrap(cryptoDomain.ErrInitialization, "invalid public key PEM")
	}

	parsed, err := x509.ParsePKIXPublicKey(block.Bytes)
	if err != nil {
		return nil, apperrors.Wrap(cryptoDomain.ErrInitialization, err.Error())
	}

	pub, ok := parsed.(*rsa.PublicKey)
	if !ok {
		return nil, apperrors.Wrap(cryptoDomain.ErrInitialization, "public key is not RSA")
	}

	return &HybridSealer{
		pub:         pub,
		aeadManager: aeadManager,
		alg:         alg,
		version:     version,
	}, nil
}

// Seal encrypts plaintext under a fresh single-use 256-bit data key and wraps
// the key with RSA-OAEP-SHA256. The data key and nonce are generated per call
// and never reused, so repeated seals of identical plaintext differ in
// ciphertext, nonce, and wrapped key. The transient data key is zeroed before
// returning and is never retained or logged.
func (s *HybridSealer) Seal(plaintext []byte) (cryptoDomain.SealedPayload, error) {
	if s == nil || s.pub == nil {
		return cryptoDomain.SealedPayload{}, cryptoDomain.ErrNotInitialized
	}

	dek := make([]byte, cryptoDomain.KeySize)
	if _, err := rand.Read(dek); err != nil {
		return cryptoDomain.SealedPayload{}, apperrors.Wrap(cryptoDomain.ErrEncryption, err.Error())
	}
	defer cryptoDomain.Zero(dek)

	aead, err := s.aeadManager.CreateCipher(dek, s.alg)
	if err != nil {
		return cryptoDomain.SealedPayload{}, err
	}

	sealed, nonce, err := aead.Encrypt(plaintext, nil)
	if err != nil {
		return cryptoDomain.SealedPayload{}, apperrors.Wrap(cryptoDomain.ErrEncryption, err.Error())
	}

	wrappedKey, err := rsa.EncryptOAEP(sha256.New(), rand.Reader, s.pub, dek, nil)
	if err != nil {
		return cryptoDomain.SealedPayload{}, apperrors.Wrap(cryptoDomain.ErrEncryption, err.Error())
	}

	// The AEAD appends the 16-byte tag to the ciphertext; the envelope carries
	// it as a separate field.
	tagStart := len(sealed) - cryptoDomain.TagSize
	return cryptoDomain.SealedPayload{
		Ciphertext: sealed[:tagStart],
		WrappedKey: wrappedKey,
		Nonce:      nonce,
		Tag:        sealed[tagStart:],
	}, nil
}

// KeyVersion returns the key version this sealer seals under.
func (s *HybridSealer) KeyVersion() uint {
	return s.version
}
