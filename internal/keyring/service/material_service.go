package service

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"fmt"

	cryptoDomain "github.com/allisson/pii-vault/internal/crypto/domain"
	apperrors "github.com/allisson/pii-vault/internal/errors"
	keyringDomain "github.com/allisson/pii-vault/internal/keyring/domain"
)

// MaterialService manages the key material behind key versions. The registry
// stores only an opaque handle: the public key PEM and the KMS-wrapped PKCS#8
// private key. Plaintext private keys exist in memory only on the unsealing
// side, after an explicit Unwrap.
type MaterialService interface {
	// Generate creates a new RSA key pair and wraps the private key with the
	// KMS keeper. Returns the SubjectPublicKeyInfo PEM and the wrapped key.
	Generate(ctx context.Context) (publicKeyPEM, encryptedPrivateKey []byte, err error)

	// Unwrap decrypts a key version's private key through the KMS keeper.
	Unwrap(ctx context.Context, kv *keyringDomain.KeyVersion) (*rsa.PrivateKey, error)

	// GenerateSymmetric creates a new 256-bit key wrapped with the KMS keeper,
	// used for blind-index HMAC keys.
	GenerateSymmetric(ctx context.Context) (encryptedKey []byte, err error)

	// UnwrapSymmetric decrypts a wrapped 256-bit key.
	UnwrapSymmetric(ctx context.Context, encryptedKey []byte) ([]byte, error)
}

// materialService implements MaterialService with a KMS keeper.
type materialService struct {
	keeper keyringDomain.KMSKeeper
}

// NewMaterialService creates a MaterialService backed by the given keeper.
func NewMaterialService(keeper keyringDomain.KMSKeeper) MaterialService {
	return &materialService{keeper: keeper}
}

// Generate creates an RSA-2048 key pair, encodes the public key as a
// SubjectPublicKeyInfo PEM, and wraps the PKCS#8 private key with the keeper.
// The plaintext private key is zeroed from memory before returning.
func (m *materialService) Generate(ctx context.Context) ([]byte, []byte, error) {
	priv, err := rsa.GenerateKey(rand.Reader, cryptoDomain.RSAKeySize)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to generate key pair: %w", err)
	}

	pubDER, err := x509.MarshalPKIXPublicKey(&priv.PublicKey)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to encode public key: %w", err)
	}
	publicKeyPEM := pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: pubDER})

	privDER, err := x509.MarshalPKCS8PrivateKey(priv)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to encode private key: %w", err)
	}
	defer cryptoDomain.Zero(privDER)

	encryptedPrivateKey, err := m.keeper.Encrypt(ctx, privDER)
	if err != nil {
		return nil, nil, apperrors.Transient(err, "failed to wrap private key")
	}

	return publicKeyPEM, encryptedPrivateKey, nil
}

// Unwrap decrypts the key version's private key through the keeper and parses
// the PKCS#8 encoding.
func (m *materialService) Unwrap(
	ctx context.Context,
	kv *keyringDomain.KeyVersion,
) (*rsa.PrivateKey, error) {
	privDER, err := m.keeper.Decrypt(ctx, kv.EncryptedPrivateKey)
	if err != nil {
		return nil, apperrors.Transient(err, "failed to unwrap private key")
	}
	defer cryptoDomain.Zero(privDER)

	parsed, err := x509.ParsePKCS8PrivateKey(privDER)
	if err != nil {
		return nil, apperrors.Wrap(cryptoDomain.ErrInitialization, err.Error())
	}

	priv, ok := parsed.(*rsa.PrivateKey)
	if !ok {
		return nil, apperrors.Wrap(cryptoDomain.ErrInitialization, "private key is not RSA")
	}

	return priv, nil
}

// GenerateSymmetric creates a random 256-bit key wrapped with the keeper.
func (m *materialService) GenerateSymmetric(ctx context.Context) ([]byte, error) {
	key := make([]byte, cryptoDomain.KeySize)
	if _, err := rand.Read(key); err != nil {
		return nil, fmt.Errorf("failed to generate key: %w", err)
	}
	defer cryptoDomain.Zero(key)

	encryptedKey, err := m.keeper.Encrypt(ctx, key)
	if err != nil {
		return nil, apperrors.Transient(err, "failed to wrap key")
	}

	return encryptedKey, nil
}

// UnwrapSymmetric decrypts a wrapped 256-bit key through the keeper.
func (m *materialService) UnwrapSymmetric(ctx context.Context, encryptedKey []byte) ([]byte, error) {
	key, err := m.keeper.Decrypt(ctx, encryptedKey)
	if err != nil {
		return nil, apperrors.Transient(err, "failed to unwrap key")
	}
	if len(key) != cryptoDomain.KeySize {
		return nil, cryptoDomain.ErrInvalidKeySize
	}
	return key, nil
}
