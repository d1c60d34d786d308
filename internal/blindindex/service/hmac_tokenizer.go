// Package service implements the deterministic blind-index primitive: a keyed
// HMAC-SHA256 over the plaintext value, hex encoded. The same value under the
// same key version always yields the same token, so exact-match lookups work
// against ciphertext columns without revealing the value.
package service

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"

	cryptoDomain "github.com/allisson/pii-vault/internal/crypto/domain"
)

// Tokenizer computes deterministic blind-index tokens under one key version.
type Tokenizer interface {
	// Token returns the hex-encoded HMAC-SHA256 of value.
	Token(value []byte) string

	// KeyVersion returns the index key version tokens are computed under.
	KeyVersion() uint
}

// HMACTokenizer implements Tokenizer with a 256-bit HMAC-SHA256 key.
type HMACTokenizer struct {
	key     []byte
	version uint
}

// NewTokenizer creates a tokenizer from an unwrapped 256-bit key.
func NewTokenizer(key []byte, version uint) (*HMACTokenizer, error) {
	if len(key) != cryptoDomain.KeySize {
		return nil, cryptoDomain.ErrInvalidKeySize
	}
	return &HMACTokenizer{key: key, version: version}, nil
}

// Token computes the blind-index token for value.
func (h *HMACTokenizer) Token(value []byte) string {
	mac := hmac.New(sha256.New, h.key)
	mac.Write(value)
	return hex.EncodeToString(mac.Sum(nil))
}

// KeyVersion returns the index key version.
func (h *HMACTokenizer) KeyVersion() uint {
	return h.version
}
