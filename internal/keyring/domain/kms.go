package domain

import "context"

// KMSKeeper abstracts the external key-material collaborator used to wrap and
// unwrap private key material at rest. *secrets.Keeper from gocloud.dev
// implements this interface.
type KMSKeeper interface {
	Encrypt(ctx context.Context, plaintext []byte) ([]byte, error)
	Decrypt(ctx context.Context, ciphertext []byte) ([]byte, error)
	Close() error
}
