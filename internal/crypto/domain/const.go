package domain

// Algorithm represents the AEAD algorithm used to encrypt record payloads.
//
// Both supported algorithms provide authenticated encryption: confidentiality
// plus a 128-bit integrity tag that detects tampering before any plaintext is
// released.
type Algorithm string

const (
	// AESGCM is AES-256-GCM. Preferred on CPUs with AES-NI acceleration.
	AESGCM Algorithm = "aes-gcm"

	// ChaCha20 is ChaCha20-Poly1305. Preferred on platforms without AES
	// hardware acceleration; constant-time in software.
	ChaCha20 Algorithm = "chacha20-poly1305"
)

// Valid reports whether a is a supported algorithm.
func (a Algorithm) Valid() bool {
	return a == AESGCM || a == ChaCha20
}

const (
	// KeySize is the symmetric data-key size in bytes (256 bits).
	KeySize = 32

	// NonceSize is the AEAD nonce size in bytes (96 bits).
	NonceSize = 12

	// TagSize is the AEAD authentication tag size in bytes (128 bits).
	TagSize = 16

	// RSAKeySize is the modulus size in bits for key-wrapping key pairs.
	RSAKeySize = 2048
)
