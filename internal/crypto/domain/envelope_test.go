package domain

import (
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnvelope_Validate(t *testing.T) {
	valid := Envelope{
		EncryptedData: base64.StdEncoding.EncodeToString([]byte("ciphertext")),
		EncryptedKey:  base64.StdEncoding.EncodeToString([]byte("wrapped-key")),
		IV:            base64.StdEncoding.EncodeToString([]byte("nonce-bytes!")),
		AuthTag:       base64.StdEncoding.EncodeToString([]byte("tag-bytes-16long")),
	}

	t.Run("accepts valid envelope", func(t *testing.T) {
		assert.NoError(t, valid.Validate())
	})

	t.Run("rejects missing field", func(t *testing.T) {
		e := valid
		e.EncryptedKey = ""
		assert.Error(t, e.Validate())
	})

	t.Run("rejects invalid base64", func(t *testing.T) {
		e := valid
		e.IV = "!!not-base64!!"
		assert.Error(t, e.Validate())
	})

	t.Run("rejects short nonce", func(t *testing.T) {
		e := valid
		e.IV = base64.StdEncoding.EncodeToString([]byte("8-bytes!"))
		assert.Error(t, e.Validate())
	})

	t.Run("rejects wrong-length tag", func(t *testing.T) {
		e := valid
		e.AuthTag = base64.StdEncoding.EncodeToString([]byte("fifteen-byte-ta"))
		assert.Error(t, e.Validate())
	})
}

func TestSealedPayload_WireRoundTrip(t *testing.T) {
	payload := SealedPayload{
		Ciphertext: []byte("some ciphertext"),
		WrappedKey: []byte("some wrapped key"),
		Nonce:      []byte("twelve-bytes"),
		Tag:        []byte("sixteen-byte-tag"),
	}

	wire := payload.Wire()
	require.NoError(t, wire.Validate())

	decoded, err := wire.Decode()
	require.NoError(t, err)
	assert.Equal(t, payload, decoded)
}

func TestZero(t *testing.T) {
	b := []byte{1, 2, 3}
	Zero(b)
	assert.Equal(t, []byte{0, 0, 0}, b)

	// Must not panic on nil.
	Zero(nil)
}
