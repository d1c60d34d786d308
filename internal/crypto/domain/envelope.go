// Package domain defines the hybrid sealing model: the sealed payload produced
// by a sealer and its transport-agnostic wire representation.
package domain

import (
	"encoding/base64"

	validation "github.com/jellydator/validation"

	appvalidation "github.com/allisson/pii-vault/internal/validation"
)

// SealedPayload is the output of one seal operation: the AEAD ciphertext with
// its tag split out, the nonce, and the data key wrapped with the version's
// public key. All four fields are opaque bytes; the key-version tag travels
// out of band.
type SealedPayload struct {
	Ciphertext []byte
	WrappedKey []byte
	Nonce      []byte
	Tag        []byte
}

// Envelope is the wire representation of a sealed payload: base64-encoded
// fields for text transports. Field names match the envelope contract used by
// sealing-side clients.
type Envelope struct {
	EncryptedData string `json:"encrypted_data"`
	EncryptedKey  string `json:"encrypted_key"`
	IV            string `json:"iv"`
	AuthTag       string `json:"auth_tag"`
}

// Validate checks that all envelope fields are present and base64-encoded,
// and that the nonce and tag carry their fixed AEAD lengths.
func (e Envelope) Validate() error {
	return validation.ValidateStruct(&e,
		validation.Field(&e.EncryptedData, validation.Required, appvalidation.Base64),
		validation.Field(&e.EncryptedKey, validation.Required, appvalidation.Base64),
		validation.Field(&e.IV, validation.Required, appvalidation.Base64, appvalidation.Base64Length(NonceSize)),
		validation.Field(&e.AuthTag, validation.Required, appvalidation.Base64, appvalidation.Base64Length(TagSize)),
	)
}

// Decode decodes the envelope into a SealedPayload.
// The envelope must be validated first; decode errors are reported as-is.
func (e Envelope) Decode() (SealedPayload, error) {
	var payload SealedPayload
	var err error

	if payload.Ciphertext, err = base64.StdEncoding.DecodeString(e.EncryptedData); err != nil {
		return SealedPayload{}, err
	}
	if payload.WrappedKey, err = base64.StdEncoding.DecodeString(e.EncryptedKey); err != nil {
		return SealedPayload{}, err
	}
	if payload.Nonce, err = base64.StdEncoding.DecodeString(e.IV); err != nil {
		return SealedPayload{}, err
	}
	if payload.Tag, err = base64.StdEncoding.DecodeString(e.AuthTag); err != nil {
		return SealedPayload{}, err
	}

	return payload, nil
}

// Wire encodes the sealed payload into its base64 wire representation.
func (p SealedPayload) Wire() Envelope {
	return Envelope{
		EncryptedData: base64.StdEncoding.EncodeToString(p.Ciphertext),
		EncryptedKey:  base64.StdEncoding.EncodeToString(p.WrappedKey),
		IV:            base64.StdEncoding.EncodeToString(p.Nonce),
		AuthTag:       base64.StdEncoding.EncodeToString(p.Tag),
	}
}
