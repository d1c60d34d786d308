// Package mocks provides mock implementations of the sealing primitives.
package mocks

import (
	"github.com/stretchr/testify/mock"

	cryptoDomain "github.com/allisson/pii-vault/internal/crypto/domain"
)

// MockSealer is a mock implementation of Sealer for testing.
type MockSealer struct {
	mock.Mock
}

// Seal mocks the Seal method of Sealer.
func (m *MockSealer) Seal(plaintext []byte) (cryptoDomain.SealedPayload, error) {
	args := m.Called(plaintext)
	return args.Get(0).(cryptoDomain.SealedPayload), args.Error(1)
}

// KeyVersion mocks the KeyVersion method of Sealer.
func (m *MockSealer) KeyVersion() uint {
	args := m.Called()
	return args.Get(0).(uint)
}

// MockOpener is a mock implementation of Opener for testing.
type MockOpener struct {
	mock.Mock
}

// Open mocks the Open method of Opener.
func (m *MockOpener) Open(payload cryptoDomain.SealedPayload) ([]byte, error) {
	args := m.Called(payload)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}
