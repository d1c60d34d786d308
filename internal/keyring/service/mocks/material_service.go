// Package mocks provides mock implementations of key material services.
package mocks

import (
	"context"
	"crypto/rsa"

	"github.com/stretchr/testify/mock"

	keyringDomain "github.com/allisson/pii-vault/internal/keyring/domain"
)

// MockMaterialService is a mock implementation of MaterialService for testing.
type MockMaterialService struct {
	mock.Mock
}

// Generate mocks the Generate method of MaterialService.
func (m *MockMaterialService) Generate(ctx context.Context) ([]byte, []byte, error) {
	args := m.Called(ctx)
	var publicKeyPEM, encryptedPrivateKey []byte
	if args.Get(0) != nil {
		publicKeyPEM = args.Get(0).([]byte)
	}
	if args.Get(1) != nil {
		encryptedPrivateKey = args.Get(1).([]byte)
	}
	return publicKeyPEM, encryptedPrivateKey, args.Error(2)
}

// Unwrap mocks the Unwrap method of MaterialService.
func (m *MockMaterialService) Unwrap(
	ctx context.Context,
	kv *keyringDomain.KeyVersion,
) (*rsa.PrivateKey, error) {
	args := m.Called(ctx, kv)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*rsa.PrivateKey), args.Error(1)
}

// GenerateSymmetric mocks the GenerateSymmetric method of MaterialService.
func (m *MockMaterialService) GenerateSymmetric(ctx context.Context) ([]byte, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

// UnwrapSymmetric mocks the UnwrapSymmetric method of MaterialService.
func (m *MockMaterialService) UnwrapSymmetric(ctx context.Context, encryptedKey []byte) ([]byte, error) {
	args := m.Called(ctx, encryptedKey)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}
