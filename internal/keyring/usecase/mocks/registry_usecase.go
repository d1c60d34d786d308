package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	cryptoDomain "github.com/allisson/pii-vault/internal/crypto/domain"
	cryptoService "github.com/allisson/pii-vault/internal/crypto/service"
	keyringDomain "github.com/allisson/pii-vault/internal/keyring/domain"
)

// MockRegistryUseCase is a mock implementation of RegistryUseCase for testing.
type MockRegistryUseCase struct {
	mock.Mock
}

// Create mocks the Create method of RegistryUseCase.
func (m *MockRegistryUseCase) Create(
	ctx context.Context,
	alg cryptoDomain.Algorithm,
) (*keyringDomain.KeyVersion, error) {
	args := m.Called(ctx, alg)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*keyringDomain.KeyVersion), args.Error(1)
}

// ResolveForWrite mocks the ResolveForWrite method of RegistryUseCase.
func (m *MockRegistryUseCase) ResolveForWrite(ctx context.Context) (*keyringDomain.KeyVersion, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*keyringDomain.KeyVersion), args.Error(1)
}

// ResolveForRead mocks the ResolveForRead method of RegistryUseCase.
func (m *MockRegistryUseCase) ResolveForRead(
	ctx context.Context,
	version uint,
) (*keyringDomain.KeyVersion, error) {
	args := m.Called(ctx, version)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*keyringDomain.KeyVersion), args.Error(1)
}

// Promote mocks the Promote method of RegistryUseCase.
func (m *MockRegistryUseCase) Promote(ctx context.Context, version uint) error {
	args := m.Called(ctx, version)
	return args.Error(0)
}

// Rollback mocks the Rollback method of RegistryUseCase.
func (m *MockRegistryUseCase) Rollback(ctx context.Context, version uint) error {
	args := m.Called(ctx, version)
	return args.Error(0)
}

// Retire mocks the Retire method of RegistryUseCase.
func (m *MockRegistryUseCase) Retire(ctx context.Context, version uint, force bool) error {
	args := m.Called(ctx, version, force)
	return args.Error(0)
}

// List mocks the List method of RegistryUseCase.
func (m *MockRegistryUseCase) List(ctx context.Context) ([]*keyringDomain.KeyVersion, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*keyringDomain.KeyVersion), args.Error(1)
}

// SealerForWrite mocks the SealerForWrite method of RegistryUseCase.
func (m *MockRegistryUseCase) SealerForWrite(ctx context.Context) (cryptoService.Sealer, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(cryptoService.Sealer), args.Error(1)
}

// OpenerForRead mocks the OpenerForRead method of RegistryUseCase.
func (m *MockRegistryUseCase) OpenerForRead(
	ctx context.Context,
	version uint,
) (cryptoService.Opener, error) {
	args := m.Called(ctx, version)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(cryptoService.Opener), args.Error(1)
}
