// Package mocks provides mock implementations for key registry testing.
package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	keyringDomain "github.com/allisson/pii-vault/internal/keyring/domain"
)

// MockKeyVersionRepository is a mock implementation of KeyVersionRepository for testing.
type MockKeyVersionRepository struct {
	mock.Mock
}

// Create mocks the Create method of KeyVersionRepository.
func (m *MockKeyVersionRepository) Create(ctx context.Context, kv *keyringDomain.KeyVersion) error {
	args := m.Called(ctx, kv)
	return args.Error(0)
}

// GetByVersion mocks the GetByVersion method of KeyVersionRepository.
func (m *MockKeyVersionRepository) GetByVersion(
	ctx context.Context,
	version uint,
) (*keyringDomain.KeyVersion, error) {
	args := m.Called(ctx, version)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*keyringDomain.KeyVersion), args.Error(1)
}

// GetActive mocks the GetActive method of KeyVersionRepository.
func (m *MockKeyVersionRepository) GetActive(ctx context.Context) (*keyringDomain.KeyVersion, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*keyringDomain.KeyVersion), args.Error(1)
}

// List mocks the List method of KeyVersionRepository.
func (m *MockKeyVersionRepository) List(ctx context.Context) ([]*keyringDomain.KeyVersion, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*keyringDomain.KeyVersion), args.Error(1)
}

// Update mocks the Update method of KeyVersionRepository.
func (m *MockKeyVersionRepository) Update(ctx context.Context, kv *keyringDomain.KeyVersion) error {
	args := m.Called(ctx, kv)
	return args.Error(0)
}

// MockReferenceCounter is a mock implementation of ReferenceCounter for testing.
type MockReferenceCounter struct {
	mock.Mock
}

// CountByKeyVersion mocks the CountByKeyVersion method of ReferenceCounter.
func (m *MockReferenceCounter) CountByKeyVersion(ctx context.Context, version uint) (int64, error) {
	args := m.Called(ctx, version)
	return args.Get(0).(int64), args.Error(1)
}
