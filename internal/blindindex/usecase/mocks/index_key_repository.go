// Package mocks provides mock implementations for blind-index testing.
package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	blindindexDomain "github.com/allisson/pii-vault/internal/blindindex/domain"
)

// MockIndexKeyRepository is a mock implementation of IndexKeyRepository for testing.
type MockIndexKeyRepository struct {
	mock.Mock
}

// Create mocks the Create method of IndexKeyRepository.
func (m *MockIndexKeyRepository) Create(ctx context.Context, key *blindindexDomain.IndexKey) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

// GetByVersion mocks the GetByVersion method of IndexKeyRepository.
func (m *MockIndexKeyRepository) GetByVersion(
	ctx context.Context,
	version uint,
) (*blindindexDomain.IndexKey, error) {
	args := m.Called(ctx, version)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*blindindexDomain.IndexKey), args.Error(1)
}

// GetActive mocks the GetActive method of IndexKeyRepository.
func (m *MockIndexKeyRepository) GetActive(ctx context.Context) (*blindindexDomain.IndexKey, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*blindindexDomain.IndexKey), args.Error(1)
}

// List mocks the List method of IndexKeyRepository.
func (m *MockIndexKeyRepository) List(ctx context.Context) ([]*blindindexDomain.IndexKey, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*blindindexDomain.IndexKey), args.Error(1)
}

// Update mocks the Update method of IndexKeyRepository.
func (m *MockIndexKeyRepository) Update(ctx context.Context, key *blindindexDomain.IndexKey) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

// MockIndexReferenceCounter is a mock implementation of IndexReferenceCounter for testing.
type MockIndexReferenceCounter struct {
	mock.Mock
}

// CountByIndexKeyVersion mocks the CountByIndexKeyVersion method of IndexReferenceCounter.
func (m *MockIndexReferenceCounter) CountByIndexKeyVersion(ctx context.Context, version uint) (int64, error) {
	args := m.Called(ctx, version)
	return args.Get(0).(int64), args.Error(1)
}
