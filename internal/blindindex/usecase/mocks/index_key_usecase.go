package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	blindindexDomain "github.com/allisson/pii-vault/internal/blindindex/domain"
	blindindexService "github.com/allisson/pii-vault/internal/blindindex/service"
)

// MockIndexKeyUseCase is a mock implementation of IndexKeyUseCase for testing.
type MockIndexKeyUseCase struct {
	mock.Mock
}

// Create mocks the Create method of IndexKeyUseCase.
func (m *MockIndexKeyUseCase) Create(ctx context.Context) (*blindindexDomain.IndexKey, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*blindindexDomain.IndexKey), args.Error(1)
}

// Promote mocks the Promote method of IndexKeyUseCase.
func (m *MockIndexKeyUseCase) Promote(ctx context.Context, version uint) error {
	args := m.Called(ctx, version)
	return args.Error(0)
}

// Rollback mocks the Rollback method of IndexKeyUseCase.
func (m *MockIndexKeyUseCase) Rollback(ctx context.Context, version uint) error {
	args := m.Called(ctx, version)
	return args.Error(0)
}

// Retire mocks the Retire method of IndexKeyUseCase.
func (m *MockIndexKeyUseCase) Retire(ctx context.Context, version uint, force bool) error {
	args := m.Called(ctx, version, force)
	return args.Error(0)
}

// List mocks the List method of IndexKeyUseCase.
func (m *MockIndexKeyUseCase) List(ctx context.Context) ([]*blindindexDomain.IndexKey, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*blindindexDomain.IndexKey), args.Error(1)
}

// TokenizerForWrite mocks the TokenizerForWrite method of IndexKeyUseCase.
func (m *MockIndexKeyUseCase) TokenizerForWrite(ctx context.Context) (blindindexService.Tokenizer, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(blindindexService.Tokenizer), args.Error(1)
}

// TokenizerFor mocks the TokenizerFor method of IndexKeyUseCase.
func (m *MockIndexKeyUseCase) TokenizerFor(
	ctx context.Context,
	version uint,
) (blindindexService.Tokenizer, error) {
	args := m.Called(ctx, version)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(blindindexService.Tokenizer), args.Error(1)
}
