package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	recordsDomain "github.com/allisson/pii-vault/internal/records/domain"
	recordsUsecase "github.com/allisson/pii-vault/internal/records/usecase"
)

// MockRecordUseCase is a mock implementation of RecordUseCase for testing.
type MockRecordUseCase struct {
	mock.Mock
}

// Create mocks the Create method of RecordUseCase.
func (m *MockRecordUseCase) Create(ctx context.Context, value []byte) (*recordsDomain.Record, error) {
	args := m.Called(ctx, value)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*recordsDomain.Record), args.Error(1)
}

// Get mocks the Get method of RecordUseCase.
func (m *MockRecordUseCase) Get(ctx context.Context, id uuid.UUID) (*recordsDomain.Record, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*recordsDomain.Record), args.Error(1)
}

// Reveal mocks the Reveal method of RecordUseCase.
func (m *MockRecordUseCase) Reveal(ctx context.Context, id uuid.UUID) ([]byte, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

// Overwrite mocks the Overwrite method of RecordUseCase.
func (m *MockRecordUseCase) Overwrite(
	ctx context.Context,
	id uuid.UUID,
	value []byte,
) (*recordsDomain.Record, error) {
	args := m.Called(ctx, id, value)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*recordsDomain.Record), args.Error(1)
}

// FindByValue mocks the FindByValue method of RecordUseCase.
func (m *MockRecordUseCase) FindByValue(ctx context.Context, value []byte) ([]*recordsDomain.Record, error) {
	args := m.Called(ctx, value)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*recordsDomain.Record), args.Error(1)
}

// Delete mocks the Delete method of RecordUseCase.
func (m *MockRecordUseCase) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockReencryptUseCase is a mock implementation of ReencryptUseCase for testing.
type MockReencryptUseCase struct {
	mock.Mock
}

// Run mocks the Run method of ReencryptUseCase.
func (m *MockReencryptUseCase) Run(
	ctx context.Context,
	sourceVersion uint,
) (*recordsUsecase.MigrationResult, error) {
	args := m.Called(ctx, sourceVersion)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*recordsUsecase.MigrationResult), args.Error(1)
}

// MockRotateIndexUseCase is a mock implementation of RotateIndexUseCase for testing.
type MockRotateIndexUseCase struct {
	mock.Mock
}

// Run mocks the Run method of RotateIndexUseCase.
func (m *MockRotateIndexUseCase) Run(
	ctx context.Context,
	sourceVersion uint,
) (*recordsUsecase.MigrationResult, error) {
	args := m.Called(ctx, sourceVersion)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*recordsUsecase.MigrationResult), args.Error(1)
}
