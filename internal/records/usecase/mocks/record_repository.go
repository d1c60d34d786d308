// Package mocks provides mock implementations for record testing.
package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	recordsDomain "github.com/allisson/pii-vault/internal/records/domain"
)

// MockRecordRepository is a mock implementation of RecordRepository for testing.
type MockRecordRepository struct {
	mock.Mock
}

// Create mocks the Create method of RecordRepository.
func (m *MockRecordRepository) Create(ctx context.Context, record *recordsDomain.Record) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

// GetByID mocks the GetByID method of RecordRepository.
func (m *MockRecordRepository) GetByID(ctx context.Context, id uuid.UUID) (*recordsDomain.Record, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*recordsDomain.Record), args.Error(1)
}

// GetByIndexToken mocks the GetByIndexToken method of RecordRepository.
func (m *MockRecordRepository) GetByIndexToken(
	ctx context.Context,
	token string,
) ([]*recordsDomain.Record, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*recordsDomain.Record), args.Error(1)
}

// Overwrite mocks the Overwrite method of RecordRepository.
func (m *MockRecordRepository) Overwrite(ctx context.Context, record *recordsDomain.Record) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

// UpdateSealed mocks the UpdateSealed method of RecordRepository.
func (m *MockRecordRepository) UpdateSealed(
	ctx context.Context,
	record *recordsDomain.Record,
	expectedKeyVersion uint,
) (bool, error) {
	args := m.Called(ctx, record, expectedKeyVersion)
	return args.Bool(0), args.Error(1)
}

// UpdateIndexToken mocks the UpdateIndexToken method of RecordRepository.
func (m *MockRecordRepository) UpdateIndexToken(
	ctx context.Context,
	record *recordsDomain.Record,
	expectedIndexKeyVersion uint,
) (bool, error) {
	args := m.Called(ctx, record, expectedIndexKeyVersion)
	return args.Bool(0), args.Error(1)
}

// ListByKeyVersion mocks the ListByKeyVersion method of RecordRepository.
func (m *MockRecordRepository) ListByKeyVersion(
	ctx context.Context,
	version uint,
	limit int,
) ([]*recordsDomain.Record, error) {
	args := m.Called(ctx, version, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*recordsDomain.Record), args.Error(1)
}

// CountByKeyVersion mocks the CountByKeyVersion method of RecordRepository.
func (m *MockRecordRepository) CountByKeyVersion(ctx context.Context, version uint) (int64, error) {
	args := m.Called(ctx, version)
	return args.Get(0).(int64), args.Error(1)
}

// ListByIndexKeyVersion mocks the ListByIndexKeyVersion method of RecordRepository.
func (m *MockRecordRepository) ListByIndexKeyVersion(
	ctx context.Context,
	version uint,
	limit int,
) ([]*recordsDomain.Record, error) {
	args := m.Called(ctx, version, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*recordsDomain.Record), args.Error(1)
}

// CountByIndexKeyVersion mocks the CountByIndexKeyVersion method of RecordRepository.
func (m *MockRecordRepository) CountByIndexKeyVersion(ctx context.Context, version uint) (int64, error) {
	args := m.Called(ctx, version)
	return args.Get(0).(int64), args.Error(1)
}

// Delete mocks the Delete method of RecordRepository.
func (m *MockRecordRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}
