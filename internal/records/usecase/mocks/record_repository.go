// Package mocks provides mock implementations for testing record use cases.
package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	recordsDomain "github.com/allisson/fieldvault/internal/records/domain"
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

// Get mocks the Get method of RecordRepository.
func (m *MockRecordRepository) Get(
	ctx context.Context,
	tenantID string,
	recordID uuid.UUID,
) (*recordsDomain.Record, error) {
	args := m.Called(ctx, tenantID, recordID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*recordsDomain.Record), args.Error(1)
}

// List mocks the List method of RecordRepository.
func (m *MockRecordRepository) List(
	ctx context.Context,
	tenantID string,
	offset, limit int,
) ([]*recordsDomain.Record, error) {
	args := m.Called(ctx, tenantID, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*recordsDomain.Record), args.Error(1)
}

// ListByKeyVersion mocks the ListByKeyVersion method of RecordRepository.
func (m *MockRecordRepository) ListByKeyVersion(
	ctx context.Context,
	keyVersion uint,
	limit int,
) ([]*recordsDomain.Record, error) {
	args := m.Called(ctx, keyVersion, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*recordsDomain.Record), args.Error(1)
}

// CountByKeyVersion mocks the CountByKeyVersion method of RecordRepository.
func (m *MockRecordRepository) CountByKeyVersion(ctx context.Context, keyVersion uint) (int64, error) {
	args := m.Called(ctx, keyVersion)
	return args.Get(0).(int64), args.Error(1)
}

// ReplaceEnvelope mocks the ReplaceEnvelope method of RecordRepository.
func (m *MockRecordRepository) ReplaceEnvelope(
	ctx context.Context,
	recordID uuid.UUID,
	envelope recordsDomain.EncryptedEnvelope,
	needsMigration bool,
) error {
	args := m.Called(ctx, recordID, envelope, needsMigration)
	return args.Error(0)
}
