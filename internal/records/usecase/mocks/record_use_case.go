package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	recordsDomain "github.com/allisson/fieldvault/internal/records/domain"
)

// MockRecordUseCase is a mock implementation of RecordUseCase for testing.
type MockRecordUseCase struct {
	mock.Mock
}

// Store mocks the Store method of RecordUseCase.
func (m *MockRecordUseCase) Store(
	ctx context.Context,
	tenantID string,
	fields map[string]string,
	searchable []string,
) (*recordsDomain.Record, error) {
	args := m.Called(ctx, tenantID, fields, searchable)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*recordsDomain.Record), args.Error(1)
}

// Load mocks the Load method of RecordUseCase.
func (m *MockRecordUseCase) Load(
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

// Search mocks the Search method of RecordUseCase.
func (m *MockRecordUseCase) Search(
	ctx context.Context,
	tenantID, fieldName, value string,
) ([]uuid.UUID, string, error) {
	args := m.Called(ctx, tenantID, fieldName, value)
	if args.Get(0) == nil {
		return nil, args.String(1), args.Error(2)
	}
	return args.Get(0).([]uuid.UUID), args.String(1), args.Error(2)
}

// List mocks the List method of RecordUseCase.
func (m *MockRecordUseCase) List(
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
