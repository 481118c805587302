package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	recordsDomain "github.com/allisson/fieldvault/internal/records/domain"
)

// MockBlindIndexRepository is a mock implementation of BlindIndexRepository for testing.
type MockBlindIndexRepository struct {
	mock.Mock
}

// CreateBatch mocks the CreateBatch method of BlindIndexRepository.
func (m *MockBlindIndexRepository) CreateBatch(
	ctx context.Context,
	entries []*recordsDomain.BlindIndexEntry,
) error {
	args := m.Called(ctx, entries)
	return args.Error(0)
}

// FindRecordIDs mocks the FindRecordIDs method of BlindIndexRepository.
func (m *MockBlindIndexRepository) FindRecordIDs(
	ctx context.Context,
	tenantID, fieldName, indexToken string,
) ([]uuid.UUID, error) {
	args := m.Called(ctx, tenantID, fieldName, indexToken)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]uuid.UUID), args.Error(1)
}
