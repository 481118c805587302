package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	cryptoDomain "github.com/allisson/fieldvault/internal/crypto/domain"
	databaseMocks "github.com/allisson/fieldvault/internal/database/mocks"
	apperrors "github.com/allisson/fieldvault/internal/errors"
	recordsDomain "github.com/allisson/fieldvault/internal/records/domain"
	recordsUsecaseMocks "github.com/allisson/fieldvault/internal/records/usecase/mocks"
)

// TestRecordUseCase_Store tests the Store method of recordUseCase.
func TestRecordUseCase_Store(t *testing.T) {
	ctx := context.Background()
	codec := newTestCodec(t)

	fields := map[string]string{
		"passport_number": "AB1234567",
		"full_name":       "John Smith",
	}

	t.Run("Success_StoreRecordWithIndexEntries", func(t *testing.T) {
		mockRecordRepo := &recordsUsecaseMocks.MockRecordRepository{}
		mockIndexRepo := &recordsUsecaseMocks.MockBlindIndexRepository{}

		var storedRecord *recordsDomain.Record

		mockRecordRepo.On("Create", mock.Anything, mock.MatchedBy(func(record *recordsDomain.Record) bool {
			storedRecord = record
			return record.TenantID == "acme" &&
				record.Envelope.KeyVersion == 2 &&
				!record.NeedsMigration
		})).Return(nil).Once()

		mockIndexRepo.On("CreateBatch", mock.Anything, mock.MatchedBy(func(entries []*recordsDomain.BlindIndexEntry) bool {
			if len(entries) != 1 {
				return false
			}
			entry := entries[0]
			return entry.TenantID == "acme" &&
				entry.FieldName == "passport_number" &&
				entry.ID != uuid.Nil
		})).Return(nil).Once()

		uc := NewRecordUseCase(databaseMocks.PassthroughTxManager{}, mockRecordRepo, mockIndexRepo, codec)
		record, err := uc.Store(ctx, "acme", fields, []string{"passport_number"})

		require.NoError(t, err)
		require.NotNil(t, record)
		assert.NotEqual(t, uuid.Nil, record.ID)
		assert.Equal(t, storedRecord, record)

		mockRecordRepo.AssertExpectations(t)
		mockIndexRepo.AssertExpectations(t)
	})

	t.Run("Success_NoSearchableFields", func(t *testing.T) {
		mockRecordRepo := &recordsUsecaseMocks.MockRecordRepository{}
		mockIndexRepo := &recordsUsecaseMocks.MockBlindIndexRepository{}

		mockRecordRepo.On("Create", mock.Anything, mock.Anything).Return(nil).Once()

		uc := NewRecordUseCase(databaseMocks.PassthroughTxManager{}, mockRecordRepo, mockIndexRepo, codec)
		record, err := uc.Store(ctx, "acme", fields, nil)

		require.NoError(t, err)
		assert.NotNil(t, record)
		mockIndexRepo.AssertNotCalled(t, "CreateBatch")
	})

	t.Run("Error_EmptyFieldMap", func(t *testing.T) {
		mockRecordRepo := &recordsUsecaseMocks.MockRecordRepository{}
		mockIndexRepo := &recordsUsecaseMocks.MockBlindIndexRepository{}

		uc := NewRecordUseCase(databaseMocks.PassthroughTxManager{}, mockRecordRepo, mockIndexRepo, codec)
		record, err := uc.Store(ctx, "acme", map[string]string{}, nil)

		assert.Nil(t, record)
		assert.True(t, apperrors.Is(err, recordsDomain.ErrEmptyFieldMap))
		mockRecordRepo.AssertNotCalled(t, "Create")
	})

	t.Run("Error_RepositoryCreateFails", func(t *testing.T) {
		mockRecordRepo := &recordsUsecaseMocks.MockRecordRepository{}
		mockIndexRepo := &recordsUsecaseMocks.MockBlindIndexRepository{}
		expectedError := errors.New("database error")

		mockRecordRepo.On("Create", mock.Anything, mock.Anything).Return(expectedError).Once()

		uc := NewRecordUseCase(databaseMocks.PassthroughTxManager{}, mockRecordRepo, mockIndexRepo, codec)
		record, err := uc.Store(ctx, "acme", fields, nil)

		assert.Nil(t, record)
		assert.Equal(t, expectedError, err)
		mockIndexRepo.AssertNotCalled(t, "CreateBatch")
	})
}

// TestRecordUseCase_Load tests the Load method of recordUseCase.
func TestRecordUseCase_Load(t *testing.T) {
	ctx := context.Background()
	codec := newTestCodec(t)

	fields := map[string]string{
		"passport_number": "AB1234567",
		"full_name":       "John Smith",
	}

	t.Run("Success_LoadAndOpenRecord", func(t *testing.T) {
		mockRecordRepo := &recordsUsecaseMocks.MockRecordRepository{}
		mockIndexRepo := &recordsUsecaseMocks.MockBlindIndexRepository{}

		envelope, _, err := codec.SealRecord("acme", fields, nil)
		require.NoError(t, err)

		recordID := uuid.Must(uuid.NewV7())
		stored := &recordsDomain.Record{
			ID:        recordID,
			TenantID:  "acme",
			Envelope:  envelope,
			CreatedAt: time.Now().UTC(),
			UpdatedAt: time.Now().UTC(),
		}

		mockRecordRepo.On("Get", ctx, "acme", recordID).Return(stored, nil).Once()

		uc := NewRecordUseCase(databaseMocks.PassthroughTxManager{}, mockRecordRepo, mockIndexRepo, codec)
		record, err := uc.Load(ctx, "acme", recordID)

		require.NoError(t, err)
		assert.Equal(t, fields, record.Fields)
		assert.False(t, record.NeedsMigration)
	})

	t.Run("Success_LegacyRecordFlaggedForMigration", func(t *testing.T) {
		mockRecordRepo := &recordsUsecaseMocks.MockRecordRepository{}
		mockIndexRepo := &recordsUsecaseMocks.MockBlindIndexRepository{}

		recordID := uuid.Must(uuid.NewV7())
		stored := &recordsDomain.Record{
			ID:       recordID,
			TenantID: "acme",
			Envelope: recordsDomain.EncryptedEnvelope{
				KeyVersion: cryptoDomain.LegacyKeyVersion,
				Ciphertext: []byte(`{"full_name":"John Smith"}`),
			},
			NeedsMigration: true,
		}

		mockRecordRepo.On("Get", ctx, "acme", recordID).Return(stored, nil).Once()

		uc := NewRecordUseCase(databaseMocks.PassthroughTxManager{}, mockRecordRepo, mockIndexRepo, codec)
		record, err := uc.Load(ctx, "acme", recordID)

		require.NoError(t, err)
		assert.Equal(t, map[string]string{"full_name": "John Smith"}, record.Fields)
		assert.True(t, record.NeedsMigration)
	})

	t.Run("Error_RecordNotFound", func(t *testing.T) {
		mockRecordRepo := &recordsUsecaseMocks.MockRecordRepository{}
		mockIndexRepo := &recordsUsecaseMocks.MockBlindIndexRepository{}

		recordID := uuid.Must(uuid.NewV7())
		mockRecordRepo.On("Get", ctx, "acme", recordID).Return(nil, apperrors.ErrNotFound).Once()

		uc := NewRecordUseCase(databaseMocks.PassthroughTxManager{}, mockRecordRepo, mockIndexRepo, codec)
		record, err := uc.Load(ctx, "acme", recordID)

		assert.Nil(t, record)
		assert.True(t, apperrors.Is(err, apperrors.ErrNotFound))
	})

	t.Run("Error_TamperedEnvelope", func(t *testing.T) {
		mockRecordRepo := &recordsUsecaseMocks.MockRecordRepository{}
		mockIndexRepo := &recordsUsecaseMocks.MockBlindIndexRepository{}

		envelope, _, err := codec.SealRecord("acme", fields, nil)
		require.NoError(t, err)
		envelope.Ciphertext[len(envelope.Ciphertext)-1] ^= 0x01

		recordID := uuid.Must(uuid.NewV7())
		stored := &recordsDomain.Record{ID: recordID, TenantID: "acme", Envelope: envelope}

		mockRecordRepo.On("Get", ctx, "acme", recordID).Return(stored, nil).Once()

		uc := NewRecordUseCase(databaseMocks.PassthroughTxManager{}, mockRecordRepo, mockIndexRepo, codec)
		record, err := uc.Load(ctx, "acme", recordID)

		assert.Nil(t, record)
		assert.True(t, apperrors.Is(err, apperrors.ErrAuthenticationTag))
	})
}

// TestRecordUseCase_Search tests the Search method of recordUseCase.
func TestRecordUseCase_Search(t *testing.T) {
	ctx := context.Background()
	codec := newTestCodec(t)

	t.Run("Success_MatchesStoredToken", func(t *testing.T) {
		mockRecordRepo := &recordsUsecaseMocks.MockRecordRepository{}
		mockIndexRepo := &recordsUsecaseMocks.MockBlindIndexRepository{}

		token, err := codec.SearchToken("acme", "passport_number", "AB1234567")
		require.NoError(t, err)

		expectedIDs := []uuid.UUID{uuid.Must(uuid.NewV7())}
		mockIndexRepo.On("FindRecordIDs", ctx, "acme", "passport_number", token).
			Return(expectedIDs, nil).Once()

		uc := NewRecordUseCase(databaseMocks.PassthroughTxManager{}, mockRecordRepo, mockIndexRepo, codec)
		recordIDs, searchToken, err := uc.Search(ctx, "acme", "passport_number", "AB1234567")

		require.NoError(t, err)
		assert.Equal(t, expectedIDs, recordIDs)
		assert.Equal(t, token, searchToken)
	})

	t.Run("Success_QueryValueIsNormalized", func(t *testing.T) {
		mockRecordRepo := &recordsUsecaseMocks.MockRecordRepository{}
		mockIndexRepo := &recordsUsecaseMocks.MockBlindIndexRepository{}

		// The token for the messy query must equal the token computed from
		// the clean value at seal time.
		token, err := codec.SearchToken("acme", "full_name", "jane doe")
		require.NoError(t, err)

		mockIndexRepo.On("FindRecordIDs", ctx, "acme", "full_name", token).
			Return([]uuid.UUID{}, nil).Once()

		uc := NewRecordUseCase(databaseMocks.PassthroughTxManager{}, mockRecordRepo, mockIndexRepo, codec)
		_, _, err = uc.Search(ctx, "acme", "full_name", "  Jane   Doe ")

		require.NoError(t, err)
		mockIndexRepo.AssertExpectations(t)
	})

	t.Run("Error_RepositoryFails", func(t *testing.T) {
		mockRecordRepo := &recordsUsecaseMocks.MockRecordRepository{}
		mockIndexRepo := &recordsUsecaseMocks.MockBlindIndexRepository{}
		expectedError := errors.New("database error")

		mockIndexRepo.On("FindRecordIDs", ctx, "acme", "passport_number", mock.Anything).
			Return(nil, expectedError).Once()

		uc := NewRecordUseCase(databaseMocks.PassthroughTxManager{}, mockRecordRepo, mockIndexRepo, codec)
		recordIDs, _, err := uc.Search(ctx, "acme", "passport_number", "AB1234567")

		assert.Nil(t, recordIDs)
		assert.Equal(t, expectedError, err)
	})
}

// TestRecordUseCase_List tests the List method of recordUseCase.
func TestRecordUseCase_List(t *testing.T) {
	ctx := context.Background()
	codec := newTestCodec(t)

	t.Run("Success_ListRecords", func(t *testing.T) {
		mockRecordRepo := &recordsUsecaseMocks.MockRecordRepository{}
		mockIndexRepo := &recordsUsecaseMocks.MockBlindIndexRepository{}

		expectedRecords := []*recordsDomain.Record{
			{ID: uuid.Must(uuid.NewV7()), TenantID: "acme"},
			{ID: uuid.Must(uuid.NewV7()), TenantID: "acme"},
		}

		mockRecordRepo.On("List", ctx, "acme", 0, 10).Return(expectedRecords, nil).Once()

		uc := NewRecordUseCase(databaseMocks.PassthroughTxManager{}, mockRecordRepo, mockIndexRepo, codec)
		records, err := uc.List(ctx, "acme", 0, 10)

		require.NoError(t, err)
		assert.Equal(t, expectedRecords, records)
	})

	t.Run("Error_RepositoryFails", func(t *testing.T) {
		mockRecordRepo := &recordsUsecaseMocks.MockRecordRepository{}
		mockIndexRepo := &recordsUsecaseMocks.MockBlindIndexRepository{}
		expectedError := errors.New("database error")

		mockRecordRepo.On("List", ctx, "acme", 0, 10).Return(nil, expectedError).Once()

		uc := NewRecordUseCase(databaseMocks.PassthroughTxManager{}, mockRecordRepo, mockIndexRepo, codec)
		records, err := uc.List(ctx, "acme", 0, 10)

		assert.Nil(t, records)
		assert.Equal(t, expectedError, err)
	})
}

// TestRecordWorkflow_EndToEnd exercises the seal, search, and open flow the
// way the HTTP API drives it.
func TestRecordWorkflow_EndToEnd(t *testing.T) {
	ctx := context.Background()
	codec := newTestCodec(t)

	mockRecordRepo := &recordsUsecaseMocks.MockRecordRepository{}
	mockIndexRepo := &recordsUsecaseMocks.MockBlindIndexRepository{}

	var (
		storedRecord  *recordsDomain.Record
		storedEntries []*recordsDomain.BlindIndexEntry
	)

	mockRecordRepo.On("Create", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			storedRecord = args.Get(1).(*recordsDomain.Record)
		}).Return(nil).Once()

	mockIndexRepo.On("CreateBatch", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			storedEntries = args.Get(1).([]*recordsDomain.BlindIndexEntry)
		}).Return(nil).Once()

	uc := NewRecordUseCase(databaseMocks.PassthroughTxManager{}, mockRecordRepo, mockIndexRepo, codec)

	// Store a record with a searchable passport number.
	record, err := uc.Store(ctx, "acme", map[string]string{
		"passport_number": "AB1234567",
		"full_name":       "John Smith",
	}, []string{"passport_number"})
	require.NoError(t, err)
	require.Len(t, storedEntries, 1)

	// Search by the same value finds the stored token.
	mockIndexRepo.On("FindRecordIDs", ctx, "acme", "passport_number", storedEntries[0].IndexToken).
		Return([]uuid.UUID{record.ID}, nil).Once()

	recordIDs, searchToken, err := uc.Search(ctx, "acme", "passport_number", "AB1234567")
	require.NoError(t, err)
	require.Equal(t, []uuid.UUID{record.ID}, recordIDs)
	require.Equal(t, storedEntries[0].IndexToken, searchToken)

	// Load the matched record and recover the plaintext fields.
	mockRecordRepo.On("Get", ctx, "acme", record.ID).Return(storedRecord, nil).Once()

	loaded, err := uc.Load(ctx, "acme", record.ID)
	require.NoError(t, err)
	assert.Equal(t, "John Smith", loaded.Fields["full_name"])
	assert.Equal(t, "AB1234567", loaded.Fields["passport_number"])
}
