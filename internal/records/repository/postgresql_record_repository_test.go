package repository

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/allisson/fieldvault/internal/errors"
	recordsDomain "github.com/allisson/fieldvault/internal/records/domain"
	"github.com/allisson/fieldvault/internal/testutil"
)

var recordColumns = []string{
	"id", "tenant_id", "key_version", "nonce", "ciphertext", "needs_migration", "created_at", "updated_at",
}

func testRecord() *recordsDomain.Record {
	now := time.Now().UTC().Truncate(time.Microsecond)
	return &recordsDomain.Record{
		ID:       uuid.Must(uuid.NewV7()),
		TenantID: "acme",
		Envelope: recordsDomain.EncryptedEnvelope{
			KeyVersion: 2,
			Nonce:      []byte("nonce-123456"),
			Ciphertext: []byte("sealed-payload-with-tag"),
		},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func TestPostgreSQLRecordRepository_Create(t *testing.T) {
	db, mock := testutil.NewSQLMock(t)
	repo := NewPostgreSQLRecordRepository(db)
	ctx := context.Background()

	record := testRecord()

	t.Run("Success", func(t *testing.T) {
		mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO encrypted_records`)).
			WithArgs(
				record.ID,
				record.TenantID,
				record.Envelope.KeyVersion,
				record.Envelope.Nonce,
				record.Envelope.Ciphertext,
				record.NeedsMigration,
				record.CreatedAt,
				record.UpdatedAt,
			).
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := repo.Create(ctx, record)
		assert.NoError(t, err)
	})

	t.Run("Error_DatabaseFailure", func(t *testing.T) {
		mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO encrypted_records`)).
			WillReturnError(errors.New("connection refused"))

		err := repo.Create(ctx, record)
		assert.Error(t, err)
	})
}

func TestPostgreSQLRecordRepository_Get(t *testing.T) {
	db, mock := testutil.NewSQLMock(t)
	repo := NewPostgreSQLRecordRepository(db)
	ctx := context.Background()

	record := testRecord()

	t.Run("Success", func(t *testing.T) {
		rows := sqlmock.NewRows(recordColumns).AddRow(
			record.ID.String(),
			record.TenantID,
			record.Envelope.KeyVersion,
			record.Envelope.Nonce,
			record.Envelope.Ciphertext,
			record.NeedsMigration,
			record.CreatedAt,
			record.UpdatedAt,
		)

		mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, tenant_id, key_version, nonce, ciphertext, needs_migration, created_at, updated_at`)).
			WithArgs(record.TenantID, record.ID).
			WillReturnRows(rows)

		got, err := repo.Get(ctx, record.TenantID, record.ID)
		require.NoError(t, err)
		assert.Equal(t, record.ID, got.ID)
		assert.Equal(t, record.TenantID, got.TenantID)
		assert.Equal(t, record.Envelope, got.Envelope)
		assert.False(t, got.NeedsMigration)
	})

	t.Run("Error_NotFound", func(t *testing.T) {
		mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, tenant_id, key_version`)).
			WithArgs("acme", record.ID).
			WillReturnError(sql.ErrNoRows)

		got, err := repo.Get(ctx, "acme", record.ID)
		assert.Nil(t, got)
		assert.True(t, apperrors.Is(err, apperrors.ErrNotFound))
	})
}

func TestPostgreSQLRecordRepository_ListByKeyVersion(t *testing.T) {
	db, mock := testutil.NewSQLMock(t)
	repo := NewPostgreSQLRecordRepository(db)
	ctx := context.Background()

	record1 := testRecord()
	record2 := testRecord()
	record2.TenantID = "globex"

	rows := sqlmock.NewRows(recordColumns)
	for _, record := range []*recordsDomain.Record{record1, record2} {
		rows.AddRow(
			record.ID.String(),
			record.TenantID,
			record.Envelope.KeyVersion,
			record.Envelope.Nonce,
			record.Envelope.Ciphertext,
			record.NeedsMigration,
			record.CreatedAt,
			record.UpdatedAt,
		)
	}

	mock.ExpectQuery(regexp.QuoteMeta(`WHERE key_version = $1`)).
		WithArgs(uint(2), 100).
		WillReturnRows(rows)

	records, err := repo.ListByKeyVersion(ctx, 2, 100)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "acme", records[0].TenantID)
	assert.Equal(t, "globex", records[1].TenantID)
}

func TestPostgreSQLRecordRepository_CountByKeyVersion(t *testing.T) {
	db, mock := testutil.NewSQLMock(t)
	repo := NewPostgreSQLRecordRepository(db)
	ctx := context.Background()

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT COUNT(*) FROM encrypted_records WHERE key_version = $1`)).
		WithArgs(uint(1)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(42))

	count, err := repo.CountByKeyVersion(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(42), count)
}

func TestPostgreSQLRecordRepository_ReplaceEnvelope(t *testing.T) {
	db, mock := testutil.NewSQLMock(t)
	repo := NewPostgreSQLRecordRepository(db)
	ctx := context.Background()

	recordID := uuid.Must(uuid.NewV7())
	envelope := recordsDomain.EncryptedEnvelope{
		KeyVersion: 3,
		Nonce:      []byte("fresh-nonce!"),
		Ciphertext: []byte("resealed-payload"),
	}

	t.Run("Success", func(t *testing.T) {
		mock.ExpectExec(regexp.QuoteMeta(`UPDATE encrypted_records`)).
			WithArgs(
				envelope.KeyVersion,
				envelope.Nonce,
				envelope.Ciphertext,
				false,
				sqlmock.AnyArg(),
				recordID,
			).
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := repo.ReplaceEnvelope(ctx, recordID, envelope, false)
		assert.NoError(t, err)
	})

	t.Run("Error_RecordVanished", func(t *testing.T) {
		mock.ExpectExec(regexp.QuoteMeta(`UPDATE encrypted_records`)).
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := repo.ReplaceEnvelope(ctx, recordID, envelope, false)
		assert.True(t, apperrors.Is(err, apperrors.ErrNotFound))
	})
}
