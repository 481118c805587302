package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/allisson/fieldvault/internal/database"
	apperrors "github.com/allisson/fieldvault/internal/errors"
	recordsDomain "github.com/allisson/fieldvault/internal/records/domain"
)

// MySQLRecordRepository implements Record persistence for MySQL databases.
type MySQLRecordRepository struct {
	db *sql.DB
}

// Create inserts a new encrypted record into the MySQL database.
func (m *MySQLRecordRepository) Create(ctx context.Context, record *recordsDomain.Record) error {
	querier := database.GetTx(ctx, m.db)

	query := `INSERT INTO encrypted_records (id, tenant_id, key_version, nonce, ciphertext, needs_migration, created_at, updated_at)
			  VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

	id, err := record.ID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal record id")
	}

	_, err = querier.ExecContext(
		ctx,
		query,
		id,
		record.TenantID,
		record.Envelope.KeyVersion,
		record.Envelope.Nonce,
		record.Envelope.Ciphertext,
		record.NeedsMigration,
		record.CreatedAt,
		record.UpdatedAt,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to create record")
	}

	return nil
}

// Get retrieves a record by tenant and ID.
func (m *MySQLRecordRepository) Get(
	ctx context.Context,
	tenantID string,
	recordID uuid.UUID,
) (*recordsDomain.Record, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT id, tenant_id, key_version, nonce, ciphertext, needs_migration, created_at, updated_at
			  FROM encrypted_records
			  WHERE tenant_id = ? AND id = ?
			  LIMIT 1`

	id, err := recordID.MarshalBinary()
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to marshal record id")
	}

	var record recordsDomain.Record
	var rawID []byte

	err = querier.QueryRowContext(ctx, query, tenantID, id).Scan(
		&rawID,
		&record.TenantID,
		&record.Envelope.KeyVersion,
		&record.Envelope.Nonce,
		&record.Envelope.Ciphertext,
		&record.NeedsMigration,
		&record.CreatedAt,
		&record.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, recordsDomain.ErrRecordNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get record")
	}

	if record.ID, err = uuid.FromBytes(rawID); err != nil {
		return nil, apperrors.Wrap(err, "failed to parse record id")
	}

	return &record, nil
}

// List retrieves records for a tenant ordered by ID with pagination.
// Record IDs are UUIDv7, so ID order is creation order.
func (m *MySQLRecordRepository) List(
	ctx context.Context,
	tenantID string,
	offset, limit int,
) ([]*recordsDomain.Record, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT id, tenant_id, key_version, nonce, ciphertext, needs_migration, created_at, updated_at
			  FROM encrypted_records
			  WHERE tenant_id = ?
			  ORDER BY id
			  LIMIT ? OFFSET ?`

	rows, err := querier.QueryContext(ctx, query, tenantID, limit, offset)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list records")
	}
	defer rows.Close()

	return scanMySQLRecordRows(rows)
}

// ListByKeyVersion retrieves up to limit records still sealed under the given
// key version, across all tenants, ordered by ID.
func (m *MySQLRecordRepository) ListByKeyVersion(
	ctx context.Context,
	keyVersion uint,
	limit int,
) ([]*recordsDomain.Record, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT id, tenant_id, key_version, nonce, ciphertext, needs_migration, created_at, updated_at
			  FROM encrypted_records
			  WHERE key_version = ?
			  ORDER BY id
			  LIMIT ?`

	rows, err := querier.QueryContext(ctx, query, keyVersion, limit)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list records by key version")
	}
	defer rows.Close()

	return scanMySQLRecordRows(rows)
}

// CountByKeyVersion counts records still sealed under the given key version.
func (m *MySQLRecordRepository) CountByKeyVersion(
	ctx context.Context,
	keyVersion uint,
) (int64, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT COUNT(*) FROM encrypted_records WHERE key_version = ?`

	var count int64
	if err := querier.QueryRowContext(ctx, query, keyVersion).Scan(&count); err != nil {
		return 0, apperrors.Wrap(err, "failed to count records by key version")
	}

	return count, nil
}

// ReplaceEnvelope swaps a record's envelope in place and refreshes its
// update timestamp.
func (m *MySQLRecordRepository) ReplaceEnvelope(
	ctx context.Context,
	recordID uuid.UUID,
	envelope recordsDomain.EncryptedEnvelope,
	needsMigration bool,
) error {
	querier := database.GetTx(ctx, m.db)

	query := `UPDATE encrypted_records
			  SET key_version = ?, nonce = ?, ciphertext = ?, needs_migration = ?, updated_at = ?
			  WHERE id = ?`

	id, err := recordID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal record id")
	}

	result, err := querier.ExecContext(
		ctx,
		query,
		envelope.KeyVersion,
		envelope.Nonce,
		envelope.Ciphertext,
		needsMigration,
		time.Now().UTC(),
		id,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to replace record envelope")
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return apperrors.Wrap(err, "failed to read affected rows")
	}
	if affected == 0 {
		return recordsDomain.ErrRecordNotFound
	}

	return nil
}

// scanMySQLRecordRows scans record rows with binary UUID columns into domain records.
func scanMySQLRecordRows(rows *sql.Rows) ([]*recordsDomain.Record, error) {
	var records []*recordsDomain.Record
	for rows.Next() {
		var record recordsDomain.Record
		var rawID []byte

		err := rows.Scan(
			&rawID,
			&record.TenantID,
			&record.Envelope.KeyVersion,
			&record.Envelope.Nonce,
			&record.Envelope.Ciphertext,
			&record.NeedsMigration,
			&record.CreatedAt,
			&record.UpdatedAt,
		)
		if err != nil {
			return nil, apperrors.Wrap(err, "failed to scan record row")
		}

		if record.ID, err = uuid.FromBytes(rawID); err != nil {
			return nil, apperrors.Wrap(err, "failed to parse record id")
		}

		records = append(records, &record)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate record rows")
	}
	return records, nil
}

// NewMySQLRecordRepository creates a new MySQL Record repository instance.
func NewMySQLRecordRepository(db *sql.DB) *MySQLRecordRepository {
	return &MySQLRecordRepository{db: db}
}
