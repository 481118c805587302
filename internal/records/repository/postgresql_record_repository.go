// Package repository implements data persistence for encrypted records and
// blind index entries. Repositories support both PostgreSQL and MySQL and
// never see plaintext: envelopes arrive sealed and index tokens arrive as
// opaque HMAC digests.
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

// PostgreSQLRecordRepository implements Record persistence for PostgreSQL databases.
type PostgreSQLRecordRepository struct {
	db *sql.DB
}

// Create inserts a new encrypted record into the PostgreSQL database.
func (p *PostgreSQLRecordRepository) Create(ctx context.Context, record *recordsDomain.Record) error {
	querier := database.GetTx(ctx, p.db)

	query := `INSERT INTO encrypted_records (id, tenant_id, key_version, nonce, ciphertext, needs_migration, created_at, updated_at)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := querier.ExecContext(
		ctx,
		query,
		record.ID,
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
func (p *PostgreSQLRecordRepository) Get(
	ctx context.Context,
	tenantID string,
	recordID uuid.UUID,
) (*recordsDomain.Record, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT id, tenant_id, key_version, nonce, ciphertext, needs_migration, created_at, updated_at
			  FROM encrypted_records
			  WHERE tenant_id = $1 AND id = $2
			  LIMIT 1`

	var record recordsDomain.Record
	err := querier.QueryRowContext(ctx, query, tenantID, recordID).Scan(
		&record.ID,
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

	return &record, nil
}

// List retrieves records for a tenant ordered by ID with pagination.
// Record IDs are UUIDv7, so ID order is creation order.
func (p *PostgreSQLRecordRepository) List(
	ctx context.Context,
	tenantID string,
	offset, limit int,
) ([]*recordsDomain.Record, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT id, tenant_id, key_version, nonce, ciphertext, needs_migration, created_at, updated_at
			  FROM encrypted_records
			  WHERE tenant_id = $1
			  ORDER BY id
			  OFFSET $2 LIMIT $3`

	rows, err := querier.QueryContext(ctx, query, tenantID, offset, limit)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list records")
	}
	defer rows.Close()

	return scanRecordRows(rows)
}

// ListByKeyVersion retrieves up to limit records still sealed under the given
// key version, across all tenants, ordered by ID.
func (p *PostgreSQLRecordRepository) ListByKeyVersion(
	ctx context.Context,
	keyVersion uint,
	limit int,
) ([]*recordsDomain.Record, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT id, tenant_id, key_version, nonce, ciphertext, needs_migration, created_at, updated_at
			  FROM encrypted_records
			  WHERE key_version = $1
			  ORDER BY id
			  LIMIT $2`

	rows, err := querier.QueryContext(ctx, query, keyVersion, limit)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list records by key version")
	}
	defer rows.Close()

	return scanRecordRows(rows)
}

// CountByKeyVersion counts records still sealed under the given key version.
func (p *PostgreSQLRecordRepository) CountByKeyVersion(
	ctx context.Context,
	keyVersion uint,
) (int64, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT COUNT(*) FROM encrypted_records WHERE key_version = $1`

	var count int64
	if err := querier.QueryRowContext(ctx, query, keyVersion).Scan(&count); err != nil {
		return 0, apperrors.Wrap(err, "failed to count records by key version")
	}

	return count, nil
}

// ReplaceEnvelope swaps a record's envelope in place and refreshes its
// update timestamp.
func (p *PostgreSQLRecordRepository) ReplaceEnvelope(
	ctx context.Context,
	recordID uuid.UUID,
	envelope recordsDomain.EncryptedEnvelope,
	needsMigration bool,
) error {
	querier := database.GetTx(ctx, p.db)

	query := `UPDATE encrypted_records
			  SET key_version = $1, nonce = $2, ciphertext = $3, needs_migration = $4, updated_at = $5
			  WHERE id = $6`

	result, err := querier.ExecContext(
		ctx,
		query,
		envelope.KeyVersion,
		envelope.Nonce,
		envelope.Ciphertext,
		needsMigration,
		time.Now().UTC(),
		recordID,
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

// scanRecordRows scans record rows into domain records.
func scanRecordRows(rows *sql.Rows) ([]*recordsDomain.Record, error) {
	var records []*recordsDomain.Record
	for rows.Next() {
		var record recordsDomain.Record
		err := rows.Scan(
			&record.ID,
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
		records = append(records, &record)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate record rows")
	}
	return records, nil
}

// NewPostgreSQLRecordRepository creates a new PostgreSQL Record repository instance.
func NewPostgreSQLRecordRepository(db *sql.DB) *PostgreSQLRecordRepository {
	return &PostgreSQLRecordRepository{db: db}
}
