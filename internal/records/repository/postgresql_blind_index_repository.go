package repository

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/allisson/fieldvault/internal/database"
	apperrors "github.com/allisson/fieldvault/internal/errors"
	recordsDomain "github.com/allisson/fieldvault/internal/records/domain"
)

// PostgreSQLBlindIndexRepository implements BlindIndexEntry persistence for
// PostgreSQL databases.
type PostgreSQLBlindIndexRepository struct {
	db *sql.DB
}

// CreateBatch inserts blind index entries into the PostgreSQL database.
func (p *PostgreSQLBlindIndexRepository) CreateBatch(
	ctx context.Context,
	entries []*recordsDomain.BlindIndexEntry,
) error {
	querier := database.GetTx(ctx, p.db)

	query := `INSERT INTO blind_index_entries (id, tenant_id, record_id, field_name, index_token, created_at)
			  VALUES ($1, $2, $3, $4, $5, $6)`

	for _, entry := range entries {
		_, err := querier.ExecContext(
			ctx,
			query,
			entry.ID,
			entry.TenantID,
			entry.RecordID,
			entry.FieldName,
			entry.IndexToken,
			entry.CreatedAt,
		)
		if err != nil {
			return apperrors.Wrap(err, "failed to create blind index entry")
		}
	}

	return nil
}

// FindRecordIDs returns the IDs of records whose index entry matches the
// given tenant, field, and token, ordered by record ID.
func (p *PostgreSQLBlindIndexRepository) FindRecordIDs(
	ctx context.Context,
	tenantID, fieldName, indexToken string,
) ([]uuid.UUID, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT record_id
			  FROM blind_index_entries
			  WHERE tenant_id = $1 AND field_name = $2 AND index_token = $3
			  ORDER BY record_id`

	rows, err := querier.QueryContext(ctx, query, tenantID, fieldName, indexToken)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to find record ids")
	}
	defer rows.Close()

	var recordIDs []uuid.UUID
	for rows.Next() {
		var recordID uuid.UUID
		if err := rows.Scan(&recordID); err != nil {
			return nil, apperrors.Wrap(err, "failed to scan record id")
		}
		recordIDs = append(recordIDs, recordID)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate record ids")
	}

	return recordIDs, nil
}

// NewPostgreSQLBlindIndexRepository creates a new PostgreSQL BlindIndexEntry
// repository instance.
func NewPostgreSQLBlindIndexRepository(db *sql.DB) *PostgreSQLBlindIndexRepository {
	return &PostgreSQLBlindIndexRepository{db: db}
}
