package repository

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/allisson/fieldvault/internal/database"
	apperrors "github.com/allisson/fieldvault/internal/errors"
	recordsDomain "github.com/allisson/fieldvault/internal/records/domain"
)

// MySQLBlindIndexRepository implements BlindIndexEntry persistence for MySQL
// databases.
type MySQLBlindIndexRepository struct {
	db *sql.DB
}

// CreateBatch inserts blind index entries into the MySQL database.
func (m *MySQLBlindIndexRepository) CreateBatch(
	ctx context.Context,
	entries []*recordsDomain.BlindIndexEntry,
) error {
	querier := database.GetTx(ctx, m.db)

	query := `INSERT INTO blind_index_entries (id, tenant_id, record_id, field_name, index_token, created_at)
			  VALUES (?, ?, ?, ?, ?, ?)`

	for _, entry := range entries {
		id, err := entry.ID.MarshalBinary()
		if err != nil {
			return apperrors.Wrap(err, "failed to marshal entry id")
		}

		recordID, err := entry.RecordID.MarshalBinary()
		if err != nil {
			return apperrors.Wrap(err, "failed to marshal record id")
		}

		_, err = querier.ExecContext(
			ctx,
			query,
			id,
			entry.TenantID,
			recordID,
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
func (m *MySQLBlindIndexRepository) FindRecordIDs(
	ctx context.Context,
	tenantID, fieldName, indexToken string,
) ([]uuid.UUID, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT record_id
			  FROM blind_index_entries
			  WHERE tenant_id = ? AND field_name = ? AND index_token = ?
			  ORDER BY record_id`

	rows, err := querier.QueryContext(ctx, query, tenantID, fieldName, indexToken)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to find record ids")
	}
	defer rows.Close()

	var recordIDs []uuid.UUID
	for rows.Next() {
		var rawID []byte
		if err := rows.Scan(&rawID); err != nil {
			return nil, apperrors.Wrap(err, "failed to scan record id")
		}

		recordID, err := uuid.FromBytes(rawID)
		if err != nil {
			return nil, apperrors.Wrap(err, "failed to parse record id")
		}
		recordIDs = append(recordIDs, recordID)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate record ids")
	}

	return recordIDs, nil
}

// NewMySQLBlindIndexRepository creates a new MySQL BlindIndexEntry repository
// instance.
func NewMySQLBlindIndexRepository(db *sql.DB) *MySQLBlindIndexRepository {
	return &MySQLBlindIndexRepository{db: db}
}
