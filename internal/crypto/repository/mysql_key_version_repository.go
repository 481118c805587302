package repository

import (
	"context"
	"database/sql"
	"time"

	cryptoDomain "github.com/allisson/fieldvault/internal/crypto/domain"
	"github.com/allisson/fieldvault/internal/database"
	apperrors "github.com/allisson/fieldvault/internal/errors"
)

// MySQLKeyVersionRepository implements KeyVersion persistence for MySQL databases.
type MySQLKeyVersionRepository struct {
	db *sql.DB
}

// Create inserts a new key version row.
func (m *MySQLKeyVersionRepository) Create(
	ctx context.Context,
	keyVersion *cryptoDomain.KeyVersion,
) error {
	querier := database.GetTx(ctx, m.db)

	query := `INSERT INTO key_versions (version, status, created_at, updated_at)
			  VALUES (?, ?, ?, ?)`

	_, err := querier.ExecContext(
		ctx,
		query,
		keyVersion.Version,
		string(keyVersion.Status),
		keyVersion.CreatedAt,
		keyVersion.UpdatedAt,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to create key version")
	}
	return nil
}

// ListAll retrieves every key version row ordered by version number.
func (m *MySQLKeyVersionRepository) ListAll(
	ctx context.Context,
) ([]cryptoDomain.KeyVersion, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT version, status, created_at, updated_at
			  FROM key_versions
			  ORDER BY version`

	rows, err := querier.QueryContext(ctx, query)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list key versions")
	}
	defer rows.Close()

	var versions []cryptoDomain.KeyVersion
	for rows.Next() {
		var version cryptoDomain.KeyVersion
		var status string
		if err := rows.Scan(&version.Version, &status, &version.CreatedAt, &version.UpdatedAt); err != nil {
			return nil, apperrors.Wrap(err, "failed to scan key version row")
		}
		version.Status = cryptoDomain.KeyVersionStatus(status)
		versions = append(versions, version)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate key version rows")
	}

	return versions, nil
}

// UpdateStatus sets the lifecycle status for a key version.
func (m *MySQLKeyVersionRepository) UpdateStatus(
	ctx context.Context,
	version uint,
	status cryptoDomain.KeyVersionStatus,
) error {
	querier := database.GetTx(ctx, m.db)

	query := `UPDATE key_versions
			  SET status = ?, updated_at = ?
			  WHERE version = ?`

	result, err := querier.ExecContext(ctx, query, string(status), time.Now().UTC(), version)
	if err != nil {
		return apperrors.Wrap(err, "failed to update key version status")
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return apperrors.Wrap(err, "failed to read affected rows")
	}
	if affected == 0 {
		return apperrors.Wrap(apperrors.ErrNotFound, "key version not found")
	}

	return nil
}

// NewMySQLKeyVersionRepository creates a new MySQL KeyVersion repository instance.
func NewMySQLKeyVersionRepository(db *sql.DB) *MySQLKeyVersionRepository {
	return &MySQLKeyVersionRepository{db: db}
}
