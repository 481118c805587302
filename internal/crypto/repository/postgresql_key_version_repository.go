// Package repository implements data persistence for the key version lifecycle.
//
// This package stores key version rows that back the in-memory
// KeyVersionState: which version is active for new seal operations, which
// older versions remain readable, and which have been retired. Repositories
// follow the Repository pattern and support both direct database operations
// and transactional operations.
//
// # Database Support
//
// Each repository type has two implementations:
//   - PostgreSQL: uses native types directly
//   - MySQL: identical schema with driver-specific placeholders
//
// # Transaction Support
//
// All repositories support transaction-aware operations via database.GetTx(),
// enabling atomic lifecycle transitions during key rotation. When called
// within a transaction context, repositories automatically use the
// transaction connection.
package repository

import (
	"context"
	"database/sql"
	"time"

	cryptoDomain "github.com/allisson/fieldvault/internal/crypto/domain"
	"github.com/allisson/fieldvault/internal/database"
	apperrors "github.com/allisson/fieldvault/internal/errors"
)

// PostgreSQLKeyVersionRepository implements KeyVersion persistence for
// PostgreSQL databases.
type PostgreSQLKeyVersionRepository struct {
	db *sql.DB
}

// Create inserts a new key version row.
func (p *PostgreSQLKeyVersionRepository) Create(
	ctx context.Context,
	keyVersion *cryptoDomain.KeyVersion,
) error {
	querier := database.GetTx(ctx, p.db)

	query := `INSERT INTO key_versions (version, status, created_at, updated_at)
			  VALUES ($1, $2, $3, $4)`

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
func (p *PostgreSQLKeyVersionRepository) ListAll(
	ctx context.Context,
) ([]cryptoDomain.KeyVersion, error) {
	querier := database.GetTx(ctx, p.db)

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
func (p *PostgreSQLKeyVersionRepository) UpdateStatus(
	ctx context.Context,
	version uint,
	status cryptoDomain.KeyVersionStatus,
) error {
	querier := database.GetTx(ctx, p.db)

	query := `UPDATE key_versions
			  SET status = $1, updated_at = $2
			  WHERE version = $3`

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

// NewPostgreSQLKeyVersionRepository creates a new PostgreSQL KeyVersion
// repository instance.
func NewPostgreSQLKeyVersionRepository(db *sql.DB) *PostgreSQLKeyVersionRepository {
	return &PostgreSQLKeyVersionRepository{db: db}
}
