// Package domain defines the core domain models for key rotation: batch
// migration reports and the operator-facing view of the version lifecycle.
package domain

import (
	"github.com/google/uuid"

	"github.com/allisson/fieldvault/internal/errors"
)

// Rotation-specific error definitions.
var (
	// ErrMigrationInProgress indicates a migration sweep is already running
	// in this process for the requested source version.
	ErrMigrationInProgress = errors.Wrap(errors.ErrConflict, "migration sweep already in progress")
	// ErrMigrateActiveVersion indicates an attempt to migrate records away
	// from the version that is still active for new writes.
	ErrMigrateActiveVersion = errors.Wrap(errors.ErrInvalidInput, "cannot migrate records sealed under the active version")
)

// MigrationFailure describes a single record the sweep could not re-seal.
type MigrationFailure struct {
	// RecordID identifies the record that failed to migrate.
	RecordID uuid.UUID
	// TenantID identifies the tenant that owns the record.
	TenantID string
	// Reason is the error message for the failed migration.
	Reason string
}

// MigrationReport summarizes one batch of a migration sweep.
type MigrationReport struct {
	// FromVersion is the key version records were migrated away from.
	FromVersion uint
	// ToVersion is the key version records were re-sealed under.
	ToVersion uint
	// Migrated is the number of records successfully re-sealed in this batch.
	Migrated int
	// Failed is the number of records that could not be re-sealed.
	Failed int
	// Failures lists the records that failed, for operator follow-up.
	Failures []MigrationFailure
	// Remaining is the number of records still sealed under FromVersion
	// after this batch, re-counted from the store.
	Remaining int64
}

// Done reports whether the sweep has re-sealed every record under FromVersion.
func (r *MigrationReport) Done() bool {
	return r.Remaining == 0
}

// VersionStatus is the operator-facing view of one key version.
type VersionStatus struct {
	// Version is the key version number.
	Version uint
	// Status is the lifecycle status ("active", "retained", "retired").
	Status string
	// RecordCount is the number of records still sealed under this version.
	RecordCount int64
}
