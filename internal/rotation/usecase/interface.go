// Package usecase implements the key rotation coordinator: version lifecycle
// transitions, batch migration sweeps that re-seal envelopes under the active
// key version, and safe retirement of fully drained versions.
package usecase

import (
	"context"

	"github.com/google/uuid"

	cryptoDomain "github.com/allisson/fieldvault/internal/crypto/domain"
	recordsDomain "github.com/allisson/fieldvault/internal/records/domain"
	rotationDomain "github.com/allisson/fieldvault/internal/rotation/domain"
)

// KeyVersionRepository defines the interface for key version persistence.
type KeyVersionRepository interface {
	Create(ctx context.Context, keyVersion *cryptoDomain.KeyVersion) error
	ListAll(ctx context.Context) ([]cryptoDomain.KeyVersion, error)
	UpdateStatus(ctx context.Context, version uint, status cryptoDomain.KeyVersionStatus) error
}

// RecordRepository defines the record persistence operations the rotation
// coordinator needs: enumerating and re-sealing envelopes by key version.
type RecordRepository interface {
	ListByKeyVersion(ctx context.Context, keyVersion uint, limit int) ([]*recordsDomain.Record, error)
	CountByKeyVersion(ctx context.Context, keyVersion uint) (int64, error)
	ReplaceEnvelope(
		ctx context.Context,
		recordID uuid.UUID,
		envelope recordsDomain.EncryptedEnvelope,
		needsMigration bool,
	) error
}

// RecordCodec defines the sealing operations the migration sweep needs.
type RecordCodec interface {
	OpenRecord(
		tenantID string,
		envelope recordsDomain.EncryptedEnvelope,
	) (fields map[string]string, needsMigration bool, err error)
	SealWithVersion(
		tenantID string,
		fields map[string]string,
		version uint,
	) (recordsDomain.EncryptedEnvelope, error)
}

// KeyCache defines the purge hook used when a version is retired.
type KeyCache interface {
	Purge()
}

// RotationUseCase defines the interface for key rotation business logic.
type RotationUseCase interface {
	// BeginRotation activates newVersion for all subsequent seal operations
	// and moves the previous active version to retained. Existing envelopes
	// stay readable; no stored data is touched.
	BeginRotation(ctx context.Context, newVersion uint) error

	// MigrateBatch re-seals up to batchSize records from fromVersion under
	// the currently active version. Records that fail to open or re-seal are
	// skipped and reported; the sweep continues with the rest of the batch.
	MigrateBatch(ctx context.Context, fromVersion uint, batchSize int) (*rotationDomain.MigrationReport, error)

	// Retire marks a retained version as retired once no stored envelope
	// references it. The reference count is taken from the store at call
	// time, never from memory.
	Retire(ctx context.Context, version uint) error

	// Status returns the lifecycle status and stored-envelope count for
	// every known version, ordered by version number.
	Status(ctx context.Context) ([]rotationDomain.VersionStatus, error)
}
