package usecase

import (
	"context"
	"fmt"
	"sync"
	"time"

	cryptoDomain "github.com/allisson/fieldvault/internal/crypto/domain"
	"github.com/allisson/fieldvault/internal/database"
	recordsDomain "github.com/allisson/fieldvault/internal/records/domain"
	rotationDomain "github.com/allisson/fieldvault/internal/rotation/domain"
)

// DefaultMigrationBatchSize is used when a sweep is started without an
// explicit batch size.
const DefaultMigrationBatchSize = 100

// rotationUseCase implements the RotationUseCase interface.
//
// Lifecycle transitions are serialized by rotateMu; migration sweeps by
// sweepMu. Both locks are process-local: the coordinator assumes a single
// operator process drives rotation at a time.
type rotationUseCase struct {
	txManager      database.TxManager
	keyVersionRepo KeyVersionRepository
	recordRepo     RecordRepository
	codec          RecordCodec
	versionState   *cryptoDomain.KeyVersionState
	keyCache       KeyCache

	rotateMu sync.Mutex
	sweepMu  sync.Mutex
}

// BeginRotation activates newVersion for all subsequent seal operations.
//
// The new version row and the retained transition of the previous active
// version are persisted in one transaction before the in-memory state
// switches, so a crash between the two leaves the database authoritative.
func (r *rotationUseCase) BeginRotation(ctx context.Context, newVersion uint) error {
	r.rotateMu.Lock()
	defer r.rotateMu.Unlock()

	current := r.versionState.ActiveVersion()
	if newVersion <= current {
		return fmt.Errorf(
			"%w: new version %d must be greater than active version %d",
			cryptoDomain.ErrInvalidVersionTransition,
			newVersion,
			current,
		)
	}
	if _, exists := r.versionState.Status(newVersion); exists {
		return fmt.Errorf("%w: version %d already exists", cryptoDomain.ErrInvalidVersionTransition, newVersion)
	}

	now := time.Now().UTC()
	err := r.txManager.WithTx(ctx, func(txCtx context.Context) error {
		keyVersion := &cryptoDomain.KeyVersion{
			Version:   newVersion,
			Status:    cryptoDomain.VersionActive,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := r.keyVersionRepo.Create(txCtx, keyVersion); err != nil {
			return err
		}
		return r.keyVersionRepo.UpdateStatus(txCtx, current, cryptoDomain.VersionRetained)
	})
	if err != nil {
		return err
	}

	return r.versionState.BeginRotation(newVersion)
}

// MigrateBatch re-seals up to batchSize records from fromVersion under the
// currently active version.
func (r *rotationUseCase) MigrateBatch(
	ctx context.Context,
	fromVersion uint,
	batchSize int,
) (*rotationDomain.MigrationReport, error) {
	if !r.sweepMu.TryLock() {
		return nil, rotationDomain.ErrMigrationInProgress
	}
	defer r.sweepMu.Unlock()

	target := r.versionState.ActiveVersion()
	if fromVersion == target {
		return nil, rotationDomain.ErrMigrateActiveVersion
	}
	if batchSize <= 0 {
		batchSize = DefaultMigrationBatchSize
	}

	records, err := r.recordRepo.ListByKeyVersion(ctx, fromVersion, batchSize)
	if err != nil {
		return nil, err
	}

	report := &rotationDomain.MigrationReport{
		FromVersion: fromVersion,
		ToVersion:   target,
	}

	for _, record := range records {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		if err := r.migrateRecord(ctx, record, target); err != nil {
			report.Failed++
			report.Failures = append(report.Failures, rotationDomain.MigrationFailure{
				RecordID: record.ID,
				TenantID: record.TenantID,
				Reason:   err.Error(),
			})
			continue
		}
		report.Migrated++
	}

	remaining, err := r.recordRepo.CountByKeyVersion(ctx, fromVersion)
	if err != nil {
		return nil, err
	}
	report.Remaining = remaining

	return report, nil
}

// migrateRecord opens one envelope and re-seals it under the target version.
// Legacy plaintext envelopes pass through the same path: the open step decodes
// them without decryption and the re-seal encrypts them for the first time.
func (r *rotationUseCase) migrateRecord(
	ctx context.Context,
	record *recordsDomain.Record,
	target uint,
) error {
	fields, _, err := r.codec.OpenRecord(record.TenantID, record.Envelope)
	if err != nil {
		return err
	}

	envelope, err := r.codec.SealWithVersion(record.TenantID, fields, target)
	if err != nil {
		return err
	}

	return r.txManager.WithTx(ctx, func(txCtx context.Context) error {
		return r.recordRepo.ReplaceEnvelope(txCtx, record.ID, envelope, false)
	})
}

// Retire marks a retained version as retired once the store holds no
// envelope sealed under it.
func (r *rotationUseCase) Retire(ctx context.Context, version uint) error {
	r.rotateMu.Lock()
	defer r.rotateMu.Unlock()

	status, ok := r.versionState.Status(version)
	if !ok {
		return fmt.Errorf("%w: unknown version %d", cryptoDomain.ErrInvalidVersionTransition, version)
	}
	if status != cryptoDomain.VersionRetained {
		return fmt.Errorf(
			"%w: version %d is %s, only retained versions can be retired",
			cryptoDomain.ErrInvalidVersionTransition,
			version,
			status,
		)
	}

	count, err := r.recordRepo.CountByKeyVersion(ctx, version)
	if err != nil {
		return err
	}
	if count > 0 {
		return fmt.Errorf(
			"%w: %d records still sealed under version %d",
			cryptoDomain.ErrVersionStillReferenced,
			count,
			version,
		)
	}

	if err := r.keyVersionRepo.UpdateStatus(ctx, version, cryptoDomain.VersionRetired); err != nil {
		return err
	}
	if err := r.versionState.Retire(version); err != nil {
		return err
	}

	// Drop any cached keys so the retired version stops being derivable
	// immediately, not after cache expiry.
	r.keyCache.Purge()

	return nil
}

// Status returns the lifecycle status and stored-envelope count for every
// known version. A synthetic "legacy" row is included while unencrypted
// pre-migration records remain in the store.
func (r *rotationUseCase) Status(ctx context.Context) ([]rotationDomain.VersionStatus, error) {
	versions, err := r.keyVersionRepo.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	var statuses []rotationDomain.VersionStatus

	legacyCount, err := r.recordRepo.CountByKeyVersion(ctx, cryptoDomain.LegacyKeyVersion)
	if err != nil {
		return nil, err
	}
	if legacyCount > 0 {
		statuses = append(statuses, rotationDomain.VersionStatus{
			Version:     cryptoDomain.LegacyKeyVersion,
			Status:      "legacy",
			RecordCount: legacyCount,
		})
	}

	for _, version := range versions {
		count, err := r.recordRepo.CountByKeyVersion(ctx, version.Version)
		if err != nil {
			return nil, err
		}
		statuses = append(statuses, rotationDomain.VersionStatus{
			Version:     version.Version,
			Status:      string(version.Status),
			RecordCount: count,
		})
	}

	return statuses, nil
}

// NewRotationUseCase creates a new rotation use case instance with the
// provided dependencies.
func NewRotationUseCase(
	txManager database.TxManager,
	keyVersionRepo KeyVersionRepository,
	recordRepo RecordRepository,
	codec RecordCodec,
	versionState *cryptoDomain.KeyVersionState,
	keyCache KeyCache,
) RotationUseCase {
	return &rotationUseCase{
		txManager:      txManager,
		keyVersionRepo: keyVersionRepo,
		recordRepo:     recordRepo,
		codec:          codec,
		versionState:   versionState,
		keyCache:       keyCache,
	}
}
