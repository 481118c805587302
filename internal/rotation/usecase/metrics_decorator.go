package usecase

import (
	"context"
	"time"

	"github.com/allisson/fieldvault/internal/metrics"
	rotationDomain "github.com/allisson/fieldvault/internal/rotation/domain"
)

// rotationUseCaseWithMetrics decorates RotationUseCase with metrics instrumentation.
type rotationUseCaseWithMetrics struct {
	next    RotationUseCase
	metrics metrics.BusinessMetrics
}

// NewRotationUseCaseWithMetrics wraps a RotationUseCase with metrics recording.
func NewRotationUseCaseWithMetrics(useCase RotationUseCase, m metrics.BusinessMetrics) RotationUseCase {
	return &rotationUseCaseWithMetrics{
		next:    useCase,
		metrics: m,
	}
}

// BeginRotation records metrics for rotation activation operations.
func (r *rotationUseCaseWithMetrics) BeginRotation(ctx context.Context, newVersion uint) error {
	start := time.Now()
	err := r.next.BeginRotation(ctx, newVersion)

	status := "success"
	if err != nil {
		status = "error"
	}

	r.metrics.RecordOperation(ctx, "rotation", "rotation_begin", status)
	r.metrics.RecordDuration(ctx, "rotation", "rotation_begin", time.Since(start), status)

	return err
}

// MigrateBatch records metrics for migration sweep batches.
func (r *rotationUseCaseWithMetrics) MigrateBatch(
	ctx context.Context,
	fromVersion uint,
	batchSize int,
) (*rotationDomain.MigrationReport, error) {
	start := time.Now()
	report, err := r.next.MigrateBatch(ctx, fromVersion, batchSize)

	status := "success"
	if err != nil {
		status = "error"
	}

	r.metrics.RecordOperation(ctx, "rotation", "rotation_migrate_batch", status)
	r.metrics.RecordDuration(ctx, "rotation", "rotation_migrate_batch", time.Since(start), status)

	return report, err
}

// Retire records metrics for version retirement operations.
func (r *rotationUseCaseWithMetrics) Retire(ctx context.Context, version uint) error {
	start := time.Now()
	err := r.next.Retire(ctx, version)

	status := "success"
	if err != nil {
		status = "error"
	}

	r.metrics.RecordOperation(ctx, "rotation", "rotation_retire", status)
	r.metrics.RecordDuration(ctx, "rotation", "rotation_retire", time.Since(start), status)

	return err
}

// Status records metrics for lifecycle status queries.
func (r *rotationUseCaseWithMetrics) Status(ctx context.Context) ([]rotationDomain.VersionStatus, error) {
	start := time.Now()
	statuses, err := r.next.Status(ctx)

	status := "success"
	if err != nil {
		status = "error"
	}

	r.metrics.RecordOperation(ctx, "rotation", "rotation_status", status)
	r.metrics.RecordDuration(ctx, "rotation", "rotation_status", time.Since(start), status)

	return statuses, err
}
