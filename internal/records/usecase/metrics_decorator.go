package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/allisson/fieldvault/internal/metrics"
	recordsDomain "github.com/allisson/fieldvault/internal/records/domain"
)

// recordUseCaseWithMetrics decorates RecordUseCase with metrics instrumentation.
type recordUseCaseWithMetrics struct {
	next    RecordUseCase
	metrics metrics.BusinessMetrics
}

// NewRecordUseCaseWithMetrics wraps a RecordUseCase with metrics recording.
func NewRecordUseCaseWithMetrics(useCase RecordUseCase, m metrics.BusinessMetrics) RecordUseCase {
	return &recordUseCaseWithMetrics{
		next:    useCase,
		metrics: m,
	}
}

// Store records metrics for record seal-and-store operations.
func (r *recordUseCaseWithMetrics) Store(
	ctx context.Context,
	tenantID string,
	fields map[string]string,
	searchable []string,
) (*recordsDomain.Record, error) {
	start := time.Now()
	record, err := r.next.Store(ctx, tenantID, fields, searchable)

	status := "success"
	if err != nil {
		status = "error"
	}

	r.metrics.RecordOperation(ctx, "records", "record_store", status)
	r.metrics.RecordDuration(ctx, "records", "record_store", time.Since(start), status)

	return record, err
}

// Load records metrics for record retrieval operations.
func (r *recordUseCaseWithMetrics) Load(
	ctx context.Context,
	tenantID string,
	recordID uuid.UUID,
) (*recordsDomain.Record, error) {
	start := time.Now()
	record, err := r.next.Load(ctx, tenantID, recordID)

	status := "success"
	if err != nil {
		status = "error"
	}

	r.metrics.RecordOperation(ctx, "records", "record_load", status)
	r.metrics.RecordDuration(ctx, "records", "record_load", time.Since(start), status)

	return record, err
}

// Search records metrics for blind-index search operations.
func (r *recordUseCaseWithMetrics) Search(
	ctx context.Context,
	tenantID, fieldName, value string,
) ([]uuid.UUID, string, error) {
	start := time.Now()
	recordIDs, token, err := r.next.Search(ctx, tenantID, fieldName, value)

	status := "success"
	if err != nil {
		status = "error"
	}

	r.metrics.RecordOperation(ctx, "records", "record_search", status)
	r.metrics.RecordDuration(ctx, "records", "record_search", time.Since(start), status)

	return recordIDs, token, err
}

// List records metrics for record listing operations.
func (r *recordUseCaseWithMetrics) List(
	ctx context.Context,
	tenantID string,
	offset, limit int,
) ([]*recordsDomain.Record, error) {
	start := time.Now()
	records, err := r.next.List(ctx, tenantID, offset, limit)

	status := "success"
	if err != nil {
		status = "error"
	}

	r.metrics.RecordOperation(ctx, "records", "record_list", status)
	r.metrics.RecordDuration(ctx, "records", "record_list", time.Since(start), status)

	return records, err
}
