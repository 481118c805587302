package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/allisson/fieldvault/internal/database"
	recordsDomain "github.com/allisson/fieldvault/internal/records/domain"
)

// recordUseCase implements the RecordUseCase interface for managing
// encrypted records.
type recordUseCase struct {
	txManager  database.TxManager
	recordRepo RecordRepository
	indexRepo  BlindIndexRepository
	codec      RecordCodec
}

// Store seals the field map, persists the record, and writes blind index
// entries for the searchable fields, all within a single transaction.
func (r *recordUseCase) Store(
	ctx context.Context,
	tenantID string,
	fields map[string]string,
	searchable []string,
) (*recordsDomain.Record, error) {
	envelope, entries, err := r.codec.SealRecord(tenantID, fields, searchable)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	record := &recordsDomain.Record{
		ID:        uuid.Must(uuid.NewV7()),
		TenantID:  tenantID,
		Envelope:  envelope,
		CreatedAt: now,
		UpdatedAt: now,
	}

	for _, entry := range entries {
		entry.ID = uuid.Must(uuid.NewV7())
		entry.RecordID = record.ID
		entry.CreatedAt = now
	}

	err = r.txManager.WithTx(ctx, func(txCtx context.Context) error {
		if err := r.recordRepo.Create(txCtx, record); err != nil {
			return err
		}
		if len(entries) == 0 {
			return nil
		}
		return r.indexRepo.CreateBatch(txCtx, entries)
	})
	if err != nil {
		return nil, err
	}

	return record, nil
}

// Load retrieves a record and opens its envelope, populating the Fields map.
func (r *recordUseCase) Load(
	ctx context.Context,
	tenantID string,
	recordID uuid.UUID,
) (*recordsDomain.Record, error) {
	record, err := r.recordRepo.Get(ctx, tenantID, recordID)
	if err != nil {
		return nil, err
	}

	fields, needsMigration, err := r.codec.OpenRecord(tenantID, record.Envelope)
	if err != nil {
		return nil, err
	}

	record.Fields = fields
	record.NeedsMigration = needsMigration

	return record, nil
}

// Search computes the blind-index token for the given value and returns the
// IDs of matching records along with the token. No envelope is opened during
// search; downstream consumers may reuse the token for their own index lookups.
func (r *recordUseCase) Search(
	ctx context.Context,
	tenantID, fieldName, value string,
) ([]uuid.UUID, string, error) {
	token, err := r.codec.SearchToken(tenantID, fieldName, value)
	if err != nil {
		return nil, "", err
	}

	recordIDs, err := r.indexRepo.FindRecordIDs(ctx, tenantID, fieldName, token)
	if err != nil {
		return nil, "", err
	}

	return recordIDs, token, nil
}

// List returns record metadata for a tenant, ordered by creation time with
// pagination. Envelopes are not opened.
func (r *recordUseCase) List(
	ctx context.Context,
	tenantID string,
	offset, limit int,
) ([]*recordsDomain.Record, error) {
	return r.recordRepo.List(ctx, tenantID, offset, limit)
}

// NewRecordUseCase creates a new record use case instance with the provided
// dependencies.
func NewRecordUseCase(
	txManager database.TxManager,
	recordRepo RecordRepository,
	indexRepo BlindIndexRepository,
	codec RecordCodec,
) RecordUseCase {
	return &recordUseCase{
		txManager:  txManager,
		recordRepo: recordRepo,
		indexRepo:  indexRepo,
		codec:      codec,
	}
}
