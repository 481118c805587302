// Package usecase defines the interfaces and implementations for encrypted
// record management use cases. Use cases orchestrate the record codec,
// repositories, and blind indexing to store and retrieve tenant field data
// without ever persisting plaintext.
package usecase

import (
	"context"

	"github.com/google/uuid"

	recordsDomain "github.com/allisson/fieldvault/internal/records/domain"
)

// RecordRepository defines the interface for encrypted record persistence.
type RecordRepository interface {
	Create(ctx context.Context, record *recordsDomain.Record) error
	Get(ctx context.Context, tenantID string, recordID uuid.UUID) (*recordsDomain.Record, error)
	List(ctx context.Context, tenantID string, offset, limit int) ([]*recordsDomain.Record, error)
	// ListByKeyVersion returns up to limit records still sealed under the
	// given key version, across all tenants, ordered by creation time.
	ListByKeyVersion(ctx context.Context, keyVersion uint, limit int) ([]*recordsDomain.Record, error)
	// CountByKeyVersion counts records still sealed under the given key version.
	CountByKeyVersion(ctx context.Context, keyVersion uint) (int64, error)
	// ReplaceEnvelope swaps a record's envelope in place, used when a
	// migration pass re-seals the payload under a newer key version.
	ReplaceEnvelope(
		ctx context.Context,
		recordID uuid.UUID,
		envelope recordsDomain.EncryptedEnvelope,
		needsMigration bool,
	) error
}

// BlindIndexRepository defines the interface for blind index entry persistence.
type BlindIndexRepository interface {
	CreateBatch(ctx context.Context, entries []*recordsDomain.BlindIndexEntry) error
	FindRecordIDs(ctx context.Context, tenantID, fieldName, indexToken string) ([]uuid.UUID, error)
}

// RecordCodec seals and opens record field maps and computes search tokens.
//
// Sealing serializes the field map to a canonical byte payload, encrypts it
// under the tenant key for the currently active version, and produces blind
// index entries for every searchable field. Opening reverses the process and
// passes legacy plaintext payloads through unchanged, flagging them for
// migration.
type RecordCodec interface {
	// SealRecord encrypts fields for the tenant under the active key version.
	// The returned index entries carry the tenant, field name, and token;
	// the caller assigns entry IDs and the owning record ID.
	SealRecord(
		tenantID string,
		fields map[string]string,
		searchable []string,
	) (recordsDomain.EncryptedEnvelope, []*recordsDomain.BlindIndexEntry, error)

	// OpenRecord decrypts an envelope back into its field map. Legacy
	// plaintext envelopes are decoded without decryption and reported with
	// needsMigration set to true.
	OpenRecord(
		tenantID string,
		envelope recordsDomain.EncryptedEnvelope,
	) (fields map[string]string, needsMigration bool, err error)

	// SealWithVersion encrypts fields under an explicit key version. Used by
	// migration passes that re-seal payloads under the active version while
	// it is pinned for the duration of a sweep.
	SealWithVersion(
		tenantID string,
		fields map[string]string,
		version uint,
	) (recordsDomain.EncryptedEnvelope, error)

	// SearchToken computes the blind-index token for a field value, applying
	// the same normalization used when records are sealed.
	SearchToken(tenantID, fieldName, value string) (string, error)
}

// RecordUseCase defines the interface for encrypted record business logic.
type RecordUseCase interface {
	// Store seals and persists a new record with blind index entries for
	// the searchable fields.
	Store(
		ctx context.Context,
		tenantID string,
		fields map[string]string,
		searchable []string,
	) (*recordsDomain.Record, error)

	// Load retrieves and opens a record.
	//
	// Security Note: The returned Record contains plaintext data in the
	// Fields map. Callers must not persist or log it.
	Load(ctx context.Context, tenantID string, recordID uuid.UUID) (*recordsDomain.Record, error)

	// Search returns the IDs of records whose named field equals the given
	// value, matched via blind index tokens without decrypting anything.
	Search(ctx context.Context, tenantID, fieldName, value string) ([]uuid.UUID, string, error)

	// List returns record metadata for a tenant without opening envelopes.
	List(ctx context.Context, tenantID string, offset, limit int) ([]*recordsDomain.Record, error)
}
