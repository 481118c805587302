package dto

import (
	"time"

	"github.com/google/uuid"

	recordsDomain "github.com/allisson/fieldvault/internal/records/domain"
)

// RecordResponse represents encrypted record metadata in API responses.
// Envelope contents are never exposed.
type RecordResponse struct {
	ID             string    `json:"id"`
	TenantID       string    `json:"tenant_id"`
	KeyVersion     uint      `json:"key_version"`
	NeedsMigration bool      `json:"needs_migration"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// MapRecordToResponse converts a domain record to an API response.
func MapRecordToResponse(record *recordsDomain.Record) RecordResponse {
	return RecordResponse{
		ID:             record.ID.String(),
		TenantID:       record.TenantID,
		KeyVersion:     record.Envelope.KeyVersion,
		NeedsMigration: record.NeedsMigration,
		CreatedAt:      record.CreatedAt,
		UpdatedAt:      record.UpdatedAt,
	}
}

// LoadRecordResponse contains a decrypted record.
// SECURITY: The Fields map contains plaintext and should be transmitted over HTTPS.
type LoadRecordResponse struct {
	ID             string            `json:"id"`
	TenantID       string            `json:"tenant_id"`
	KeyVersion     uint              `json:"key_version"`
	NeedsMigration bool              `json:"needs_migration"`
	Fields         map[string]string `json:"fields"`
	CreatedAt      time.Time         `json:"created_at"`
	UpdatedAt      time.Time         `json:"updated_at"`
}

// MapRecordToLoadResponse converts an opened domain record to an API response.
func MapRecordToLoadResponse(record *recordsDomain.Record) LoadRecordResponse {
	return LoadRecordResponse{
		ID:             record.ID.String(),
		TenantID:       record.TenantID,
		KeyVersion:     record.Envelope.KeyVersion,
		NeedsMigration: record.NeedsMigration,
		Fields:         record.Fields,
		CreatedAt:      record.CreatedAt,
		UpdatedAt:      record.UpdatedAt,
	}
}

// SearchRecordsResponse contains the record IDs matching a blind-index search
// and the computed token, for callers that run their own index lookups.
type SearchRecordsResponse struct {
	RecordIDs []string `json:"record_ids"`
	Token     string   `json:"token"`
}

// MapSearchResultToResponse converts matched record IDs to an API response.
func MapSearchResultToResponse(recordIDs []uuid.UUID, token string) SearchRecordsResponse {
	ids := make([]string, 0, len(recordIDs))
	for _, id := range recordIDs {
		ids = append(ids, id.String())
	}

	return SearchRecordsResponse{
		RecordIDs: ids,
		Token:     token,
	}
}

// ListRecordsResponse represents a paginated list of record metadata in API responses.
type ListRecordsResponse struct {
	Data []RecordResponse `json:"data"`
}

// MapRecordsToListResponse converts a slice of domain records to a list response.
func MapRecordsToListResponse(records []*recordsDomain.Record) ListRecordsResponse {
	data := make([]RecordResponse, 0, len(records))
	for _, record := range records {
		data = append(data, MapRecordToResponse(record))
	}

	return ListRecordsResponse{
		Data: data,
	}
}
