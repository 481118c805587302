// Package domain defines the core domain models for encrypted record storage.
// Records hold tenant field data sealed with AES-256-GCM under tenant-scoped
// derived keys, alongside blind index entries that support equality search
// without exposing plaintext.
package domain

import (
	"time"

	"github.com/google/uuid"

	cryptoDomain "github.com/allisson/fieldvault/internal/crypto/domain"
)

// EncryptedEnvelope carries a sealed field payload together with the
// key material coordinates needed to open it.
type EncryptedEnvelope struct {
	// KeyVersion identifies the key version the payload was sealed under.
	// A value of cryptoDomain.LegacyKeyVersion marks a pre-encryption
	// plaintext payload that has not yet been migrated.
	KeyVersion uint
	// Nonce is the random value used during AEAD encryption. Empty for
	// legacy plaintext payloads.
	Nonce []byte
	// Ciphertext contains the sealed payload including the authentication
	// tag. For legacy payloads it holds the original plaintext bytes.
	Ciphertext []byte
}

// IsLegacy reports whether the envelope holds an unencrypted payload
// written before encryption was introduced.
func (e EncryptedEnvelope) IsLegacy() bool {
	return e.KeyVersion == cryptoDomain.LegacyKeyVersion
}

// Record represents a stored tenant record with its encrypted field payload.
type Record struct {
	// ID is the unique identifier for this record.
	ID uuid.UUID
	// TenantID identifies the tenant that owns this record.
	TenantID string
	// Envelope holds the sealed field payload.
	Envelope EncryptedEnvelope
	// NeedsMigration marks records whose payload is stored as legacy
	// plaintext and must be re-sealed by a migration pass.
	NeedsMigration bool
	// Fields holds the decrypted field map in memory only; populated on
	// load and never persisted or serialized.
	Fields map[string]string `json:"-"`
	// CreatedAt is the UTC timestamp when this record was created.
	CreatedAt time.Time
	// UpdatedAt is the UTC timestamp of the last envelope change.
	UpdatedAt time.Time
}

// BlindIndexEntry maps a deterministic search token to the record that
// produced it. Tokens are HMAC-SHA256 digests over normalized field
// values, keyed per tenant.
type BlindIndexEntry struct {
	// ID is the unique identifier for this index entry.
	ID uuid.UUID
	// TenantID identifies the tenant the entry belongs to.
	TenantID string
	// RecordID references the record that produced this entry.
	RecordID uuid.UUID
	// FieldName is the field the token was computed for.
	FieldName string
	// IndexToken is the hex-encoded HMAC digest used for equality lookup.
	IndexToken string
	// CreatedAt is the UTC timestamp when this entry was created.
	CreatedAt time.Time
}
