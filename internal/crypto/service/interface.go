// Package service provides the cryptographic services for field-level
// encryption: tenant key derivation, authenticated encryption, and blind
// indexing for exact-match search over encrypted values.
package service

import (
	"context"

	cryptoDomain "github.com/allisson/fieldvault/internal/crypto/domain"
)

// KeyDeriver derives tenant- and version-scoped keys from the master secret.
//
// All derivations are deterministic and pure; implementations are safe for
// concurrent use. Derived keys are never persisted.
type KeyDeriver interface {
	// EncryptionKey derives the 256-bit encryption key for (tenantID, version).
	// Fails with a key-version error if the version is retired or unknown.
	EncryptionKey(tenantID string, version uint) ([]byte, error)

	// IndexKey derives the 256-bit blind-index key for the tenant. Index keys
	// are intentionally not version-scoped so index tokens survive encryption
	// key rotations.
	IndexKey(tenantID string) ([]byte, error)
}

// Codec performs authenticated encryption of opaque byte payloads under a
// caller-supplied key.
type Codec interface {
	// Encrypt seals plaintext under key with a fresh random nonce.
	// The returned ciphertext has the 16-byte authentication tag appended.
	Encrypt(key, plaintext []byte) (ciphertext, nonce []byte, err error)

	// Decrypt opens ciphertext using key and nonce. Fails with an
	// authentication tag error on any tamper or wrong-key condition.
	Decrypt(key, ciphertext, nonce []byte) ([]byte, error)
}

// BlindIndexer produces deterministic, non-reversible, tenant-scoped tokens
// for searchable field values.
type BlindIndexer interface {
	// Token computes the blind-index token for a field value. The same
	// normalized value under the same tenant and field always yields the same
	// token; different tenants or different fields yield different tokens.
	Token(tenantID, fieldName, value string) (string, error)
}

// KeyCache caches derived key material with a bounded lifetime.
//
// The cache is read-through at the call sites: a miss triggers derivation, not
// an error. Two concurrent misses for the same entry may both derive; that is
// harmless because derivation is deterministic, so implementations must not
// serialize callers with a shared lock around derivation.
type KeyCache interface {
	// Get returns the cached key material for id, if present and not expired.
	Get(id string) ([]byte, bool)

	// Set stores key material under id.
	Set(id string, key []byte)

	// Purge removes and zeroes all cached key material.
	Purge()
}

// KMSService opens KMS keepers for unwrapping the master secret at startup.
type KMSService interface {
	// OpenKeeper opens a keeper for the configured KMS provider key URI.
	OpenKeeper(ctx context.Context, keyURI string) (cryptoDomain.KMSKeeper, error)
}
