package service

import (
	"crypto/sha256"
	"fmt"
	"io"

	"golang.org/x/crypto/hkdf"

	cryptoDomain "github.com/allisson/fieldvault/internal/crypto/domain"
)

// HKDF info strings. Distinct values guarantee that the encryption and
// blind-index derivation paths can never yield each other's keys, so
// compromise of one key class does not expose the other.
const (
	infoEncryptionKey = "fieldvault/encryption-key/v1"
	infoBlindIndexKey = "fieldvault/blind-index-key/v1"
)

// KeyDerivationService derives deterministic, versioned per-tenant keys from
// the single process master secret using HKDF-SHA256.
//
// Two derivation paths exist:
//
//   - Encryption keys are scoped by (tenantID, keyVersion) via the salt
//     "tenant:<tenantID>:v<version>". Version scoping is what makes
//     non-disruptive rotation possible: old versions stay derivable while
//     they are retained.
//   - Blind-index keys are scoped by tenant only, via the salt
//     "blind-index:<tenantID>". They are intentionally not version-scoped:
//     index tokens must remain stable across encryption key rotations,
//     otherwise every rotation would force a full index rebuild. The
//     trade-off is acceptable because an index key only enables equality
//     testing, never plaintext recovery.
//
// Derivations are pure and deterministic, so results are cached with a short
// TTL in the injected KeyCache. Concurrent cache misses derive redundantly
// rather than serializing on a lock.
type KeyDerivationService struct {
	masterSecret *cryptoDomain.MasterSecret
	versionState *cryptoDomain.KeyVersionState
	cache        KeyCache
}

// NewKeyDerivationService creates a key derivation service.
//
// The version state gates encryption key derivation: only active and retained
// versions are derivable. The cache is required; pass a zero-TTL cache to
// disable caching.
func NewKeyDerivationService(
	masterSecret *cryptoDomain.MasterSecret,
	versionState *cryptoDomain.KeyVersionState,
	cache KeyCache,
) *KeyDerivationService {
	return &KeyDerivationService{
		masterSecret: masterSecret,
		versionState: versionState,
		cache:        cache,
	}
}

// EncryptionKey derives the tenant's 256-bit encryption key for the given
// key version.
//
// Returns ErrKeyVersionRetired when the version has been retired or was never
// configured; this is an operational error distinct from tamper detection.
func (s *KeyDerivationService) EncryptionKey(tenantID string, version uint) ([]byte, error) {
	if !s.versionState.IsDerivable(version) {
		return nil, fmt.Errorf("%w: version %d for tenant %s", cryptoDomain.ErrKeyVersionRetired, version, tenantID)
	}

	cacheID := fmt.Sprintf("enc:%s:v%d", tenantID, version)
	if key, ok := s.cache.Get(cacheID); ok {
		return key, nil
	}

	salt := fmt.Sprintf("tenant:%s:v%d", tenantID, version)
	key, err := s.derive(salt, infoEncryptionKey)
	if err != nil {
		return nil, err
	}

	s.cache.Set(cacheID, key)
	return key, nil
}

// IndexKey derives the tenant's 256-bit blind-index key.
// Not version-scoped; see the type documentation for the rationale.
func (s *KeyDerivationService) IndexKey(tenantID string) ([]byte, error) {
	cacheID := fmt.Sprintf("idx:%s", tenantID)
	if key, ok := s.cache.Get(cacheID); ok {
		return key, nil
	}

	salt := fmt.Sprintf("blind-index:%s", tenantID)
	key, err := s.derive(salt, infoBlindIndexKey)
	if err != nil {
		return nil, err
	}

	s.cache.Set(cacheID, key)
	return key, nil
}

// derive runs HKDF-SHA256 over the master secret with the given salt and
// info string, producing one 32-byte key.
func (s *KeyDerivationService) derive(salt, info string) ([]byte, error) {
	reader := hkdf.New(sha256.New, s.masterSecret.Bytes(), []byte(salt), []byte(info))

	key := make([]byte, cryptoDomain.KeySize)
	if _, err := io.ReadFull(reader, key); err != nil {
		return nil, fmt.Errorf("hkdf derivation failed: %w", err)
	}

	return key, nil
}
