package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cryptoDomain "github.com/allisson/fieldvault/internal/crypto/domain"
	apperrors "github.com/allisson/fieldvault/internal/errors"
)

func newTestDeriver(t *testing.T, cache KeyCache) *KeyDerivationService {
	t.Helper()

	secret := make([]byte, cryptoDomain.KeySize)
	for i := range secret {
		secret[i] = byte(i * 7)
	}
	masterSecret, err := cryptoDomain.NewMasterSecret(secret)
	require.NoError(t, err)

	state, err := cryptoDomain.NewKeyVersionState([]cryptoDomain.KeyVersion{
		{Version: 1, Status: cryptoDomain.VersionRetained},
		{Version: 2, Status: cryptoDomain.VersionActive},
		{Version: 3, Status: cryptoDomain.VersionRetired},
	})
	require.NoError(t, err)

	if cache == nil {
		cache = NewTTLKeyCache(0)
	}

	return NewKeyDerivationService(masterSecret, state, cache)
}

func TestKeyDerivationService_EncryptionKey(t *testing.T) {
	deriver := newTestDeriver(t, nil)

	t.Run("deterministic for identical inputs", func(t *testing.T) {
		key1, err := deriver.EncryptionKey("acme", 2)
		require.NoError(t, err)
		key2, err := deriver.EncryptionKey("acme", 2)
		require.NoError(t, err)

		assert.Len(t, key1, cryptoDomain.KeySize)
		assert.Equal(t, key1, key2)
	})

	t.Run("different tenants yield different keys", func(t *testing.T) {
		keyA, err := deriver.EncryptionKey("acme", 2)
		require.NoError(t, err)
		keyB, err := deriver.EncryptionKey("globex", 2)
		require.NoError(t, err)

		assert.NotEqual(t, keyA, keyB)
	})

	t.Run("different versions yield different keys", func(t *testing.T) {
		keyV1, err := deriver.EncryptionKey("acme", 1)
		require.NoError(t, err)
		keyV2, err := deriver.EncryptionKey("acme", 2)
		require.NoError(t, err)

		assert.NotEqual(t, keyV1, keyV2)
	})

	t.Run("retained versions stay derivable", func(t *testing.T) {
		_, err := deriver.EncryptionKey("acme", 1)
		assert.NoError(t, err)
	})

	t.Run("retired version fails with key version error", func(t *testing.T) {
		key, err := deriver.EncryptionKey("acme", 3)
		assert.Nil(t, key)
		assert.True(t, apperrors.Is(err, apperrors.ErrKeyVersionUnavailable))
	})

	t.Run("unknown version fails with key version error", func(t *testing.T) {
		key, err := deriver.EncryptionKey("acme", 42)
		assert.Nil(t, key)
		assert.True(t, apperrors.Is(err, apperrors.ErrKeyVersionUnavailable))
	})
}

func TestKeyDerivationService_IndexKey(t *testing.T) {
	deriver := newTestDeriver(t, nil)

	t.Run("deterministic per tenant", func(t *testing.T) {
		key1, err := deriver.IndexKey("acme")
		require.NoError(t, err)
		key2, err := deriver.IndexKey("acme")
		require.NoError(t, err)

		assert.Len(t, key1, cryptoDomain.KeySize)
		assert.Equal(t, key1, key2)
	})

	t.Run("different tenants yield different index keys", func(t *testing.T) {
		keyA, err := deriver.IndexKey("acme")
		require.NoError(t, err)
		keyB, err := deriver.IndexKey("globex")
		require.NoError(t, err)

		assert.NotEqual(t, keyA, keyB)
	})

	t.Run("index key differs from every encryption key path", func(t *testing.T) {
		indexKey, err := deriver.IndexKey("acme")
		require.NoError(t, err)

		for _, version := range []uint{1, 2} {
			encKey, err := deriver.EncryptionKey("acme", version)
			require.NoError(t, err)
			assert.NotEqual(t, indexKey, encKey)
		}
	})
}

func TestKeyDerivationService_CacheBehavior(t *testing.T) {
	t.Run("derivation populates the cache", func(t *testing.T) {
		cache := NewTTLKeyCache(time.Minute)
		deriver := newTestDeriver(t, cache)

		derived, err := deriver.EncryptionKey("acme", 2)
		require.NoError(t, err)

		cached, ok := cache.Get("enc:acme:v2")
		require.True(t, ok)
		assert.Equal(t, derived, cached)
	})

	t.Run("cache hit returns identical key material", func(t *testing.T) {
		cache := NewTTLKeyCache(time.Minute)
		deriver := newTestDeriver(t, cache)

		first, err := deriver.EncryptionKey("acme", 2)
		require.NoError(t, err)
		second, err := deriver.EncryptionKey("acme", 2)
		require.NoError(t, err)

		assert.Equal(t, first, second)
	})

	t.Run("zero-TTL cache forces fresh derivation with identical output", func(t *testing.T) {
		deriver := newTestDeriver(t, NewTTLKeyCache(0))

		first, err := deriver.EncryptionKey("acme", 2)
		require.NoError(t, err)
		second, err := deriver.EncryptionKey("acme", 2)
		require.NoError(t, err)

		assert.Equal(t, first, second)
	})

	t.Run("retired versions are rejected before cache lookup", func(t *testing.T) {
		cache := NewTTLKeyCache(time.Minute)
		deriver := newTestDeriver(t, cache)

		// Even a poisoned cache entry must not resurrect a retired version.
		cache.Set("enc:acme:v3", make([]byte, cryptoDomain.KeySize))

		_, err := deriver.EncryptionKey("acme", 3)
		assert.True(t, apperrors.Is(err, apperrors.ErrKeyVersionUnavailable))
	})
}
