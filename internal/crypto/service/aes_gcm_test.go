package service

import (
	"crypto/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cryptoDomain "github.com/allisson/fieldvault/internal/crypto/domain"
	apperrors "github.com/allisson/fieldvault/internal/errors"
)

func randomKey(t *testing.T) []byte {
	t.Helper()
	key := make([]byte, cryptoDomain.KeySize)
	_, err := rand.Read(key)
	require.NoError(t, err)
	return key
}

func TestAESGCMCodec_EncryptDecrypt(t *testing.T) {
	codec := NewAESGCMCodec()
	key := randomKey(t)

	t.Run("round trip", func(t *testing.T) {
		plaintext := []byte(`{"passport_number":"AB1234567","full_name":"John Smith"}`)

		ciphertext, nonce, err := codec.Encrypt(key, plaintext)
		require.NoError(t, err)
		assert.Len(t, nonce, cryptoDomain.NonceSize)
		assert.Len(t, ciphertext, len(plaintext)+cryptoDomain.TagSize)

		decrypted, err := codec.Decrypt(key, ciphertext, nonce)
		require.NoError(t, err)
		assert.Equal(t, plaintext, decrypted)
	})

	t.Run("empty plaintext round trip", func(t *testing.T) {
		ciphertext, nonce, err := codec.Encrypt(key, []byte{})
		require.NoError(t, err)

		decrypted, err := codec.Decrypt(key, ciphertext, nonce)
		require.NoError(t, err)
		assert.Empty(t, decrypted)
	})

	t.Run("unique nonce per call", func(t *testing.T) {
		_, nonce1, err := codec.Encrypt(key, []byte("payload"))
		require.NoError(t, err)
		_, nonce2, err := codec.Encrypt(key, []byte("payload"))
		require.NoError(t, err)

		assert.NotEqual(t, nonce1, nonce2)
	})

	t.Run("rejects invalid key size", func(t *testing.T) {
		_, _, err := codec.Encrypt(make([]byte, 16), []byte("payload"))
		assert.True(t, apperrors.Is(err, cryptoDomain.ErrInvalidKeySize))

		_, err = codec.Decrypt(make([]byte, 16), []byte("ct"), make([]byte, cryptoDomain.NonceSize))
		assert.True(t, apperrors.Is(err, cryptoDomain.ErrInvalidKeySize))
	})
}

func TestAESGCMCodec_TamperDetection(t *testing.T) {
	codec := NewAESGCMCodec()
	key := randomKey(t)
	plaintext := []byte("sensitive field payload")

	ciphertext, nonce, err := codec.Encrypt(key, plaintext)
	require.NoError(t, err)

	t.Run("any single bit flip in ciphertext fails authentication", func(t *testing.T) {
		for i := range ciphertext {
			tampered := make([]byte, len(ciphertext))
			copy(tampered, ciphertext)
			tampered[i] ^= 0x01

			decrypted, err := codec.Decrypt(key, tampered, nonce)
			assert.Nil(t, decrypted, "bit flip at byte %d must not yield plaintext", i)
			assert.True(t, apperrors.Is(err, apperrors.ErrAuthenticationTag), "bit flip at byte %d", i)
		}
	})

	t.Run("any single bit flip in nonce fails authentication", func(t *testing.T) {
		for i := range nonce {
			tampered := make([]byte, len(nonce))
			copy(tampered, nonce)
			tampered[i] ^= 0x01

			decrypted, err := codec.Decrypt(key, ciphertext, tampered)
			assert.Nil(t, decrypted, "nonce bit flip at byte %d must not yield plaintext", i)
			assert.True(t, apperrors.Is(err, apperrors.ErrAuthenticationTag), "nonce bit flip at byte %d", i)
		}
	})

	t.Run("wrong key fails authentication", func(t *testing.T) {
		decrypted, err := codec.Decrypt(randomKey(t), ciphertext, nonce)
		assert.Nil(t, decrypted)
		assert.True(t, apperrors.Is(err, apperrors.ErrAuthenticationTag))
	})

	t.Run("truncated nonce fails authentication", func(t *testing.T) {
		decrypted, err := codec.Decrypt(key, ciphertext, nonce[:8])
		assert.Nil(t, decrypted)
		assert.True(t, apperrors.Is(err, apperrors.ErrAuthenticationTag))
	})
}
