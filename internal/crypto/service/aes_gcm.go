package service

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"fmt"

	cryptoDomain "github.com/allisson/fieldvault/internal/crypto/domain"
)

// AESGCMCodec implements the Codec interface using AES-256-GCM
// (Advanced Encryption Standard with Galois/Counter Mode).
//
// AES-GCM provides authenticated encryption (AEAD), combining the
// confidentiality of AES with the authenticity of GMAC. Envelopes produced by
// this codec therefore detect any modification of ciphertext, nonce, or the
// use of a wrong key.
//
// Security properties:
//   - 256-bit keys
//   - 12-byte nonce (96 bits), randomly generated per encryption call from
//     crypto/rand; random generation avoids cross-process collision risk that
//     counter-based nonces would carry
//   - 16-byte authentication tag (128 bits, appended to ciphertext)
//
// These sizes are constants of the envelope format and must never change
// within a key version's lifetime.
//
// Thread safety:
//
//	The codec is stateless and safe for concurrent use from multiple
//	goroutines. The key is supplied per call because every tenant and key
//	version uses different derived key material.
type AESGCMCodec struct{}

// NewAESGCMCodec creates a new AES-256-GCM codec instance.
func NewAESGCMCodec() *AESGCMCodec {
	return &AESGCMCodec{}
}

// Encrypt seals plaintext under the given 32-byte key.
//
// A unique 12-byte nonce is randomly generated for each call and must be
// stored alongside the ciphertext for later decryption; with GCM a
// (nonce, key) pair must be used exactly once. The returned ciphertext
// includes the 16-byte authentication tag appended to the end.
func (c *AESGCMCodec) Encrypt(key, plaintext []byte) (ciphertext, nonce []byte, err error) {
	aead, err := newGCM(key)
	if err != nil {
		return nil, nil, err
	}

	nonce = make([]byte, aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return nil, nil, fmt.Errorf("failed to generate nonce: %w", err)
	}

	ciphertext = aead.Seal(nil, nonce, plaintext, nil)
	return ciphertext, nonce, nil
}

// Decrypt opens ciphertext using the given key and the nonce generated at
// encryption time.
//
// The authentication tag is verified before any plaintext is returned. A
// verification failure means tampering, a wrong key, or a wrong
// tenant/version binding; it is surfaced as ErrDecryptionFailed without
// further detail so callers cannot distinguish the causes, and it must never
// be retried with the same inputs.
func (c *AESGCMCodec) Decrypt(key, ciphertext, nonce []byte) ([]byte, error) {
	aead, err := newGCM(key)
	if err != nil {
		return nil, err
	}

	if len(nonce) != aead.NonceSize() {
		return nil, cryptoDomain.ErrDecryptionFailed
	}

	plaintext, err := aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, cryptoDomain.ErrDecryptionFailed
	}
	return plaintext, nil
}

// newGCM validates the key and builds the GCM AEAD instance.
func newGCM(key []byte) (cipher.AEAD, error) {
	if len(key) != cryptoDomain.KeySize {
		return nil, cryptoDomain.ErrInvalidKeySize
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create AES cipher: %w", err)
	}

	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM: %w", err)
	}

	return aead, nil
}
