// Package domain defines the core cryptographic domain models for field-level
// encryption: the process master secret, per-tenant derived key material, and
// the key version lifecycle used for non-disruptive rotation.
package domain

import (
	"context"
	"encoding/base64"
	"fmt"
)

// KMSKeeper abstracts the subset of a KMS keeper used to unwrap the master
// secret at startup. *gocloud.dev/secrets.Keeper implements it.
type KMSKeeper interface {
	// Decrypt decrypts the ciphertext using the KMS-held wrapping key.
	Decrypt(ctx context.Context, ciphertext []byte) ([]byte, error)

	// Close releases resources held by the keeper.
	Close() error
}

// MasterSecret is the single 256-bit secret from which every tenant- and
// version-scoped key is derived.
//
// It is supplied once at process start (directly via environment or wrapped by
// a KMS), validated for exact length, and held in process memory for the
// process lifetime. It is never persisted by this subsystem and never leaves
// the key derivation service.
type MasterSecret struct {
	key []byte
}

// Bytes returns the raw 32-byte secret material.
//
// The returned slice aliases the internal buffer; callers must not retain or
// mutate it. It is only intended to feed key derivation.
func (m *MasterSecret) Bytes() []byte {
	return m.key
}

// Close zeroes the secret material in memory. The MasterSecret is unusable
// afterwards; call only during process shutdown.
func (m *MasterSecret) Close() {
	Zero(m.key)
	m.key = nil
}

// NewMasterSecret validates raw key material and wraps it as a MasterSecret.
// The material must be exactly 32 bytes (256 bits); anything else is a fatal
// configuration error (fail fast, not fail open).
func NewMasterSecret(key []byte) (*MasterSecret, error) {
	if len(key) != KeySize {
		return nil, fmt.Errorf(
			"%w: master secret must be %d bytes, got %d",
			ErrInvalidKeySize,
			KeySize,
			len(key),
		)
	}

	// Copy so the caller can zero its own buffer independently.
	k := make([]byte, KeySize)
	copy(k, key)

	return &MasterSecret{key: k}, nil
}

// LoadMasterSecret loads and validates the master secret from configuration.
//
// Two supply paths are supported:
//   - encoded: the secret itself, base64-encoded (development / simple deployments)
//   - wrappedCiphertext + keeper: the secret wrapped by a KMS key; the keeper
//     unwraps it at startup so the plaintext secret never appears in the
//     environment (production deployments)
//
// Exactly the decoded/unwrapped value must be 32 bytes. Absence of both supply
// paths, malformed base64, or a wrong length all abort startup with a
// configuration error.
func LoadMasterSecret(
	ctx context.Context,
	encoded string,
	wrappedCiphertext string,
	keeper KMSKeeper,
) (*MasterSecret, error) {
	switch {
	case encoded != "":
		key, err := base64.StdEncoding.DecodeString(encoded)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidMasterSecretBase64, err)
		}
		defer Zero(key)
		return NewMasterSecret(key)

	case wrappedCiphertext != "":
		if keeper == nil {
			return nil, fmt.Errorf("%w: MASTER_SECRET_CIPHERTEXT set but no KMS keeper configured", ErrMasterSecretNotSet)
		}
		ciphertext, err := base64.StdEncoding.DecodeString(wrappedCiphertext)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidMasterSecretBase64, err)
		}
		key, err := keeper.Decrypt(ctx, ciphertext)
		if err != nil {
			return nil, fmt.Errorf("%w: failed to unwrap master secret via KMS: %v", ErrMasterSecretNotSet, err)
		}
		defer Zero(key)
		return NewMasterSecret(key)

	default:
		return nil, ErrMasterSecretNotSet
	}
}
