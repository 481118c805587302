package domain

import (
	"github.com/allisson/fieldvault/internal/errors"
)

// Cryptographic operation error definitions.
//
// These domain-specific errors wrap standard errors from internal/errors
// to provide context for cryptographic failures. All errors are mapped to
// appropriate HTTP status codes by the error handling layer.
var (
	// ErrInvalidKeySize indicates the cryptographic key size is invalid.
	//
	// All keys (the master secret and every derived key) must be exactly
	// 32 bytes (256 bits) for AES-256-GCM and HMAC-SHA256.
	//
	// HTTP Status: 422 Unprocessable Entity
	ErrInvalidKeySize = errors.Wrap(errors.ErrInvalidInput, "invalid key size")

	// ErrDecryptionFailed indicates authenticated decryption failed.
	//
	// This error can occur due to:
	//   - Wrong decryption key used (wrong tenant or wrong key version)
	//   - Ciphertext has been tampered with (authentication failure)
	//   - Invalid or mismatched nonce
	//
	// For security reasons, the specific cause is not disclosed to prevent
	// information leakage that could aid attackers. Callers must never retry
	// with the same inputs and must never log derived plaintext.
	ErrDecryptionFailed = errors.Wrap(errors.ErrAuthenticationTag, "decryption failed")

	// ErrMasterSecretNotSet indicates no master secret was configured.
	// Fatal at startup.
	ErrMasterSecretNotSet = errors.Wrap(errors.ErrConfiguration, "master secret not set")

	// ErrInvalidMasterSecretBase64 indicates the master secret is not valid base64.
	// Fatal at startup.
	ErrInvalidMasterSecretBase64 = errors.Wrap(errors.ErrConfiguration, "master secret is not valid base64")

	// ErrKeyVersionRetired indicates derivation was requested for a version
	// that has been retired or was never configured. Distinct from tamper
	// detection: this signals an operational/lifecycle bug (e.g. premature
	// retirement) and should trigger alerting rather than be treated as an
	// attack signal.
	ErrKeyVersionRetired = errors.Wrap(errors.ErrKeyVersionUnavailable, "key version retired or unknown")

	// ErrNoActiveKeyVersion indicates the key version state holds no active
	// version for new writes. Fatal at startup, invalid transition afterwards.
	ErrNoActiveKeyVersion = errors.Wrap(errors.ErrConfiguration, "no active key version")

	// ErrInvalidVersionTransition indicates a key version lifecycle transition
	// that the state machine does not permit (e.g. rotating to a version that
	// is not strictly newer, or retiring the active version).
	ErrInvalidVersionTransition = errors.Wrap(errors.ErrConflict, "invalid key version transition")

	// ErrVersionStillReferenced indicates a retire call for a version that
	// still has stored envelopes referencing it. The migration sweep must
	// complete before the version can be retired.
	ErrVersionStillReferenced = errors.Wrap(errors.ErrConflict, "key version still referenced by stored envelopes")
)
