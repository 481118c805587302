package domain

// Byte sizes for the envelope format. These are fixed for the lifetime of a
// key version: changing either requires introducing a new key version, never
// reinterpreting stored envelopes.
const (
	// KeySize is the size of all derived keys in bytes (256 bits).
	KeySize = 32

	// NonceSize is the AES-GCM nonce size in bytes (96 bits), randomly
	// generated per encryption call.
	NonceSize = 12

	// TagSize is the GCM authentication tag size in bytes (128 bits),
	// appended to the ciphertext.
	TagSize = 16
)

// LegacyKeyVersion marks an envelope that predates encryption altogether.
// Its payload is stored as plaintext and must be surfaced with a migration
// flag instead of failing decryption. Real key versions start at 1.
const LegacyKeyVersion = 0
