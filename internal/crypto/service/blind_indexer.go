package service

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// HMACBlindIndexer implements BlindIndexer with HMAC-SHA256 over normalized
// field values, keyed by the tenant's derived blind-index key.
//
// The token is a deterministic function of (normalize(value), tenantID,
// fieldName):
//
//   - tenant scoping comes from the derived index key, so two tenants
//     indexing the identical plaintext produce unrelated tokens (no
//     cross-tenant correlation);
//   - field scoping comes from folding the field name into the HMAC message,
//     so "jane doe" indexed as full_name never matches "jane doe" indexed as
//     some other field;
//   - determinism within a tenant+field enables exact-match lookup without
//     decryption.
//
// Limitations, by design and to be documented to callers: exact-match only.
// No range, prefix, or fuzzy queries, and case-insensitivity only to the
// extent Normalize defines.
type HMACBlindIndexer struct {
	keyDeriver KeyDeriver
}

// NewHMACBlindIndexer creates a blind indexer using the given key deriver.
func NewHMACBlindIndexer(keyDeriver KeyDeriver) *HMACBlindIndexer {
	return &HMACBlindIndexer{keyDeriver: keyDeriver}
}

// Normalize canonicalizes a field value before indexing or searching:
// Unicode NFC normalization, lowercasing, trimming of leading/trailing
// whitespace, and collapsing of internal whitespace runs to a single space.
//
// This rule set is part of the durable contract: indexing and searching must
// run the identical normalization, and changing the rules invalidates every
// existing token for affected fields.
func Normalize(value string) string {
	value = norm.NFC.String(value)
	value = strings.ToLower(value)
	return strings.Join(strings.Fields(value), " ")
}

// Token computes the hex-encoded HMAC-SHA256 blind-index token for a field
// value. The field name is folded into the message with a NUL separator so a
// value can never collide across field names.
func (b *HMACBlindIndexer) Token(tenantID, fieldName, value string) (string, error) {
	indexKey, err := b.keyDeriver.IndexKey(tenantID)
	if err != nil {
		return "", err
	}

	mac := hmac.New(sha256.New, indexKey)
	mac.Write([]byte(fieldName))
	mac.Write([]byte{0})
	mac.Write([]byte(Normalize(value)))

	return hex.EncodeToString(mac.Sum(nil)), nil
}
