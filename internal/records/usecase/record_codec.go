package usecase

import (
	"encoding/json"
	"fmt"
	"sort"

	cryptoDomain "github.com/allisson/fieldvault/internal/crypto/domain"
	cryptoService "github.com/allisson/fieldvault/internal/crypto/service"
	recordsDomain "github.com/allisson/fieldvault/internal/records/domain"
)

// recordCodec implements the RecordCodec interface.
type recordCodec struct {
	deriver      cryptoService.KeyDeriver
	codec        cryptoService.Codec
	indexer      cryptoService.BlindIndexer
	versionState *cryptoDomain.KeyVersionState
}

// SealRecord encrypts fields for the tenant under the active key version and
// computes blind index entries for every searchable field.
func (r *recordCodec) SealRecord(
	tenantID string,
	fields map[string]string,
	searchable []string,
) (recordsDomain.EncryptedEnvelope, []*recordsDomain.BlindIndexEntry, error) {
	envelope, err := r.SealWithVersion(tenantID, fields, r.versionState.ActiveVersion())
	if err != nil {
		return recordsDomain.EncryptedEnvelope{}, nil, err
	}

	entries, err := r.indexEntries(tenantID, fields, searchable)
	if err != nil {
		return recordsDomain.EncryptedEnvelope{}, nil, err
	}

	return envelope, entries, nil
}

// SealWithVersion encrypts fields under an explicit key version.
func (r *recordCodec) SealWithVersion(
	tenantID string,
	fields map[string]string,
	version uint,
) (recordsDomain.EncryptedEnvelope, error) {
	if len(fields) == 0 {
		return recordsDomain.EncryptedEnvelope{}, recordsDomain.ErrEmptyFieldMap
	}

	payload, err := encodeFieldMap(fields)
	if err != nil {
		return recordsDomain.EncryptedEnvelope{}, err
	}

	key, err := r.deriver.EncryptionKey(tenantID, version)
	if err != nil {
		return recordsDomain.EncryptedEnvelope{}, err
	}
	defer cryptoDomain.Zero(key)

	ciphertext, nonce, err := r.codec.Encrypt(key, payload)
	if err != nil {
		return recordsDomain.EncryptedEnvelope{}, err
	}

	return recordsDomain.EncryptedEnvelope{
		KeyVersion: version,
		Nonce:      nonce,
		Ciphertext: ciphertext,
	}, nil
}

// OpenRecord decrypts an envelope back into its field map. Legacy plaintext
// envelopes are decoded without decryption and flagged for migration.
func (r *recordCodec) OpenRecord(
	tenantID string,
	envelope recordsDomain.EncryptedEnvelope,
) (map[string]string, bool, error) {
	if envelope.IsLegacy() {
		fields, err := decodeFieldMap(envelope.Ciphertext)
		if err != nil {
			return nil, false, err
		}
		return fields, true, nil
	}

	key, err := r.deriver.EncryptionKey(tenantID, envelope.KeyVersion)
	if err != nil {
		return nil, false, err
	}
	defer cryptoDomain.Zero(key)

	payload, err := r.codec.Decrypt(key, envelope.Ciphertext, envelope.Nonce)
	if err != nil {
		return nil, false, err
	}
	defer cryptoDomain.Zero(payload)

	fields, err := decodeFieldMap(payload)
	if err != nil {
		return nil, false, err
	}

	return fields, false, nil
}

// SearchToken computes the blind-index token for a field value.
func (r *recordCodec) SearchToken(tenantID, fieldName, value string) (string, error) {
	return r.indexer.Token(tenantID, fieldName, value)
}

// indexEntries computes one blind index entry per searchable field. Every
// searchable field must be present in the field map.
func (r *recordCodec) indexEntries(
	tenantID string,
	fields map[string]string,
	searchable []string,
) ([]*recordsDomain.BlindIndexEntry, error) {
	if len(searchable) == 0 {
		return nil, nil
	}

	// Deduplicate and sort so entry order is stable regardless of input order.
	seen := make(map[string]struct{}, len(searchable))
	names := make([]string, 0, len(searchable))
	for _, name := range searchable {
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		names = append(names, name)
	}
	sort.Strings(names)

	entries := make([]*recordsDomain.BlindIndexEntry, 0, len(names))
	for _, name := range names {
		value, ok := fields[name]
		if !ok {
			return nil, fmt.Errorf("%w: %q", recordsDomain.ErrUnknownSearchableField, name)
		}

		token, err := r.indexer.Token(tenantID, name, value)
		if err != nil {
			return nil, err
		}

		entries = append(entries, &recordsDomain.BlindIndexEntry{
			TenantID:   tenantID,
			FieldName:  name,
			IndexToken: token,
		})
	}

	return entries, nil
}

// encodeFieldMap serializes a field map to its canonical byte payload.
// encoding/json writes map keys in sorted order, so the same field map always
// produces identical bytes.
func encodeFieldMap(fields map[string]string) ([]byte, error) {
	payload, err := json.Marshal(fields)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", recordsDomain.ErrMalformedPayload, err)
	}
	return payload, nil
}

// decodeFieldMap parses a payload produced by encodeFieldMap, or a legacy
// plaintext payload written before encryption was introduced.
func decodeFieldMap(payload []byte) (map[string]string, error) {
	var fields map[string]string
	if err := json.Unmarshal(payload, &fields); err != nil {
		return nil, fmt.Errorf("%w: %v", recordsDomain.ErrMalformedPayload, err)
	}
	return fields, nil
}

// NewRecordCodec creates a new record codec instance with the provided
// cryptographic services.
func NewRecordCodec(
	deriver cryptoService.KeyDeriver,
	codec cryptoService.Codec,
	indexer cryptoService.BlindIndexer,
	versionState *cryptoDomain.KeyVersionState,
) RecordCodec {
	return &recordCodec{
		deriver:      deriver,
		codec:        codec,
		indexer:      indexer,
		versionState: versionState,
	}
}
