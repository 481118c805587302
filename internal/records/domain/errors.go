// Package domain defines core domain models and errors for encrypted records.
package domain

import (
	"github.com/allisson/fieldvault/internal/errors"
)

// Record-specific error definitions.
var (
	// ErrRecordNotFound indicates no record exists for the given tenant and ID.
	ErrRecordNotFound = errors.Wrap(errors.ErrNotFound, "record not found")
	// ErrEmptyFieldMap indicates an attempt to seal a record with no fields.
	ErrEmptyFieldMap = errors.Wrap(errors.ErrInvalidInput, "field map must not be empty")
	// ErrUnknownSearchableField indicates a searchable field name that is not
	// present in the field map.
	ErrUnknownSearchableField = errors.Wrap(errors.ErrInvalidInput, "searchable field not present in field map")
	// ErrMalformedPayload indicates a decrypted or legacy payload that could
	// not be decoded into a field map.
	ErrMalformedPayload = errors.Wrap(errors.ErrInvalidInput, "malformed field payload")
)
