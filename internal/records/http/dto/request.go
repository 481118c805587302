// Package dto provides data transfer objects for HTTP request and response handling.
package dto

import (
	validation "github.com/jellydator/validation"

	customValidation "github.com/allisson/fieldvault/internal/validation"
)

// StoreRecordRequest contains the parameters for sealing and storing a record.
type StoreRecordRequest struct {
	Fields           map[string]string `json:"fields"`
	SearchableFields []string          `json:"searchable_fields"`
}

// Validate checks if the store record request is valid.
func (r *StoreRecordRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Fields,
			validation.Required,
			validation.By(validateFieldMap),
		),
		validation.Field(&r.SearchableFields,
			validation.Each(
				customValidation.NotBlank,
				customValidation.Identifier,
				validation.Length(1, 255),
			),
		),
	)
}

// SearchRecordsRequest contains the parameters for a blind-index search.
type SearchRecordsRequest struct {
	FieldName string `json:"field_name"`
	Value     string `json:"value"`
}

// Validate checks if the search request is valid.
func (r *SearchRecordsRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.FieldName,
			validation.Required,
			customValidation.NotBlank,
			customValidation.Identifier,
			validation.Length(1, 255),
		),
		validation.Field(&r.Value,
			validation.Required,
			customValidation.NotBlank,
		),
	)
}

// validateFieldMap validates the field names of a record payload. Field values
// are opaque; names feed the blind-index HMAC input and must be well-formed.
func validateFieldMap(value interface{}) error {
	fields, ok := value.(map[string]string)
	if !ok {
		return validation.NewError("validation_field_map_type", "must be an object of string values")
	}

	for name := range fields {
		if err := validation.Validate(name,
			customValidation.NotBlank,
			customValidation.Identifier,
			validation.Length(1, 255),
		); err != nil {
			return validation.NewError(
				"validation_field_name",
				"field name "+name+" is invalid: "+err.Error(),
			)
		}
	}

	return nil
}
