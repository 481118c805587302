// Package http provides HTTP handlers for encrypted record storage, retrieval,
// and blind-index search.
package http

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	validation "github.com/jellydator/validation"

	"github.com/allisson/fieldvault/internal/httputil"
	"github.com/allisson/fieldvault/internal/records/http/dto"
	recordsUseCase "github.com/allisson/fieldvault/internal/records/usecase"
	customValidation "github.com/allisson/fieldvault/internal/validation"
)

// RecordHandler handles HTTP requests for encrypted record operations.
type RecordHandler struct {
	recordUseCase recordsUseCase.RecordUseCase
	logger        *slog.Logger
}

// NewRecordHandler creates a new record handler with required dependencies.
func NewRecordHandler(
	recordUseCase recordsUseCase.RecordUseCase,
	logger *slog.Logger,
) *RecordHandler {
	return &RecordHandler{
		recordUseCase: recordUseCase,
		logger:        logger,
	}
}

// tenantID extracts and validates the tenant id URL parameter.
func (h *RecordHandler) tenantID(c *gin.Context) (string, error) {
	tenantID := c.Param("tenant_id")
	if err := validation.Validate(tenantID,
		validation.Required,
		customValidation.NotBlank,
		customValidation.Identifier,
		validation.Length(1, 255),
	); err != nil {
		return "", fmt.Errorf("invalid tenant id: %w", err)
	}
	return tenantID, nil
}

// StoreHandler seals a classified record and persists it with blind index
// entries for the searchable fields.
// POST /v1/tenants/:tenant_id/records
// Returns 201 Created with record metadata; the envelope is never exposed.
func (h *RecordHandler) StoreHandler(c *gin.Context) {
	tenantID, err := h.tenantID(c)
	if err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	var req dto.StoreRecordRequest

	// Parse and bind JSON
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	// Validate request
	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	// Call use case
	record, err := h.recordUseCase.Store(c.Request.Context(), tenantID, req.Fields, req.SearchableFields)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	// Return metadata only
	response := dto.MapRecordToResponse(record)
	c.JSON(http.StatusCreated, response)
}

// LoadHandler retrieves and opens a record.
// GET /v1/tenants/:tenant_id/records/:record_id
// Returns 200 OK with the decrypted field map; legacy records are flagged
// with needs_migration=true.
func (h *RecordHandler) LoadHandler(c *gin.Context) {
	tenantID, err := h.tenantID(c)
	if err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	recordID, err := uuid.Parse(c.Param("record_id"))
	if err != nil {
		httputil.HandleValidationErrorGin(c,
			fmt.Errorf("invalid record ID format: must be a valid UUID"),
			h.logger)
		return
	}

	// Call use case
	record, err := h.recordUseCase.Load(c.Request.Context(), tenantID, recordID)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	response := dto.MapRecordToLoadResponse(record)
	c.JSON(http.StatusOK, response)
}

// SearchHandler performs a blind-index exact-match search.
// POST /v1/tenants/:tenant_id/records/search
// Returns 200 OK with matching record IDs; nothing is decrypted.
func (h *RecordHandler) SearchHandler(c *gin.Context) {
	tenantID, err := h.tenantID(c)
	if err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	var req dto.SearchRecordsRequest

	// Parse and bind JSON
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	// Validate request
	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	// Call use case
	recordIDs, token, err := h.recordUseCase.Search(c.Request.Context(), tenantID, req.FieldName, req.Value)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	response := dto.MapSearchResultToResponse(recordIDs, token)
	c.JSON(http.StatusOK, response)
}

// ListHandler returns paginated record metadata for a tenant.
// GET /v1/tenants/:tenant_id/records?offset=0&limit=50
// Returns 200 OK with record metadata; envelopes stay sealed.
func (h *RecordHandler) ListHandler(c *gin.Context) {
	tenantID, err := h.tenantID(c)
	if err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	// Parse pagination parameters
	offset, limit, err := httputil.ParsePagination(c)
	if err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	// Call use case
	records, err := h.recordUseCase.List(c.Request.Context(), tenantID, offset, limit)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	response := dto.MapRecordsToListResponse(records)
	c.JSON(http.StatusOK, response)
}
