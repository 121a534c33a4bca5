package handler

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"tallybridge/internal/domain"
)

// APIResponse is the standard envelope for all API responses.
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *APIError   `json:"error,omitempty"`
}

// APIError holds error details in the response.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// RespondOK sends a 200 success response.
func RespondOK(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, APIResponse{Success: true, Data: data})
}

// RespondError sends an error response with the given status code.
func RespondError(c *gin.Context, status int, code, msg string) {
	c.JSON(status, APIResponse{
		Success: false,
		Error:   &APIError{Code: code, Message: msg},
	})
}

// MapDomainError translates domain errors to HTTP status codes and error codes.
func MapDomainError(err error) (status int, code, msg string) {
	var schemaErr *domain.SchemaMismatchError
	var gstinErr *domain.MalformedGSTINError
	var jsonSyntaxErr *json.SyntaxError
	var jsonTypeErr *json.UnmarshalTypeError
	switch {
	case errors.As(err, &jsonSyntaxErr), errors.As(err, &jsonTypeErr):
		return http.StatusBadRequest, "INVALID_JSON", "request body is not valid JSON for this endpoint"
	case errors.As(err, &schemaErr):
		return http.StatusUnprocessableEntity, "SCHEMA_MISMATCH", schemaErr.Error()
	case errors.As(err, &gstinErr):
		return http.StatusBadRequest, "MALFORMED_GSTIN", gstinErr.Error()
	case errors.Is(err, domain.ErrValidationFailed):
		return http.StatusBadRequest, "VALIDATION_FAILED", err.Error()
	case errors.Is(err, domain.ErrEmptyBatch):
		return http.StatusBadRequest, "EMPTY_BATCH", "no transactions to process"
	case errors.Is(err, domain.ErrUnsupportedReturn):
		return http.StatusBadRequest, "UNSUPPORTED_RETURN_TYPE", "unsupported GST return type; allowed: gstr1, gstr2a, gstr2b"
	case errors.Is(err, domain.ErrUnknownState):
		return http.StatusBadRequest, "UNKNOWN_STATE", "company state is not a recognised Indian state or union territory"
	case errors.Is(err, domain.ErrUnknownStateCode):
		return http.StatusBadRequest, "UNKNOWN_STATE_CODE", "state code is not a recognised GST state code"
	case errors.Is(err, domain.ErrUnbalancedVoucher):
		return http.StatusInternalServerError, "UNBALANCED_VOUCHER", "generated voucher failed the balance check"
	default:
		return http.StatusInternalServerError, "INTERNAL_ERROR", "an internal error occurred"
	}
}

// HandleError maps a domain error and sends the appropriate error response.
// A rejected batch responds with its full validation report in the data
// field, so every blocking error reaches the client as a discrete message.
func HandleError(c *gin.Context, err error) {
	var vErr *domain.BatchValidationError
	if errors.As(err, &vErr) {
		c.JSON(http.StatusBadRequest, APIResponse{
			Success: false,
			Data:    vErr.Result,
			Error:   &APIError{Code: "VALIDATION_FAILED", Message: "batch validation failed; see validation errors"},
		})
		return
	}

	status, code, msg := MapDomainError(err)
	if status >= 500 {
		requestID, _ := c.Get("request_id")
		log.Printf("[%s] internal error: %v", requestID, err)
	}
	RespondError(c, status, code, msg)
}
