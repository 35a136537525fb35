package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"invoicedesk/internal/domain"
	"invoicedesk/internal/middleware"
)

// APIResponse is the standard envelope for all API responses.
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *APIError   `json:"error,omitempty"`
	Meta    *PagMeta    `json:"meta,omitempty"`
}

// APIError holds error details in the response.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// PagMeta holds pagination metadata.
type PagMeta struct {
	Total  int `json:"total"`
	Offset int `json:"offset"`
	Limit  int `json:"limit"`
}

// RespondOK sends a 200 success response.
func RespondOK(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, APIResponse{Success: true, Data: data})
}

// RespondCreated sends a 201 success response.
func RespondCreated(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, APIResponse{Success: true, Data: data})
}

// RespondPaginated sends a 200 success response with pagination metadata.
func RespondPaginated(c *gin.Context, data interface{}, meta PagMeta) {
	c.JSON(http.StatusOK, APIResponse{Success: true, Data: data, Meta: &meta})
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
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, "NOT_FOUND", "resource not found"
	case errors.Is(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized, "UNAUTHORIZED", "unauthorized"
	case errors.Is(err, domain.ErrInvalidPhone):
		return http.StatusBadRequest, "INVALID_PHONE", domain.ErrInvalidPhone.Error()
	case errors.Is(err, domain.ErrPhoneNotAllowed):
		return http.StatusForbidden, "PHONE_NOT_ALLOWED", domain.ErrPhoneNotAllowed.Error()
	case errors.Is(err, domain.ErrIncompleteOTP):
		return http.StatusBadRequest, "INCOMPLETE_OTP", domain.ErrIncompleteOTP.Error()
	case errors.Is(err, domain.ErrInvalidOTP):
		return http.StatusUnauthorized, "INVALID_OTP", domain.ErrInvalidOTP.Error()
	case errors.Is(err, domain.ErrOTPExpired):
		return http.StatusUnauthorized, "OTP_EXPIRED", domain.ErrOTPExpired.Error()
	case errors.Is(err, domain.ErrOTPAttemptsExceeded):
		return http.StatusTooManyRequests, "OTP_ATTEMPTS_EXCEEDED", domain.ErrOTPAttemptsExceeded.Error()
	case errors.Is(err, domain.ErrUnsupportedFileType):
		return http.StatusBadRequest, "UNSUPPORTED_FILE_TYPE", "unsupported file type; allowed: pdf, jpg, png, webp"
	case errors.Is(err, domain.ErrFileTooLarge):
		return http.StatusRequestEntityTooLarge, "FILE_TOO_LARGE", "file exceeds maximum allowed size"
	case errors.Is(err, domain.ErrUploadFailed):
		return http.StatusInternalServerError, "UPLOAD_FAILED", "file upload to storage failed"
	case errors.Is(err, domain.ErrInvoiceNotFound):
		return http.StatusNotFound, "INVOICE_NOT_FOUND", "invoice not found"
	case errors.Is(err, domain.ErrDraftNotFound):
		return http.StatusNotFound, "DRAFT_NOT_FOUND", "draft not found or expired"
	case errors.Is(err, domain.ErrNoStoredImage):
		return http.StatusConflict, "NO_STORED_IMAGE", domain.ErrNoStoredImage.Error()
	case errors.Is(err, domain.ErrInvalidDraftTransition):
		return http.StatusConflict, "INVALID_DRAFT_STATE", err.Error()
	case errors.Is(err, domain.ErrCustomCategoryTooShort):
		return http.StatusBadRequest, "CUSTOM_CATEGORY_TOO_SHORT", domain.ErrCustomCategoryTooShort.Error()
	case errors.Is(err, domain.ErrInvalidDate):
		return http.StatusBadRequest, "INVALID_DATE", err.Error()
	case errors.Is(err, domain.ErrInvalidAmount):
		return http.StatusBadRequest, "INVALID_AMOUNT", err.Error()
	case errors.Is(err, domain.ErrInvalidDateRange):
		return http.StatusBadRequest, "INVALID_DATE_RANGE", domain.ErrInvalidDateRange.Error()
	case errors.Is(err, domain.ErrDateRangeRequired):
		return http.StatusBadRequest, "DATE_RANGE_REQUIRED", domain.ErrDateRangeRequired.Error()
	case errors.Is(err, domain.ErrUnsupportedExportFormat):
		return http.StatusBadRequest, "UNSUPPORTED_EXPORT_FORMAT", "unsupported export format; allowed: csv, xlsx"
	case errors.Is(err, domain.ErrRecognitionTimeout):
		return http.StatusUnprocessableEntity, "RECOGNITION_TIMEOUT", domain.ErrRecognitionTimeout.Error()
	case errors.Is(err, domain.ErrNoTextRecognized):
		return http.StatusUnprocessableEntity, "NO_TEXT_RECOGNIZED", domain.ErrNoTextRecognized.Error()
	case errors.Is(err, domain.ErrRecognitionFailed):
		return http.StatusUnprocessableEntity, "RECOGNITION_FAILED", domain.ErrRecognitionFailed.Error()
	default:
		return http.StatusInternalServerError, "INTERNAL_ERROR", "an internal error occurred"
	}
}

// HandleError maps a domain error and sends the appropriate error response.
func HandleError(c *gin.Context, err error) {
	RespondErrorWithData(c, err, nil)
}

// RespondErrorWithData sends a mapped error response that also carries data,
// used when a failed operation still produced a resource the client needs.
func RespondErrorWithData(c *gin.Context, err error, data interface{}) {
	status, code, msg := MapDomainError(err)
	if status >= 500 {
		zap.L().Error("internal error",
			zap.String("request_id", c.GetString(middleware.ContextKeyRequestID)),
			zap.Error(err))
	}
	_ = c.Error(err)
	c.JSON(status, APIResponse{
		Success: false,
		Data:    data,
		Error:   &APIError{Code: code, Message: msg},
	})
}

// extractPhone returns the signed-in phone number.
// Returns false if auth context is missing (error response already written).
func extractPhone(c *gin.Context) (string, bool) {
	phone, err := middleware.GetPhone(c)
	if err != nil {
		RespondError(c, http.StatusUnauthorized, "UNAUTHORIZED", "missing session")
		return "", false
	}
	return phone, true
}

// parseID parses the :id path parameter.
// Returns false if it is not a UUID (error response already written).
func parseID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_ID", "invalid id")
		return uuid.Nil, false
	}
	return id, true
}

// parsePagination extracts offset and limit from query params with defaults.
func parsePagination(c *gin.Context) (offset, limit int) {
	offset, _ = strconv.Atoi(c.DefaultQuery("offset", "0"))
	limit, _ = strconv.Atoi(c.DefaultQuery("limit", "20"))
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return offset, limit
}
