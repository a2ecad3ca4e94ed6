package dto

import (
	"net/http"
	"strings"
)

// Error codes emitted by the HTTP layer itself. Domain errors keep their own
// codes (INVALID_QUANTITY, DUPLICATE_NUMBER...) and are mapped below.
const (
	ErrCodeInternal         = "INTERNAL_ERROR"
	ErrCodeValidation       = "VALIDATION_ERROR"
	ErrCodeBadRequest       = "BAD_REQUEST"
	ErrCodeUnauthorized     = "UNAUTHORIZED"
	ErrCodeForbidden        = "FORBIDDEN"
	ErrCodeNotFound         = "NOT_FOUND"
	ErrCodeRateLimited      = "RATE_LIMIT_EXCEEDED"
	ErrCodeRequestTooLarge  = "REQUEST_TOO_LARGE"
	ErrCodeTokenInvalid     = "TOKEN_INVALID"
	ErrCodeTokenExpired     = "TOKEN_EXPIRED"
	ErrCodeTokenRevoked     = "TOKEN_REVOKED"
	ErrCodeInvalidState     = "INVALID_STATE"
	ErrCodeAlreadyExists    = "ALREADY_EXISTS"
	ErrCodeDuplicateNumber  = "DUPLICATE_NUMBER"
	ErrCodeConcurrency      = "CONCURRENCY_CONFLICT"
	ErrCodeSequenceExhaust  = "SEQUENCE_EXHAUSTED"
	ErrCodeConversion       = "CONVERSION_INCONSISTENT"
	ErrCodeInvalidCreds     = "INVALID_CREDENTIALS"
	ErrCodeAccountInactive  = "ACCOUNT_INACTIVE"
	ErrCodeInvalidInput     = "INVALID_INPUT"
	ErrCodeMethodNotAllowed = "METHOD_NOT_ALLOWED"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	ErrCodeInternal: http.StatusInternalServerError,

	ErrCodeValidation: http.StatusBadRequest,
	ErrCodeBadRequest: http.StatusBadRequest,

	ErrCodeUnauthorized:    http.StatusUnauthorized,
	ErrCodeInvalidCreds:    http.StatusUnauthorized,
	ErrCodeForbidden:       http.StatusForbidden,
	ErrCodeAccountInactive: http.StatusForbidden,

	ErrCodeNotFound:         http.StatusNotFound,
	ErrCodeMethodNotAllowed: http.StatusMethodNotAllowed,

	ErrCodeAlreadyExists:   http.StatusConflict,
	ErrCodeDuplicateNumber: http.StatusConflict,
	ErrCodeConcurrency:     http.StatusConflict,

	ErrCodeRequestTooLarge: http.StatusRequestEntityTooLarge,
	ErrCodeInvalidState:    http.StatusUnprocessableEntity,
	ErrCodeRateLimited:     http.StatusTooManyRequests,

	ErrCodeSequenceExhaust: http.StatusInternalServerError,
	ErrCodeConversion:      http.StatusInternalServerError,
}

// GetHTTPStatus returns the HTTP status code for an error code. Codes
// without an explicit entry fall back by prefix: INVALID_* is a 400 and
// TOKEN_* a 401. Anything else is a 500.
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	switch {
	case strings.HasPrefix(code, "INVALID_"):
		return http.StatusBadRequest
	case strings.HasPrefix(code, "TOKEN_"):
		return http.StatusUnauthorized
	}
	return http.StatusInternalServerError
}
