// Package apierror is the single error envelope of the HTTP adapter. Clients
// switch on Code; Detail is for humans and never carries driver errors.
package apierror

import "github.com/gin-gonic/gin"

// RequestIDKey is the gin context key the request id middleware writes.
const RequestIDKey = "request_id"

type Code string

const (
	CodeBadRequest      Code = "bad_request"
	CodeValidation      Code = "validation_failed"
	CodeUnauthorized    Code = "unauthorized"
	CodeForbidden       Code = "forbidden"
	CodeNotFound        Code = "not_found"
	CodeRateExists      Code = "rate_exists"
	CodeRateUnavailable Code = "rate_unavailable"
	CodeNumberingBusy   Code = "numbering_busy"
	CodeTooManyRequests Code = "too_many_requests"
	CodeInternal        Code = "internal"
)

type APIError struct {
	Code      Code              `json:"code"`
	Detail    string            `json:"detail"`
	Fields    map[string]string `json:"fields,omitempty"`
	RequestID string            `json:"request_id,omitempty"`
}

func New(code Code, msg string) *APIError {
	return &APIError{Code: code, Detail: msg}
}

// NewValidation reports per-field failures keyed by wire name, e.g.
// items[0].gross_weight.
func NewValidation(fields map[string]string) *APIError {
	return &APIError{Code: CodeValidation, Detail: "validation failed", Fields: fields}
}

// Internal is the only body a 5xx ever carries.
func Internal() *APIError { return New(CodeInternal, "internal server error") }

// JSON writes e stamped with the request id.
func JSON(c *gin.Context, status int, e *APIError) {
	e.RequestID = c.GetString(RequestIDKey)
	c.JSON(status, e)
}

// Abort is JSON followed by c.Abort.
func Abort(c *gin.Context, status int, e *APIError) {
	e.RequestID = c.GetString(RequestIDKey)
	c.AbortWithStatusJSON(status, e)
}
