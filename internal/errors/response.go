package errors

import (
	"net/http"

	"github.com/cockroachdb/errors"
)

// ErrorDetail is the payload embedded in an ErrorResponse.
type ErrorDetail struct {
	Message string                 `json:"message"`
	Hint    string                 `json:"hint,omitempty"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// ErrorResponse is the wire shape for errors returned by the HTTP API.
type ErrorResponse struct {
	Success bool        `json:"success"`
	Error   ErrorDetail `json:"error"`
}

// NewErrorResponse converts any error into the API error shape. Internal
// causes are surfaced verbatim only for InternalError; anything else gets a
// generic message to avoid leaking internals.
func NewErrorResponse(err error) *ErrorResponse {
	var ie *InternalError
	if errors.As(err, &ie) {
		return &ErrorResponse{
			Success: false,
			Error: ErrorDetail{
				Message: ie.Error(),
				Hint:    ie.Hint(),
				Details: ie.ReportableDetails(),
			},
		}
	}
	return &ErrorResponse{
		Success: false,
		Error:   ErrorDetail{Message: "internal server error"},
	}
}

// HTTPStatusFromErr maps the error's sentinel mark to an HTTP status code.
func HTTPStatusFromErr(err error) int {
	switch {
	case IsValidation(err):
		return http.StatusBadRequest
	case IsNotFound(err):
		return http.StatusNotFound
	case IsAlreadyExists(err):
		return http.StatusConflict
	case IsInvalidOperation(err):
		return http.StatusUnprocessableEntity
	case errors.Is(err, ErrPermissionDenied):
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}
