package errors

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gokatarajesh/quiz-api/pkg/http/request"
)

// ErrorResponse represents a standardized error response
type ErrorResponse struct {
	Error  string `json:"error"`
	Detail string `json:"detail"`
	Field  string `json:"field,omitempty"`
}

// RespondError writes a standardized error response to the HTTP response writer
func RespondError(w http.ResponseWriter, status int, code, detail string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(ErrorResponse{
		Error:  code,
		Detail: detail,
	})
}

// RespondErrorField is RespondError with the offending field named.
func RespondErrorField(w http.ResponseWriter, status int, code, detail, field string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(ErrorResponse{
		Error:  code,
		Detail: detail,
		Field:  field,
	})
}

// RespondValidationError writes a 422 naming the offending field.
func RespondValidationError(w http.ResponseWriter, detail, field string) {
	RespondErrorField(w, http.StatusUnprocessableEntity, ErrCodeValidationFailed, detail, field)
}

// RespondDecodeError maps request.DecodeJSON failures to a 422.
func RespondDecodeError(w http.ResponseWriter, err error) {
	var verr *request.ValidationError
	switch {
	case errors.As(err, &verr):
		RespondValidationError(w, verr.Message, verr.Field)
	case errors.Is(err, request.ErrEmptyBody):
		RespondValidationError(w, "Request body is required", "")
	default:
		RespondValidationError(w, "Malformed JSON body", "")
	}
}

// RespondInternalError writes an internal server error response. The detail
// is fixed so upstream failures are never echoed to clients.
func RespondInternalError(w http.ResponseWriter) {
	RespondError(w, http.StatusInternalServerError, ErrCodeInternalError, "Internal server error")
}

// RespondNotFound writes a not found error response
func RespondNotFound(w http.ResponseWriter, code, detail string) {
	RespondError(w, http.StatusNotFound, code, detail)
}

// RespondUnauthorized writes a 401 with a Bearer challenge.
func RespondUnauthorized(w http.ResponseWriter, code, detail string) {
	w.Header().Set("WWW-Authenticate", "Bearer")
	RespondError(w, http.StatusUnauthorized, code, detail)
}

// RespondForbidden writes a forbidden error response
func RespondForbidden(w http.ResponseWriter, code, detail string) {
	RespondError(w, http.StatusForbidden, code, detail)
}

// RespondBadRequest writes a bad request error response
func RespondBadRequest(w http.ResponseWriter, code, detail string) {
	RespondError(w, http.StatusBadRequest, code, detail)
}

// RespondMethodNotAllowed writes a 405 and advertises the allowed methods.
func RespondMethodNotAllowed(w http.ResponseWriter, allowed ...string) {
	for _, m := range allowed {
		w.Header().Add("Allow", m)
	}
	RespondError(w, http.StatusMethodNotAllowed, ErrCodeMethodNotAllowed, "Method not allowed")
}

// RespondUnsupportedMediaType writes a 415 error response.
func RespondUnsupportedMediaType(w http.ResponseWriter, detail string) {
	RespondError(w, http.StatusUnsupportedMediaType, ErrCodeUnsupportedMediaType, detail)
}

// RespondServiceUnavailable writes a service unavailable error response
func RespondServiceUnavailable(w http.ResponseWriter, code, detail string) {
	RespondError(w, http.StatusServiceUnavailable, code, detail)
}
