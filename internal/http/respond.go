package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"

	"smartspend/internal/core"
	"smartspend/internal/ledger"
	"smartspend/internal/log"
	"smartspend/internal/services"
	"smartspend/internal/store"
)

// ErrorResponse is the body of every failed API call.
type ErrorResponse struct {
	Error   string            `json:"error"`
	Details map[string]string `json:"details,omitempty"`
}

// requestError is a client mistake found while reading the request.
type requestError struct {
	msg     string
	details map[string]string
}

func (e *requestError) Error() string { return e.msg }

func badRequest(format string, args ...any) error {
	return &requestError{msg: fmt.Sprintf(format, args...)}
}

func fieldError(field, msg string) error {
	return &requestError{msg: "validation failed", details: map[string]string{field: msg}}
}

// validationError turns validator output into field details.
func validationError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return badRequest("validation failed: %v", err)
	}
	details := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		details[fe.Field()] = fmt.Sprintf("Field validation failed on '%s' tag", fe.Tag())
	}
	return &requestError{msg: "validation failed", details: details}
}

// domainValidation lists errors that mean the input was wrong, not the server.
var domainValidation = []error{
	core.ErrInvalidAmount,
	core.ErrInvalidType,
	core.ErrInvalidAccount,
	core.ErrMissingTarget,
	core.ErrUnexpectedTarget,
	core.ErrEmptyDescription,
	core.ErrDescriptionTooLong,
	core.ErrMissingDate,
	ledger.ErrInvalidPeriod,
	ledger.ErrInvalidAccountFilter,
	services.ErrEmptyPerson,
}

// statusFor maps an error to its HTTP status and public message.
func statusFor(err error) (int, ErrorResponse) {
	var re *requestError
	if errors.As(err, &re) {
		return http.StatusBadRequest, ErrorResponse{Error: re.msg, Details: re.details}
	}
	if errors.Is(err, store.ErrNotFound) {
		return http.StatusNotFound, ErrorResponse{Error: store.ErrNotFound.Error()}
	}
	for _, target := range domainValidation {
		if errors.Is(err, target) {
			return http.StatusBadRequest, ErrorResponse{Error: target.Error()}
		}
	}
	return http.StatusInternalServerError, ErrorResponse{Error: "internal server error"}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, ErrorResponse{Error: msg})
}

// fail writes err as JSON. Server-side failures are logged with the request logger.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, op string, err error) {
	status, body := statusFor(err)
	logger := log.FromContext(r.Context())
	if status >= http.StatusInternalServerError {
		log.NewStructuredLogger(logger).LogError(r.Context(), "Request failed", err, log.ComponentHTTP, op,
			log.NewFields().WithHTTPRequest(r.Method, r.URL.Path, r.URL.RawQuery, "", ""))
	} else {
		logger.DebugContext(r.Context(), "Request rejected",
			log.FieldOperation, op, log.FieldStatusCode, status, log.FieldError, err.Error())
	}
	writeJSON(w, status, body)
}
