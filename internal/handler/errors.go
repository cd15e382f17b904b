package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/pkordes/tourbook/internal/domain"
)

// writeJSON encodes v with the given status.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	//nolint:errcheck // the status line is already on the wire.
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string, fields map[string]string) {
	writeJSON(w, status, ErrorResponse{Error: ErrorDetail{Code: code, Message: message, Fields: fields}})
}

// requestError rejects a request before it reaches the service layer
// (e.g. missing or malformed body or parameter).
func requestError(w http.ResponseWriter, message string) {
	writeError(w, http.StatusUnprocessableEntity, "validation_error", message, nil)
}

// notFound writes a 404. The caller supplies the message because the handler
// knows what was being looked up.
func notFound(w http.ResponseWriter, message string) {
	writeError(w, http.StatusNotFound, "not_found", message, nil)
}

// writeServiceError maps a service error onto the error envelope. Unknown
// errors are logged and answered with a generic 500.
func (s *Server) writeServiceError(w http.ResponseWriter, r *http.Request, err error, what string) {
	var fields domain.FieldErrors
	switch {
	case errors.As(err, &fields):
		writeError(w, http.StatusUnprocessableEntity, "validation_error", "please correct the highlighted fields", fields)
	case errors.Is(err, domain.ErrValidation):
		writeError(w, http.StatusUnprocessableEntity, "validation_error", unwrapMessage(err, domain.ErrValidation), nil)
	case errors.Is(err, domain.ErrNotFound):
		notFound(w, what+" not found")
	case errors.Is(err, domain.ErrMissingContext):
		w.Header().Set("Location", "/destinations")
		writeError(w, http.StatusSeeOther, "missing_context", unwrapMessage(err, domain.ErrMissingContext), nil)
	case errors.Is(err, domain.ErrSubmissionInFlight):
		writeError(w, http.StatusConflict, "submission_in_flight", "a submission for this booking is still in progress", nil)
	case errors.Is(err, domain.ErrInvalidTransition):
		writeError(w, http.StatusConflict, "invalid_transition", unwrapMessage(err, domain.ErrInvalidTransition), nil)
	case errors.Is(err, domain.ErrSessionClosed), errors.Is(err, domain.ErrAbandoned):
		writeError(w, http.StatusGone, "session_closed", "this booking session has been closed", nil)
	case errors.Is(err, domain.ErrSubmission):
		writeError(w, http.StatusBadGateway, "submission_failed",
			"we could not complete your booking, please try again", nil)
	default:
		s.logger.ErrorContext(r.Context(), "request failed",
			"method", r.Method, "path", r.URL.Path, "error", err)
		writeError(w, http.StatusInternalServerError, "internal_error", "internal server error", nil)
	}
}

// unwrapMessage extracts the human-readable part after sentinel from a
// wrapped error.
// e.g. "service.Workflow.Advance: invalid transition: already at the first step" → "already at the first step"
func unwrapMessage(err, sentinel error) string {
	msg := err.Error()
	marker := sentinel.Error()
	i := strings.LastIndex(msg, marker)
	if i < 0 {
		return msg
	}
	rest := strings.TrimPrefix(msg[i+len(marker):], ": ")
	if rest == "" {
		return marker
	}
	return rest
}
