package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"feedbacker-service/internal/domain"
)

type errorPayload struct {
	Message string                   `json:"message"`
	Code    string                   `json:"code"`
	Fields  []domain.ValidationError `json:"fields,omitempty"`
}

// classify maps a service error to an HTTP status and a stable code clients
// can branch on.
func classify(err error) (int, string) {
	var verrs domain.ValidationErrors
	var verr domain.ValidationError
	switch {
	case errors.As(err, &verrs), errors.As(err, &verr):
		return http.StatusUnprocessableEntity, "validation"
	case errors.Is(err, domain.ErrObjectNotFound),
		errors.Is(err, domain.ErrQuestionNotFound),
		errors.Is(err, domain.ErrSessionNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, domain.ErrConcurrentModification):
		return http.StatusConflict, "concurrent_modification"
	case errors.Is(err, domain.ErrObjectCompleted):
		return http.StatusConflict, "object_completed"
	case errors.Is(err, domain.ErrEventNotPublished):
		return http.StatusConflict, "event_not_published"
	case errors.Is(err, domain.ErrInvalidTransition):
		return http.StatusConflict, "invalid_transition"
	case errors.Is(err, domain.ErrPrizeDisabled):
		return http.StatusConflict, "prize_disabled"
	case errors.Is(err, domain.ErrConfirmationRequired):
		return http.StatusBadRequest, "confirmation_required"
	case errors.Is(err, domain.ErrAnswerRequired):
		return http.StatusBadRequest, "answer_required"
	case errors.Is(err, domain.ErrInvalidAnswer):
		return http.StatusBadRequest, "invalid_answer"
	case errors.Is(err, domain.ErrNoQuestions):
		return http.StatusBadRequest, "no_questions"
	case errors.Is(err, domain.ErrPersistence):
		return http.StatusServiceUnavailable, "persistence"
	}
	return http.StatusInternalServerError, "internal"
}

func newErrorPayload(err error) errorPayload {
	_, code := classify(err)
	p := errorPayload{Message: err.Error(), Code: code}
	var verrs domain.ValidationErrors
	var verr domain.ValidationError
	switch {
	case errors.As(err, &verrs):
		p.Fields = verrs
	case errors.As(err, &verr):
		p.Fields = []domain.ValidationError{verr}
	}
	return p
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	status, _ := classify(err)
	writeJSON(w, status, newErrorPayload(err))
}

func writeBadRequest(w http.ResponseWriter, message string) {
	writeJSON(w, http.StatusBadRequest, errorPayload{Message: message, Code: "bad_request"})
}
