package domain

import (
	"errors"
	"strings"
)

var (
	// ErrSessionNotFound is returned when a device has no player session yet.
	ErrSessionNotFound = errors.New("player session not found")
	// ErrObjectNotFound indicates an unknown object id.
	ErrObjectNotFound = errors.New("object not found")
	// ErrQuestionNotFound indicates an unknown question id.
	ErrQuestionNotFound = errors.New("question not found")
	// ErrObjectCompleted is returned when a completed object is selected again.
	ErrObjectCompleted = errors.New("object already completed")
	// ErrInvalidTransition is returned when an event does not apply to the current view.
	ErrInvalidTransition = errors.New("invalid view transition")
	// ErrNoQuestions is returned when navigating an object without questions.
	ErrNoQuestions = errors.New("no questions available")
	// ErrInvalidAnswer indicates an answer that does not fit its question.
	ErrInvalidAnswer = errors.New("invalid answer")
	// ErrAnswerRequired is returned when moving on from an unanswered question without skipping.
	ErrAnswerRequired = errors.New("answer required")
	// ErrEventNotPublished blocks players while the host is still editing.
	ErrEventNotPublished = errors.New("event not published")
	// ErrPrizeDisabled is returned for prize actions while the feature is off.
	ErrPrizeDisabled = errors.New("prize feature disabled")
	// ErrPersistence wraps a rejected store transaction.
	ErrPersistence = errors.New("persistence failure")
	// ErrConcurrentModification is returned when an optimistic transaction lost a race.
	ErrConcurrentModification = errors.New("concurrent modification")
	// ErrConfirmationRequired guards irreversible host actions.
	ErrConfirmationRequired = errors.New("confirmation required")
)

// ValidationError is a non-fatal, user-facing problem with a single field.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e ValidationError) Error() string {
	return e.Field + ": " + e.Message
}

// ValidationErrors collects every problem found in one validation pass.
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	msgs := make([]string, 0, len(e))
	for _, v := range e {
		msgs = append(msgs, v.Message)
	}
	return strings.Join(msgs, ", ")
}
