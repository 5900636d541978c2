package player

import (
	"context"
	"slices"
	"strings"

	"feedbacker-service/internal/domain"
)

// Navigator walks the questions of the selected object. Single and rating
// answers go to the machine as soon as they are picked; multiple-choice
// selections and free text stay in drafts until the player moves or finishes.
type Navigator struct {
	machine   *Machine
	objectID  string
	questions []domain.Question
	index     int

	draftMultiple []int
	draftText     string
}

// NewNavigator starts on the first question of objectID. Questions are shown in
// creation order.
func NewNavigator(machine *Machine, objectID string, questions []domain.Question) *Navigator {
	qs := slices.Clone(questions)
	domain.SortQuestions(qs)
	n := &Navigator{machine: machine, objectID: objectID, questions: qs}
	n.loadDrafts()
	return n
}

// ObjectID is the object being answered.
func (n *Navigator) ObjectID() string { return n.objectID }

// Len is the number of questions of the object.
func (n *Navigator) Len() int { return len(n.questions) }

// Index is the zero-based position of the current question.
func (n *Navigator) Index() int { return n.index }

// IsFirst reports whether the current question is the first one.
func (n *Navigator) IsFirst() bool { return n.index == 0 }

// IsLast reports whether the current question is the last one.
func (n *Navigator) IsLast() bool { return n.index >= len(n.questions)-1 }

// Current returns the question on screen; ok is false for an object without questions.
func (n *Navigator) Current() (domain.Question, bool) {
	if n.index < 0 || n.index >= len(n.questions) {
		return domain.Question{}, false
	}
	return n.questions[n.index], true
}

// Drafts returns the unsaved multiple-choice selection and text.
func (n *Navigator) Drafts() ([]int, string) {
	return slices.Clone(n.draftMultiple), n.draftText
}

// CurrentAnswer returns the stored answer of the current question, if any.
func (n *Navigator) CurrentAnswer() (domain.Answer, bool) {
	q, ok := n.Current()
	if !ok {
		return nil, false
	}
	a, ok := n.machine.Snapshot().CurrentAnswers[q.ID]
	return a, ok
}

// RecordAnswer stores an answer for any question of the object, overwriting
// an earlier draft. Drafts of the current question follow the stored value.
func (n *Navigator) RecordAnswer(questionID string, answer domain.Answer) error {
	q, ok := n.question(questionID)
	if !ok {
		return domain.ErrQuestionNotFound
	}
	if err := domain.ValidateAnswer(q, answer); err != nil {
		return err
	}
	if err := n.machine.SetAnswer(n.objectID, questionID, answer); err != nil {
		return err
	}
	if cur, ok := n.Current(); ok && cur.ID == questionID {
		n.loadDrafts()
	}
	return nil
}

// SelectOption picks an option by authored index. Single choice is stored at
// once; multiple choice toggles the draft selection.
func (n *Navigator) SelectOption(index int) error {
	q, ok := n.Current()
	if !ok {
		return domain.ErrNoQuestions
	}
	switch q.Type {
	case domain.QuestionSingle:
		return n.RecordAnswer(q.ID, domain.SingleAnswer{Value: domain.IntPtr(index)})
	case domain.QuestionMultiple:
		return n.ToggleOption(index)
	}
	return domain.ErrInvalidAnswer
}

// ToggleOption adds or removes an option from the multiple-choice draft.
func (n *Navigator) ToggleOption(index int) error {
	q, ok := n.Current()
	if !ok {
		return domain.ErrNoQuestions
	}
	if q.Type != domain.QuestionMultiple || index < 0 || index >= len(q.Options) {
		return domain.ErrInvalidAnswer
	}
	if i := slices.Index(n.draftMultiple, index); i >= 0 {
		n.draftMultiple = slices.Delete(n.draftMultiple, i, i+1)
	} else {
		n.draftMultiple = append(n.draftMultiple, index)
	}
	return nil
}

// SetText replaces the open-ended draft.
func (n *Navigator) SetText(text string) error {
	q, ok := n.Current()
	if !ok {
		return domain.ErrNoQuestions
	}
	if q.Type != domain.QuestionOpenEnded {
		return domain.ErrInvalidAnswer
	}
	if r := []rune(text); len(r) > MaxTextLength(q) {
		text = string(r[:MaxTextLength(q)])
	}
	n.draftText = text
	return nil
}

// SetRating stores a rating for the current question.
func (n *Navigator) SetRating(value int) error {
	q, ok := n.Current()
	if !ok {
		return domain.ErrNoQuestions
	}
	return n.RecordAnswer(q.ID, domain.RatingAnswer{Value: domain.IntPtr(value)})
}

// MaxTextLength is the longest open-ended answer the input accepts.
func MaxTextLength(q domain.Question) int {
	if q.OpenEndedLength == domain.OpenEndedShort {
		return 100
	}
	return 500
}

// RatingDisplayValue is what the rating control shows: the stored rating, or the
// scale midpoint rounded up. The midpoint is not an answer.
func (n *Navigator) RatingDisplayValue() int {
	q, ok := n.Current()
	if !ok || q.Type != domain.QuestionRating {
		return 0
	}
	if a, ok := n.CurrentAnswer(); ok {
		if r, ok := a.(domain.RatingAnswer); ok && r.Value != nil {
			return *r.Value
		}
	}
	return (q.Scale() + 1) / 2
}

// CanProceed reports whether Next or Finish may be used. Skip is always allowed.
func (n *Navigator) CanProceed() bool {
	q, ok := n.Current()
	if !ok {
		return false
	}
	switch q.Type {
	case domain.QuestionSingle:
		a, ok := n.CurrentAnswer()
		s, isSingle := a.(domain.SingleAnswer)
		return ok && isSingle && s.Value != nil
	case domain.QuestionMultiple:
		return len(n.draftMultiple) > 0
	case domain.QuestionOpenEnded:
		return strings.TrimSpace(n.draftText) != ""
	case domain.QuestionRating:
		a, ok := n.CurrentAnswer()
		r, isRating := a.(domain.RatingAnswer)
		return ok && isRating && r.Value != nil
	}
	return false
}

// Skip records the empty answer for the current question and moves on unless
// it is the last one.
func (n *Navigator) Skip() error {
	q, ok := n.Current()
	if !ok {
		return domain.ErrNoQuestions
	}
	empty, err := domain.EmptyAnswer(q.Type)
	if err != nil {
		return err
	}
	if err := n.machine.SetAnswer(n.objectID, q.ID, empty); err != nil {
		return err
	}
	if !n.IsLast() {
		n.index++
	}
	n.loadDrafts()
	return nil
}

// Next saves the drafts and moves forward; on the last question it only saves.
func (n *Navigator) Next() error {
	if _, ok := n.Current(); !ok {
		return domain.ErrNoQuestions
	}
	if !n.CanProceed() {
		return domain.ErrAnswerRequired
	}
	if err := n.flush(); err != nil {
		return err
	}
	if !n.IsLast() {
		n.index++
		n.loadDrafts()
	}
	return nil
}

// Previous saves the drafts and moves back; on the first question it only saves.
func (n *Navigator) Previous() error {
	if _, ok := n.Current(); !ok {
		return domain.ErrNoQuestions
	}
	if err := n.flush(); err != nil {
		return err
	}
	if !n.IsFirst() {
		n.index--
		n.loadDrafts()
	}
	return nil
}

// GoTo jumps to a question by position, saving the drafts first.
func (n *Navigator) GoTo(index int) error {
	if _, ok := n.Current(); !ok {
		return domain.ErrNoQuestions
	}
	if index < 0 || index >= len(n.questions) {
		return domain.ErrQuestionNotFound
	}
	if err := n.flush(); err != nil {
		return err
	}
	n.index = index
	n.loadDrafts()
	return nil
}

// Finish saves the drafts and hands the answers to the machine, which persists
// them and leaves the object. A skipped last question does not block finishing.
func (n *Navigator) Finish(ctx context.Context, persister AnswerPersister, prizeEnabled bool) error {
	if _, ok := n.Current(); !ok {
		return domain.ErrNoQuestions
	}
	if !n.CanProceed() && !n.currentSkipped() {
		return domain.ErrAnswerRequired
	}
	if err := n.flush(); err != nil {
		return err
	}
	return n.machine.FinishObject(ctx, persister, prizeEnabled)
}

func (n *Navigator) currentSkipped() bool {
	a, ok := n.CurrentAnswer()
	return ok && a.Skipped()
}

// flush copies the drafts of a multiple or open-ended question into the machine.
func (n *Navigator) flush() error {
	q, ok := n.Current()
	if !ok {
		return nil
	}
	switch q.Type {
	case domain.QuestionMultiple:
		return n.machine.SetAnswer(n.objectID, q.ID, domain.MultipleAnswer{Value: slices.Clone(n.draftMultiple)})
	case domain.QuestionOpenEnded:
		return n.machine.SetAnswer(n.objectID, q.ID, domain.OpenEndedAnswer{Value: n.draftText})
	}
	return nil
}

// loadDrafts restores the drafts of the current question from its stored answer.
func (n *Navigator) loadDrafts() {
	n.draftMultiple = []int{}
	n.draftText = ""
	a, ok := n.CurrentAnswer()
	if !ok {
		return
	}
	switch v := a.(type) {
	case domain.MultipleAnswer:
		n.draftMultiple = slices.Clone(v.Value)
		if n.draftMultiple == nil {
			n.draftMultiple = []int{}
		}
	case domain.OpenEndedAnswer:
		n.draftText = v.Value
	case domain.SingleAnswer, domain.RatingAnswer:
	}
}

func (n *Navigator) question(id string) (domain.Question, bool) {
	for _, q := range n.questions {
		if q.ID == id {
			return q, true
		}
	}
	return domain.Question{}, false
}
