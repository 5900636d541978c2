package player

import (
	"context"
	"errors"
	"testing"

	"feedbacker-service/internal/domain"
)

func sampleQuestions() []domain.Question {
	return []domain.Question{
		{ID: "q3", ObjectID: "A", Type: domain.QuestionRating, RatingScale: 5, CreatedAt: 3},
		{ID: "q1", ObjectID: "A", Type: domain.QuestionSingle, Options: []string{"Good", "Bad"}, CreatedAt: 1},
		{ID: "q2", ObjectID: "A", Type: domain.QuestionMultiple, Options: []string{"Red", "Green", "Blue"}, CreatedAt: 2},
		{ID: "q4", ObjectID: "A", Type: domain.QuestionOpenEnded, CreatedAt: 4},
	}
}

func newTestNavigator(t *testing.T) (*Machine, *Navigator) {
	t.Helper()
	m := newTestMachine(t, &fakeLocal{})
	if err := m.SelectObject("A"); err != nil {
		t.Fatalf("select: %v", err)
	}
	return m, NewNavigator(m, "A", sampleQuestions())
}

func TestNavigatorOrdersByCreation(t *testing.T) {
	_, n := newTestNavigator(t)
	q, ok := n.Current()
	if !ok || q.ID != "q1" || !n.IsFirst() || n.Len() != 4 {
		t.Fatalf("expected to start on q1 of 4, got %+v", q)
	}
}

func TestCanProceedPerType(t *testing.T) {
	_, n := newTestNavigator(t)

	if n.CanProceed() {
		t.Fatalf("single without answer must not proceed")
	}
	if err := n.Next(); !errors.Is(err, domain.ErrAnswerRequired) {
		t.Fatalf("expected answer required, got %v", err)
	}
	if err := n.SelectOption(1); err != nil {
		t.Fatalf("select option: %v", err)
	}
	if !n.CanProceed() {
		t.Fatalf("single with answer should proceed")
	}
	if err := n.Next(); err != nil {
		t.Fatalf("next: %v", err)
	}

	// multiple: draft decides
	if n.CanProceed() {
		t.Fatalf("empty multiple draft must not proceed")
	}
	_ = n.ToggleOption(2)
	if !n.CanProceed() {
		t.Fatalf("multiple with selection should proceed")
	}
	if err := n.Next(); err != nil {
		t.Fatalf("next: %v", err)
	}

	// rating: midpoint is displayed but not an answer
	if n.RatingDisplayValue() != 3 || n.CanProceed() {
		t.Fatalf("expected midpoint 3 without proceeding, got %d", n.RatingDisplayValue())
	}
	if err := n.SetRating(6); !errors.Is(err, domain.ErrInvalidAnswer) {
		t.Fatalf("expected out of range rating to fail, got %v", err)
	}
	_ = n.SetRating(4)
	if !n.CanProceed() || n.RatingDisplayValue() != 4 {
		t.Fatalf("expected rating 4 to allow proceeding")
	}
	_ = n.Next()

	// open-ended: trimmed draft decides
	_ = n.SetText("   ")
	if n.CanProceed() {
		t.Fatalf("blank text must not proceed")
	}
	_ = n.SetText("nice")
	if !n.CanProceed() || !n.IsLast() {
		t.Fatalf("expected last question with text to proceed")
	}
}

func TestDraftsFlushAndRestore(t *testing.T) {
	m, n := newTestNavigator(t)
	_ = n.SelectOption(0)
	_ = n.Next()
	_ = n.ToggleOption(0)
	_ = n.ToggleOption(2)
	_ = n.ToggleOption(0)

	if err := n.Previous(); err != nil {
		t.Fatalf("previous: %v", err)
	}
	stored, ok := m.Snapshot().CurrentAnswers["q2"].(domain.MultipleAnswer)
	if !ok || len(stored.Value) != 1 || stored.Value[0] != 2 {
		t.Fatalf("expected q2 flushed as [2], got %+v", m.Snapshot().CurrentAnswers["q2"])
	}
	if sel, _ := n.Drafts(); len(sel) != 0 {
		t.Fatalf("expected drafts reset on q1, got %v", sel)
	}

	_ = n.Next()
	if sel, _ := n.Drafts(); len(sel) != 1 || sel[0] != 2 {
		t.Fatalf("expected q2 draft restored, got %v", sel)
	}
}

func TestPreviousAndNextBounds(t *testing.T) {
	_, n := newTestNavigator(t)
	if err := n.Previous(); err != nil || n.Index() != 0 {
		t.Fatalf("previous on first should no-op, index=%d err=%v", n.Index(), err)
	}
	for i := 0; i < 3; i++ {
		_ = n.Skip()
	}
	if !n.IsLast() {
		t.Fatalf("expected last question after three skips, index=%d", n.Index())
	}
	_ = n.SetText("done")
	if err := n.Next(); err != nil || n.Index() != 3 {
		t.Fatalf("next on last should stay, index=%d err=%v", n.Index(), err)
	}
}

func TestSkipRecordsCanonicalEmptyValues(t *testing.T) {
	m, n := newTestNavigator(t)
	for i := 0; i < 4; i++ {
		if err := n.Skip(); err != nil {
			t.Fatalf("skip %d: %v", i, err)
		}
	}
	answers := m.Snapshot().CurrentAnswers
	if a, ok := answers["q1"].(domain.SingleAnswer); !ok || a.Value != nil {
		t.Fatalf("q1: expected null single, got %+v", answers["q1"])
	}
	if a, ok := answers["q2"].(domain.MultipleAnswer); !ok || a.Value == nil || len(a.Value) != 0 {
		t.Fatalf("q2: expected [] multiple, got %+v", answers["q2"])
	}
	if a, ok := answers["q3"].(domain.RatingAnswer); !ok || a.Value != nil {
		t.Fatalf("q3: expected null rating, got %+v", answers["q3"])
	}
	if a, ok := answers["q4"].(domain.OpenEndedAnswer); !ok || a.Value != "" {
		t.Fatalf("q4: expected empty text, got %+v", answers["q4"])
	}
	for _, a := range answers {
		if !a.Skipped() {
			t.Fatalf("expected skipped answer, got %+v", a)
		}
	}
}

func TestFinishOnLastQuestion(t *testing.T) {
	m, n := newTestNavigator(t)
	_ = n.SelectOption(0)
	_ = n.Next()
	_ = n.ToggleOption(1)
	_ = n.Next()
	_ = n.SetRating(5)
	_ = n.Next()

	p := &recordingPersister{}
	if err := n.Finish(context.Background(), p, false); !errors.Is(err, domain.ErrAnswerRequired) {
		t.Fatalf("expected unanswered last question to block finish, got %v", err)
	}
	_ = n.SetText("draft that gets skipped")
	if err := n.Skip(); err != nil {
		t.Fatalf("skip: %v", err)
	}
	if _, text := n.Drafts(); text != "" {
		t.Fatalf("expected skip to clear the draft, got %q", text)
	}
	if err := n.Finish(context.Background(), p, false); err != nil {
		t.Fatalf("finish after skip: %v", err)
	}
	if got := p.last["q4"].(domain.OpenEndedAnswer).Value; got != "" {
		t.Fatalf("expected skipped text to persist empty, got %q", got)
	}
	if got := p.last["q2"].(domain.MultipleAnswer).Value; len(got) != 1 || got[0] != 1 {
		t.Fatalf("expected q2 flushed as [1], got %v", got)
	}
	if s := m.Snapshot(); s.View != ViewIntro || !s.IsCompleted("A") || len(s.CurrentAnswers) != 0 {
		t.Fatalf("unexpected state after finish: %+v", s)
	}
}

func TestGoToFlushesDrafts(t *testing.T) {
	m, n := newTestNavigator(t)
	_ = n.GoTo(3)
	_ = n.SetText("jumped here")
	if err := n.GoTo(0); err != nil {
		t.Fatalf("goto: %v", err)
	}
	if a, ok := m.Snapshot().CurrentAnswers["q4"].(domain.OpenEndedAnswer); !ok || a.Value != "jumped here" {
		t.Fatalf("expected q4 draft saved, got %+v", m.Snapshot().CurrentAnswers["q4"])
	}
	if err := n.GoTo(9); !errors.Is(err, domain.ErrQuestionNotFound) {
		t.Fatalf("expected out of range jump to fail, got %v", err)
	}
}

func TestSetTextTruncatesToInputLength(t *testing.T) {
	m := newTestMachine(t, &fakeLocal{})
	_ = m.SelectObject("A")
	n := NewNavigator(m, "A", []domain.Question{{ID: "q", Type: domain.QuestionOpenEnded, OpenEndedLength: domain.OpenEndedShort}})
	long := make([]rune, 150)
	for i := range long {
		long[i] = 'x'
	}
	_ = n.SetText(string(long))
	if _, text := n.Drafts(); len(text) != 100 {
		t.Fatalf("expected 100 characters, got %d", len(text))
	}
}

func TestRecordAnswerValidatesType(t *testing.T) {
	_, n := newTestNavigator(t)
	if err := n.RecordAnswer("q1", domain.RatingAnswer{Value: domain.IntPtr(1)}); !errors.Is(err, domain.ErrInvalidAnswer) {
		t.Fatalf("expected type mismatch, got %v", err)
	}
	if err := n.RecordAnswer("nope", domain.SingleAnswer{}); !errors.Is(err, domain.ErrQuestionNotFound) {
		t.Fatalf("expected unknown question, got %v", err)
	}
	if err := n.RecordAnswer("q2", domain.MultipleAnswer{Value: []int{0, 1}}); err != nil {
		t.Fatalf("record future question: %v", err)
	}
}

func TestNavigatorWithoutQuestions(t *testing.T) {
	m := newTestMachine(t, &fakeLocal{})
	_ = m.SelectObject("empty")
	n := NewNavigator(m, "empty", nil)

	if _, ok := n.Current(); ok {
		t.Fatalf("expected no current question")
	}
	if n.CanProceed() {
		t.Fatalf("expected no navigation")
	}
	for _, err := range []error{n.Next(), n.Previous(), n.Skip(), n.Finish(context.Background(), &recordingPersister{}, false)} {
		if !errors.Is(err, domain.ErrNoQuestions) {
			t.Fatalf("expected no questions error, got %v", err)
		}
	}
}
