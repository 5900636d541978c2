package domain

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Answer is a session-local answer to one question. It is a closed sum type:
// SingleAnswer, MultipleAnswer, OpenEndedAnswer and RatingAnswer are the only
// implementations, and consumers switch over all four.
type Answer interface {
	Kind() QuestionType
	// Skipped reports whether the answer is the canonical empty value.
	Skipped() bool
	isAnswer()
}

// SingleAnswer holds an index into the question options; nil is a skip.
type SingleAnswer struct{ Value *int }

// MultipleAnswer holds zero or more option indexes; empty is a skip.
type MultipleAnswer struct{ Value []int }

// OpenEndedAnswer holds free text; empty is a skip.
type OpenEndedAnswer struct{ Value string }

// RatingAnswer holds a value in [1, scale]; nil is a skip.
type RatingAnswer struct{ Value *int }

func (SingleAnswer) Kind() QuestionType    { return QuestionSingle }
func (MultipleAnswer) Kind() QuestionType  { return QuestionMultiple }
func (OpenEndedAnswer) Kind() QuestionType { return QuestionOpenEnded }
func (RatingAnswer) Kind() QuestionType    { return QuestionRating }

func (a SingleAnswer) Skipped() bool    { return a.Value == nil }
func (a MultipleAnswer) Skipped() bool  { return len(a.Value) == 0 }
func (a OpenEndedAnswer) Skipped() bool { return a.Value == "" }
func (a RatingAnswer) Skipped() bool    { return a.Value == nil }

func (SingleAnswer) isAnswer()    {}
func (MultipleAnswer) isAnswer()  {}
func (OpenEndedAnswer) isAnswer() {}
func (RatingAnswer) isAnswer()    {}

// IntPtr is a small helper for optional indexes and ratings.
func IntPtr(v int) *int { return &v }

// EmptyAnswer returns the canonical skip value for a question type.
func EmptyAnswer(t QuestionType) (Answer, error) {
	switch t {
	case QuestionSingle:
		return SingleAnswer{}, nil
	case QuestionMultiple:
		return MultipleAnswer{Value: []int{}}, nil
	case QuestionOpenEnded:
		return OpenEndedAnswer{}, nil
	case QuestionRating:
		return RatingAnswer{}, nil
	}
	return nil, fmt.Errorf("%w: unknown question type %q", ErrInvalidAnswer, t)
}

// ValidateAnswer checks that a matches the question's type and bounds.
func ValidateAnswer(q Question, a Answer) error {
	if a == nil {
		return fmt.Errorf("%w: nil answer", ErrInvalidAnswer)
	}
	if a.Kind() != q.Type {
		return fmt.Errorf("%w: %s answer for %s question", ErrInvalidAnswer, a.Kind(), q.Type)
	}
	switch v := a.(type) {
	case SingleAnswer:
		if v.Value != nil && (*v.Value < 0 || *v.Value >= len(q.Options)) {
			return fmt.Errorf("%w: option %d out of range", ErrInvalidAnswer, *v.Value)
		}
	case MultipleAnswer:
		seen := make(map[int]struct{}, len(v.Value))
		for _, idx := range v.Value {
			if idx < 0 || idx >= len(q.Options) {
				return fmt.Errorf("%w: option %d out of range", ErrInvalidAnswer, idx)
			}
			if _, dup := seen[idx]; dup {
				return fmt.Errorf("%w: option %d selected twice", ErrInvalidAnswer, idx)
			}
			seen[idx] = struct{}{}
		}
	case OpenEndedAnswer:
	case RatingAnswer:
		if v.Value != nil && (*v.Value < 1 || *v.Value > q.Scale()) {
			return fmt.Errorf("%w: rating %d outside 1..%d", ErrInvalidAnswer, *v.Value, q.Scale())
		}
	}
	return nil
}

// AnswerToResponse shapes an answer into its persisted record. Only the value
// field owned by the answer's type is populated.
func AnswerToResponse(sessionID, objectID, questionID string, a Answer, ts int64) Response {
	r := Response{
		ID:         ResponseID(sessionID, questionID),
		SessionID:  sessionID,
		QuestionID: questionID,
		ObjectID:   objectID,
		Type:       a.Kind(),
		Timestamp:  ts,
	}
	switch v := a.(type) {
	case SingleAnswer:
		if v.Value != nil {
			r.SelectedOptionIndex = IntPtr(*v.Value)
		}
	case MultipleAnswer:
		r.SelectedOptionIndexes = append([]int{}, v.Value...)
	case OpenEndedAnswer:
		text := v.Value
		r.TextAnswer = &text
	case RatingAnswer:
		if v.Value != nil {
			r.RatingValue = IntPtr(*v.Value)
		}
	}
	return r
}

// CloneAnswer copies the mutable parts of an answer.
func CloneAnswer(a Answer) Answer {
	switch v := a.(type) {
	case SingleAnswer:
		if v.Value != nil {
			return SingleAnswer{Value: IntPtr(*v.Value)}
		}
		return SingleAnswer{}
	case MultipleAnswer:
		return MultipleAnswer{Value: append([]int{}, v.Value...)}
	case OpenEndedAnswer:
		return v
	case RatingAnswer:
		if v.Value != nil {
			return RatingAnswer{Value: IntPtr(*v.Value)}
		}
		return RatingAnswer{}
	}
	return a
}

// AnswerSet maps question ids to answers.
type AnswerSet map[string]Answer

// Clone returns a deep copy.
func (s AnswerSet) Clone() AnswerSet {
	out := make(AnswerSet, len(s))
	for k, v := range s {
		out[k] = CloneAnswer(v)
	}
	return out
}

type answerJSON struct {
	Type  QuestionType    `json:"type"`
	Value json.RawMessage `json:"value"`
}

// MarshalAnswer encodes an answer as {"type": ..., "value": ...}.
func MarshalAnswer(a Answer) ([]byte, error) {
	var value any
	switch v := a.(type) {
	case SingleAnswer:
		value = v.Value
	case MultipleAnswer:
		value = v.Value
		if v.Value == nil {
			value = []int{}
		}
	case OpenEndedAnswer:
		value = v.Value
	case RatingAnswer:
		value = v.Value
	default:
		return nil, fmt.Errorf("%w: unsupported answer %T", ErrInvalidAnswer, a)
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return nil, err
	}
	return json.Marshal(answerJSON{Type: a.Kind(), Value: raw})
}

// UnmarshalAnswer decodes the tagged form produced by MarshalAnswer.
func UnmarshalAnswer(data []byte) (Answer, error) {
	var env answerJSON
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidAnswer, err)
	}
	if len(env.Value) == 0 || strings.TrimSpace(string(env.Value)) == "null" {
		return EmptyAnswer(env.Type)
	}
	switch env.Type {
	case QuestionSingle:
		var v int
		if err := json.Unmarshal(env.Value, &v); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidAnswer, err)
		}
		return SingleAnswer{Value: &v}, nil
	case QuestionMultiple:
		v := []int{}
		if err := json.Unmarshal(env.Value, &v); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidAnswer, err)
		}
		return MultipleAnswer{Value: v}, nil
	case QuestionOpenEnded:
		var v string
		if err := json.Unmarshal(env.Value, &v); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidAnswer, err)
		}
		return OpenEndedAnswer{Value: v}, nil
	case QuestionRating:
		var v int
		if err := json.Unmarshal(env.Value, &v); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidAnswer, err)
		}
		return RatingAnswer{Value: &v}, nil
	}
	return nil, fmt.Errorf("%w: unknown answer type %q", ErrInvalidAnswer, env.Type)
}

// MarshalJSON encodes every answer in its tagged form.
func (s AnswerSet) MarshalJSON() ([]byte, error) {
	out := make(map[string]json.RawMessage, len(s))
	for k, v := range s {
		raw, err := MarshalAnswer(v)
		if err != nil {
			return nil, err
		}
		out[k] = raw
	}
	return json.Marshal(out)
}

// UnmarshalJSON decodes a map of tagged answers.
func (s *AnswerSet) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	out := make(AnswerSet, len(raw))
	for k, v := range raw {
		a, err := UnmarshalAnswer(v)
		if err != nil {
			return err
		}
		out[k] = a
	}
	*s = out
	return nil
}
