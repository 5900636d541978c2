package domain

import (
	"sort"
	"strings"
)

// DefaultPrimaryColor is the brand color of a fresh event.
const DefaultPrimaryColor = "#22c55e"

// DefaultCarouselIntervalSeconds is the presenter rotation period of a fresh event.
const DefaultCarouselIntervalSeconds = 5

// EventState is the shared, openly readable state of one event. Stores hand
// out copies; a value obtained from a store is never mutated by it afterwards.
type EventState struct {
	Branding                Branding                        `json:"branding"`
	IntroMessage            string                          `json:"introMessage"`
	IsPublished             bool                            `json:"isPublished"`
	CarouselIntervalSeconds int                             `json:"carouselIntervalSeconds"`
	Objects                 map[string]FeedbackObject       `json:"objects"`
	Questions               map[string]Question             `json:"questions"`
	Responses               map[string]Response             `json:"responses"`
	CompletedObjects        map[string]CompletedObjectEntry `json:"completedObjects"`
	PrizeEnabled            bool                            `json:"prizeEnabled"`
	PrizeEmailCollection    PrizePage                       `json:"prizeEmailCollection"`
	PrizeClaim              PrizePage                       `json:"prizeClaim"`
	PrizeSubmissionCount    int                             `json:"prizeSubmissionCount"`
}

// NewEventState returns the state of an event nobody has configured yet.
func NewEventState() EventState {
	return EventState{
		Branding:                Branding{PrimaryColor: DefaultPrimaryColor},
		CarouselIntervalSeconds: DefaultCarouselIntervalSeconds,
		Objects:                 map[string]FeedbackObject{},
		Questions:               map[string]Question{},
		Responses:               map[string]Response{},
		CompletedObjects:        map[string]CompletedObjectEntry{},
	}
}

// Clone returns a deep copy that shares no mutable memory with s.
func (s EventState) Clone() EventState {
	out := s
	out.Branding.LogoURL = cloneString(s.Branding.LogoURL)
	out.PrizeEmailCollection.ImageURL = cloneString(s.PrizeEmailCollection.ImageURL)
	out.PrizeClaim.ImageURL = cloneString(s.PrizeClaim.ImageURL)

	out.Objects = make(map[string]FeedbackObject, len(s.Objects))
	for k, v := range s.Objects {
		v.ThumbnailURL = cloneString(v.ThumbnailURL)
		out.Objects[k] = v
	}
	out.Questions = make(map[string]Question, len(s.Questions))
	for k, v := range s.Questions {
		v.Options = append([]string(nil), v.Options...)
		out.Questions[k] = v
	}
	out.Responses = make(map[string]Response, len(s.Responses))
	for k, v := range s.Responses {
		out.Responses[k] = v.Clone()
	}
	out.CompletedObjects = make(map[string]CompletedObjectEntry, len(s.CompletedObjects))
	for k, v := range s.CompletedObjects {
		out.CompletedObjects[k] = v
	}
	return out
}

// Clone returns a deep copy of the response.
func (r Response) Clone() Response {
	if r.SelectedOptionIndex != nil {
		r.SelectedOptionIndex = IntPtr(*r.SelectedOptionIndex)
	}
	if r.SelectedOptionIndexes != nil {
		r.SelectedOptionIndexes = append([]int{}, r.SelectedOptionIndexes...)
	}
	r.TextAnswer = cloneString(r.TextAnswer)
	if r.RatingValue != nil {
		r.RatingValue = IntPtr(*r.RatingValue)
	}
	return r
}

// SortedObjects returns objects ordered by creation time.
func (s EventState) SortedObjects() []FeedbackObject {
	out := make([]FeedbackObject, 0, len(s.Objects))
	for _, o := range s.Objects {
		out = append(out, o)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt != out[j].CreatedAt {
			return out[i].CreatedAt < out[j].CreatedAt
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// QuestionsFor returns the questions of an object ordered by creation time.
func (s EventState) QuestionsFor(objectID string) []Question {
	out := make([]Question, 0)
	for _, q := range s.Questions {
		if q.ObjectID == objectID {
			out = append(out, q)
		}
	}
	SortQuestions(out)
	return out
}

// SortQuestions orders questions by creation time, then id.
func SortQuestions(qs []Question) {
	sort.Slice(qs, func(i, j int) bool {
		if qs[i].CreatedAt != qs[j].CreatedAt {
			return qs[i].CreatedAt < qs[j].CreatedAt
		}
		return qs[i].ID < qs[j].ID
	})
}

// ResponsesFor returns every response recorded for a question, skips included.
func (s EventState) ResponsesFor(questionID string) []Response {
	out := make([]Response, 0)
	for _, r := range s.Responses {
		if r.QuestionID == questionID {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Timestamp != out[j].Timestamp {
			return out[i].Timestamp < out[j].Timestamp
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// ValidateForPublish lists every reason the event cannot go live yet.
func (s EventState) ValidateForPublish() ValidationErrors {
	var errs ValidationErrors
	if !IsHexColor(s.Branding.PrimaryColor) {
		errs = append(errs, ValidationError{Field: "primaryColor", Message: "Primary color must be a valid hex code (e.g., #3b82f6)"})
	}
	if strings.TrimSpace(s.IntroMessage) == "" {
		errs = append(errs, ValidationError{Field: "introMessage", Message: "Intro message cannot be empty"})
	}
	objects := s.SortedObjects()
	if len(objects) == 0 {
		errs = append(errs, ValidationError{Field: "objects", Message: "At least one object is required"})
	}
	for _, obj := range objects {
		questions := s.QuestionsFor(obj.ID)
		if len(questions) == 0 {
			errs = append(errs, ValidationError{Field: "object_" + obj.ID, Message: `Object "` + obj.Name + `" must have at least one question`})
		}
		for _, q := range questions {
			if (q.Type == QuestionSingle || q.Type == QuestionMultiple) && len(q.Options) < 2 {
				errs = append(errs, ValidationError{Field: "question_" + q.ID, Message: `Question "` + q.Text + `" must have at least 2 options`})
			}
			if q.ImageURL == "" {
				errs = append(errs, ValidationError{Field: "question_" + q.ID + "_image", Message: `Question "` + q.Text + `" must have an image`})
			}
		}
	}
	return errs
}

// IsHexColor matches #RRGGBB.
func IsHexColor(c string) bool {
	if len(c) != 7 || c[0] != '#' {
		return false
	}
	for _, r := range c[1:] {
		switch {
		case r >= '0' && r <= '9', r >= 'a' && r <= 'f', r >= 'A' && r <= 'F':
		default:
			return false
		}
	}
	return true
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}
