package app

import (
	"context"
	"strconv"
	"strings"

	"feedbacker-service/internal/domain"
)

// ObjectInput carries the editable fields of an object.
type ObjectInput struct {
	Name         string  `json:"name"`
	Description  string  `json:"description"`
	ThumbnailURL *string `json:"thumbnailUrl"`
}

// ObjectPatch updates only the fields that are set.
type ObjectPatch struct {
	Name         *string `json:"name"`
	Description  *string `json:"description"`
	ThumbnailURL *string `json:"thumbnailUrl"`
}

// QuestionInput carries the editable fields of a new question.
type QuestionInput struct {
	Type             domain.QuestionType    `json:"type"`
	Text             string                 `json:"text"`
	ImageURL         string                 `json:"imageUrl"`
	Options          []string               `json:"options"`
	RandomizeOptions bool                   `json:"randomizeOptions"`
	OpenEndedLength  domain.OpenEndedLength `json:"openEndedLength"`
	RatingScale      int                    `json:"ratingScale"`
}

// QuestionPatch updates only the fields that are set. Changing the type keeps
// the fields of the old type on the record.
type QuestionPatch struct {
	Type             *domain.QuestionType    `json:"type"`
	Text             *string                 `json:"text"`
	ImageURL         *string                 `json:"imageUrl"`
	Options          []string                `json:"options"`
	RandomizeOptions *bool                   `json:"randomizeOptions"`
	OpenEndedLength  *domain.OpenEndedLength `json:"openEndedLength"`
	RatingScale      *int                    `json:"ratingScale"`
}

// HostService contains the host use cases: event settings, the object and
// question editors, publishing and the destructive resets.
type HostService struct {
	store     Store
	responses *ResponseStore
	prizes    *PrizeDesk
}

func NewHostService(store Store, responses *ResponseStore, prizes *PrizeDesk) *HostService {
	return &HostService{store: store, responses: responses, prizes: prizes}
}

// Event returns the full event state.
func (h *HostService) Event(ctx context.Context) (domain.EventState, error) {
	return h.store.Snapshot(ctx)
}

// UpdateBranding replaces logo and primary color.
func (h *HostService) UpdateBranding(ctx context.Context, b domain.Branding) error {
	return h.store.Transact(ctx, func(s *domain.EventState) error {
		s.Branding = b
		return nil
	})
}

// UpdateIntroMessage replaces the text of the intro screen.
func (h *HostService) UpdateIntroMessage(ctx context.Context, message string) error {
	return h.store.Transact(ctx, func(s *domain.EventState) error {
		s.IntroMessage = message
		return nil
	})
}

// UpdateCarouselInterval sets the presenter rotation period, at least one second.
func (h *HostService) UpdateCarouselInterval(ctx context.Context, seconds int) error {
	return h.store.Transact(ctx, func(s *domain.EventState) error {
		s.CarouselIntervalSeconds = max(1, seconds)
		return nil
	})
}

// SetPrizeEnabled turns the prize flow on or off.
func (h *HostService) SetPrizeEnabled(ctx context.Context, enabled bool) error {
	return h.store.Transact(ctx, func(s *domain.EventState) error {
		s.PrizeEnabled = enabled
		return nil
	})
}

// UpdatePrizeEmailPage configures the email collection screen.
func (h *HostService) UpdatePrizeEmailPage(ctx context.Context, page domain.PrizePage) error {
	return h.store.Transact(ctx, func(s *domain.EventState) error {
		s.PrizeEmailCollection = page
		return nil
	})
}

// UpdatePrizeClaimPage configures the claim screen.
func (h *HostService) UpdatePrizeClaimPage(ctx context.Context, page domain.PrizePage) error {
	return h.store.Transact(ctx, func(s *domain.EventState) error {
		s.PrizeClaim = page
		return nil
	})
}

// ClearPrizeSubmissions resets the registration counter.
func (h *HostService) ClearPrizeSubmissions(ctx context.Context) error {
	return h.prizes.ClearSubmissions(ctx)
}

// PrizeSubmissions lists the registrations without their contact details.
func (h *HostService) PrizeSubmissions(ctx context.Context) (PrizeSubmissions, error) {
	return h.prizes.Submissions(ctx)
}

// AddObject creates an object; its id is the creation timestamp.
func (h *HostService) AddObject(ctx context.Context, in ObjectInput) (domain.FeedbackObject, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return domain.FeedbackObject{}, domain.ValidationErrors{{Field: "name", Message: "Object name cannot be empty"}}
	}
	var obj domain.FeedbackObject
	err := h.store.Transact(ctx, func(s *domain.EventState) error {
		ts := h.store.ServerTimestamp()
		obj = domain.FeedbackObject{
			ID:           strconv.FormatInt(ts, 10),
			Name:         name,
			Description:  in.Description,
			ThumbnailURL: in.ThumbnailURL,
			CreatedAt:    ts,
		}
		s.Objects[obj.ID] = obj
		return nil
	})
	return obj, err
}

// UpdateObject applies a patch to an object.
func (h *HostService) UpdateObject(ctx context.Context, objectID string, p ObjectPatch) error {
	return h.store.Transact(ctx, func(s *domain.EventState) error {
		obj, ok := s.Objects[objectID]
		if !ok {
			return domain.ErrObjectNotFound
		}
		if p.Name != nil {
			obj.Name = *p.Name
		}
		if p.Description != nil {
			obj.Description = *p.Description
		}
		if p.ThumbnailURL != nil {
			obj.ThumbnailURL = p.ThumbnailURL
			if *p.ThumbnailURL == "" {
				obj.ThumbnailURL = nil
			}
		}
		s.Objects[objectID] = obj
		return nil
	})
}

// DeleteObject removes an object with its questions, responses and completion markers.
func (h *HostService) DeleteObject(ctx context.Context, objectID string) error {
	return h.store.Transact(ctx, func(s *domain.EventState) error {
		if _, ok := s.Objects[objectID]; !ok {
			return domain.ErrObjectNotFound
		}
		delete(s.Objects, objectID)
		for id, q := range s.Questions {
			if q.ObjectID == objectID {
				delete(s.Questions, id)
			}
		}
		for id, r := range s.Responses {
			if r.ObjectID == objectID {
				delete(s.Responses, id)
			}
		}
		for id, c := range s.CompletedObjects {
			if c.ObjectID == objectID {
				delete(s.CompletedObjects, id)
			}
		}
		return nil
	})
}

// AddQuestion attaches a question to an object.
func (h *HostService) AddQuestion(ctx context.Context, objectID string, in QuestionInput) (domain.Question, error) {
	if errs := validateQuestionInput(in); len(errs) > 0 {
		return domain.Question{}, errs
	}
	var q domain.Question
	err := h.store.Transact(ctx, func(s *domain.EventState) error {
		if _, ok := s.Objects[objectID]; !ok {
			return domain.ErrObjectNotFound
		}
		ts := h.store.ServerTimestamp()
		q = domain.Question{
			ID:               strconv.FormatInt(ts, 10),
			ObjectID:         objectID,
			Type:             in.Type,
			Text:             in.Text,
			ImageURL:         in.ImageURL,
			Options:          append([]string{}, in.Options...),
			RandomizeOptions: in.RandomizeOptions,
			OpenEndedLength:  in.OpenEndedLength,
			RatingScale:      in.RatingScale,
			CreatedAt:        ts,
		}
		s.Questions[q.ID] = q
		return nil
	})
	return q, err
}

// UpdateQuestion applies a patch to a question.
func (h *HostService) UpdateQuestion(ctx context.Context, questionID string, p QuestionPatch) error {
	if p.Type != nil && !p.Type.Valid() {
		return domain.ValidationErrors{{Field: "type", Message: "Unknown question type"}}
	}
	if p.RatingScale != nil && !domain.ValidRatingScale(*p.RatingScale) {
		return domain.ValidationErrors{{Field: "ratingScale", Message: "Rating scale must be 5, 7, 10 or 11"}}
	}
	return h.store.Transact(ctx, func(s *domain.EventState) error {
		q, ok := s.Questions[questionID]
		if !ok {
			return domain.ErrQuestionNotFound
		}
		if p.Type != nil {
			q.Type = *p.Type
		}
		if p.Text != nil {
			q.Text = *p.Text
		}
		if p.ImageURL != nil {
			q.ImageURL = *p.ImageURL
		}
		if p.Options != nil {
			q.Options = append([]string{}, p.Options...)
		}
		if p.RandomizeOptions != nil {
			q.RandomizeOptions = *p.RandomizeOptions
		}
		if p.OpenEndedLength != nil {
			q.OpenEndedLength = *p.OpenEndedLength
		}
		if p.RatingScale != nil {
			q.RatingScale = *p.RatingScale
		}
		s.Questions[questionID] = q
		return nil
	})
}

// DeleteQuestion removes a question and its responses.
func (h *HostService) DeleteQuestion(ctx context.Context, questionID string) error {
	return h.store.Transact(ctx, func(s *domain.EventState) error {
		if _, ok := s.Questions[questionID]; !ok {
			return domain.ErrQuestionNotFound
		}
		delete(s.Questions, questionID)
		for id, r := range s.Responses {
			if r.QuestionID == questionID {
				delete(s.Responses, id)
			}
		}
		return nil
	})
}

// ValidateEvent lists what blocks publishing.
func (h *HostService) ValidateEvent(ctx context.Context) (domain.ValidationErrors, error) {
	state, err := h.store.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return state.ValidateForPublish(), nil
}

// Publish opens the event to players. Validation runs inside the transaction
// so a concurrent edit cannot slip an invalid event through.
func (h *HostService) Publish(ctx context.Context) error {
	return h.store.Transact(ctx, func(s *domain.EventState) error {
		if errs := s.ValidateForPublish(); len(errs) > 0 {
			return errs
		}
		s.IsPublished = true
		return nil
	})
}

// Unpublish takes the event back into editing.
func (h *HostService) Unpublish(ctx context.Context) error {
	return h.store.Transact(ctx, func(s *domain.EventState) error {
		s.IsPublished = false
		return nil
	})
}

// ResetResponses deletes every response and completion marker. It is
// irreversible and refuses to run without confirm.
func (h *HostService) ResetResponses(ctx context.Context, confirm bool) error {
	if !confirm {
		return domain.ErrConfirmationRequired
	}
	return h.responses.ResetAll(ctx)
}

func validateQuestionInput(in QuestionInput) domain.ValidationErrors {
	var errs domain.ValidationErrors
	if !in.Type.Valid() {
		errs = append(errs, domain.ValidationError{Field: "type", Message: "Unknown question type"})
	}
	if strings.TrimSpace(in.Text) == "" {
		errs = append(errs, domain.ValidationError{Field: "text", Message: "Question text cannot be empty"})
	}
	if in.RatingScale != 0 && !domain.ValidRatingScale(in.RatingScale) {
		errs = append(errs, domain.ValidationError{Field: "ratingScale", Message: "Rating scale must be 5, 7, 10 or 11"})
	}
	if in.OpenEndedLength != "" && in.OpenEndedLength != domain.OpenEndedShort && in.OpenEndedLength != domain.OpenEndedLong {
		errs = append(errs, domain.ValidationError{Field: "openEndedLength", Message: "Open-ended length must be short or long"})
	}
	return errs
}
