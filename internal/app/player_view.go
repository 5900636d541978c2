package app

import (
	"feedbacker-service/internal/domain"
	"feedbacker-service/internal/player"
)

// PlayerView is everything a player screen needs to render.
type PlayerView struct {
	View                   player.View       `json:"view"`
	SessionID              string            `json:"sessionId"`
	Name                   string            `json:"name"`
	Branding               domain.Branding   `json:"branding"`
	IntroMessage           string            `json:"introMessage"`
	IsPublished            bool              `json:"isPublished"`
	PrizeEnabled           bool              `json:"prizeEnabled"`
	HasSubmittedPrizeEmail bool              `json:"hasSubmittedPrizeEmail"`
	Objects                []ObjectCard      `json:"objects,omitempty"`
	Questions              *QuestionView     `json:"questions,omitempty"`
	PrizePage              *domain.PrizePage `json:"prizePage,omitempty"`
}

// ObjectCard is one entry of the intro list.
type ObjectCard struct {
	ID            string  `json:"id"`
	Name          string  `json:"name"`
	Description   string  `json:"description"`
	ThumbnailURL  *string `json:"thumbnailUrl"`
	QuestionCount int     `json:"questionCount"`
	Completed     bool    `json:"completed"`
}

// QuestionView describes the object-questions screen.
type QuestionView struct {
	ObjectID   string `json:"objectId"`
	ObjectName string `json:"objectName"`
	Index      int    `json:"index"`
	Total      int    `json:"total"`
	// Question is nil when the object has no questions.
	Question       *domain.Question       `json:"question"`
	Options        []player.DisplayOption `json:"options"`
	SelectedOption *int                   `json:"selectedOption"`
	DraftSelection []int                  `json:"draftSelection"`
	DraftText      string                 `json:"draftText"`
	MaxTextLength  int                    `json:"maxTextLength,omitempty"`
	RatingValue    int                    `json:"ratingValue,omitempty"`
	RatingScale    int                    `json:"ratingScale,omitempty"`
	Rated          bool                   `json:"rated"`
	CanProceed     bool                   `json:"canProceed"`
	IsFirst        bool                   `json:"isFirst"`
	IsLast         bool                   `json:"isLast"`
}

func buildPlayerView(ps player.State, state domain.EventState, nav *player.Navigator) PlayerView {
	v := PlayerView{
		View:                   ps.View,
		SessionID:              ps.SessionID,
		Name:                   ps.Name,
		Branding:               state.Branding,
		IntroMessage:           state.IntroMessage,
		IsPublished:            state.IsPublished,
		PrizeEnabled:           state.PrizeEnabled,
		HasSubmittedPrizeEmail: ps.HasSubmittedPrizeEmail,
	}

	switch ps.View {
	case player.ViewIntro:
		if !state.IsPublished {
			return v
		}
		objects := state.SortedObjects()
		v.Objects = make([]ObjectCard, 0, len(objects))
		for _, o := range objects {
			v.Objects = append(v.Objects, ObjectCard{
				ID:            o.ID,
				Name:          o.Name,
				Description:   o.Description,
				ThumbnailURL:  o.ThumbnailURL,
				QuestionCount: len(state.QuestionsFor(o.ID)),
				Completed:     ps.IsCompleted(o.ID),
			})
		}
	case player.ViewObjectQuestions:
		if nav != nil {
			v.Questions = buildQuestionView(state, nav)
		}
	case player.ViewEmailCollection:
		page := state.PrizeEmailCollection
		v.PrizePage = &page
	case player.ViewPrizeClaim:
		page := state.PrizeClaim
		v.PrizePage = &page
	}
	return v
}

func buildQuestionView(state domain.EventState, nav *player.Navigator) *QuestionView {
	qv := &QuestionView{
		ObjectID:       nav.ObjectID(),
		ObjectName:     state.Objects[nav.ObjectID()].Name,
		Index:          nav.Index(),
		Total:          nav.Len(),
		Options:        []player.DisplayOption{},
		DraftSelection: []int{},
	}
	q, ok := nav.Current()
	if !ok {
		return qv
	}
	qv.Question = &q
	qv.Options = player.DisplayOptions(q)
	qv.DraftSelection, qv.DraftText = nav.Drafts()
	qv.CanProceed = nav.CanProceed()
	qv.IsFirst = nav.IsFirst()
	qv.IsLast = nav.IsLast()

	stored, _ := nav.CurrentAnswer()
	switch q.Type {
	case domain.QuestionSingle:
		if a, ok := stored.(domain.SingleAnswer); ok && a.Value != nil {
			qv.SelectedOption = domain.IntPtr(*a.Value)
		}
	case domain.QuestionOpenEnded:
		qv.MaxTextLength = player.MaxTextLength(q)
	case domain.QuestionRating:
		qv.RatingScale = q.Scale()
		qv.RatingValue = nav.RatingDisplayValue()
		if a, ok := stored.(domain.RatingAnswer); ok && a.Value != nil {
			qv.Rated = true
		}
	case domain.QuestionMultiple:
	}
	return qv
}
