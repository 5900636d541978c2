package presenter

import (
	"feedbacker-service/internal/aggregate"
	"feedbacker-service/internal/domain"
)

// Slide is one entry of the playlist.
type Slide struct {
	ObjectID   string          `json:"objectId"`
	ObjectName string          `json:"objectName"`
	Question   domain.Question `json:"question"`
}

// Frame is what the presenter screen shows at one moment.
type Frame struct {
	Index         int                `json:"index"`
	Total         int                `json:"total"`
	Transitioning bool               `json:"transitioning"`
	Branding      domain.Branding    `json:"branding"`
	Slide         *Slide             `json:"slide,omitempty"`
	Summary       *aggregate.Summary `json:"summary,omitempty"`
}

// Playlist flattens the event into slides: objects by creation time, then
// their questions by creation time.
func Playlist(state domain.EventState) []Slide {
	var out []Slide
	for _, obj := range state.SortedObjects() {
		for _, q := range state.QuestionsFor(obj.ID) {
			out = append(out, Slide{ObjectID: obj.ID, ObjectName: obj.Name, Question: q})
		}
	}
	return out
}

// Render builds the frame for a position. Statistics are computed from the
// given state every time.
func Render(state domain.EventState, index int, transitioning bool) Frame {
	slides := Playlist(state)
	f := Frame{
		Total:         len(slides),
		Transitioning: transitioning,
		Branding:      state.Branding,
	}
	if len(slides) == 0 {
		return f
	}
	if index < 0 || index >= len(slides) {
		index = 0
	}
	slide := slides[index]
	summary := aggregate.Summarize(slide.Question, state.ResponsesFor(slide.Question.ID))
	f.Index = index
	f.Slide = &slide
	f.Summary = &summary
	return f
}
