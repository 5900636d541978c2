package domain

// QuestionType discriminates how a question is answered and aggregated.
type QuestionType string

const (
	QuestionSingle    QuestionType = "single"
	QuestionMultiple  QuestionType = "multiple"
	QuestionOpenEnded QuestionType = "open-ended"
	QuestionRating    QuestionType = "rating"
)

// Valid reports whether t is one of the four known question types.
func (t QuestionType) Valid() bool {
	switch t {
	case QuestionSingle, QuestionMultiple, QuestionOpenEnded, QuestionRating:
		return true
	}
	return false
}

// OpenEndedLength hints the size of the free-text input.
type OpenEndedLength string

const (
	OpenEndedShort OpenEndedLength = "short"
	OpenEndedLong  OpenEndedLength = "long"
)

// DefaultRatingScale is used when a rating question carries no scale.
const DefaultRatingScale = 5

// ValidRatingScale reports whether scale is one of the supported rating scales.
func ValidRatingScale(scale int) bool {
	switch scale {
	case 5, 7, 10, 11:
		return true
	}
	return false
}

// FeedbackObject is a reviewable item configured by the host.
type FeedbackObject struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	Description  string  `json:"description"`
	ThumbnailURL *string `json:"thumbnailUrl"`
	CreatedAt    int64   `json:"createdAt"`
}

// Question belongs to an object. Type-specific fields stay on the record when
// the type changes; they are simply ignored by the new type.
type Question struct {
	ID               string          `json:"id"`
	ObjectID         string          `json:"objectId"`
	Type             QuestionType    `json:"type"`
	Text             string          `json:"text"`
	ImageURL         string          `json:"imageUrl"`
	Options          []string        `json:"options"`
	RandomizeOptions bool            `json:"randomizeOptions,omitempty"`
	OpenEndedLength  OpenEndedLength `json:"openEndedLength,omitempty"`
	RatingScale      int             `json:"ratingScale,omitempty"`
	CreatedAt        int64           `json:"createdAt"`
}

// Scale returns the effective rating scale.
func (q Question) Scale() int {
	if ValidRatingScale(q.RatingScale) {
		return q.RatingScale
	}
	return DefaultRatingScale
}

// Response is the persisted record of one session's answer (or skip) to one
// question. Exactly one of the value fields is populated, matching Type.
type Response struct {
	ID                    string       `json:"id"`
	SessionID             string       `json:"sessionId"`
	QuestionID            string       `json:"questionId"`
	ObjectID              string       `json:"objectId"`
	Type                  QuestionType `json:"type"`
	SelectedOptionIndex   *int         `json:"selectedOptionIndex"`
	SelectedOptionIndexes []int        `json:"selectedOptionIndexes,omitempty"`
	TextAnswer            *string      `json:"textAnswer,omitempty"`
	RatingValue           *int         `json:"ratingValue,omitempty"`
	Timestamp             int64        `json:"timestamp"`
}

// ResponseID builds the storage key of a response.
func ResponseID(sessionID, questionID string) string {
	return sessionID + "_" + questionID
}

// CompletedObjectEntry marks that a session finished all questions of an object.
type CompletedObjectEntry struct {
	SessionID string `json:"sessionId"`
	ObjectID  string `json:"objectId"`
	Timestamp int64  `json:"timestamp"`
}

// CompletedObjectKey builds the storage key of a completion marker.
func CompletedObjectKey(sessionID, objectID string) string {
	return sessionID + "_" + objectID
}

// Branding is the host-chosen look of the event.
type Branding struct {
	LogoURL      *string `json:"logoUrl"`
	PrimaryColor string  `json:"primaryColor"`
}

// PrizePage configures one of the two prize screens.
type PrizePage struct {
	Title    string  `json:"title"`
	ImageURL *string `json:"imageUrl"`
	Message  string  `json:"message"`
}

// PrizeBoardID is the leaderboard that receives prize submissions.
const PrizeBoardID = "prize-submissions"

// SortOrder orders a leaderboard.
type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

// LeaderboardEntry is one upserted row of the metadata service. Private
// metadata never leaves the service through the aggregate state.
type LeaderboardEntry struct {
	BoardID         string         `json:"boardId"`
	Key             string         `json:"key"`
	Order           SortOrder      `json:"order"`
	Score           int64          `json:"score"`
	PublicMetadata  map[string]any `json:"publicMetadata"`
	PrivateMetadata map[string]any `json:"-"`
}
