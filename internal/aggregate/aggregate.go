// Package aggregate turns the responses of one question into chart-ready
// statistics. Every function is pure and lenient: an empty or malformed
// response set yields zeroed statistics, never an error.
package aggregate

import (
	"math"

	"feedbacker-service/internal/domain"
)

// OptionCount is one bar or donut segment, in authored option order.
type OptionCount struct {
	Index      int     `json:"index"`
	Label      string  `json:"label"`
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"`
}

// RatingBucket counts responses that picked one rating value.
type RatingBucket struct {
	Value      int     `json:"value"`
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"`
}

// WordCount is one entry of the word cloud.
type WordCount struct {
	Word  string `json:"word"`
	Count int    `json:"count"`
}

// Summary is the statistic for one question. Only the part matching Type is set.
type Summary struct {
	QuestionID     string              `json:"questionId"`
	Type           domain.QuestionType `json:"type"`
	TotalResponses int                 `json:"totalResponses"`
	AnsweredCount  int                 `json:"answeredCount"`
	SkipCount      int                 `json:"skipCount"`
	Options        []OptionCount       `json:"options,omitempty"`
	Words          []WordCount         `json:"words,omitempty"`
	Ratings        []RatingBucket      `json:"ratings,omitempty"`
	Scale          int                 `json:"scale,omitempty"`
	Mean           float64             `json:"mean"`
}

// Summarize dispatches on the question type. Responses for other questions are
// ignored.
func Summarize(q domain.Question, responses []domain.Response) Summary {
	own := make([]domain.Response, 0, len(responses))
	for _, r := range responses {
		if r.QuestionID == q.ID {
			own = append(own, r)
		}
	}
	var s Summary
	switch q.Type {
	case domain.QuestionSingle:
		s = Single(q.Options, own)
	case domain.QuestionMultiple:
		s = Multiple(q.Options, own)
	case domain.QuestionOpenEnded:
		s = OpenEnded(own)
	case domain.QuestionRating:
		s = Rating(q.Scale(), own)
	default:
		s = Summary{TotalResponses: len(own), SkipCount: len(own)}
	}
	s.QuestionID = q.ID
	s.Type = q.Type
	return s
}

// Single counts how many responses picked each option.
func Single(options []string, responses []domain.Response) Summary {
	counts := make([]int, len(options))
	skips := 0
	for _, r := range responses {
		if r.SelectedOptionIndex == nil {
			skips++
			continue
		}
		if idx := *r.SelectedOptionIndex; idx >= 0 && idx < len(counts) {
			counts[idx]++
		}
	}
	answered := len(responses) - skips
	return Summary{
		Type:           domain.QuestionSingle,
		TotalResponses: len(responses),
		AnsweredCount:  answered,
		SkipCount:      skips,
		Options:        optionCounts(options, counts, answered),
	}
}

// Multiple counts every option a response selected; one response can hit
// several options.
func Multiple(options []string, responses []domain.Response) Summary {
	counts := make([]int, len(options))
	answered := 0
	for _, r := range responses {
		if len(r.SelectedOptionIndexes) == 0 {
			continue
		}
		answered++
		seen := make(map[int]struct{}, len(r.SelectedOptionIndexes))
		for _, idx := range r.SelectedOptionIndexes {
			if _, dup := seen[idx]; dup || idx < 0 || idx >= len(counts) {
				continue
			}
			seen[idx] = struct{}{}
			counts[idx]++
		}
	}
	return Summary{
		Type:           domain.QuestionMultiple,
		TotalResponses: len(responses),
		AnsweredCount:  answered,
		SkipCount:      len(responses) - answered,
		Options:        optionCounts(options, counts, answered),
	}
}

// OpenEnded builds the word cloud of the free-text answers.
func OpenEnded(responses []domain.Response) Summary {
	texts := make([]string, 0, len(responses))
	for _, r := range responses {
		if r.TextAnswer == nil || *r.TextAnswer == "" {
			continue
		}
		texts = append(texts, *r.TextAnswer)
	}
	return Summary{
		Type:           domain.QuestionOpenEnded,
		TotalResponses: len(responses),
		AnsweredCount:  len(texts),
		SkipCount:      len(responses) - len(texts),
		Words:          WordFrequencies(texts, MaxWords),
	}
}

// Rating builds the histogram over 0..scale and the mean of answered values.
func Rating(scale int, responses []domain.Response) Summary {
	if scale <= 0 {
		scale = domain.DefaultRatingScale
	}
	counts := make([]int, scale+1)
	answered, sum := 0, 0
	for _, r := range responses {
		if r.RatingValue == nil {
			continue
		}
		answered++
		v := *r.RatingValue
		sum += v
		if v >= 0 && v <= scale {
			counts[v]++
		}
	}
	buckets := make([]RatingBucket, len(counts))
	for v, c := range counts {
		buckets[v] = RatingBucket{Value: v, Count: c, Percentage: percentage(c, answered)}
	}
	mean := 0.0
	if answered > 0 {
		mean = math.Round(float64(sum)/float64(answered)*10) / 10
	}
	return Summary{
		Type:           domain.QuestionRating,
		TotalResponses: len(responses),
		AnsweredCount:  answered,
		SkipCount:      len(responses) - answered,
		Ratings:        buckets,
		Scale:          scale,
		Mean:           mean,
	}
}

func optionCounts(options []string, counts []int, answered int) []OptionCount {
	out := make([]OptionCount, len(options))
	for i, label := range options {
		out[i] = OptionCount{Index: i, Label: label, Count: counts[i], Percentage: percentage(counts[i], answered)}
	}
	return out
}

func percentage(count, answered int) float64 {
	if answered == 0 {
		return 0
	}
	return float64(count) / float64(answered) * 100
}
