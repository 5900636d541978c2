package player

import (
	"github.com/cespare/xxhash/v2"

	"feedbacker-service/internal/domain"
)

// DisplayOption is an option as shown to the player. OriginalIndex is the
// authored position and is what answers and aggregation refer to.
type DisplayOption struct {
	Text          string `json:"text"`
	OriginalIndex int    `json:"originalIndex"`
}

// DisplayOptions returns the options of a single or multiple choice question in
// display order. Randomized questions get a permutation derived only from the
// question id, so every render and every session sees the same order.
func DisplayOptions(q domain.Question) []DisplayOption {
	if q.Type != domain.QuestionSingle && q.Type != domain.QuestionMultiple {
		return []DisplayOption{}
	}
	out := make([]DisplayOption, len(q.Options))
	for i, text := range q.Options {
		out[i] = DisplayOption{Text: text, OriginalIndex: i}
	}
	if !q.RandomizeOptions {
		return out
	}
	rng := splitmix64{state: xxhash.Sum64String(q.ID)}
	for i := len(out) - 1; i > 0; i-- {
		j := int(rng.next() % uint64(i+1))
		out[i], out[j] = out[j], out[i]
	}
	return out
}

// splitmix64 is a tiny seeded generator with good output mixing.
type splitmix64 struct{ state uint64 }

func (s *splitmix64) next() uint64 {
	s.state += 0x9e3779b97f4a7c15
	z := s.state
	z = (z ^ (z >> 30)) * 0xbf58476d1ce4e5b9
	z = (z ^ (z >> 27)) * 0x94d049bb133111eb
	return z ^ (z >> 31)
}
