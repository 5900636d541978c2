package aggregate

import (
	"sort"
	"strings"
	"unicode"
)

// MaxWords caps the word cloud.
const MaxWords = 50

var stopwords = map[string]struct{}{}

func init() {
	for _, w := range strings.Fields(`
		the and for are but not you all any can had her was one our out has have
		him his how its may new now old see two way who did get got let say she too use
		that this with from they them then than there their what when where which while
		will would could should been being were your yours into onto over under just
		also very much more most some such only own same so about after again against
		because before below between both does doing down during each few further here
		hers herself himself itself myself off once other ourselves themselves these those
		through until why yourself yourselves i'm it's don't isn't wasn't really
	`) {
		stopwords[w] = struct{}{}
	}
}

// Tokenize splits text on whitespace, lowercases, trims surrounding punctuation
// and drops stopwords and tokens of two runes or fewer.
func Tokenize(text string) []string {
	fields := strings.Fields(strings.ToLower(text))
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		w := strings.TrimFunc(f, func(r rune) bool {
			return !unicode.IsLetter(r) && !unicode.IsDigit(r)
		})
		if len([]rune(w)) <= 2 {
			continue
		}
		if _, stop := stopwords[w]; stop {
			continue
		}
		out = append(out, w)
	}
	return out
}

// WordFrequencies counts tokens across texts and returns the top limit words,
// most frequent first; ties keep first-seen order.
func WordFrequencies(texts []string, limit int) []WordCount {
	counts := make(map[string]int)
	order := make([]string, 0)
	for _, text := range texts {
		for _, w := range Tokenize(text) {
			if _, ok := counts[w]; !ok {
				order = append(order, w)
			}
			counts[w]++
		}
	}
	out := make([]WordCount, len(order))
	for i, w := range order {
		out[i] = WordCount{Word: w, Count: counts[w]}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Count > out[j].Count })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}
