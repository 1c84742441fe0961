package moderation

import (
	"context"
	"regexp"
	"strings"
	"unicode"
)

// KeywordScore is the score assigned to a category on a keyword hit.
const KeywordScore = 0.5

var defaultKeywords = map[Category][]string{
	HateSpeech:            {"hate", "racist", "nazi", "white supremacy"},
	Violence:              {"kill", "murder", "bomb", "terrorist", "suicide", "self harm", "cut myself"},
	SexualContent:         {"tits", "porn", "nude", "nudes", "nsfw"},
	Harassment:            {"harass", "bully", "threaten", "stalk"},
	InappropriateLanguage: {"fuck", "shit", "bitch", "bastard", "asshole"},
}

var urlPattern = regexp.MustCompile(`(?i)https?://`)

// KeywordClassifier is a local fallback scorer that needs no network.
type KeywordClassifier struct {
	patterns map[Category]*regexp.Regexp
}

func NewKeywordClassifier(extra map[Category][]string) *KeywordClassifier {
	lists := make(map[Category][]string, len(defaultKeywords))
	for c, words := range defaultKeywords {
		lists[c] = append([]string(nil), words...)
	}
	for c, words := range extra {
		lists[c] = append(lists[c], words...)
	}

	k := &KeywordClassifier{patterns: make(map[Category]*regexp.Regexp, len(lists))}
	for c, words := range lists {
		quoted := make([]string, 0, len(words))
		for _, w := range words {
			quoted = append(quoted, regexp.QuoteMeta(strings.ToLower(w)))
		}
		k.patterns[c] = regexp.MustCompile(`\b(?:` + strings.Join(quoted, "|") + `)\w*`)
	}
	return k
}

func (k *KeywordClassifier) Classify(_ context.Context, text string) (map[Category]float64, error) {
	return k.Scores(text), nil
}

// Scores is the synchronous form of Classify.
func (k *KeywordClassifier) Scores(text string) map[Category]float64 {
	lower := strings.ToLower(text)
	scores := make(map[Category]float64, len(Categories))
	for c, re := range k.patterns {
		if re.MatchString(lower) {
			scores[c] = KeywordScore
		}
	}
	if looksLikeSpam(text) {
		scores[Spam] = KeywordScore
	}
	return scores
}

func looksLikeSpam(text string) bool {
	if len(urlPattern.FindAllStringIndex(text, -1)) >= 3 {
		return true
	}
	if longestRun(text) >= 10 {
		return true
	}

	words := strings.Fields(strings.ToLower(text))
	if len(words) >= 8 {
		counts := make(map[string]int, len(words))
		for _, w := range words {
			counts[w]++
			if counts[w]*2 > len(words) {
				return true
			}
		}
	}
	return false
}

func longestRun(text string) int {
	best, run := 0, 0
	var prev rune
	for i, r := range text {
		if unicode.IsSpace(r) {
			run, prev = 0, r
			continue
		}
		if i > 0 && r == prev {
			run++
		} else {
			run = 1
		}
		if run > best {
			best = run
		}
		prev = r
	}
	return best
}
