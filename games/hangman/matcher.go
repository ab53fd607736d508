package hangman

import (
	"math"
	"strings"
	"unicode"
)

// Match bands, strongest first.
const (
	MatchExact     = "exact"
	MatchNear      = "near"
	MatchPartial   = "partial"
	MatchSemantic  = "semantic"
	MatchIncorrect = "incorrect"
)

// MatchResult is the fuzzy comparison of a guess against the secret
// prompt. Percentage is 0..100.
type MatchResult struct {
	Percentage int    `json:"percentage"`
	Type       string `json:"type"`
}

// semanticGroups is a small curated equivalence table; words in the
// same group count as a weaker match than a literal word hit.
var semanticGroups = [][]string{
	{"make", "create", "build", "generate", "produce"},
	{"write", "compose", "draft"},
	{"show", "display", "present"},
	{"big", "large", "huge", "giant"},
	{"small", "little", "tiny"},
	{"fast", "quick", "rapid", "speedy"},
	{"happy", "joyful", "glad", "cheerful"},
	{"sad", "unhappy", "gloomy"},
	{"smart", "intelligent", "clever"},
	{"funny", "humorous", "amusing"},
	{"story", "tale", "narrative"},
	{"poem", "verse", "rhyme"},
	{"picture", "image", "photo", "illustration"},
	{"dog", "puppy", "hound"},
	{"cat", "kitten", "feline"},
	{"explain", "describe", "clarify"},
	{"list", "enumerate"},
	{"short", "brief", "concise"},
}

var semanticIndex = buildSemanticIndex()

func buildSemanticIndex() map[string]int {
	index := make(map[string]int)
	for group, words := range semanticGroups {
		for _, w := range words {
			index[w] = group
		}
	}
	return index
}

// Match scores guess against target. Not symmetric: the percentage is
// the share of target words the guess accounts for. Matching a target
// against itself always yields {100, exact}; a guess with no literal,
// stemmed or semantic hits yields incorrect.
func Match(guess, target string) MatchResult {
	normalizedGuess := normalize(guess)
	normalizedTarget := normalize(target)
	if normalizedGuess == normalizedTarget && normalizedTarget != "" {
		return MatchResult{Percentage: 100, Type: MatchExact}
	}

	targetWords := strings.Fields(normalizedTarget)
	guessWords := strings.Fields(normalizedGuess)
	if len(targetWords) == 0 || len(guessWords) == 0 {
		return MatchResult{Percentage: 0, Type: MatchIncorrect}
	}

	guessSet := make(map[string]bool, len(guessWords))
	guessStems := make(map[string]bool, len(guessWords))
	guessGroups := make(map[int]bool)
	for _, w := range guessWords {
		guessSet[w] = true
		guessStems[stem(w)] = true
		if group, ok := semanticIndex[w]; ok {
			guessGroups[group] = true
		}
	}

	literal := 0
	semantic := 0
	for _, w := range targetWords {
		switch {
		case guessSet[w] || guessStems[stem(w)]:
			literal++
		case groupMatched(w, guessGroups):
			semantic++
		}
	}

	score := float64(literal) + 0.8*float64(semantic)
	percentage := int(math.Round(100 * score / float64(len(targetWords))))
	if percentage > 99 {
		// Full word coverage without literal equality stays below exact.
		percentage = 99
	}

	switch {
	case literal == 0 && semantic == 0:
		return MatchResult{Percentage: 0, Type: MatchIncorrect}
	case percentage >= 80:
		return MatchResult{Percentage: percentage, Type: MatchNear}
	case percentage >= 40:
		return MatchResult{Percentage: percentage, Type: MatchPartial}
	default:
		return MatchResult{Percentage: percentage, Type: MatchSemantic}
	}
}

func groupMatched(word string, guessGroups map[int]bool) bool {
	group, ok := semanticIndex[word]
	return ok && guessGroups[group]
}

// normalize lowercases and strips everything but letters, digits and
// single spaces.
func normalize(s string) string {
	var b strings.Builder
	lastSpace := true
	for _, r := range strings.ToLower(s) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
			lastSpace = false
		case !lastSpace:
			b.WriteRune(' ')
			lastSpace = true
		}
	}
	return strings.TrimSpace(b.String())
}

// stem applies naive suffix stripping so plural and inflected forms of
// the same word can still collide. Not a real stemmer.
func stem(word string) string {
	for _, suffix := range []string{"ing", "ed", "es", "ly", "er", "s"} {
		if strings.HasSuffix(word, suffix) && len(word)-len(suffix) >= 3 {
			return word[:len(word)-len(suffix)]
		}
	}
	return word
}
