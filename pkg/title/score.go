package title

import (
	"strings"

	"github.com/hbollon/go-edlib"
)

// Score weights. Empirically chosen defaults; callers gate acceptance on a
// configurable minimum rather than assuming these exact values.
const (
	BonusExact     = 5
	BonusPrefix    = 3
	BonusContains  = 2
	BonusYearExact = 2
	BonusYearNear  = 1

	// DefaultMinScore is the default acceptance threshold for Score.
	DefaultMinScore = 3
)

// SimilarityThreshold is the minimum Jaro-Winkler similarity for a fuzzy hit
// to count as confident.
const SimilarityThreshold = 0.85

// Score rates how well candidate matches query. Both titles are cleaned
// before comparison. Year terms contribute only when both years are known.
func Score(query, candidate string, queryYear, candidateYear int) int {
	q := Clean(query)
	c := Clean(candidate)
	if q == "" || c == "" {
		return 0
	}

	score := 0
	switch {
	case q == c:
		score += BonusExact
	case strings.HasPrefix(q, c) || strings.HasPrefix(c, q):
		score += BonusPrefix
	case strings.Contains(q, c) || strings.Contains(c, q):
		score += BonusContains
	}

	if queryYear > 0 && candidateYear > 0 {
		switch diff := queryYear - candidateYear; {
		case diff == 0:
			score += BonusYearExact
		case diff == 1 || diff == -1:
			score += BonusYearNear
		}
	}

	return score
}

// Similarity returns the Jaro-Winkler similarity of two cleaned titles.
// Jaro-Winkler favors shared prefixes, which suits media titles.
func Similarity(a, b string) float64 {
	return float64(edlib.JaroWinklerSimilarity(Clean(a), Clean(b)))
}

// Similar reports whether two titles are close enough to count as the same
// work for fuzzy provider matching.
func Similar(a, b string) bool {
	return Similarity(a, b) >= SimilarityThreshold
}
