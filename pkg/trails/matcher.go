package trails

import (
	"strings"
	"unicode/utf8"

	"github.com/agnivade/levenshtein"

	"github.com/NERVsystems/trailmcp/pkg/apperr"
)

// DefaultThreshold is the minimum similarity for a fuzzy match.
const DefaultThreshold = 0.6

// MatchMethod records how a trail was picked.
type MatchMethod string

const (
	MatchExact    MatchMethod = "exact"
	MatchFuzzy    MatchMethod = "fuzzy"
	MatchFallback MatchMethod = "fallback"
)

// Similarity scores two lower-cased strings in [0, 1].
type Similarity interface {
	Score(a, b string) float64
}

// SimilarityFunc adapts a function to Similarity.
type SimilarityFunc func(a, b string) float64

// Score calls fn(a, b).
func (fn SimilarityFunc) Score(a, b string) float64 {
	return fn(a, b)
}

// LevenshteinRatio is 1 - distance/max(len) over runes.
var LevenshteinRatio Similarity = SimilarityFunc(levenshteinRatio)

func levenshteinRatio(a, b string) float64 {
	longest := max(utf8.RuneCountInString(a), utf8.RuneCountInString(b))
	if longest == 0 {
		return 1
	}
	return 1 - float64(levenshtein.ComputeDistance(a, b))/float64(longest)
}

// Match is the result of picking a trail by name.
type Match struct {
	Feature Feature     `json:"trail"`
	Method  MatchMethod `json:"method"`
	Score   float64     `json:"score"`
}

// Matcher picks the candidate that best matches a trail name.
type Matcher struct {
	similarity Similarity
	threshold  float64
}

// MatcherOption configures a Matcher.
type MatcherOption func(*Matcher)

// WithSimilarity replaces the scoring function.
func WithSimilarity(s Similarity) MatcherOption {
	return func(m *Matcher) {
		if s != nil {
			m.similarity = s
		}
	}
}

// WithThreshold sets the minimum fuzzy score.
func WithThreshold(t float64) MatcherOption {
	return func(m *Matcher) {
		m.threshold = t
	}
}

// NewMatcher creates a matcher using LevenshteinRatio and DefaultThreshold
// unless overridden.
func NewMatcher(opts ...MatcherOption) *Matcher {
	m := &Matcher{
		similarity: LevenshteinRatio,
		threshold:  DefaultThreshold,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func normalizeName(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Pick tries a case-insensitive exact match, then the best fuzzy match at
// or above the threshold (first seen wins ties), then the first candidate
// with valid coordinates.
func (m *Matcher) Pick(candidates []Feature, name string) (Match, error) {
	if len(candidates) == 0 {
		return Match{}, apperr.NotFound(apperr.GuidanceNoTrails, "no trails found in the search area")
	}

	want := normalizeName(name)
	for _, c := range candidates {
		n := normalizeName(c.Name)
		if n != "" && n == want {
			return Match{Feature: c, Method: MatchExact, Score: 1}, nil
		}
	}

	bestIdx, bestScore := -1, 0.0
	for i, c := range candidates {
		n := normalizeName(c.Name)
		if n == "" {
			continue
		}
		score := m.similarity.Score(want, n)
		if score >= m.threshold && score > bestScore {
			bestIdx, bestScore = i, score
		}
	}
	if bestIdx >= 0 {
		return Match{Feature: candidates[bestIdx], Method: MatchFuzzy, Score: bestScore}, nil
	}

	for _, c := range candidates {
		if c.HasCoordinates() {
			return Match{Feature: c, Method: MatchFallback}, nil
		}
	}

	return Match{}, apperr.NotFound(apperr.GuidanceTrailNotFound,
		"trail %q not found (or lacks coordinates)", name)
}

var defaultMatcher = NewMatcher()

// PickByName picks a trail with the default matcher.
func PickByName(candidates []Feature, name string) (Feature, error) {
	match, err := defaultMatcher.Pick(candidates, name)
	if err != nil {
		return Feature{}, err
	}
	return match.Feature, nil
}
