package trails

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NERVsystems/trailmcp/pkg/apperr"
	"github.com/NERVsystems/trailmcp/pkg/osm"
)

func feature(id int64, name string, lat, lon float64) Feature {
	return Feature{ID: id, OSMType: osm.TypeWay, Name: name, Lat: lat, Lon: lon}
}

var candidates = []Feature{
	feature(1, "Grassi Lakes Trail", 51.08, -115.35),
	feature(2, "Ha Ling Peak Trail", 51.06, -115.40),
	feature(3, "Tunnel Mountain Summit", 51.18, -115.55),
}

func TestPickExact(t *testing.T) {
	m := NewMatcher()

	match, err := m.Pick(candidates, "  ha ling PEAK trail ")
	require.NoError(t, err)
	assert.Equal(t, MatchExact, match.Method)
	assert.Equal(t, int64(2), match.Feature.ID)
	assert.Equal(t, 1.0, match.Score)
}

func TestPickFuzzy(t *testing.T) {
	m := NewMatcher()

	match, err := m.Pick(candidates, "Tunnel Mountain Sumit")
	require.NoError(t, err)
	assert.Equal(t, MatchFuzzy, match.Method)
	assert.Equal(t, int64(3), match.Feature.ID)
	assert.Greater(t, match.Score, 0.9)
}

func TestPickFallback(t *testing.T) {
	m := NewMatcher()

	match, err := m.Pick(candidates, "Completely Unrelated Name")
	require.NoError(t, err)
	assert.Equal(t, MatchFallback, match.Method)
	assert.Equal(t, int64(1), match.Feature.ID)
}

func TestPickFallbackSkipsMissingCoordinates(t *testing.T) {
	list := []Feature{
		feature(1, "Broken", math.NaN(), -115),
		feature(2, "Good", 51, -115),
	}

	match, err := NewMatcher().Pick(list, "zzzzzzzz")
	require.NoError(t, err)
	assert.Equal(t, int64(2), match.Feature.ID)
}

func TestPickNotFound(t *testing.T) {
	_, err := NewMatcher().Pick(nil, "anything")
	assert.True(t, errors.Is(err, apperr.ErrNotFound))

	list := []Feature{feature(1, "Broken", math.NaN(), math.NaN())}
	_, err = NewMatcher().Pick(list, "zzzzzzzz")
	assert.True(t, errors.Is(err, apperr.ErrNotFound))
	assert.Equal(t, apperr.GuidanceTrailNotFound, apperr.GuidanceOf(err))
}

func TestPickTiesKeepFirst(t *testing.T) {
	constant := SimilarityFunc(func(a, b string) float64 { return 0.8 })
	m := NewMatcher(WithSimilarity(constant))

	match, err := m.Pick(candidates, "whatever")
	require.NoError(t, err)
	assert.Equal(t, MatchFuzzy, match.Method)
	assert.Equal(t, int64(1), match.Feature.ID)
}

func TestWithThreshold(t *testing.T) {
	strict := NewMatcher(WithThreshold(0.99))
	match, err := strict.Pick(candidates, "Tunnel Mountain Sumit")
	require.NoError(t, err)
	assert.Equal(t, MatchFallback, match.Method)
}

func TestLevenshteinRatio(t *testing.T) {
	assert.Equal(t, 1.0, LevenshteinRatio.Score("", ""))
	assert.Equal(t, 1.0, LevenshteinRatio.Score("trail", "trail"))
	assert.Equal(t, 0.0, LevenshteinRatio.Score("abc", "xyz"))
	assert.InDelta(t, 0.8, LevenshteinRatio.Score("peaks", "peak"), 1e-9)
}

func TestPickByName(t *testing.T) {
	got, err := PickByName(candidates, "Grassi Lakes Trail")
	require.NoError(t, err)
	assert.Equal(t, int64(1), got.ID)
}

func TestPickNameExamples(t *testing.T) {
	tests := []struct {
		name       string
		candidates []Feature
		query      string
		wantID     int64
		wantMethod MatchMethod
	}{
		{
			name:       "misspelled peak matches fuzzily",
			candidates: []Feature{feature(7, "Ha Ling Peak Trail", 51.06, -115.40)},
			query:      "ha ling peek",
			wantID:     7,
			wantMethod: MatchFuzzy,
		},
		{
			name: "lowercase name matches exactly",
			candidates: []Feature{
				feature(1, "Elbow Lake Loop", 50.64, -114.99),
				feature(2, "Grotto Canyon", 51.07, -115.25),
			},
			query:      "elbow lake loop",
			wantID:     1,
			wantMethod: MatchExact,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			match, err := NewMatcher().Pick(tt.candidates, tt.query)
			require.NoError(t, err)
			assert.Equal(t, tt.wantMethod, match.Method)
			assert.Equal(t, tt.wantID, match.Feature.ID)
			assert.GreaterOrEqual(t, match.Score, DefaultThreshold)
		})
	}

	// 7 edits over 18 runes sits just above the default threshold
	assert.InDelta(t, 11.0/18.0, LevenshteinRatio.Score("ha ling peek", "ha ling peak trail"), 1e-9)
}
