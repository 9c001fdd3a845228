// Package weather fetches short hourly forecasts from Open-Meteo and trims
// them to the series a trail recommendation needs.
package weather

import (
	"slices"

	"github.com/NERVsystems/trailmcp/pkg/geo"
)

// Hour count bounds for a forecast request
const (
	MinHours = 1
	MaxHours = 24
)

// HourlySeries lists the Open-Meteo hourly variables kept in a forecast.
var HourlySeries = []string{"temperature_2m", "precipitation_probability", "precipitation"}

// Hourly holds parallel hourly series. Missing samples are nil.
type Hourly struct {
	Time                     []string   `json:"time,omitempty"`
	Temperature2m            []*float64 `json:"temperature_2m,omitempty"`
	PrecipitationProbability []*int     `json:"precipitation_probability,omitempty"`
	Precipitation            []*float64 `json:"precipitation,omitempty"`
}

// Summary condenses a forecast window.
type Summary struct {
	MinTemp       float64 `json:"min_temp"`
	MaxTemp       float64 `json:"max_temp"`
	AnyPrecip     bool    `json:"any_precip"`
	MaxPrecipProb int     `json:"max_precip_prob"`
}

// Forecast is a trimmed hourly forecast.
type Forecast struct {
	Hourly  Hourly   `json:"hourly"`
	Summary *Summary `json:"summary,omitempty"`
}

// ClampHours bounds h to [MinHours, MaxHours].
func ClampHours(h int) int {
	return max(MinHours, min(h, MaxHours))
}

// Slim truncates every series to the clamped hour count, then to the length
// of the shortest series present, and attaches a summary when one can be
// computed.
func Slim(h Hourly, hours int) Forecast {
	n := ClampHours(hours)
	for _, l := range presentLengths(h) {
		n = min(n, l)
	}

	out := Hourly{
		Time:                     truncate(h.Time, n),
		Temperature2m:            truncate(h.Temperature2m, n),
		PrecipitationProbability: truncate(h.PrecipitationProbability, n),
		Precipitation:            truncate(h.Precipitation, n),
	}
	return Forecast{Hourly: out, Summary: Summarize(out)}
}

func presentLengths(h Hourly) []int {
	var lengths []int
	if h.Time != nil {
		lengths = append(lengths, len(h.Time))
	}
	if h.Temperature2m != nil {
		lengths = append(lengths, len(h.Temperature2m))
	}
	if h.PrecipitationProbability != nil {
		lengths = append(lengths, len(h.PrecipitationProbability))
	}
	if h.Precipitation != nil {
		lengths = append(lengths, len(h.Precipitation))
	}
	return lengths
}

// truncate returns a copy of the first n elements, keeping nil as nil.
func truncate[T any](s []T, n int) []T {
	if s == nil {
		return nil
	}
	return slices.Clone(s[:min(n, len(s))])
}

// Summarize computes summary statistics over h. It returns nil when there
// is no non-null temperature sample.
func Summarize(h Hourly) *Summary {
	var (
		s     Summary
		found bool
	)
	for _, t := range h.Temperature2m {
		if t == nil {
			continue
		}
		if !found {
			s.MinTemp, s.MaxTemp = *t, *t
			found = true
			continue
		}
		s.MinTemp = min(s.MinTemp, *t)
		s.MaxTemp = max(s.MaxTemp, *t)
	}
	if !found {
		return nil
	}
	s.MinTemp = geo.Round(s.MinTemp, 1)
	s.MaxTemp = geo.Round(s.MaxTemp, 1)

	for _, p := range h.Precipitation {
		if p != nil && *p > 0 {
			s.AnyPrecip = true
			break
		}
	}
	for _, p := range h.PrecipitationProbability {
		if p != nil && *p > s.MaxPrecipProb {
			s.MaxPrecipProb = *p
		}
	}
	return &s
}
