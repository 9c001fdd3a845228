// Package trails finds hiking and running trails with the Overpass API and
// picks a trail out of a candidate list by name.
package trails

import (
	"fmt"

	"github.com/NERVsystems/trailmcp/pkg/geo"
	"github.com/NERVsystems/trailmcp/pkg/osm"
)

// MaxResults caps every returned trail list.
const MaxResults = 20

// coordinatePlaces is the rounding applied to feature coordinates.
const coordinatePlaces = 5

// Feature is a normalized trail: a hiking/running route relation or a
// path/footway way. (OSMType, ID) identifies it.
type Feature struct {
	ID         int64           `json:"id"`
	OSMType    osm.ElementType `json:"osm_type"`
	Name       string          `json:"name"`
	RouteType  *string         `json:"route_type"`
	Lat        float64         `json:"lat"`
	Lon        float64         `json:"lon"`
	Difficulty *string         `json:"difficulty"`
	Surface    *string         `json:"surface"`
}

// Key returns the identity of the feature.
func (f Feature) Key() FeatureKey {
	return FeatureKey{Type: f.OSMType, ID: f.ID}
}

// Coordinate returns the feature's center.
func (f Feature) Coordinate() geo.Coordinate {
	return geo.Coordinate{Lat: f.Lat, Lon: f.Lon}
}

// HasCoordinates reports whether the center is a usable coordinate.
func (f Feature) HasCoordinates() bool {
	return f.Coordinate().Valid()
}

// FeatureKey is the (osm_type, id) identity of a Feature.
type FeatureKey struct {
	Type osm.ElementType
	ID   int64
}

// displayName resolves a name through name, name:en, ref and route, then
// synthesizes a stable one from the element type and id.
func displayName(el osm.Element) string {
	for _, key := range []string{osm.TagName, osm.TagNameEn, osm.TagRef, osm.TagRoute} {
		if v := el.Tag(key); v != "" {
			return v
		}
	}
	if el.Type == osm.TypeWay {
		return fmt.Sprintf("Way %d", el.ID)
	}
	return fmt.Sprintf("Route %d", el.ID)
}

func optionalTag(el osm.Element, key string) *string {
	v, ok := el.Tags[key]
	if !ok || v == "" {
		return nil
	}
	return &v
}

// normalize converts raw Overpass elements to features. Elements without a
// center or of an unexpected type are dropped, duplicates keep their first
// occurrence and the result is truncated to MaxResults. It never returns nil.
func normalize(elements []osm.Element) []Feature {
	out := make([]Feature, 0, min(len(elements), MaxResults))
	seen := make(map[FeatureKey]struct{}, len(elements))

	for _, el := range elements {
		if el.Type != osm.TypeWay && el.Type != osm.TypeRelation {
			continue
		}
		if el.Center == nil {
			continue
		}

		f := Feature{
			ID:         el.ID,
			OSMType:    el.Type,
			Name:       displayName(el),
			Lat:        geo.Round(el.Center.Lat, coordinatePlaces),
			Lon:        geo.Round(el.Center.Lon, coordinatePlaces),
			Difficulty: optionalTag(el, osm.TagSACScale),
			Surface:    optionalTag(el, osm.TagSurface),
		}
		if el.Type == osm.TypeRelation {
			f.RouteType = optionalTag(el, osm.TagRoute)
		}

		if _, dup := seen[f.Key()]; dup {
			continue
		}
		seen[f.Key()] = struct{}{}

		out = append(out, f)
		if len(out) == MaxResults {
			break
		}
	}

	return out
}
