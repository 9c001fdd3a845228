// Package osm provides utilities for working with OpenStreetMap data.
package osm

const (
	// API endpoints
	NominatimBaseURL = "https://nominatim.openstreetmap.org"
	OverpassBaseURL  = "https://overpass.kumi.systems/api/interpreter"
)

// ElementType is the OSM element kind returned by Overpass.
type ElementType string

const (
	TypeNode     ElementType = "node"
	TypeWay      ElementType = "way"
	TypeRelation ElementType = "relation"
)

// Tag keys used by the trail queries
const (
	TagName     = "name"
	TagNameEn   = "name:en"
	TagRef      = "ref"
	TagRoute    = "route"
	TagHighway  = "highway"
	TagSACScale = "sac_scale"
	TagSurface  = "surface"
)

var (
	// TrailRouteTypes are the route relation values treated as trails
	TrailRouteTypes = []string{"hiking", "running"}

	// TrailHighwayTypes are the way values treated as trails
	TrailHighwayTypes = []string{"path", "footway"}

	// HardSACGrades are the SAC scale values for "T3 and above"
	HardSACGrades = []string{"T3", "T4", "T5", "T6"}

	// UrbanSurfaces are excluded when only natural surfaces are wanted
	UrbanSurfaces = []string{"asphalt", "concrete", "paving_stones", "cement"}
)

// LatLon is a coordinate pair as encoded by Overpass.
type LatLon struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Element is one result of an Overpass query run with `out center tags`.
type Element struct {
	Type   ElementType       `json:"type"`
	ID     int64             `json:"id"`
	Tags   map[string]string `json:"tags,omitempty"`
	Center *LatLon           `json:"center,omitempty"`
}

// Tag returns the value of key, or "" when the tag is absent.
func (e Element) Tag(key string) string {
	return e.Tags[key]
}

// OverpassResponse is the JSON envelope returned by the Overpass interpreter.
type OverpassResponse struct {
	Elements []Element `json:"elements"`
	Remark   string    `json:"remark,omitempty"`
}
