package trails

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/NERVsystems/trailmcp/pkg/osm"
)

func center(lat, lon float64) *osm.LatLon {
	return &osm.LatLon{Lat: lat, Lon: lon}
}

func TestDisplayName(t *testing.T) {
	tests := []struct {
		name string
		el   osm.Element
		want string
	}{
		{"name", osm.Element{Type: osm.TypeWay, ID: 1, Tags: map[string]string{"name": "Grassi Lakes", "name:en": "Other"}}, "Grassi Lakes"},
		{"name:en", osm.Element{Type: osm.TypeWay, ID: 1, Tags: map[string]string{"name:en": "Tunnel Mountain"}}, "Tunnel Mountain"},
		{"ref", osm.Element{Type: osm.TypeRelation, ID: 2, Tags: map[string]string{"ref": "GDT"}}, "GDT"},
		{"route", osm.Element{Type: osm.TypeRelation, ID: 2, Tags: map[string]string{"route": "hiking"}}, "hiking"},
		{"way fallback", osm.Element{Type: osm.TypeWay, ID: 42}, "Way 42"},
		{"relation fallback", osm.Element{Type: osm.TypeRelation, ID: 7}, "Route 7"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, displayName(tt.el))
		})
	}
}

func TestNormalize(t *testing.T) {
	elements := []osm.Element{
		{Type: osm.TypeWay, ID: 1, Tags: map[string]string{"name": "Grassi Lakes", "sac_scale": "T2", "surface": "dirt"}, Center: center(51.0712345678, -115.3698765432)},
		{Type: osm.TypeWay, ID: 2, Tags: map[string]string{"name": "No center"}},
		{Type: osm.TypeNode, ID: 3, Tags: map[string]string{"name": "Trailhead"}, Center: center(51, -115)},
		{Type: osm.TypeRelation, ID: 1, Tags: map[string]string{"route": "hiking", "name": "Ha Ling Peak Trail"}, Center: center(51.06, -115.40)},
		{Type: osm.TypeWay, ID: 1, Tags: map[string]string{"name": "Duplicate"}, Center: center(1, 1)},
	}

	got := normalize(elements)
	assert.Len(t, got, 2)

	way := got[0]
	assert.Equal(t, osm.TypeWay, way.OSMType)
	assert.Equal(t, "Grassi Lakes", way.Name)
	assert.Equal(t, 51.07123, way.Lat)
	assert.Equal(t, -115.36988, way.Lon)
	assert.Nil(t, way.RouteType)
	if assert.NotNil(t, way.Difficulty) {
		assert.Equal(t, "T2", *way.Difficulty)
	}
	if assert.NotNil(t, way.Surface) {
		assert.Equal(t, "dirt", *way.Surface)
	}

	rel := got[1]
	assert.Equal(t, osm.TypeRelation, rel.OSMType)
	assert.Equal(t, int64(1), rel.ID)
	if assert.NotNil(t, rel.RouteType) {
		assert.Equal(t, "hiking", *rel.RouteType)
	}
	assert.Nil(t, rel.Difficulty)
	assert.Nil(t, rel.Surface)
}

func TestNormalizeTruncates(t *testing.T) {
	var elements []osm.Element
	for i := range 50 {
		elements = append(elements, osm.Element{Type: osm.TypeWay, ID: int64(i + 1), Center: center(51, -115)})
	}

	got := normalize(elements)
	assert.Len(t, got, MaxResults)
	assert.Equal(t, int64(1), got[0].ID)
	assert.Equal(t, int64(MaxResults), got[MaxResults-1].ID)
}

func TestNormalizeEmpty(t *testing.T) {
	got := normalize(nil)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}
