// Package queries provides utilities for building OpenStreetMap API queries.
package queries

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/NERVsystems/trailmcp/pkg/geo"
	"github.com/NERVsystems/trailmcp/pkg/osm"
)

// DefaultTimeoutSeconds is the server-side timeout requested from Overpass.
const DefaultTimeoutSeconds = 25

// Filter is a single Overpass tag filter such as ["highway"~"path|footway"].
type Filter struct {
	Key   string
	Op    string // "", "=", "~" or "!~"
	Value string
}

// Has matches elements carrying key with any value.
func Has(key string) Filter {
	return Filter{Key: key}
}

// Matches matches elements whose key matches any of values.
func Matches(key string, values ...string) Filter {
	return Filter{Key: key, Op: "~", Value: strings.Join(values, "|")}
}

// NotMatches matches elements whose key is absent or matches none of values.
func NotMatches(key string, values ...string) Filter {
	return Filter{Key: key, Op: "!~", Value: strings.Join(values, "|")}
}

// String renders the filter in Overpass QL.
func (f Filter) String() string {
	if f.Op == "" {
		return fmt.Sprintf("[%q]", f.Key)
	}
	return fmt.Sprintf("[%q%s%q]", f.Key, f.Op, f.Value)
}

// OverpassBuilder provides a fluent interface for building Overpass API queries.
// Filters are rendered in the order given so the output is deterministic.
type OverpassBuilder struct {
	buf        strings.Builder
	hasElement bool
}

// NewOverpassBuilder creates a new Overpass query builder requesting JSON
// output and the given server-side timeout.
func NewOverpassBuilder(timeoutSeconds int) *OverpassBuilder {
	b := &OverpassBuilder{}
	b.buf.WriteString("[out:json]")
	if timeoutSeconds > 0 {
		fmt.Fprintf(&b.buf, "[timeout:%d]", timeoutSeconds)
	}
	b.buf.WriteString(";")
	return b
}

// WithAround adds an element query around a point with the radius in meters.
func (b *OverpassBuilder) WithAround(kind osm.ElementType, lat, lon float64, radiusMeters int, filters ...Filter) *OverpassBuilder {
	base := fmt.Sprintf("%s(around:%d,%s,%s)", kind, radiusMeters, geo.FormatDegrees(lat), geo.FormatDegrees(lon))
	b.addElement(base, filters, "")
	return b
}

// WithBbox adds an element query within a bounding box.
func (b *OverpassBuilder) WithBbox(kind osm.ElementType, bb geo.BoundingBox, filters ...Filter) *OverpassBuilder {
	b.addElement(string(kind), filters, bb.String())
	return b
}

// Begin starts a union of queries.
func (b *OverpassBuilder) Begin() *OverpassBuilder {
	if !b.hasElement {
		b.buf.WriteString("(")
		b.hasElement = true
	}
	return b
}

// OutCenter closes the union and requests element centers and tags, capped
// at limit elements (no cap when limit <= 0).
func (b *OverpassBuilder) OutCenter(limit int) *OverpassBuilder {
	if !b.hasElement {
		return b
	}
	b.buf.WriteString(");out center tags")
	if limit > 0 {
		b.buf.WriteString(" " + strconv.Itoa(limit))
	}
	b.buf.WriteString(";")
	return b
}

// Build returns the complete Overpass query string.
func (b *OverpassBuilder) Build() string {
	return b.buf.String()
}

// addElement renders base, the filters and an optional trailing bbox.
func (b *OverpassBuilder) addElement(base string, filters []Filter, suffix string) {
	b.Begin()

	b.buf.WriteString(base)
	for _, f := range filters {
		b.buf.WriteString(f.String())
	}
	b.buf.WriteString(suffix)
	b.buf.WriteString(";")
}

// TrailOptions controls the trail query filters.
type TrailOptions struct {
	HardOnly    bool // SAC grade T3 and above
	NaturalOnly bool // exclude urban surfaces on ways
	Limit       int  // raw element cap applied by Overpass
}

func (o TrailOptions) relationFilters() []Filter {
	filters := []Filter{
		Matches(osm.TagRoute, osm.TrailRouteTypes...),
		Has(osm.TagName),
	}
	if o.HardOnly {
		filters = append(filters, Matches(osm.TagSACScale, osm.HardSACGrades...))
	}
	return filters
}

func (o TrailOptions) wayFilters() []Filter {
	filters := []Filter{Matches(osm.TagHighway, osm.TrailHighwayTypes...)}
	if o.NaturalOnly {
		filters = append(filters, NotMatches(osm.TagSurface, osm.UrbanSurfaces...))
	}
	if o.HardOnly {
		filters = append(filters, Matches(osm.TagSACScale, osm.HardSACGrades...))
	}
	return filters
}

// TrailsAround selects named hiking/running route relations and path/footway
// ways within radiusMeters of a point. For example
//
//	TrailsAround(51.089, -115.344, 12000, TrailOptions{NaturalOnly: true, Limit: 2000})
//
// ends with ");out center tags 2000;".
func TrailsAround(lat, lon float64, radiusMeters int, opts TrailOptions) string {
	return NewOverpassBuilder(DefaultTimeoutSeconds).
		Begin().
		WithAround(osm.TypeRelation, lat, lon, radiusMeters, opts.relationFilters()...).
		WithAround(osm.TypeWay, lat, lon, radiusMeters, opts.wayFilters()...).
		OutCenter(opts.Limit).
		Build()
}

// TrailsInBbox is TrailsAround for a bounding box.
func TrailsInBbox(bb geo.BoundingBox, opts TrailOptions) string {
	return NewOverpassBuilder(DefaultTimeoutSeconds).
		Begin().
		WithBbox(osm.TypeRelation, bb, opts.relationFilters()...).
		WithBbox(osm.TypeWay, bb, opts.wayFilters()...).
		OutCenter(opts.Limit).
		Build()
}
