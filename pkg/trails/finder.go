package trails

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"slices"
	"time"

	"github.com/NERVsystems/trailmcp/pkg/apperr"
	"github.com/NERVsystems/trailmcp/pkg/cache"
	"github.com/NERVsystems/trailmcp/pkg/geo"
	"github.com/NERVsystems/trailmcp/pkg/osm"
	"github.com/NERVsystems/trailmcp/pkg/osm/queries"
	"github.com/NERVsystems/trailmcp/pkg/upstream"
)

const (
	// Search radius bounds in kilometers
	MinRadiusKm = 0.5
	MaxRadiusKm = 60.0

	// Raw element caps requested from Overpass
	NearElementLimit = 2000
	BboxElementLimit = 3000

	DefaultNearTimeout = 30 * time.Second
	DefaultBboxTimeout = 60 * time.Second

	DefaultNearCacheSize = 256
	DefaultBboxCacheSize = 64
)

// Filters narrows a trail search.
type Filters struct {
	HardOnly    bool `json:"hard_only"`    // SAC scale T3 and above
	NaturalOnly bool `json:"natural_only"` // exclude asphalt, concrete, paving stones and cement
}

type nearKey struct {
	Lat, Lon, RadiusKm float64
	Filters
}

type bboxKey struct {
	geo.BoundingBox
	Filters
}

// Finder queries Overpass for trail features and memoizes results per
// argument tuple.
type Finder struct {
	http        *upstream.Client
	url         string
	nearTimeout time.Duration
	bboxTimeout time.Duration
	nearCache   *cache.LRU[nearKey, []Feature]
	bboxCache   *cache.LRU[bboxKey, []Feature]
	logger      *slog.Logger
}

// FinderOption configures a Finder.
type FinderOption func(*Finder)

// WithOverpassURL overrides the Overpass interpreter URL.
func WithOverpassURL(u string) FinderOption {
	return func(f *Finder) {
		f.url = u
	}
}

// WithTimeouts sets the per-call timeouts for point and bbox queries.
func WithTimeouts(near, bbox time.Duration) FinderOption {
	return func(f *Finder) {
		if near > 0 {
			f.nearTimeout = near
		}
		if bbox > 0 {
			f.bboxTimeout = bbox
		}
	}
}

// WithCacheSizes sets the capacity of the point and bbox caches and the
// entry TTL (0 keeps entries until evicted).
func WithCacheSizes(near, bbox int, ttl time.Duration) FinderOption {
	return func(f *Finder) {
		f.nearCache = cache.NewLRU[nearKey, []Feature](near, ttl)
		f.bboxCache = cache.NewLRU[bboxKey, []Feature](bbox, ttl)
	}
}

// WithFinderLogger sets the logger.
func WithFinderLogger(logger *slog.Logger) FinderOption {
	return func(f *Finder) {
		f.logger = logger
	}
}

// NewFinder creates a trail finder.
func NewFinder(client *upstream.Client, opts ...FinderOption) *Finder {
	f := &Finder{
		http:        client,
		url:         osm.OverpassBaseURL,
		nearTimeout: DefaultNearTimeout,
		bboxTimeout: DefaultBboxTimeout,
		nearCache:   cache.NewLRU[nearKey, []Feature](DefaultNearCacheSize, 0),
		bboxCache:   cache.NewLRU[bboxKey, []Feature](DefaultBboxCacheSize, 0),
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(f)
	}
	f.logger = f.logger.With("component", "trail_finder")
	return f
}

// ClampRadiusKm bounds r to [MinRadiusKm, MaxRadiusKm].
func ClampRadiusKm(r float64) float64 {
	return max(MinRadiusKm, min(r, MaxRadiusKm))
}

// FindNear returns up to MaxResults trails within radiusKm of a point.
// The radius is clamped rather than rejected.
func (f *Finder) FindNear(ctx context.Context, lat, lon, radiusKm float64, filters Filters) ([]Feature, error) {
	if err := geo.ValidateCoords(lat, lon); err != nil {
		return nil, err
	}
	radiusKm = ClampRadiusKm(radiusKm)

	key := nearKey{Lat: lat, Lon: lon, RadiusKm: radiusKm, Filters: filters}
	features, hit, err := f.nearCache.GetOrLoad(key, func() ([]Feature, error) {
		radiusMeters := int(radiusKm * 1000)
		query := queries.TrailsAround(lat, lon, radiusMeters, queries.TrailOptions{
			HardOnly:    filters.HardOnly,
			NaturalOnly: filters.NaturalOnly,
			Limit:       NearElementLimit,
		})
		return f.run(ctx, query, f.nearTimeout)
	})
	if err != nil {
		return nil, err
	}

	f.logger.Debug("trails near point",
		"lat", lat,
		"lon", lon,
		"radius_km", radiusKm,
		"hard_only", filters.HardOnly,
		"natural_only", filters.NaturalOnly,
		"count", len(features),
		"cache_hit", hit)
	return slices.Clone(features), nil
}

// FindInBbox returns up to MaxResults trails inside bb.
func (f *Finder) FindInBbox(ctx context.Context, bb geo.BoundingBox, filters Filters) ([]Feature, error) {
	if err := bb.Validate(); err != nil {
		return nil, err
	}

	key := bboxKey{BoundingBox: bb, Filters: filters}
	features, hit, err := f.bboxCache.GetOrLoad(key, func() ([]Feature, error) {
		query := queries.TrailsInBbox(bb, queries.TrailOptions{
			HardOnly:    filters.HardOnly,
			NaturalOnly: filters.NaturalOnly,
			Limit:       BboxElementLimit,
		})
		return f.run(ctx, query, f.bboxTimeout)
	})
	if err != nil {
		return nil, err
	}

	f.logger.Debug("trails in bbox",
		"bbox", bb.String(),
		"hard_only", filters.HardOnly,
		"natural_only", filters.NaturalOnly,
		"count", len(features),
		"cache_hit", hit)
	return slices.Clone(features), nil
}

// run posts query to Overpass and normalizes the elements.
func (f *Finder) run(ctx context.Context, query string, timeout time.Duration) ([]Feature, error) {
	var resp osm.OverpassResponse
	err := f.http.FetchJSON(ctx, upstream.Request{
		Service: upstream.ServiceOverpass,
		Method:  http.MethodPost,
		URL:     f.url,
		Form:    url.Values{"data": {query}},
		Timeout: timeout,
	}, &resp)
	if err != nil {
		var appErr *apperr.Error
		if errors.As(err, &appErr) && appErr.StatusCode == http.StatusGatewayTimeout {
			appErr.Guidance = apperr.GuidanceOverpassTimeout
		}
		return nil, err
	}

	if resp.Remark != "" {
		f.logger.Warn("overpass returned a remark", "remark", resp.Remark)
	}

	return normalize(resp.Elements), nil
}
