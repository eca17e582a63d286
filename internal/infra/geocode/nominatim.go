// Package geocode resolves city/state/postal-code addresses to coordinates
// through the OpenStreetMap Nominatim search API, with an optional Redis
// read-through cache in front of it.
package geocode

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"agriconnect/config"
	"agriconnect/internal/domain/geo"
	"agriconnect/internal/domain/service"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/pkg/errors"
	"go.uber.org/fx"
)

const (
	defaultBaseURL = "https://nominatim.openstreetmap.org"
	defaultTimeout = 10 * time.Second
)

// nominatimGeocoder implements Geocoder against the Nominatim search endpoint
type nominatimGeocoder struct {
	baseURL    string
	userAgent  string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewNominatimGeocoder creates a geocoder backed by a Nominatim instance
func NewNominatimGeocoder(cfg *config.GeocodingConfig, logger *slog.Logger) service.Geocoder {
	baseURL := defaultBaseURL
	timeout := defaultTimeout
	userAgent := "agriconnect/1.0"

	if cfg != nil {
		if cfg.BaseURL != "" {
			baseURL = cfg.BaseURL
		}
		if cfg.Timeout > 0 {
			timeout = cfg.Timeout
		}
		if cfg.UserAgent != "" {
			userAgent = cfg.UserAgent
		}
	}

	return &nominatimGeocoder{
		baseURL:   strings.TrimRight(baseURL, "/"),
		userAgent: userAgent,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: logger,
	}
}

// Geocode resolves an address to a point. A nil point with a nil error means
// the address could not be resolved.
func (g *nominatimGeocoder) Geocode(ctx context.Context, city, state, postalCode string) (*geo.Point, error) {
	query := url.Values{}
	query.Set("format", "geojson")
	query.Set("limit", "1")
	if city != "" {
		query.Set("city", city)
	}
	if state != "" {
		query.Set("state", state)
	}
	if postalCode != "" {
		query.Set("postalcode", postalCode)
	}
	if city == "" && state == "" && postalCode == "" {
		return nil, nil
	}

	endpoint := g.baseURL + "/search?" + query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, errors.Wrap(err, "failed to build geocode request")
	}
	// Nominatim's usage policy requires an identifying User-Agent
	req.Header.Set("User-Agent", g.userAgent)

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "geocode request failed")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.Errorf("geocoder returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, errors.Wrap(err, "failed to read geocode response")
	}

	fc, err := geojson.UnmarshalFeatureCollection(body)
	if err != nil {
		return nil, errors.Wrap(err, "failed to decode geocode response")
	}

	if len(fc.Features) == 0 {
		g.logger.Debug("Geocoder found no match",
			slog.String("city", city),
			slog.String("state", state),
			slog.String("postal_code", postalCode),
		)

		return nil, nil
	}

	center := centroid(fc.Features[0].Geometry)
	point, err := geo.NewPoint(center.Lat(), center.Lon())
	if err != nil {
		return nil, errors.Wrap(err, "geocoder returned invalid coordinates")
	}

	return &point, nil
}

// centroid collapses the matched geometry to a single representative point.
// Nominatim point results come back as-is; polygon results use the bound center.
func centroid(g orb.Geometry) orb.Point {
	if p, ok := g.(orb.Point); ok {
		return p
	}

	return g.Bound().Center()
}

// GeocoderParams holds dependencies for Geocoder, injected by Fx
type GeocoderParams struct {
	fx.In

	Config *config.Config
	Logger *slog.Logger
}

// NewGeocoder wires the Nominatim client, wrapping it with the Redis cache
// when Redis is configured
func NewGeocoder(params GeocoderParams) service.Geocoder {
	geocoder := NewNominatimGeocoder(params.Config.Geocoding, params.Logger)

	if params.Config.Redis != nil && params.Config.Redis.Addr != "" {
		cacheTTL := time.Duration(0)
		if params.Config.Geocoding != nil {
			cacheTTL = params.Config.Geocoding.CacheTTL
		}
		geocoder = NewCachedGeocoder(geocoder, params.Config.Redis, cacheTTL, params.Logger)
	}

	return geocoder
}

// Module provides the geocoding FX module
//
//nolint:gochecknoglobals
var Module = fx.Options(
	fx.Provide(NewGeocoder),
)
