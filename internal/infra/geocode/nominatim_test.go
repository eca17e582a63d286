package geocode

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"agriconnect/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testGeocodeLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestGeocoder(t *testing.T, handler http.HandlerFunc) (*httptest.Server, *nominatimGeocoder) {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	geocoder := NewNominatimGeocoder(&config.GeocodingConfig{
		BaseURL:   server.URL,
		UserAgent: "agriconnect-test/1.0",
		Timeout:   5 * time.Second,
	}, testGeocodeLogger())

	return server, geocoder.(*nominatimGeocoder)
}

func TestNominatimGeocoder_Geocode_Success(t *testing.T) {
	var gotQuery, gotUserAgent string

	_, geocoder := newTestGeocoder(t, func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		gotUserAgent = r.Header.Get("User-Agent")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"type": "FeatureCollection",
			"features": [{
				"type": "Feature",
				"properties": {"display_name": "Pune, Maharashtra, India"},
				"geometry": {"type": "Point", "coordinates": [73.8567, 18.5204]}
			}]
		}`))
	})

	point, err := geocoder.Geocode(context.Background(), "Pune", "Maharashtra", "411001")
	require.NoError(t, err)
	require.NotNil(t, point)
	assert.InDelta(t, 18.5204, point.Latitude, 0.0001)
	assert.InDelta(t, 73.8567, point.Longitude, 0.0001)
	assert.Contains(t, gotQuery, "format=geojson")
	assert.Contains(t, gotQuery, "city=Pune")
	assert.Contains(t, gotQuery, "postalcode=411001")
	assert.Equal(t, "agriconnect-test/1.0", gotUserAgent)
}

func TestNominatimGeocoder_Geocode_PolygonResultUsesBoundCenter(t *testing.T) {
	_, geocoder := newTestGeocoder(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"type": "FeatureCollection",
			"features": [{
				"type": "Feature",
				"properties": {},
				"geometry": {"type": "Polygon", "coordinates": [[[72.0, 18.0], [74.0, 18.0], [74.0, 20.0], [72.0, 20.0], [72.0, 18.0]]]}
			}]
		}`))
	})

	point, err := geocoder.Geocode(context.Background(), "Mumbai", "", "")
	require.NoError(t, err)
	require.NotNil(t, point)
	assert.InDelta(t, 19.0, point.Latitude, 0.0001)
	assert.InDelta(t, 73.0, point.Longitude, 0.0001)
}

func TestNominatimGeocoder_Geocode_NoMatchReturnsNil(t *testing.T) {
	_, geocoder := newTestGeocoder(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"type": "FeatureCollection", "features": []}`))
	})

	point, err := geocoder.Geocode(context.Background(), "Nowhereville", "", "")
	require.NoError(t, err)
	assert.Nil(t, point)
}

func TestNominatimGeocoder_Geocode_EmptyAddressSkipsRequest(t *testing.T) {
	called := false
	_, geocoder := newTestGeocoder(t, func(w http.ResponseWriter, r *http.Request) {
		called = true
	})

	point, err := geocoder.Geocode(context.Background(), "", "", "")
	require.NoError(t, err)
	assert.Nil(t, point)
	assert.False(t, called)
}

func TestNominatimGeocoder_Geocode_ServerError(t *testing.T) {
	_, geocoder := newTestGeocoder(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	point, err := geocoder.Geocode(context.Background(), "Pune", "", "")
	require.Error(t, err)
	assert.Nil(t, point)
	assert.Contains(t, err.Error(), "status 503")
}

func TestCacheKey_Normalizes(t *testing.T) {
	assert.Equal(t, "geocode:pune|maharashtra|411001", cacheKey(" Pune ", "Maharashtra", "411001"))
	assert.Equal(t, cacheKey("PUNE", "", ""), cacheKey("pune", "", ""))
}
