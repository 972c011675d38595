package providers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/i474232898/shutterscout/internal/scout"
)

// upstream routes every provider to one test server. Handlers can be
// replaced per test before the server starts serving requests.
type upstream struct {
	location http.HandlerFunc
	weather  http.HandlerFunc
	sun      http.HandlerFunc
	places   http.HandlerFunc
	photos   http.HandlerFunc
}

func newUpstream() *upstream {
	return &upstream{
		location: jsonHandler(http.StatusOK, locationBody, nil),
		weather:  jsonHandler(http.StatusOK, weatherBody, nil),
		sun:      jsonHandler(http.StatusOK, sunBody, nil),
		places:   jsonHandler(http.StatusOK, `{"results": [{"name": "Test Museum", "geocodes": {"main": {"latitude": 51.9187, "longitude": 4.364}}}]}`, nil),
		photos:   jsonHandler(http.StatusOK, photosBody, nil),
	}
}

func (u *upstream) serve(t *testing.T) scout.Sources {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/ipapi/", u.location)
	mux.HandleFunc("/tomorrow", u.weather)
	mux.HandleFunc("/sun", u.sun)
	mux.HandleFunc("/places", u.places)
	mux.HandleFunc("/flickr", u.photos)

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	client := srv.Client()
	client.Timeout = 5 * time.Second

	ip := NewIPAPIProvider(client)
	ip.baseURL = srv.URL + "/ipapi"
	weather := NewTomorrowProvider(client, "test_api_key")
	weather.baseURL = srv.URL + "/tomorrow"
	sun := NewSunriseSunsetProvider(client)
	sun.baseURL = srv.URL + "/sun"
	places := NewFoursquareProvider(client, "test_api_key", 0)
	places.baseURL = srv.URL + "/places"
	photos := NewFlickrProvider(client, "test_api_key", PhotoSizeMedium)
	photos.baseURL = srv.URL + "/flickr"

	return scout.Sources{Locator: ip, Weather: weather, Sun: sun, Places: places, Photos: photos}
}

func fastAggregatorConfig() scout.AggregatorConfig {
	cfg := scout.DefaultAggregatorConfig()
	cfg.Retry.InitialDelay = time.Millisecond
	return cfg
}

func TestCollectOverHTTP(t *testing.T) {
	src := newUpstream().serve(t)

	result, err := scout.NewAggregator(src, fastAggregatorConfig()).Collect(context.Background(), "")
	require.NoError(t, err)

	assert.Equal(t, "Vlaardingen", result.Location.City)
	require.Len(t, result.Weather, 1)
	assert.Equal(t, 1.7, result.Weather[0].TemperatureMin)
	assert.Equal(t, 6.2, result.Weather[0].TemperatureMax)
	assert.Equal(t, "7:00:00 AM", result.SunTimes.Sunrise)
	require.Len(t, result.Places, 1)
	require.Len(t, result.PhotosByPlace["Test Museum"], 1)
	assert.Equal(t, "Test Photo", result.PhotosByPlace["Test Museum"][0].Title)
}

func TestCollectOverHTTPWithoutPhotos(t *testing.T) {
	u := newUpstream()
	u.photos = jsonHandler(http.StatusOK, `{"stat": "fail", "code": 100, "message": "Invalid API Key (Key has invalid format)"}`, nil)
	src := u.serve(t)

	result, err := scout.NewAggregator(src, fastAggregatorConfig()).Collect(context.Background(), "")
	require.NoError(t, err)

	require.Len(t, result.Places, 1)
	assert.Empty(t, result.PhotosByPlace)
}

func TestCollectOverHTTPLocationDown(t *testing.T) {
	u := newUpstream()
	u.location = jsonHandler(http.StatusInternalServerError, `{}`, nil)
	src := u.serve(t)

	_, err := scout.NewAggregator(src, fastAggregatorConfig()).Collect(context.Background(), "")
	require.ErrorIs(t, err, scout.ErrLocationUnavailable)
}

func TestCollectOverHTTPBadWeather(t *testing.T) {
	u := newUpstream()
	u.weather = jsonHandler(http.StatusOK, `{"invalid": "response"}`, nil)
	src := u.serve(t)

	_, err := scout.NewAggregator(src, fastAggregatorConfig()).Collect(context.Background(), "")
	require.ErrorIs(t, err, scout.ErrRequiredData)
}

func TestCollectOverHTTPIsRepeatableWithFailingPhotos(t *testing.T) {
	var photoHits atomic.Int32
	u := newUpstream()
	u.places = jsonHandler(http.StatusOK, `{"results": [
		{"name": "Broken Bridge", "geocodes": {"main": {"latitude": 51.91, "longitude": 4.36}}},
		{"name": "Broken Mill", "geocodes": {"main": {"latitude": 51.92, "longitude": 4.37}}},
		{"name": "Broken Pier", "geocodes": {"main": {"latitude": 51.93, "longitude": 4.38}}},
		{"name": "Good Harbour", "geocodes": {"main": {"latitude": 51.94, "longitude": 4.39}}}
	]}`, nil)
	u.photos = func(w http.ResponseWriter, r *http.Request) {
		photoHits.Add(1)
		if strings.HasPrefix(r.URL.Query().Get("text"), "Broken") {
			jsonHandler(http.StatusServiceUnavailable, `{}`, nil)(w, r)
			return
		}
		jsonHandler(http.StatusOK, photosBody, nil)(w, r)
	}
	src := u.serve(t)

	agg := scout.NewAggregator(src, fastAggregatorConfig())

	first, err := agg.Collect(context.Background(), "")
	require.NoError(t, err)
	second, err := agg.Collect(context.Background(), "")
	require.NoError(t, err)

	if diff := cmp.Diff(first, second); diff != "" {
		t.Fatalf("identical upstream responses gave different composites (-first +second):\n%s", diff)
	}
	require.Len(t, second.PhotosByPlace["Good Harbour"], 1)
	assert.Len(t, second.PhotosByPlace, 1)

	// Per run: three attempts for each failing place plus one for the good one.
	assert.Equal(t, int32(2*(3*3+1)), photoHits.Load())
}

func TestCollectOverHTTPRecoversAfterFailedRuns(t *testing.T) {
	var down atomic.Bool
	down.Store(true)
	u := newUpstream()
	u.location = func(w http.ResponseWriter, r *http.Request) {
		if down.Load() {
			jsonHandler(http.StatusBadGateway, `{}`, nil)(w, r)
			return
		}
		jsonHandler(http.StatusOK, locationBody, nil)(w, r)
	}
	src := u.serve(t)

	agg := scout.NewAggregator(src, fastAggregatorConfig())
	for i := 0; i < 3; i++ {
		_, err := agg.Collect(context.Background(), "")
		require.ErrorIs(t, err, scout.ErrLocationUnavailable)
	}

	down.Store(false)
	result, err := agg.Collect(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, "Vlaardingen", result.Location.City)
}
