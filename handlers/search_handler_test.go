package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"destinex/models"
	"destinex/services"
)

type stubGeocoder struct {
	lat, lon float64
	name     string
	ok       bool
}

func (g stubGeocoder) Geocode(ctx context.Context, city string) (float64, float64, string, bool) {
	return g.lat, g.lon, g.name, g.ok
}

type stubPlaces struct {
	attractions []models.RawPlace
	hotels      []models.RawPlace
	restaurants []models.RawPlace
}

func (p stubPlaces) FetchAttractions(ctx context.Context, lat, lon float64) []models.RawPlace {
	return p.attractions
}

func (p stubPlaces) FetchHotels(ctx context.Context, lat, lon float64) []models.RawPlace {
	return p.hotels
}

func (p stubPlaces) FetchRestaurants(ctx context.Context, lat, lon float64) []models.RawPlace {
	return p.restaurants
}

type stubCache struct {
	entries  map[string]*models.CityPayload
	writes   int
	cleared  []string
	deleted  int64
	clearErr error
}

func newStubCache() *stubCache {
	return &stubCache{entries: map[string]*models.CityPayload{}}
}

func (c *stubCache) GetCached(ctx context.Context, city string) (*models.CityPayload, bool) {
	payload, ok := c.entries[city]
	return payload, ok
}

func (c *stubCache) Cache(ctx context.Context, city string, payload *models.CityPayload) {
	c.entries[city] = payload
	c.writes++
}

func (c *stubCache) ClearCache(ctx context.Context, city string) (int64, error) {
	if c.clearErr != nil {
		return 0, c.clearErr
	}
	c.cleared = append(c.cleared, city)
	return c.deleted, nil
}

func newTestHandler(geocoder Geocoder, places PlaceProvider, cache CacheStore) *SearchHandler {
	return NewSearchHandler(geocoder, places, cache, services.NewEnrichService())
}

func doSearch(t *testing.T, handler *SearchHandler, url string) (*httptest.ResponseRecorder, models.SearchResponse) {
	t.Helper()
	recorder := httptest.NewRecorder()
	request := httptest.NewRequest(http.MethodGet, url, nil)
	handler.Search(recorder, request)

	var body models.SearchResponse
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &body))
	return recorder, body
}

func TestSearchMissingCity(t *testing.T) {
	handler := newTestHandler(stubGeocoder{}, stubPlaces{}, newStubCache())

	recorder, body := doSearch(t, handler, "/search")

	assert.Equal(t, http.StatusBadRequest, recorder.Code)
	assert.False(t, body.Success)
	assert.NotEmpty(t, body.Error)
	assert.NotNil(t, body.Attractions)
	assert.Empty(t, body.Attractions)
	assert.Empty(t, body.Hotels)
	assert.Empty(t, body.Restaurants)
}

func TestSearchGeocodeFailure(t *testing.T) {
	handler := newTestHandler(stubGeocoder{ok: false}, stubPlaces{}, newStubCache())

	recorder, body := doSearch(t, handler, "/search?city=Atlantis")

	assert.Equal(t, http.StatusNotFound, recorder.Code)
	assert.False(t, body.Success)
	assert.Contains(t, body.Error, "Atlantis")
	assert.Empty(t, body.Attractions)
}

func TestSearchCacheMiss(t *testing.T) {
	places := stubPlaces{
		attractions: []models.RawPlace{
			{Name: "Gateway of India", Categories: []string{"tourism", "monument"}},
			{Name: ""}, // nameless records never reach the output
			{Name: "Elephanta Caves", Categories: []string{"tourism"}},
		},
		hotels: []models.RawPlace{
			{Name: "Taj Mahal Palace Hotel", Categories: []string{"luxury", "heritage"}},
		},
	}
	cache := newStubCache()
	handler := newTestHandler(
		stubGeocoder{lat: 19.076, lon: 72.8777, name: "Mumbai, Maharashtra, India", ok: true},
		places, cache)

	recorder, body := doSearch(t, handler, "/search?city=Mumbai")

	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.True(t, body.Success)
	assert.False(t, body.Cached)
	assert.Equal(t, "Mumbai, Maharashtra, India", body.City)

	require.Len(t, body.Attractions, 2)
	assert.Equal(t, "attraction", body.Attractions[0].Category)
	for i := 1; i < len(body.Attractions); i++ {
		assert.GreaterOrEqual(t, body.Attractions[i-1].Rating, body.Attractions[i].Rating)
	}

	require.Len(t, body.Hotels, 1)
	assert.Equal(t, "hotel", body.Hotels[0].Category)
	assert.Equal(t, services.PriceLuxury, body.Hotels[0].PriceRange)

	// Empty bucket stays an array, not null.
	assert.NotNil(t, body.Restaurants)
	assert.Empty(t, body.Restaurants)

	// Payload was written through to the cache.
	assert.Equal(t, 1, cache.writes)
	cached, ok := cache.entries["Mumbai"]
	require.True(t, ok)
	assert.Equal(t, body.Attractions, cached.Attractions)
}

func TestSearchCacheHit(t *testing.T) {
	cache := newStubCache()
	cache.entries["Mumbai"] = &models.CityPayload{
		Attractions: []models.EnrichedPlace{{Name: "Gateway of India", Category: "attraction", Rating: 4.2}},
		Hotels:      []models.EnrichedPlace{},
		Restaurants: []models.EnrichedPlace{},
	}
	// Geocoder and places must not be needed on a hit.
	handler := newTestHandler(stubGeocoder{ok: false}, stubPlaces{}, cache)

	recorder, body := doSearch(t, handler, "/search?city=Mumbai")

	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.True(t, body.Success)
	assert.True(t, body.Cached)
	require.Len(t, body.Attractions, 1)
	assert.Equal(t, "Gateway of India", body.Attractions[0].Name)
	assert.Equal(t, 0, cache.writes)
}

func TestClearCache(t *testing.T) {
	t.Run("single city", func(t *testing.T) {
		cache := newStubCache()
		cache.deleted = 1
		handler := newTestHandler(stubGeocoder{}, stubPlaces{}, cache)

		recorder := httptest.NewRecorder()
		handler.ClearCache(recorder, httptest.NewRequest(http.MethodPost, "/clear-cache?city=Paris", nil))

		var body models.ClearCacheResponse
		require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &body))
		assert.Equal(t, http.StatusOK, recorder.Code)
		assert.True(t, body.Success)
		assert.Equal(t, int64(1), body.Deleted)
		assert.Equal(t, []string{"Paris"}, cache.cleared)
	})

	t.Run("all cities", func(t *testing.T) {
		cache := newStubCache()
		cache.deleted = 7
		handler := newTestHandler(stubGeocoder{}, stubPlaces{}, cache)

		recorder := httptest.NewRecorder()
		handler.ClearCache(recorder, httptest.NewRequest(http.MethodPost, "/clear-cache", nil))

		var body models.ClearCacheResponse
		require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &body))
		assert.True(t, body.Success)
		assert.Equal(t, int64(7), body.Deleted)
		assert.Contains(t, body.Message, "all cities")
		assert.Equal(t, []string{""}, cache.cleared)
	})

	t.Run("store failure", func(t *testing.T) {
		cache := newStubCache()
		cache.clearErr = errors.New("mongo down")
		handler := newTestHandler(stubGeocoder{}, stubPlaces{}, cache)

		recorder := httptest.NewRecorder()
		handler.ClearCache(recorder, httptest.NewRequest(http.MethodPost, "/clear-cache", nil))

		assert.Equal(t, http.StatusInternalServerError, recorder.Code)
	})
}

func TestHome(t *testing.T) {
	handler := newTestHandler(stubGeocoder{}, stubPlaces{}, newStubCache())

	recorder := httptest.NewRecorder()
	handler.Home(recorder, httptest.NewRequest(http.MethodGet, "/", nil))

	var body models.ServiceInfo
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &body))
	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.Equal(t, "DESTINEX API", body.App)
	assert.Equal(t, "running", body.Status)
	assert.Contains(t, body.Endpoints, "/search?city=<city_name>")
}

func TestNotFound(t *testing.T) {
	handler := newTestHandler(stubGeocoder{}, stubPlaces{}, newStubCache())

	recorder := httptest.NewRecorder()
	handler.NotFound(recorder, httptest.NewRequest(http.MethodGet, "/bogus", nil))

	var body models.SearchResponse
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &body))
	assert.Equal(t, http.StatusNotFound, recorder.Code)
	assert.False(t, body.Success)
	assert.NotNil(t, body.Attractions)
}
