package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"destinex/middleware"
	"destinex/models"
	"destinex/services"
	"destinex/utils/errors"
)

// Geocoder resolves a city name to coordinates. ok is false when the
// city is unknown or the lookup failed.
type Geocoder interface {
	Geocode(ctx context.Context, city string) (lat, lon float64, displayName string, ok bool)
}

// PlaceProvider fetches raw places around a point, one bucket per
// method. Implementations return an empty slice on any failure.
type PlaceProvider interface {
	FetchAttractions(ctx context.Context, lat, lon float64) []models.RawPlace
	FetchHotels(ctx context.Context, lat, lon float64) []models.RawPlace
	FetchRestaurants(ctx context.Context, lat, lon float64) []models.RawPlace
}

// CacheStore persists enriched payloads per city. GetCached misses on
// absent and expired entries alike; Cache is best-effort.
type CacheStore interface {
	GetCached(ctx context.Context, city string) (*models.CityPayload, bool)
	Cache(ctx context.Context, city string, payload *models.CityPayload)
	ClearCache(ctx context.Context, city string) (int64, error)
}

type SearchHandler struct {
	geocoder Geocoder
	places   PlaceProvider
	cache    CacheStore
	enricher *services.EnrichService
}

func NewSearchHandler(geocoder Geocoder, places PlaceProvider, cache CacheStore, enricher *services.EnrichService) *SearchHandler {
	return &SearchHandler{
		geocoder: geocoder,
		places:   places,
		cache:    cache,
		enricher: enricher,
	}
}

// Search handles GET /search?city=<name>: cache read-through, geocode,
// fetch the three buckets, enrich, rank and cache the result.
func (h *SearchHandler) Search(w http.ResponseWriter, r *http.Request) {
	city := strings.TrimSpace(r.URL.Query().Get("city"))
	if city == "" {
		middleware.WriteError(w, errors.ErrMissingCity)
		return
	}
	ctx := r.Context()

	if payload, ok := h.cache.GetCached(ctx, city); ok {
		writeJSON(w, http.StatusOK, models.SearchResponse{
			Success:     true,
			City:        city,
			Cached:      true,
			Attractions: payload.Attractions,
			Hotels:      payload.Hotels,
			Restaurants: payload.Restaurants,
		})
		return
	}

	lat, lon, displayName, ok := h.geocoder.Geocode(ctx, city)
	if !ok {
		middleware.WriteError(w, errors.CityNotFound(city))
		return
	}

	// A failed bucket fetch degrades to an empty slice, so a slow or
	// broken upstream never aborts the whole response.
	payload := &models.CityPayload{
		Attractions: h.enricher.EnrichPlaces(h.places.FetchAttractions(ctx, lat, lon), "attractions"),
		Hotels:      h.enricher.EnrichPlaces(h.places.FetchHotels(ctx, lat, lon), "hotels"),
		Restaurants: h.enricher.EnrichPlaces(h.places.FetchRestaurants(ctx, lat, lon), "restaurants"),
	}

	h.cache.Cache(ctx, city, payload)

	if displayName == "" {
		displayName = city
	}
	writeJSON(w, http.StatusOK, models.SearchResponse{
		Success:     true,
		City:        displayName,
		Cached:      false,
		Attractions: payload.Attractions,
		Hotels:      payload.Hotels,
		Restaurants: payload.Restaurants,
	})
}

// ClearCache handles POST /clear-cache?city=<name>. Without a city
// parameter it clears every cached entry.
func (h *SearchHandler) ClearCache(w http.ResponseWriter, r *http.Request) {
	city := strings.TrimSpace(r.URL.Query().Get("city"))

	deleted, err := h.cache.ClearCache(r.Context(), city)
	if err != nil {
		middleware.WriteError(w, errors.Wrap(err, errors.ErrCacheClear.Code, errors.ErrCacheClear.Message, errors.ErrCacheClear.Status))
		return
	}

	scope := "all cities"
	if city != "" {
		scope = "'" + city + "'"
	}
	writeJSON(w, http.StatusOK, models.ClearCacheResponse{
		Success: true,
		Message: fmt.Sprintf("Cache cleared for %s", scope),
		Deleted: deleted,
	})
}

// Home handles GET /: service metadata.
func (h *SearchHandler) Home(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, models.ServiceInfo{
		App:         "DESTINEX API",
		Version:     "1.0",
		Description: "AI-powered travel discovery backend",
		Endpoints: map[string]string{
			"/search?city=<city_name>":      "Search for attractions, hotels, and restaurants in a city",
			"/clear-cache?city=<city_name>": "Clear cached results for one city, or all cities when omitted",
		},
		Status: "running",
	})
}

// NotFound keeps unknown routes on the uniform error shape.
func (h *SearchHandler) NotFound(w http.ResponseWriter, r *http.Request) {
	middleware.WriteError(w, errors.ErrNotFound)
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
