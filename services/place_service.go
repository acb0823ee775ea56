package services

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/avast/retry-go"
	"github.com/go-resty/resty/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"destinex/models"
)

const (
	geoapifyPlacesURL  = "https://api.geoapify.com/v2/places"
	geoapifyGeocodeURL = "https://api.geoapify.com/v1/geocode/search"

	geocodeTimeout = 10 * time.Second
	placesTimeout  = 15 * time.Second

	// Attempts includes the first call, so 3 means at most 2 retries.
	upstreamAttempts = 3

	searchRadiusMeters = 5000
	attractionsLimit   = 10
	hotelsLimit        = 8
	restaurantsLimit   = 10

	earthRadiusKm = 6371

	geocodeCacheTTL = 7 * 24 * time.Hour
)

// PlaceService talks to the Geoapify geocoding and places APIs. Every
// failure degrades to "no results"; callers never see an error from the
// fetch methods. Geocoding results are cached in Redis when a client is
// configured, since city coordinates effectively never change.
type PlaceService struct {
	client     *resty.Client
	apiKey     string
	redis      *redis.Client
	geocodeURL string
	placesURL  string
}

func NewPlaceService(apiKey string, redisClient *redis.Client) *PlaceService {
	client := resty.New()
	client.SetHeader("User-Agent", "DESTINEX-Travel-App/1.0")

	if apiKey == "" {
		log.Error().Msg("GEOAPIFY_API_KEY is not set; place lookups will return no results")
	}
	log.Info().Msg("Place service initialized (Geoapify)")

	return &PlaceService{
		client:     client,
		apiKey:     apiKey,
		redis:      redisClient,
		geocodeURL: geoapifyGeocodeURL,
		placesURL:  geoapifyPlacesURL,
	}
}

type geoapifyResponse struct {
	Features []geoapifyFeature `json:"features"`
}

type geoapifyFeature struct {
	Properties geoapifyProperties `json:"properties"`
}

type geoapifyProperties struct {
	Name       string   `json:"name"`
	Formatted  string   `json:"formatted"`
	Lat        *float64 `json:"lat"`
	Lon        *float64 `json:"lon"`
	Categories []string `json:"categories"`
	Distance   float64  `json:"distance"` // meters from the search center
}

type geocodeResult struct {
	Lat         float64 `json:"lat"`
	Lon         float64 `json:"lon"`
	DisplayName string  `json:"display_name"`
}

// Geocode resolves a city name to coordinates and a display name.
// ok is false when the city is unknown or the upstream call failed.
func (s *PlaceService) Geocode(ctx context.Context, city string) (lat, lon float64, displayName string, ok bool) {
	cacheKey := "geocode:" + strings.ToLower(strings.TrimSpace(city))
	if cached, hit := s.cachedGeocode(ctx, cacheKey); hit {
		return cached.Lat, cached.Lon, cached.DisplayName, true
	}

	ctx, cancel := context.WithTimeout(ctx, geocodeTimeout)
	defer cancel()

	var out geoapifyResponse
	err := s.getWithRetry(ctx, s.geocodeURL, map[string]string{
		"text":   city,
		"apiKey": s.apiKey,
		"limit":  "1",
	}, &out)
	if err != nil {
		log.Error().Err(err).Str("city", city).Msg("Geocoding failed")
		return 0, 0, "", false
	}
	if len(out.Features) == 0 {
		return 0, 0, "", false
	}

	props := out.Features[0].Properties
	if props.Lat == nil || props.Lon == nil {
		return 0, 0, "", false
	}

	s.storeGeocode(ctx, cacheKey, geocodeResult{
		Lat:         *props.Lat,
		Lon:         *props.Lon,
		DisplayName: props.Formatted,
	})
	return *props.Lat, *props.Lon, props.Formatted, true
}

// FetchAttractions returns tourist attractions near the coordinates.
func (s *PlaceService) FetchAttractions(ctx context.Context, lat, lon float64) []models.RawPlace {
	return s.fetchPlaces(ctx, lat, lon, "tourism", attractionsLimit)
}

// FetchHotels returns accommodation near the coordinates.
func (s *PlaceService) FetchHotels(ctx context.Context, lat, lon float64) []models.RawPlace {
	return s.fetchPlaces(ctx, lat, lon, "accommodation", hotelsLimit)
}

// FetchRestaurants returns catering places near the coordinates.
func (s *PlaceService) FetchRestaurants(ctx context.Context, lat, lon float64) []models.RawPlace {
	return s.fetchPlaces(ctx, lat, lon, "catering", restaurantsLimit)
}

func (s *PlaceService) fetchPlaces(ctx context.Context, lat, lon float64, categories string, limit int) []models.RawPlace {
	if s.apiKey == "" {
		log.Error().Msg("Cannot fetch places: missing API key")
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, placesTimeout)
	defer cancel()

	var out geoapifyResponse
	err := s.getWithRetry(ctx, s.placesURL, map[string]string{
		"categories": categories,
		"filter":     fmt.Sprintf("circle:%f,%f,%d", lon, lat, searchRadiusMeters),
		"limit":      strconv.Itoa(limit),
		"apiKey":     s.apiKey,
	}, &out)
	if err != nil {
		log.Error().Err(err).Str("categories", categories).Msg("Places lookup failed")
		return nil
	}

	places := make([]models.RawPlace, 0, len(out.Features))
	for _, feature := range out.Features {
		props := feature.Properties
		if props.Name == "" {
			continue
		}

		dist := props.Distance / 1000.0
		if dist == 0 && props.Lat != nil && props.Lon != nil {
			dist = haversineKm(lat, lon, *props.Lat, *props.Lon)
		}

		places = append(places, models.RawPlace{
			Name:       props.Name,
			Address:    props.Formatted,
			Lat:        props.Lat,
			Lon:        props.Lon,
			Categories: props.Categories,
			DistanceKm: math.Round(dist*100) / 100,
		})
	}

	log.Info().Int("count", len(places)).Str("categories", categories).Msg("Places fetched")
	return places
}

// getWithRetry issues a GET with bounded retries on transport failures.
// Non-200 responses are unrecoverable: retrying a bad request or an
// exhausted quota only burns the rate limit.
func (s *PlaceService) getWithRetry(ctx context.Context, url string, params map[string]string, out *geoapifyResponse) error {
	return retry.Do(
		func() error {
			res, err := s.client.R().
				SetContext(ctx).
				SetQueryParams(params).
				SetResult(out).
				Get(url)
			if err != nil {
				return err
			}
			if res.StatusCode() != http.StatusOK {
				return retry.Unrecoverable(fmt.Errorf("status %d: %s", res.StatusCode(), res.Body()))
			}
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(upstreamAttempts),
		retry.LastErrorOnly(true),
	)
}

func (s *PlaceService) cachedGeocode(ctx context.Context, key string) (geocodeResult, bool) {
	var result geocodeResult
	if s.redis == nil {
		return result, false
	}

	raw, err := s.redis.Get(ctx, key).Result()
	if err != nil {
		if err != redis.Nil {
			log.Warn().Err(err).Str("key", key).Msg("Geocode cache read failed")
		}
		return result, false
	}
	if err := json.Unmarshal([]byte(raw), &result); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("Failed to unmarshal cached geocode")
		return result, false
	}
	return result, true
}

func (s *PlaceService) storeGeocode(ctx context.Context, key string, result geocodeResult) {
	if s.redis == nil {
		return
	}

	raw, err := json.Marshal(result)
	if err != nil {
		return
	}
	if err := s.redis.Set(ctx, key, raw, geocodeCacheTTL).Err(); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("Geocode cache write failed")
	}
}

// haversineKm is the great circle distance between two points in km.
func haversineKm(lat1, lon1, lat2, lon2 float64) float64 {
	lat1, lon1 = lat1*math.Pi/180, lon1*math.Pi/180
	lat2, lon2 = lat2*math.Pi/180, lon2*math.Pi/180

	dlat := lat2 - lat1
	dlon := lon2 - lon1
	a := math.Sin(dlat/2)*math.Sin(dlat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dlon/2)*math.Sin(dlon/2)
	c := 2 * math.Asin(math.Sqrt(a))
	return c * earthRadiusKm
}
