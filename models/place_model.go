package models

import (
	"strings"
	"time"
)

// RawPlace is a single record from the places lookup, before enrichment.
type RawPlace struct {
	Name       string   `json:"name"`
	Address    string   `json:"address,omitempty"`
	Lat        *float64 `json:"lat"`
	Lon        *float64 `json:"lon"`
	Categories []string `json:"categories"`
	DistanceKm float64  `json:"distance"`
}

// Kinds joins the category tags into the comma-separated form the
// classifier and price estimator match keywords against.
func (p RawPlace) Kinds() string {
	return strings.Join(p.Categories, ",")
}

// EnrichedPlace is a RawPlace after rating, price and insight derivation.
type EnrichedPlace struct {
	Name        string   `json:"name" bson:"name"`
	Category    string   `json:"category" bson:"category"`
	Rating      float64  `json:"rating" bson:"rating"`
	PriceRange  string   `json:"price_range" bson:"price_range"`
	Insight     string   `json:"ai_insight" bson:"ai_insight"`
	DistanceKm  float64  `json:"distance" bson:"distance"`
	Lat         *float64 `json:"lat" bson:"lat"`
	Lon         *float64 `json:"lon" bson:"lon"`
	ReviewCount int      `json:"review_count,omitempty" bson:"review_count,omitempty"`
}

// CityPayload groups the three enriched result buckets for one city.
type CityPayload struct {
	Attractions []EnrichedPlace `json:"attractions" bson:"attractions"`
	Hotels      []EnrichedPlace `json:"hotels" bson:"hotels"`
	Restaurants []EnrichedPlace `json:"restaurants" bson:"restaurants"`
}

// CacheEntry is the cache document stored per normalized city name.
// CachedAt is omitempty so legacy entries written without a timestamp
// decode to the zero time, which the cache treats as never expiring.
type CacheEntry struct {
	CityName string      `bson:"city_name"`
	Data     CityPayload `bson:"data"`
	CachedAt time.Time   `bson:"cached_at,omitempty"`
}

// SearchResponse is the body of GET /search. Failures keep the same
// shape with Success false and empty buckets.
type SearchResponse struct {
	Success     bool            `json:"success"`
	City        string          `json:"city,omitempty"`
	Cached      bool            `json:"cached"`
	Error       string          `json:"error,omitempty"`
	Attractions []EnrichedPlace `json:"attractions"`
	Hotels      []EnrichedPlace `json:"hotels"`
	Restaurants []EnrichedPlace `json:"restaurants"`
}

// ClearCacheResponse is the body of POST /clear-cache.
type ClearCacheResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Deleted int64  `json:"deleted"`
}

// ServiceInfo is the body of GET /.
type ServiceInfo struct {
	App         string            `json:"app"`
	Version     string            `json:"version"`
	Description string            `json:"description"`
	Endpoints   map[string]string `json:"endpoints"`
	Status      string            `json:"status"`
}
