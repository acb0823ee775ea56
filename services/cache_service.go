package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"destinex/models"
)

// cacheTTL is how long a cached city payload stays fresh. Expiry is
// evaluated lazily at read time; stale documents stay in the collection
// until overwritten or explicitly cleared.
const cacheTTL = 24 * time.Hour

const (
	cacheDatabase   = "destinex_db"
	cacheCollection = "city_cache"
)

// CacheService stores enriched city payloads in MongoDB, one document
// per normalized city name. Writes are best-effort: a failed write is
// logged and swallowed so caching can never fail a search.
type CacheService struct {
	client     *mongo.Client
	collection *mongo.Collection
	now        func() time.Time
}

func NewCacheService(ctx context.Context, mongoURI string) (*CacheService, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(mongoURI))
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("mongo ping: %w", err)
	}

	collection := client.Database(cacheDatabase).Collection(cacheCollection)
	index := mongo.IndexModel{
		Keys:    bson.M{"city_name": 1},
		Options: options.Index().SetUnique(true),
	}
	if _, err := collection.Indexes().CreateOne(ctx, index); err != nil {
		log.Warn().Err(err).Msg("Failed to create city_name index")
	}

	log.Info().Msg("Connected to MongoDB")
	return &CacheService{
		client:     client,
		collection: collection,
		now:        time.Now,
	}, nil
}

// CityKey normalizes a city name into the cache partition key.
func CityKey(city string) string {
	return strings.ToLower(strings.TrimSpace(city))
}

// GetCached returns the cached payload for a city if present and still
// inside the TTL window. Stale and absent entries both report a miss;
// read errors are logged and also degrade to a miss.
func (s *CacheService) GetCached(ctx context.Context, city string) (*models.CityPayload, bool) {
	key := CityKey(city)

	var entry models.CacheEntry
	err := s.collection.FindOne(ctx, bson.M{"city_name": key}).Decode(&entry)
	if err != nil {
		if err != mongo.ErrNoDocuments {
			log.Warn().Err(err).Str("city", key).Msg("Cache read failed")
		} else {
			log.Info().Str("city", key).Msg("Cache miss")
		}
		return nil, false
	}

	if !cacheEntryFresh(entry.CachedAt, s.now()) {
		log.Info().Str("city", key).Msg("Cache expired")
		return nil, false
	}

	log.Info().Str("city", key).Msg("Cache hit")
	return &entry.Data, true
}

// cacheEntryFresh reports whether an entry written at cachedAt is still
// inside the TTL window at now. A zero cachedAt comes from legacy
// entries written without a timestamp; those never expire.
func cacheEntryFresh(cachedAt, now time.Time) bool {
	if cachedAt.IsZero() {
		return true
	}
	return now.Sub(cachedAt) < cacheTTL
}

// Cache upserts the payload for a city, resetting its timestamp.
func (s *CacheService) Cache(ctx context.Context, city string, payload *models.CityPayload) {
	key := CityKey(city)
	entry := models.CacheEntry{
		CityName: key,
		Data:     *payload,
		CachedAt: s.now().UTC(),
	}

	_, err := s.collection.UpdateOne(ctx,
		bson.M{"city_name": key},
		bson.M{"$set": entry},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		log.Warn().Err(err).Str("city", key).Msg("Cache write failed")
		return
	}
	log.Info().Str("city", key).Msg("Cached city payload")
}

// ClearCache deletes the entry for one city, or every entry when city
// is empty. Returns the number of deleted documents.
func (s *CacheService) ClearCache(ctx context.Context, city string) (int64, error) {
	if city == "" {
		result, err := s.collection.DeleteMany(ctx, bson.M{})
		if err != nil {
			return 0, fmt.Errorf("clear all: %w", err)
		}
		return result.DeletedCount, nil
	}

	result, err := s.collection.DeleteOne(ctx, bson.M{"city_name": CityKey(city)})
	if err != nil {
		return 0, fmt.Errorf("clear %q: %w", city, err)
	}
	return result.DeletedCount, nil
}

// Close releases the MongoDB connection.
func (s *CacheService) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}
