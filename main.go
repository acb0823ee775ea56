package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"destinex/handlers"
	"destinex/middleware"
	"destinex/services"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Info().Msg("No .env file found, using environment configuration")
	}
	if os.Getenv("DEBUG") != "" {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	mongoURI := os.Getenv("MONGODB_URI")
	if mongoURI == "" {
		mongoURI = "mongodb://localhost:27017"
	}

	connectCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	cacheService, err := services.NewCacheService(connectCtx, mongoURI)
	cancel()
	if err != nil {
		log.Fatal().Err(err).Msg("MongoDB connection failed")
	}

	// Redis is optional: without it geocode results are just not cached.
	var redisClient *redis.Client
	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		redisClient = redis.NewClient(&redis.Options{Addr: addr})
		if err := redisClient.Ping(context.Background()).Err(); err != nil {
			log.Warn().Err(err).Msg("Redis unreachable, geocode cache disabled")
			redisClient = nil
		} else {
			log.Info().Msg("Connected to Redis")
		}
	}

	placeService := services.NewPlaceService(os.Getenv("GEOAPIFY_API_KEY"), redisClient)
	enrichService := services.NewEnrichService()
	searchHandler := handlers.NewSearchHandler(placeService, placeService, cacheService, enrichService)

	r := mux.NewRouter()

	// CORS middleware
	r.Use(middleware.CORSMiddleware([]string{"*"}))
	r.Use(middleware.LoggingMiddleware())
	r.Use(middleware.ErrorMiddleware())

	// Routes
	r.HandleFunc("/", searchHandler.Home).Methods("GET")
	r.HandleFunc("/search", searchHandler.Search).Methods("GET", "OPTIONS")
	r.HandleFunc("/clear-cache", searchHandler.ClearCache).Methods("POST", "OPTIONS")
	r.NotFoundHandler = http.HandlerFunc(searchHandler.NotFound)
	r.MethodNotAllowedHandler = http.HandlerFunc(searchHandler.NotFound)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	server := &http.Server{Addr: ":" + port, Handler: r}

	go func() {
		log.Info().Str("port", port).Msg("Server starting")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	log.Info().Msg("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server shutdown failed")
	}
	if err := cacheService.Close(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("MongoDB disconnect failed")
	}
	if redisClient != nil {
		_ = redisClient.Close()
	}
}
