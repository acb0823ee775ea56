package middleware

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog/log"

	"destinex/models"
	"destinex/utils/errors"
)

// ErrorMiddleware recovers from handler panics and sends a standardized
// JSON response
func ErrorMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					log.Error().Interface("panic", rec).Str("path", r.URL.Path).Msg("Panic recovered")
					WriteError(w, errors.ErrInternal)
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// WriteError writes an APIError as a JSON response. The body keeps the
// same keys as a successful search, with every bucket empty, so
// consumers always decode one shape.
func WriteError(w http.ResponseWriter, err error) {
	apiErr, ok := err.(*errors.APIError)
	if !ok {
		apiErr = errors.Wrap(err, "UNKNOWN_ERROR", "Unexpected error", errors.ErrInternal.Status)
	}
	// Log server errors
	if apiErr.Status >= 500 {
		log.Error().Str("code", apiErr.Code).Str("details", apiErr.Details).Msg(apiErr.Message)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(apiErr.Status)
	json.NewEncoder(w).Encode(models.SearchResponse{
		Success:     false,
		Error:       apiErr.Message,
		Attractions: []models.EnrichedPlace{},
		Hotels:      []models.EnrichedPlace{},
		Restaurants: []models.EnrichedPlace{},
	})
}
