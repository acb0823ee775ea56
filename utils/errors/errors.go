package errors

import (
	"fmt"
	"net/http"
)

// APIError represents a custom error type for API responses
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"status"`
	Details string `json:"details,omitempty"`
}

// Error returns the error message
func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func NewAPIError(code, message string, status int, details ...string) *APIError {
	err := &APIError{
		Code:    code,
		Message: message,
		Status:  status,
	}
	if len(details) > 0 {
		err.Details = details[0]
	}
	return err
}

var (
	ErrMissingCity = NewAPIError("MISSING_CITY", "City name is required. Use: /search?city=CityName", http.StatusBadRequest)
	ErrNotFound    = NewAPIError("NOT_FOUND", "Endpoint not found. Use /search?city=CityName", http.StatusNotFound)
	ErrCacheClear  = NewAPIError("CACHE_ERROR", "Failed to clear cache", http.StatusInternalServerError)
	ErrInternal    = NewAPIError("INTERNAL_SERVER_ERROR", "Internal server error. Please try again later.", http.StatusInternalServerError)
)

// CityNotFound reports that geocoding produced no coordinates for the city.
func CityNotFound(city string) *APIError {
	return NewAPIError("CITY_NOT_FOUND",
		fmt.Sprintf("Could not find coordinates for '%s'. Please check the city name and try again.", city),
		http.StatusNotFound)
}

func Wrap(err error, code, message string, status int) *APIError {
	if apiErr, ok := err.(*APIError); ok {
		return apiErr
	}
	return NewAPIError(code, message, status, err.Error())
}
