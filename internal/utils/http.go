package utils

import (
	"encoding/json"
	"net/http"
	"strconv"
)

// GetPathParam extracts a path parameter using Go 1.22+ ServeMux pattern
// matching.
func GetPathParam(r *http.Request, param string) string {
	return r.PathValue(param)
}

// GetPathParamInt64 extracts a path parameter and converts it to int64.
func GetPathParamInt64(r *http.Request, param string) (int64, error) {
	return strconv.ParseInt(r.PathValue(param), 10, 64)
}

// GetQueryParam gets a query parameter with a default value.
func GetQueryParam(r *http.Request, param, defaultValue string) string {
	value := r.URL.Query().Get(param)
	if value == "" {
		return defaultValue
	}
	return value
}

// GetQueryParamInt gets a query parameter as int with a default value.
func GetQueryParamInt(r *http.Request, param string, defaultValue int) int {
	value := r.URL.Query().Get(param)
	if value == "" {
		return defaultValue
	}

	intValue, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return intValue
}

// RespondJSON writes a JSON response with the given status code.
func RespondJSON(w http.ResponseWriter, data any, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(data)
}

// RespondError writes a JSON error body with the given status code.
func RespondError(w http.ResponseWriter, message string, statusCode int) {
	RespondJSON(w, map[string]string{"error": message}, statusCode)
}

// RespondMessage writes a JSON message body with status 200.
func RespondMessage(w http.ResponseWriter, message string) {
	RespondJSON(w, map[string]string{"message": message}, http.StatusOK)
}
