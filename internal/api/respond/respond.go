// Package respond centralises JSON response writing.
package respond

import (
	"encoding/json"
	"net/http"
)

// WriteJSON writes any value as a JSON response with the given status.
func WriteJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteJSONObject writes a map as a JSON object response.
func WriteJSONObject(w http.ResponseWriter, status int, obj map[string]interface{}) {
	WriteJSON(w, status, obj)
}

// WriteError writes a standard error envelope.
func WriteError(w http.ResponseWriter, status int, message string) {
	WriteJSON(w, status, map[string]interface{}{
		"success": false,
		"error":   message,
	})
}
