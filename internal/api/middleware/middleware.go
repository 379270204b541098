// Package middleware holds the HTTP middleware stack of the Nimbus API.
package middleware

import (
	"encoding/json"
	"net/http"
)

// writeError writes the standard {"error": message} body
func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
