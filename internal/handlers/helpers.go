package handlers

import (
	"encoding/json"
	"io"
	"net/http"
)

// writeJSON serialises v as JSON and writes it to the response with the
// given HTTP status code.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// notFoundBody is written byte for byte; existing clients match on it.
const notFoundBody = `{"error": "Endpoint not found"}`

// NotFound answers unknown routes. The status stays 200; callers tell the
// case apart by the error body only.
func NotFound(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	io.WriteString(w, notFoundBody)
}
