package middleware

import (
	"net/http"
	"strings"

	"github.com/go-chi/cors"
)

// Fixed CORS contract. Browsers and the existing frontend both rely on
// these being present on every response, with or without an Origin header.
var (
	AllowedMethods = []string{http.MethodGet, http.MethodPost, http.MethodOptions}
	AllowedHeaders = []string{"Content-Type"}
)

// Negotiate runs go-chi/cors for the two headers CORSHeaders does not set:
// Vary on every cross-origin request and Access-Control-Max-Age on browser
// preflights. Every Allow-* header it writes is overwritten by CORSHeaders,
// which must run after it. Preflights are passed through.
func Negotiate() func(http.Handler) http.Handler {
	return cors.Handler(cors.Options{
		AllowedOrigins:     []string{"*"},
		AllowedMethods:     AllowedMethods,
		AllowedHeaders:     AllowedHeaders,
		MaxAge:             300,
		OptionsPassthrough: true,
	})
}

// CORSHeaders pins the CORS header set on every response and answers
// OPTIONS for any path with 200 and an empty body.
func CORSHeaders(next http.Handler) http.Handler {
	methods := strings.Join(AllowedMethods, ", ")
	headers := strings.Join(AllowedHeaders, ", ")

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("Access-Control-Allow-Origin", "*")
		h.Set("Access-Control-Allow-Methods", methods)
		h.Set("Access-Control-Allow-Headers", headers)

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}
