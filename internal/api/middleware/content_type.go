package middleware

import (
	"net/http"
	"strings"

	"github.com/guildboard/guildboard/internal/api/models"
)

// ContentTypeJSON defaults the response Content-Type to application/json.
// Handlers that serve something else (the export download) set their own
// header first, which wins.
func ContentTypeJSON(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if w.Header().Get("Content-Type") == "" {
			w.Header().Set("Content-Type", "application/json")
		}
		next.ServeHTTP(w, r)
	})
}

// RequireJSON rejects bodied requests (POST, PUT, PATCH) that declare a
// non-JSON Content-Type with a 415 problem. Requests without the header
// pass through; the handlers' decoders reject malformed bodies anyway.
func RequireJSON(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPost, http.MethodPut, http.MethodPatch:
			contentType := r.Header.Get("Content-Type")
			if contentType != "" && !strings.HasPrefix(contentType, "application/json") {
				traceID := GetRequestID(r.Context())
				problem := models.NewUnsupportedMediaType(traceID, "Content-Type must be application/json")
				problem.Instance = r.URL.Path
				problem.Write(w)
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}
