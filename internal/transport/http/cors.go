package http

import (
	"net/http"
	"strings"

	"github.com/rs/cors"
)

// CORS wraps next with an origin allow-list. "*" allows any origin.
// Preflights from other origins get no Access-Control headers.
func CORS(allowedOrigins []string, next http.Handler) http.Handler {
	origins := make([]string, 0, len(allowedOrigins))
	for _, origin := range allowedOrigins {
		origin = strings.TrimSpace(origin)
		if origin != "" {
			origins = append(origins, origin)
		}
	}

	c := cors.New(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", idempotencyHeader},
		MaxAge:         600,
	})
	return c.Handler(next)
}
