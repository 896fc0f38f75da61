package middleware

import (
	"net/http"
	"slices"

	"github.com/rs/cors"
)

// Cors allows credentialed requests from origins. An empty list allows any
// origin, which is only meant for development.
func Cors(origins []string) Middleware {
	options := cors.Options{
		AllowOriginFunc: func(origin string) bool {
			return len(origins) == 0 || slices.Contains(origins, origin)
		},
		AllowedMethods: []string{
			http.MethodHead,
			http.MethodGet,
			http.MethodPost,
		},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	}
	return cors.New(options).Handler
}
