// Package middleware provides reusable HTTP middleware for the CoupleMap API.
package middleware

import (
	"net/http"

	"github.com/rs/cors"

	"github.com/couplemap/couplemap/internal/api"
)

// NewCORSHandler allows browser clients served from allowedOrigins to call
// the API. Origins are full scheme+host strings without a trailing slash.
// Browsers may send the invite code header, and may read Content-Disposition
// so the CSV export keeps its file name.
func NewCORSHandler(allowedOrigins []string) func(http.Handler) http.Handler {
	c := cors.New(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", api.InviteCodeHeader},
		ExposedHeaders: []string{"Content-Disposition"},
		MaxAge:         600,
	})
	return c.Handler
}
