package gateway

import (
	"crypto/sha256"
	"crypto/subtle"
	"net/http"
	"slices"
	"strings"
)

// compareTokens hashes both inputs before the constant-time compare so the
// token length does not leak.
func compareTokens(a, b string) bool {
	ha := sha256.Sum256([]byte(a))
	hb := sha256.Sum256([]byte(b))
	return subtle.ConstantTimeCompare(ha[:], hb[:]) == 1
}

// authMiddleware requires Authorization: Bearer <token> when a token is
// configured. /health is always public.
func (g *Gateway) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if g.config.AuthToken == "" || r.URL.Path == "/health" {
			next.ServeHTTP(w, r)
			return
		}

		auth := r.Header.Get("Authorization")
		token, bearer := strings.CutPrefix(auth, "Bearer ")

		var reason string
		switch {
		case auth == "":
			reason = "missing Authorization header"
		case !bearer:
			reason = "invalid Authorization format"
		case !compareTokens(token, g.config.AuthToken):
			reason = "invalid token"
		default:
			next.ServeHTTP(w, r)
			return
		}
		g.writeError(w, reason, http.StatusUnauthorized)
	})
}

// corsMiddleware answers preflight requests and sets CORS headers for
// the configured origins.
func (g *Gateway) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if len(g.config.CORSOrigins) == 0 {
			next.ServeHTTP(w, r)
			return
		}

		if origin, ok := g.allowedOrigin(r.Header.Get("Origin")); ok {
			h := w.Header()
			h.Set("Access-Control-Allow-Origin", origin)
			h.Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
			h.Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
			h.Set("Access-Control-Max-Age", "86400")
			h.Add("Vary", "Origin")
		}
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// allowedOrigin returns the value for Access-Control-Allow-Origin. A
// request without Origin gets the first configured origin.
func (g *Gateway) allowedOrigin(origin string) (string, bool) {
	if origin == "" {
		return g.config.CORSOrigins[0], true
	}
	if slices.Contains(g.config.CORSOrigins, "*") || slices.Contains(g.config.CORSOrigins, origin) {
		return origin, true
	}
	return "", false
}

// securityHeadersMiddleware adds standard security headers to all responses.
func (g *Gateway) securityHeadersMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Cache-Control", "no-store")
		next.ServeHTTP(w, r)
	})
}
