package httpapi

import (
	"context"
	"net"
	"net/http"
	"strings"

	"docvault/internal/common"
	"docvault/internal/server/auth"
)

// contextKey is a private type so context keys cannot collide with other
// packages.
type contextKey string

const userIDContextKey = contextKey("userID")

// authMiddleware validates the Bearer token and stores the authenticated
// user id in the request context.
func (h *Handler) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			h.respondWithError(w, http.StatusUnauthorized, "missing authorization header")
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
			h.respondWithError(w, http.StatusUnauthorized, "invalid authorization header")
			return
		}

		userID, err := auth.GetUserIDFromToken(parts[1], h.jwtSecret)
		if err != nil {
			h.respondWithError(w, http.StatusUnauthorized, "invalid token")
			return
		}

		ctx := context.WithValue(r.Context(), userIDContextKey, userID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// principalID returns the authenticated user id set by authMiddleware.
func principalID(r *http.Request) string {
	id, _ := r.Context().Value(userIDContextKey).(string)
	return id
}

// clientIPMiddleware records the caller's address so audit writes further
// down can attribute the action. Runs after chi's RealIP, which already
// resolved forwarding headers into RemoteAddr.
func clientIPMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := r.RemoteAddr
		if host, _, err := net.SplitHostPort(ip); err == nil {
			ip = host
		}
		next.ServeHTTP(w, r.WithContext(common.WithClientIP(r.Context(), ip)))
	})
}
