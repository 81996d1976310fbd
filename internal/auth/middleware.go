package auth

import (
	"context"
	"net/http"
	"strings"
)

// contextKey is unexported so only this package can place or read the
// session in a request context.
type contextKey struct{}

var sessionKey contextKey

// SessionFrom extracts the session placed by the middleware.
func SessionFrom(ctx context.Context) (*Session, bool) {
	s, ok := ctx.Value(sessionKey).(*Session)
	return s, ok
}

// UserIDFrom extracts the authenticated user ID, if any.
func UserIDFrom(ctx context.Context) (uint64, bool) {
	s, ok := SessionFrom(ctx)
	if !ok || s.UserID == 0 {
		return 0, false
	}
	return s.UserID, true
}

func bearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	if strings.HasPrefix(h, "Bearer ") {
		return strings.TrimPrefix(h, "Bearer ")
	}
	return ""
}

func writeUnauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = w.Write([]byte(`{"error":"unauthorized","message":"` + message + `"}`))
}

// RequireUser rejects requests without a valid user session and stores
// the session in the context for the handler.
func (s *TokenService) RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		session, err := s.Validate(bearerToken(r))
		if err != nil || session.UserID == 0 {
			writeUnauthorized(w, "valid session required")
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), sessionKey, session)))
	})
}

// RequireAdmin rejects requests without a valid admin session.
func (s *TokenService) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		session, err := s.Validate(bearerToken(r))
		if err != nil || !session.Admin {
			writeUnauthorized(w, "admin session required")
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), sessionKey, session)))
	})
}
