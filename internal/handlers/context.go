package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/satonic/satonic-storefront/internal/creation"
	"github.com/satonic/satonic-storefront/internal/services"
)

// Context keys
type contextKey string

const (
	// SessionKey is the key for the creation session in the context
	SessionKey contextKey = "session"
)

// NewContextWithSession adds a creation session to the context
func NewContextWithSession(ctx context.Context, session *creation.Session) context.Context {
	return context.WithValue(ctx, SessionKey, session)
}

// SessionFromContext extracts the creation session from the context
func SessionFromContext(ctx context.Context) (*creation.Session, bool) {
	session, ok := ctx.Value(SessionKey).(*creation.Session)
	return session, ok
}

// RequireSession resolves the session token of a request. The token is
// read from the Authorization header, or from the token query parameter
// for websocket upgrades.
func RequireSession(creations *services.CreationService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token == "" {
				writeMessage(w, http.StatusUnauthorized, "session token is required")
				return
			}

			session, err := creations.Resume(token)
			if err != nil {
				writeError(w, r, err)
				return
			}

			next.ServeHTTP(w, r.WithContext(NewContextWithSession(r.Context(), session)))
		})
	}
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if header != "" {
		parts := strings.SplitN(header, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			return strings.TrimSpace(parts[1])
		}
		return ""
	}
	return r.URL.Query().Get("token")
}

// mustSession returns the session placed in the context by RequireSession
func mustSession(r *http.Request) *creation.Session {
	session, ok := SessionFromContext(r.Context())
	if !ok {
		panic("handlers: route is not behind RequireSession")
	}
	return session
}
