package authz

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
)

// SessionUser extracts the session's user id string from the request
// context. Wired to the shared session layer by the application.
type SessionUser func(r *http.Request) string

// IdentitySink stores the resolved identity in the request context. Kept as
// an injection point so this package does not depend on the context helpers
// living alongside the session layer.
type IdentitySink func(ctx context.Context, id Identity) context.Context

// Middleware resolves the authenticated identity for HTTP handlers.
type Middleware struct {
	Store       Store
	Logger      *slog.Logger
	SessionUser SessionUser
	Sink        IdentitySink
}

// RequireIdentity loads the acting user's authorization identity and attaches
// it to the request context, rejecting requests without a valid session user.
func (m Middleware) RequireIdentity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := strings.TrimSpace(m.SessionUser(r))
		if raw == "" {
			http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
			return
		}
		userID, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			if m.Logger != nil {
				m.Logger.Error("authz parse user id", slog.String("value", raw))
			}
			http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
			return
		}
		id, err := m.Store.Identity(r.Context(), userID)
		if err != nil {
			if errors.Is(err, ErrRecordNotFound) {
				http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
				return
			}
			if m.Logger != nil {
				m.Logger.Error("authz load identity", slog.Any("error", err))
			}
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}
		next.ServeHTTP(w, r.WithContext(m.Sink(r.Context(), id)))
	})
}
