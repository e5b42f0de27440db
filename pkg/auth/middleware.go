package auth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"storefront/pkg/account"
	"storefront/pkg/logger"
)

type ctxKey struct{}

// WithActor stores the authenticated actor in ctx.
func WithActor(ctx context.Context, actor account.Actor) context.Context {
	return context.WithValue(ctx, ctxKey{}, actor)
}

// ActorFrom returns the authenticated actor stored in ctx.
func ActorFrom(ctx context.Context) (account.Actor, bool) {
	actor, ok := ctx.Value(ctxKey{}).(account.Actor)
	return actor, ok
}

// SessionID extracts the session id from the bearer token or, failing that,
// the session cookie.
func SessionID(r *http.Request) string {
	if h := r.Header.Get("Authorization"); h != "" {
		if token, ok := strings.CutPrefix(h, "Bearer "); ok {
			return strings.TrimSpace(token)
		}
	}
	if c, err := r.Cookie(CookieName); err == nil {
		return c.Value
	}
	return ""
}

// Authenticator resolves session ids. *Service implements it.
type Authenticator interface {
	Authenticate(ctx context.Context, sid string) (account.Actor, error)
}

// Middleware rejects requests without a live session and stores the caller's
// actor in the request context.
func Middleware(auth Authenticator, log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			actor, err := auth.Authenticate(r.Context(), SessionID(r))
			if err != nil {
				if !errors.Is(err, ErrNoSession) {
					log.Error(r.Context(), "authenticate", "error", err)
				}
				deny(w, http.StatusUnauthorized, "Not authorized, no valid session")
				return
			}
			next.ServeHTTP(w, r.WithContext(WithActor(r.Context(), actor)))
		})
	}
}

// AdminOnly lets through only admin actors. It must run after Middleware.
func AdminOnly(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		actor, ok := ActorFrom(r.Context())
		if !ok || !actor.IsAdmin() {
			deny(w, http.StatusForbidden, "Access denied. Admin only.")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func deny(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"message": msg})
}
