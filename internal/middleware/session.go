package middleware

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	"github.com/hongminglow/all-in-blog/internal/auth"
	"github.com/hongminglow/all-in-blog/internal/http/respond"
)

// SessionResolver maps a request cookie to the identity it carries.
type SessionResolver interface {
	TokenFromRequest(r *http.Request) (string, bool)
	Resolve(ctx context.Context, token string) (auth.Identity, bool, error)
}

// Session resolves the session cookie once per request and stores the
// identity in the request context. A store failure is logged and the request
// continues unauthenticated.
func Session(sessions SessionResolver, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := sessions.TokenFromRequest(r)
			if !ok {
				next.ServeHTTP(w, r)
				return
			}
			id, found, err := sessions.Resolve(r.Context(), token)
			if err != nil {
				logger.Warn("resolve session failed", zap.Error(err))
				next.ServeHTTP(w, r)
				return
			}
			if found {
				r = r.WithContext(auth.WithIdentity(r.Context(), id))
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireIdentity rejects requests without a resolved session.
func RequireIdentity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, err := auth.Require(auth.OptionalIdentity(r.Context())); err != nil {
			respond.Error(w, http.StatusUnauthorized, err.Error())
			return
		}
		next.ServeHTTP(w, r)
	})
}
