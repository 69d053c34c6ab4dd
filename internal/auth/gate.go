package auth

import (
	"context"
	"errors"

	"github.com/hongminglow/all-in-blog/internal/models"
)

// ErrUnauthenticated is returned when a protected operation runs without a session.
var ErrUnauthenticated = errors.New("access denied, unauthenticated")

// Identity is what a session resolves to.
type Identity struct {
	UserID int64       `json:"userId"`
	Role   models.Role `json:"role"`
}

// IsAdmin reports whether the identity carries the admin role.
func (i Identity) IsAdmin() bool {
	return i.Role == models.RoleAdmin
}

type identityKey struct{}

// WithIdentity attaches id to ctx.
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, id)
}

// IdentityFromContext returns the identity attached by WithIdentity.
func IdentityFromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityKey{}).(Identity)
	return id, ok
}

// OptionalIdentity returns the identity in ctx, or nil when the request is anonymous.
func OptionalIdentity(ctx context.Context) *Identity {
	id, ok := IdentityFromContext(ctx)
	if !ok {
		return nil
	}
	return &id
}

// Require fails with ErrUnauthenticated unless id is present.
func Require(id *Identity) (Identity, error) {
	if id == nil || id.UserID == 0 {
		return Identity{}, ErrUnauthenticated
	}
	return *id, nil
}
