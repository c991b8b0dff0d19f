package admin

import (
	"context"
	"time"
)

// Identity is an authenticated admin, as established from a token.
type Identity struct {
	Subject   string
	ExpiresAt time.Time
}

type identityKey struct{}

func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, id)
}

func IdentityFrom(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityKey{}).(Identity)
	return id, ok
}

// Authenticated is the admin-identity fact consulted by the Gate.
func Authenticated(ctx context.Context) bool {
	_, ok := IdentityFrom(ctx)
	return ok
}
