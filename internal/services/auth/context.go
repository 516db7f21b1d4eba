package auth

import "context"

type identityContextKey struct{}

var identityKey identityContextKey

// Identity is what the token middleware injects; handlers read it instead of
// ever touching the raw JWT claims.
type Identity struct {
	UserID int64
	Role   string
}

func WithIdentity(ctx context.Context, identity Identity) context.Context {
	return context.WithValue(ctx, identityKey, identity)
}

func IdentityFromContext(ctx context.Context) (Identity, bool) {
	identity, ok := ctx.Value(identityKey).(Identity)
	return identity, ok
}
