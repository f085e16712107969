package auth

import "context"

type identityKey struct{}

// WithIdentity attaches the authenticated identity to ctx.
func WithIdentity(ctx context.Context, identity *Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, identity)
}

// IdentityFrom returns the identity attached to ctx, or nil for an anonymous caller.
func IdentityFrom(ctx context.Context) *Identity {
	identity, _ := ctx.Value(identityKey{}).(*Identity)
	return identity
}
