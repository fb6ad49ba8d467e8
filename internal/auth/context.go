package auth

import "context"

type contextKey string

const contextKeyOwner contextKey = "auth.owner_id"

// WithOwner stores the authenticated owner id in ctx.
func WithOwner(ctx context.Context, owner string) context.Context {
	return context.WithValue(ctx, contextKeyOwner, owner)
}

// OwnerFrom returns the owner id stored by the middleware.
func OwnerFrom(ctx context.Context) (string, bool) {
	if ctx == nil {
		return "", false
	}
	owner, ok := ctx.Value(contextKeyOwner).(string)
	return owner, ok && owner != ""
}
