package auth

import (
	"context"

	"github.com/Project-Sylos/Nimbus/internal/types"
)

type contextKey struct{}

// WithPrincipal returns a copy of ctx carrying the authenticated caller
func WithPrincipal(ctx context.Context, p *types.Principal) context.Context {
	return context.WithValue(ctx, contextKey{}, p)
}

// PrincipalFrom returns the caller stored by WithPrincipal
func PrincipalFrom(ctx context.Context) (*types.Principal, bool) {
	p, ok := ctx.Value(contextKey{}).(*types.Principal)
	return p, ok && p != nil
}
