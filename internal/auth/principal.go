// Package auth models the authenticated caller. The principal travels
// explicitly through context and function arguments; nothing in the core
// reads claims from a global.
package auth

import (
	"context"

	"github.com/google/uuid"

	"github.com/shopino/commerce-service/internal/models"
)

type Principal struct {
	UserID uuid.UUID
	Role   string
}

func (p Principal) IsAdmin() bool { return p.Role == models.RoleAdmin }

// IsCreator is the staff read role; admins satisfy it too.
func (p Principal) IsCreator() bool {
	return p.Role == models.RoleCreator || p.Role == models.RoleAdmin
}

type ctxKey struct{}

func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, ctxKey{}, p)
}

func PrincipalFrom(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(ctxKey{}).(Principal)
	return p, ok
}
