package middleware

import (
	"context"

	"github.com/fleetworks/vanlist-backend/internal/audit"
	"github.com/fleetworks/vanlist-backend/pkg/enums"
	"github.com/google/uuid"
)

type contextKey string

const (
	ctxUserID   contextKey = "user_id"
	ctxUsername contextKey = "username"
	ctxRole     contextKey = "actor_role"
)

func UserIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxUserID).(string); ok {
		return v
	}
	return ""
}

func UsernameFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxUsername).(string); ok {
		return v
	}
	return ""
}

func RoleFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxRole).(string); ok {
		return v
	}
	return ""
}

// WithActor seeds the context with the authenticated identity.
func WithActor(ctx context.Context, userID uuid.UUID, username string, role enums.Role) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx = context.WithValue(ctx, ctxUserID, userID.String())
	ctx = context.WithValue(ctx, ctxUsername, username)
	return context.WithValue(ctx, ctxRole, string(role))
}

// ActorFromContext rebuilds the audit actor from the request context.
func ActorFromContext(ctx context.Context) (audit.Actor, bool) {
	id, err := uuid.Parse(UserIDFromContext(ctx))
	if err != nil {
		return audit.Actor{}, false
	}
	username := UsernameFromContext(ctx)
	role := enums.Role(RoleFromContext(ctx))
	if username == "" || !role.IsValid() {
		return audit.Actor{}, false
	}
	return audit.Actor{ID: id, Username: username, Role: role}, true
}
