package middleware

import (
	"context"

	pkgAuth "github.com/angelmondragon/backoffice/pkg/auth"
	"github.com/angelmondragon/backoffice/pkg/db/models"
)

type contextKey string

const (
	ctxClaims contextKey = "access_claims"
	ctxActor  contextKey = "authorized_actor"
)

// WithClaims injects verified token claims into the context.
func WithClaims(ctx context.Context, claims *pkgAuth.AccessTokenClaims) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxClaims, claims)
}

// ClaimsFromContext returns the verified claims, or nil on public routes.
func ClaimsFromContext(ctx context.Context) *pkgAuth.AccessTokenClaims {
	if ctx == nil {
		return nil
	}
	if v, ok := ctx.Value(ctxClaims).(*pkgAuth.AccessTokenClaims); ok {
		return v
	}
	return nil
}

func UserIDFromContext(ctx context.Context) int64 {
	if claims := ClaimsFromContext(ctx); claims != nil {
		return claims.UserID
	}
	return 0
}

func CompanyIDFromContext(ctx context.Context) int64 {
	if claims := ClaimsFromContext(ctx); claims != nil {
		return claims.CompanyID
	}
	return 0
}

// WithActor stores the user row re-read by the permission gate.
func WithActor(ctx context.Context, user *models.User) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxActor, user)
}

// ActorFromContext returns the live user row loaded by RequirePermission.
func ActorFromContext(ctx context.Context) *models.User {
	if ctx == nil {
		return nil
	}
	if v, ok := ctx.Value(ctxActor).(*models.User); ok {
		return v
	}
	return nil
}
