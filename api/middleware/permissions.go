package middleware

import (
	"net/http"

	"github.com/angelmondragon/backoffice/api/responses"
	"github.com/angelmondragon/backoffice/internal/access"
	"github.com/angelmondragon/backoffice/pkg/enums"
	pkgerrors "github.com/angelmondragon/backoffice/pkg/errors"
	"github.com/angelmondragon/backoffice/pkg/logger"
)

// RequirePermission re-reads the caller's user row and rejects the request unless
// the live permission flag is set. It must run after Auth.
func RequirePermission(guard access.Authorizer, logg *logger.Logger, perm enums.Permission) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims := ClaimsFromContext(r.Context())
			if claims == nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
				return
			}

			user, err := guard.Authorize(r.Context(), claims.UserID, claims.CompanyID, perm)
			if err != nil {
				ctx := r.Context()
				if logg != nil {
					ctx = logg.WithField(ctx, "permission", perm.String())
				}
				responses.WriteError(ctx, logg, w, err)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithActor(r.Context(), user)))
		})
	}
}
