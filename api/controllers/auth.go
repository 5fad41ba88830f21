package controllers

import (
	"net/http"

	"github.com/angelmondragon/backoffice/api/middleware"
	"github.com/angelmondragon/backoffice/api/responses"
	"github.com/angelmondragon/backoffice/api/validators"
	"github.com/angelmondragon/backoffice/internal/auth"
	pkgerrors "github.com/angelmondragon/backoffice/pkg/errors"
	"github.com/angelmondragon/backoffice/pkg/logger"
)

type messageResponse struct {
	Message string `json:"message"`
}

// AuthRegister bootstraps a company with its owner and signs the owner in.
func AuthRegister(svc auth.Service, cookies SessionCookies, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "auth service unavailable"))
			return
		}

		var body auth.RegisterRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		session, err := svc.Register(r.Context(), body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		cookies.Set(w, session.Token, session.TokenTTL)
		responses.WriteSuccessStatus(w, http.StatusCreated, auth.RegisterResponse{
			Message: "Registration successful",
			Company: session.Company,
			User:    session.User,
		})
	}
}

// AuthLogin wires the login endpoint into the HTTP layer.
func AuthLogin(svc auth.Service, cookies SessionCookies, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "auth service unavailable"))
			return
		}

		var body auth.LoginRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		session, err := svc.Login(r.Context(), body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		cookies.Set(w, session.Token, session.TokenTTL)
		responses.WriteSuccess(w, messageResponse{Message: "Login successful"})
	}
}

// AuthLogout clears the credential cookie. Tokens are stateless, so nothing is revoked.
func AuthLogout(cookies SessionCookies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cookies.Clear(w)
		responses.WriteSuccess(w, messageResponse{Message: "Logged out"})
	}
}

// AuthMe serves the identity carried by the verified token.
func AuthMe(logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims := middleware.ClaimsFromContext(r.Context())
		if claims == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
			return
		}
		responses.WriteSuccess(w, map[string]any{"user": auth.IdentityFrom(claims.Payload())})
	}
}
