package controllers

import (
	"net/http"
	"time"

	"github.com/angelmondragon/backoffice/pkg/config"
)

// SessionCookies writes and clears the credential cookie.
type SessionCookies struct {
	Name   string
	Secure bool
}

// NewSessionCookies derives cookie settings from the token config. Secure is set
// in production only.
func NewSessionCookies(jwtCfg config.JWTConfig, appCfg config.AppConfig) SessionCookies {
	name := jwtCfg.CookieName
	if name == "" {
		name = "token"
	}
	return SessionCookies{Name: name, Secure: appCfg.IsProd()}
}

// Set stores token for ttl, rounded down to whole seconds with a floor of one.
func (s SessionCookies) Set(w http.ResponseWriter, token string, ttl time.Duration) {
	maxAge := int(ttl / time.Second)
	if maxAge < 1 {
		maxAge = 1
	}
	http.SetCookie(w, &http.Cookie{
		Name:     s.Name,
		Value:    token,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   s.Secure,
		SameSite: http.SameSiteStrictMode,
	})
}

// Clear expires the cookie immediately.
func (s SessionCookies) Clear(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     s.Name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
		HttpOnly: true,
		Secure:   s.Secure,
		SameSite: http.SameSiteStrictMode,
	})
}
