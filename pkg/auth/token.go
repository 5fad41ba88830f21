package auth

import (
	"fmt"
	"time"

	"github.com/angelmondragon/backoffice/pkg/config"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var jwtSigningMethod = jwt.SigningMethodHS256

// minReissueTTL keeps a reissued token valid for at least a moment.
const minReissueTTL = time.Second

// MintAccessToken issues a signed JWT for the provided payload using the configured TTL.
func MintAccessToken(cfg config.JWTConfig, now time.Time, payload AccessTokenPayload) (string, error) {
	if cfg.ExpirationMinutes <= 0 {
		return "", fmt.Errorf("jwt expiration minutes must be positive")
	}
	return sign(cfg, now, now.Add(cfg.TTL()), payload)
}

// ReissueAccessToken signs a fresh token carrying the old expiry, so the remaining
// lifetime is preserved rather than reset. Changes are merged into the old payload.
func ReissueAccessToken(cfg config.JWTConfig, now time.Time, old *AccessTokenClaims, changes PayloadChanges) (string, time.Duration, error) {
	if old == nil {
		return "", 0, fmt.Errorf("claims are required")
	}
	payload := old.Payload()
	if changes.Name != nil {
		payload.Name = *changes.Name
	}

	remaining := RemainingTTL(old, now)
	if remaining <= 0 {
		remaining = cfg.TTL()
	}
	if remaining < minReissueTTL {
		remaining = minReissueTTL
	}

	token, err := sign(cfg, now, now.Add(remaining), payload)
	if err != nil {
		return "", 0, err
	}
	return token, remaining, nil
}

// RemainingTTL returns how long the claims stay valid, truncated to whole seconds.
func RemainingTTL(claims *AccessTokenClaims, now time.Time) time.Duration {
	if claims == nil || claims.ExpiresAt == nil {
		return 0
	}
	remaining := claims.ExpiresAt.Sub(now).Truncate(time.Second)
	if remaining < minReissueTTL {
		return minReissueTTL
	}
	return remaining
}

func sign(cfg config.JWTConfig, now, expiresAt time.Time, payload AccessTokenPayload) (string, error) {
	if cfg.Secret == "" {
		return "", fmt.Errorf("jwt secret is required")
	}
	if cfg.Issuer == "" {
		return "", fmt.Errorf("jwt issuer is required")
	}
	if payload.UserID <= 0 || payload.CompanyID <= 0 {
		return "", fmt.Errorf("user and company ids are required")
	}

	claims := AccessTokenClaims{
		UserID:          payload.UserID,
		Name:            payload.Name,
		Email:           payload.Email,
		CompanyID:       payload.CompanyID,
		CompanyName:     payload.CompanyName,
		ManageProducts:  payload.ManageProducts,
		ManageInventory: payload.ManageInventory,
		ManageUsers:     payload.ManageUsers,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    cfg.Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			ID:        uuid.NewString(),
		},
	}

	token := jwt.NewWithClaims(jwtSigningMethod, claims)
	signed, err := token.SignedString([]byte(cfg.Secret))
	if err != nil {
		return "", fmt.Errorf("signing jwt: %w", err)
	}
	return signed, nil
}

// ParseAccessToken validates the JWT string and returns typed claims. It never
// touches the database.
func ParseAccessToken(cfg config.JWTConfig, tokenString string) (*AccessTokenClaims, error) {
	if cfg.Secret == "" {
		return nil, fmt.Errorf("jwt secret is required")
	}

	claims := &AccessTokenClaims{}
	_, err := jwt.ParseWithClaims(
		tokenString,
		claims,
		func(token *jwt.Token) (interface{}, error) {
			if token.Method != jwtSigningMethod {
				return nil, fmt.Errorf("unexpected signing method %s", token.Header["alg"])
			}
			return []byte(cfg.Secret), nil
		},
		jwt.WithValidMethods([]string{jwtSigningMethod.Alg()}),
		jwt.WithIssuer(cfg.Issuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, err
	}
	if claims.UserID <= 0 || claims.CompanyID <= 0 {
		return nil, fmt.Errorf("token missing identity")
	}

	return claims, nil
}
