package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/angelmondragon/backoffice/pkg/config"
	"github.com/angelmondragon/backoffice/pkg/enums"
	"github.com/golang-jwt/jwt/v5"
)

func testConfig() config.JWTConfig {
	return config.JWTConfig{
		Secret:            "secret",
		Issuer:            "backoffice",
		ExpirationMinutes: 30 * 24 * 60,
	}
}

func testPayload() AccessTokenPayload {
	return AccessTokenPayload{
		UserID:          7,
		Name:            "Alice",
		Email:           "alice@acme.com",
		CompanyID:       3,
		CompanyName:     "Acme",
		ManageProducts:  true,
		ManageInventory: true,
		ManageUsers:     false,
	}
}

func TestMintAndParseAccessToken(t *testing.T) {
	cfg := testConfig()
	now := time.Now().UTC()

	token, err := MintAccessToken(cfg, now, testPayload())
	if err != nil {
		t.Fatalf("mint access token: %v", err)
	}

	claims, err := ParseAccessToken(cfg, token)
	if err != nil {
		t.Fatalf("parse access token: %v", err)
	}

	if claims.Payload() != testPayload() {
		t.Fatalf("payload mismatch: %+v", claims.Payload())
	}
	if claims.Issuer != cfg.Issuer {
		t.Fatalf("expected issuer %s, got %s", cfg.Issuer, claims.Issuer)
	}
	if claims.ID == "" {
		t.Fatalf("expected jti to be set")
	}

	exp := now.Add(30 * 24 * time.Hour)
	diff := claims.ExpiresAt.Sub(exp)
	if diff < 0 {
		diff = -diff
	}
	if diff >= time.Second {
		t.Fatalf("expected exp roughly %v, got %v", exp, claims.ExpiresAt.UTC())
	}
}

func TestParseAccessTokenInvalidSignature(t *testing.T) {
	cfg := testConfig()
	token, err := MintAccessToken(cfg, time.Now(), testPayload())
	if err != nil {
		t.Fatalf("mint: %v", err)
	}

	other := cfg
	other.Secret = "different"
	if _, err := ParseAccessToken(other, token); err == nil {
		t.Fatal("expected signature error")
	}
}

func TestParseAccessTokenExpired(t *testing.T) {
	cfg := testConfig()
	cfg.ExpirationMinutes = 1
	token, err := MintAccessToken(cfg, time.Now().Add(-2*time.Minute), testPayload())
	if err != nil {
		t.Fatalf("mint: %v", err)
	}

	_, err = ParseAccessToken(cfg, token)
	if err == nil || !strings.Contains(err.Error(), "expired") {
		t.Fatalf("expected expired error, got %v", err)
	}
}

func TestParseAccessTokenRejectsOtherAlgorithms(t *testing.T) {
	cfg := testConfig()
	claims := AccessTokenClaims{
		UserID:    1,
		CompanyID: 1,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    cfg.Issuer,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString([]byte(cfg.Secret))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, err := ParseAccessToken(cfg, token); err == nil {
		t.Fatal("expected HS512 token to be rejected")
	}
}

func TestReissueKeepsRemainingLifetime(t *testing.T) {
	cfg := testConfig()
	issuedAt := time.Now().Add(-10 * 24 * time.Hour)
	token, err := MintAccessToken(cfg, issuedAt, testPayload())
	if err != nil {
		t.Fatalf("mint: %v", err)
	}
	old, err := ParseAccessToken(cfg, token)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	now := time.Now()
	renamed := "Alice B."
	reissued, remaining, err := ReissueAccessToken(cfg, now, old, PayloadChanges{Name: &renamed})
	if err != nil {
		t.Fatalf("reissue: %v", err)
	}

	fresh, err := ParseAccessToken(cfg, reissued)
	if err != nil {
		t.Fatalf("parse reissued: %v", err)
	}
	if fresh.Name != renamed {
		t.Fatalf("expected merged name, got %q", fresh.Name)
	}
	if fresh.Email != old.Email || fresh.CompanyID != old.CompanyID || fresh.ManageUsers != old.ManageUsers {
		t.Fatalf("unchanged fields must carry over")
	}

	drift := fresh.ExpiresAt.Sub(old.ExpiresAt.Time)
	if drift < 0 {
		drift = -drift
	}
	if drift > time.Second {
		t.Fatalf("expected expiry to be preserved, drift %v", drift)
	}
	if remaining > 20*24*time.Hour+time.Second || remaining < 20*24*time.Hour-2*time.Second {
		t.Fatalf("unexpected remaining ttl %v", remaining)
	}
}

func TestPayloadHas(t *testing.T) {
	p := testPayload()
	if !p.Has(enums.PermissionManageProducts) || !p.Has(enums.PermissionManageInventory) {
		t.Fatalf("expected product and inventory flags")
	}
	if p.Has(enums.PermissionManageUsers) || p.Has(enums.Permission("other")) {
		t.Fatalf("unexpected permission granted")
	}
}
