package identity

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/opiegroup/boscotek2026-sub001/internal/config"
	"github.com/opiegroup/boscotek2026-sub001/model"
)

func testIdentityCfg() config.IdentityConfig {
	return config.IdentityConfig{
		Issuer:     "https://auth.example.com",
		Audience:   "boscotek-api",
		Algorithms: []string{"RS256", "ES256"},
		ClaimPaths: map[string]string{
			"subject_id": "sub",
			"email":      "email",
			"company":    "company",
			"roles":      "roles",
			"tier":       "price_tier",
		},
		StaffRoles: []string{"staff", "sales_admin"},
	}
}

func validClaims() jwt.MapClaims {
	return jwt.MapClaims{
		"sub":        "user-1",
		"email":      "buyer@example.com",
		"company":    "Example Pty Ltd",
		"roles":      []string{"purchasing"},
		"price_tier": "distributor",
		"iss":        "https://auth.example.com",
		"aud":        "boscotek-api",
		"exp":        jwt.NewNumericDate(time.Now().Add(1 * time.Hour)),
		"iat":        jwt.NewNumericDate(time.Now()),
	}
}

func signJWT(t *testing.T, key any, method jwt.SigningMethod, kid string, claims jwt.MapClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(method, claims)
	token.Header["kid"] = kid
	s, err := token.SignedString(key)
	if err != nil {
		t.Fatalf("SignedString: %v", err)
	}
	return s
}

func TestVerifier_validToken(t *testing.T) {
	rsaKey := generateRSAKey(t)
	jwksSrv := startJWKSServer(t, rsaKeyToJWK("test-key", &rsaKey.PublicKey))

	v := NewVerifier(testIdentityCfg(), NewJWKSClient(jwksSrv.URL, 1*time.Hour, nil))

	claims, err := v.Verify(signJWT(t, rsaKey, jwt.SigningMethodRS256, "test-key", validClaims()))
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if sub, _ := claims["sub"].(string); sub != "user-1" {
		t.Errorf("sub = %q, want user-1", sub)
	}
}

func TestVerifier_validToken_EC(t *testing.T) {
	ecKey := generateECKey(t)
	jwksSrv := startJWKSServer(t, ecKeyToJWK("ec-test", &ecKey.PublicKey))

	v := NewVerifier(testIdentityCfg(), NewJWKSClient(jwksSrv.URL, 1*time.Hour, nil))

	if _, err := v.Verify(signJWT(t, ecKey, jwt.SigningMethodES256, "ec-test", validClaims())); err != nil {
		t.Errorf("Verify ES256 token: %v", err)
	}
}

func TestVerifier_failures(t *testing.T) {
	rsaKey := generateRSAKey(t)
	jwksSrv := startJWKSServer(t, rsaKeyToJWK("test-key", &rsaKey.PublicKey))

	tests := []struct {
		name    string
		mutate  func(jwt.MapClaims)
		cfg     func(*config.IdentityConfig)
		message string
	}{
		{
			name:    "expired",
			mutate:  func(c jwt.MapClaims) { c["exp"] = jwt.NewNumericDate(time.Now().Add(-1 * time.Hour)) },
			message: "expired",
		},
		{
			name:    "wrong issuer",
			mutate:  func(c jwt.MapClaims) { c["iss"] = "https://evil.example.com" },
			message: "issuer",
		},
		{
			name:    "wrong audience",
			mutate:  func(c jwt.MapClaims) { c["aud"] = "other-api" },
			message: "audience",
		},
		{
			name:    "missing exp",
			mutate:  func(c jwt.MapClaims) { delete(c, "exp") },
			message: "Invalid token",
		},
		{
			name:    "disallowed algorithm",
			mutate:  func(jwt.MapClaims) {},
			cfg:     func(c *config.IdentityConfig) { c.Algorithms = []string{"ES256"} },
			message: "algorithm",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testIdentityCfg()
			if tt.cfg != nil {
				tt.cfg(&cfg)
			}
			v := NewVerifier(cfg, NewJWKSClient(jwksSrv.URL, 1*time.Hour, nil))

			claims := validClaims()
			tt.mutate(claims)

			_, err := v.Verify(signJWT(t, rsaKey, jwt.SigningMethodRS256, "test-key", claims))
			if err == nil {
				t.Fatal("expected verification failure")
			}
			var env *model.ErrorEnvelope
			if !errors.As(err, &env) || env.Code != model.ErrUnauthorized {
				t.Fatalf("error = %v, want UNAUTHORIZED envelope", err)
			}
			if !strings.Contains(strings.ToLower(env.Message), strings.ToLower(tt.message)) {
				t.Errorf("message %q does not mention %q", env.Message, tt.message)
			}
		})
	}
}

func TestVerifier_clockSkewTolerance(t *testing.T) {
	rsaKey := generateRSAKey(t)
	jwksSrv := startJWKSServer(t, rsaKeyToJWK("test-key", &rsaKey.PublicKey))

	v := NewVerifier(testIdentityCfg(), NewJWKSClient(jwksSrv.URL, 1*time.Hour, nil))

	// Expired 15 seconds ago, within the 30s leeway.
	claims := validClaims()
	claims["exp"] = jwt.NewNumericDate(time.Now().Add(-15 * time.Second))

	if _, err := v.Verify(signJWT(t, rsaKey, jwt.SigningMethodRS256, "test-key", claims)); err != nil {
		t.Errorf("Verify within skew tolerance: %v", err)
	}
}
