package identity

import (
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/opiegroup/boscotek2026-sub001/internal/config"
	"github.com/opiegroup/boscotek2026-sub001/model"
)

// Verifier validates bearer tokens against the configured identity provider.
type Verifier struct {
	cfg  config.IdentityConfig
	jwks *JWKSClient
}

// NewVerifier creates a Verifier using the given JWKS client for key lookup.
func NewVerifier(cfg config.IdentityConfig, jwks *JWKSClient) *Verifier {
	return &Verifier{cfg: cfg, jwks: jwks}
}

// Verify parses and validates a compact JWT and returns its claims. The
// error message is safe to surface to callers.
func (v *Verifier) Verify(tokenStr string) (map[string]any, error) {
	token, err := jwt.Parse(tokenStr,
		func(token *jwt.Token) (any, error) {
			kid, _ := token.Header["kid"].(string)
			if kid == "" {
				return nil, fmt.Errorf("missing kid in token header")
			}
			return v.jwks.GetKey(kid)
		},
		jwt.WithValidMethods(v.cfg.Algorithms),
		jwt.WithIssuer(v.cfg.Issuer),
		jwt.WithAudience(v.cfg.Audience),
		jwt.WithLeeway(30*time.Second),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, model.NewUnauthorizedError(classifyJWTError(err))
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, model.NewUnauthorizedError("Invalid token")
	}

	return map[string]any(claims), nil
}

func classifyJWTError(err error) string {
	s := err.Error()
	switch {
	case strings.Contains(s, "expired"):
		return "Token expired"
	case strings.Contains(s, "issuer"):
		return "Invalid token issuer"
	case strings.Contains(s, "audience"):
		return "Invalid token audience"
	case strings.Contains(s, "signing method"):
		return "Disallowed signing algorithm"
	case strings.Contains(s, "kid"):
		return "Unknown signing key"
	case strings.Contains(s, "signature"):
		return "Invalid token signature"
	default:
		return "Invalid token"
	}
}
