package session

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/mercaplaza/mercaplaza/pkg/config"
	"github.com/mercaplaza/mercaplaza/pkg/enums"
)

var signingMethod = jwt.SigningMethodHS256

// TokenClaims is the payload carried by a session token.
type TokenClaims struct {
	UserID uuid.UUID  `json:"uid"`
	Role   enums.Role `json:"role"`
	jwt.RegisteredClaims
}

// MintToken issues a signed session token for the given user.
func MintToken(cfg config.SessionConfig, now time.Time, userID uuid.UUID, role enums.Role) (string, error) {
	if cfg.Secret == "" {
		return "", fmt.Errorf("session secret is required")
	}
	if cfg.Issuer == "" {
		return "", fmt.Errorf("session issuer is required")
	}
	if !role.IsValid() {
		return "", fmt.Errorf("invalid role %q", role)
	}

	claims := TokenClaims{
		UserID: userID,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    cfg.Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(cfg.TTL())),
			ID:        uuid.NewString(),
		},
	}

	token := jwt.NewWithClaims(signingMethod, claims)
	signed, err := token.SignedString([]byte(cfg.Secret))
	if err != nil {
		return "", fmt.Errorf("signing session token: %w", err)
	}
	return signed, nil
}

// ParseToken validates the token string and returns typed claims.
func ParseToken(cfg config.SessionConfig, tokenString string) (*TokenClaims, error) {
	if cfg.Secret == "" {
		return nil, fmt.Errorf("session secret is required")
	}

	claims := &TokenClaims{}
	_, err := jwt.ParseWithClaims(
		tokenString,
		claims,
		func(token *jwt.Token) (interface{}, error) {
			if token.Method != signingMethod {
				return nil, fmt.Errorf("unexpected signing method %s", token.Header["alg"])
			}
			return []byte(cfg.Secret), nil
		},
		jwt.WithValidMethods([]string{signingMethod.Alg()}),
		jwt.WithIssuer(cfg.Issuer),
	)
	if err != nil {
		return nil, err
	}

	return claims, nil
}
