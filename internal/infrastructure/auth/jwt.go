package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/Zhima-Mochi/minishop-orders/internal/domain/identity"
)

var ErrInvalidToken = errors.New("auth: invalid token")

// Claims carries the verified identity inside the bearer token.
type Claims struct {
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
	Role  string `json:"role"`
	jwt.RegisteredClaims
}

// TokenManager issues and verifies HMAC-signed bearer tokens.
type TokenManager struct {
	secret []byte
	ttl    time.Duration
}

func NewTokenManager(secret string, ttl time.Duration) *TokenManager {
	return &TokenManager{secret: []byte(secret), ttl: ttl}
}

func (m *TokenManager) Issue(ident identity.Identity) (string, error) {
	now := time.Now().UTC()
	claims := Claims{
		Name:  ident.Name,
		Email: ident.Email,
		Role:  string(ident.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   ident.UserID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.secret)
}

func (m *TokenManager) Parse(raw string) (identity.Identity, error) {
	var claims Claims
	token, err := jwt.ParseWithClaims(raw, &claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("%w: unexpected signing method %s", ErrInvalidToken, t.Method.Alg())
		}
		return m.secret, nil
	})
	if err != nil || !token.Valid {
		return identity.Identity{}, ErrInvalidToken
	}
	if claims.Subject == "" {
		return identity.Identity{}, ErrInvalidToken
	}

	role, err := identity.ParseRole(claims.Role)
	if err != nil {
		return identity.Identity{}, ErrInvalidToken
	}

	return identity.Identity{
		UserID: claims.Subject,
		Name:   claims.Name,
		Email:  claims.Email,
		Role:   role,
	}, nil
}
