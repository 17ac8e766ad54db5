// Package auth verifies the session tokens minted by the external auth
// collaborator and turns them into the explicit Identity the core requires.
// The core itself never authenticates anyone.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"hotelos/internal/domain"
)

type SessionClaims struct {
	TenantID  int64  `json:"tenant_id"`
	UserID    int64  `json:"user_id"`
	HotelName string `json:"hotel_name,omitempty"`
	jwt.RegisteredClaims
}

type Verifier struct {
	secret []byte
}

func NewVerifier(secret string) *Verifier {
	return &Verifier{secret: []byte(secret)}
}

// Verify parses an HS256 session token and extracts the acting identity.
func (v *Verifier) Verify(token string) (domain.Identity, error) {
	var claims SessionClaims
	tok, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (any, error) {
		return v.secret, nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	if err != nil {
		return domain.Identity{}, fmt.Errorf("invalid session token: %w", err)
	}
	if !tok.Valid {
		return domain.Identity{}, errors.New("invalid session token")
	}
	if claims.TenantID <= 0 || claims.UserID <= 0 {
		return domain.Identity{}, errors.New("session token missing tenant or user")
	}
	return domain.Identity{
		TenantID:  claims.TenantID,
		UserID:    claims.UserID,
		HotelName: claims.HotelName,
	}, nil
}

// Mint issues a token with the same claim layout the auth collaborator uses.
// Only the seeder and tests call this; production tokens arrive from outside.
func (v *Verifier) Mint(id domain.Identity, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := SessionClaims{
		TenantID:  id.TenantID,
		UserID:    id.UserID,
		HotelName: id.HotelName,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(v.secret)
}
