// Package auth issues and verifies session tokens and password hashes.
package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/chiefcousin/toybox/internal/domain"
)

const issuer = "toybox"

// Token audiences
const (
	AudienceStaff    = "toybox-admin"
	AudienceCustomer = "toybox-storefront"
)

var ErrInvalidToken = errors.New("invalid or expired token")

// Claims are the JWT claims for staff and customer sessions
type Claims struct {
	jwt.RegisteredClaims
	UserID uuid.UUID        `json:"uid"`
	Role   domain.StaffRole `json:"role,omitempty"`
}

// GenerateToken creates a signed HS256 token for the given subject
func GenerateToken(userID uuid.UUID, role domain.StaffRole, audience, secret string, expiry time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   userID.String(),
			Audience:  jwt.ClaimStrings{audience},
			ExpiresAt: jwt.NewNumericDate(now.Add(expiry)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
		UserID: userID,
		Role:   role,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// ValidateToken parses and validates a token for the given audience
func ValidateToken(tokenString, audience, secret string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return []byte(secret), nil
	}, jwt.WithIssuer(issuer), jwt.WithAudience(audience))
	if err != nil {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.UserID == uuid.Nil {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
