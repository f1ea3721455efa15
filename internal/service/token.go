package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Token purposes. A token is only accepted for the purpose it was issued for.
const (
	TokenPurposeAccess = "access"
	TokenPurposeReset  = "reset"
)

var ErrInvalidToken = errors.New("invalid or expired token")

// TokenClaims is the payload carried by access and password reset tokens.
type TokenClaims struct {
	UserID  uint   `json:"id"`
	Purpose string `json:"purpose"`
	Stamp   string `json:"stamp,omitempty"`
	jwt.RegisteredClaims
}

// TokenIssuer signs and verifies HS256 tokens.
type TokenIssuer struct {
	secret []byte
	now    func() time.Time
}

// NewTokenIssuer creates a TokenIssuer using secret as the HMAC key.
func NewTokenIssuer(secret string) *TokenIssuer {
	return &TokenIssuer{secret: []byte(secret), now: time.Now}
}

// Issue signs a token for userID valid for ttl.
func (t *TokenIssuer) Issue(userID uint, purpose, stamp string, ttl time.Duration) (string, error) {
	now := t.now()
	claims := TokenClaims{
		UserID:  userID,
		Purpose: purpose,
		Stamp:   stamp,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Parse verifies raw and returns its claims when it was issued for purpose.
func (t *TokenIssuer) Parse(raw, purpose string) (*TokenClaims, error) {
	claims := &TokenClaims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(*jwt.Token) (interface{}, error) {
		return t.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(t.now))
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}
	if claims.Purpose != purpose || claims.UserID == 0 {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
