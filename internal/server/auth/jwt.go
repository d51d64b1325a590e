// Package auth issues and verifies the signed bearer tokens handed out at
// login. Tokens are self-contained HS256 JWTs carrying the subject
// (username), issued-at, and expiry; there is no server-side revocation.
package auth

import (
	"errors"
	"time"

	"github.com/dmitrijs2005/walletkeeper/internal/common"
	"github.com/golang-jwt/jwt/v5"
)

// DefaultTokenValidity is the bearer token lifetime used when no explicit
// duration is configured.
const DefaultTokenValidity = 30 * time.Minute

// Claims embeds the registered JWT claims; the subject carries the username.
type Claims struct {
	jwt.RegisteredClaims
}

// GenerateToken signs a token for the given subject, valid for
// validityDuration from now.
func GenerateToken(subject string, secretKey []byte, validityDuration time.Duration) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(validityDuration)),
		},
	})

	tokenString, err := token.SignedString(secretKey)
	if err != nil {
		return "", err
	}

	return tokenString, nil
}

// GetSubjectFromToken verifies the token's signature and expiry and returns
// its subject. Tokens signed with any method other than HS256 are rejected
// outright, so an attacker cannot downgrade the algorithm. Expired tokens
// yield common.ErrTokenExpired; all other failures (bad signature, malformed
// token, missing subject) yield common.ErrInvalidToken.
func GetSubjectFromToken(tokenString string, secretKey []byte) (string, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return secretKey, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", common.ErrTokenExpired
		}
		return "", common.ErrInvalidToken
	}

	if !token.Valid || claims.Subject == "" {
		return "", common.ErrInvalidToken
	}

	return claims.Subject, nil
}
