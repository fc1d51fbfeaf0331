package jwtauth

import (
	"errors"

	"github.com/golang-jwt/jwt/v5"

	dErrors "coursegate/pkg/domain-errors"
)

// Validator checks HS256 bearer tokens minted by the identity provider and
// extracts the external subject id.
type Validator struct {
	signingKey []byte
}

func NewValidator(signingKey string) *Validator {
	if signingKey == "" {
		return nil
	}
	return &Validator{signingKey: []byte(signingKey)}
}

// ValidateToken parses and verifies the token, returning its subject claim.
func (v *Validator) ValidateToken(tokenString string) (string, error) {
	parsed, err := jwt.ParseWithClaims(tokenString, &jwt.RegisteredClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrTokenUnverifiable
		}
		return v.signingKey, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", dErrors.New(dErrors.CodeUnauthorized, "token has expired")
		}
		return "", dErrors.New(dErrors.CodeUnauthorized, "invalid token")
	}
	claims, ok := parsed.Claims.(*jwt.RegisteredClaims)
	if !ok || !parsed.Valid || claims.Subject == "" {
		return "", dErrors.New(dErrors.CodeUnauthorized, "invalid token")
	}
	return claims.Subject, nil
}
