package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ScorerClaims scopes a token to scoring one match.
type ScorerClaims struct {
	MatchID uint `json:"match_id"`
	jwt.RegisteredClaims
}

// GenerateScorerToken signs a token letting its holder score the given match.
func GenerateScorerToken(matchID uint, secretKey string, expiryMinutes int) (string, error) {
	if secretKey == "" {
		return "", errors.New("jwt secret key is empty")
	}
	now := time.Now()
	claims := &ScorerClaims{
		MatchID: matchID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Duration(expiryMinutes) * time.Minute)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    "crease",
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secretKey))
}

// ValidateScorerToken parses and validates a scorer token string.
func ValidateScorerToken(tokenString string, secretKey string) (*ScorerClaims, error) {
	if tokenString == "" {
		return nil, errors.New("token string is empty")
	}
	if secretKey == "" {
		return nil, errors.New("jwt secret key is empty")
	}

	claims := &ScorerClaims{}
	parsed, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(secretKey), nil
	})
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, errors.New("token has expired")
		case errors.Is(err, jwt.ErrSignatureInvalid):
			return nil, errors.New("token signature is invalid")
		default:
			return nil, fmt.Errorf("could not parse token: %w", err)
		}
	}
	if !parsed.Valid {
		return nil, errors.New("token is invalid")
	}
	if claims.MatchID == 0 {
		return nil, errors.New("match_id claim is missing or zero")
	}
	return claims, nil
}
