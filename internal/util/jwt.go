package util

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims carries the user identity plus its capability tag. LeaderID is set
// only for leader-role users.
type Claims struct {
	UserID   uint   `json:"user_id"`
	Role     string `json:"role"`
	LeaderID string `json:"leader_id,omitempty"`
	jwt.RegisteredClaims
}

// GenerateToken signs a JWT for the user with the given ttl.
func GenerateToken(secret string, userID uint, role, leaderID string, ttl time.Duration) (string, error) {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	now := time.Now()
	claims := &Claims{
		UserID:   userID,
		Role:     role,
		LeaderID: leaderID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// ParseToken parses and validates a JWT, returning its Claims.
func ParseToken(secret, tokenStr string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, jwt.ErrTokenInvalidClaims
	}
	return claims, nil
}
