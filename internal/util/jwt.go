package util

import (
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/faxingberling1/internal-crm-sub001/internal/models"
)

// Claims is the token payload. The session id rides in RegisteredClaims.ID
// (jti) so logout can revoke a token before it expires.
type Claims struct {
	UserID     uint            `json:"user_id"`
	Email      string          `json:"email"`
	Role       models.UserRole `json:"role"`
	Name       string          `json:"name"`
	IsApproved bool            `json:"is_approved"`
	jwt.RegisteredClaims
}

// GenerateToken issues a signed JWT for the user with the given session id.
func GenerateToken(secret, issuer string, u *models.User, sessionID string, ttl time.Duration) (string, error) {
	if ttl <= 0 {
		ttl = 7 * 24 * time.Hour
	}
	now := time.Now()
	claims := &Claims{
		UserID:     u.ID,
		Email:      u.Email,
		Role:       u.Role,
		Name:       u.Name,
		IsApproved: u.IsApproved,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        sessionID,
			Issuer:    issuer,
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// ParseToken parses and verifies a JWT, returning its Claims.
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
