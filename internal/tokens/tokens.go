package tokens

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/serenespa/admin-console/internal/config"
	"github.com/serenespa/admin-console/internal/models"
)

var ErrInvalidToken = errors.New("invalid access token")

// Claims carried by the access_token cookie.
type Claims struct {
	AID   int64  `json:"aid"`
	Email string `json:"email"`
	Name  string `json:"name"`
	jwt.RegisteredClaims
}

// GenerateAccessToken creates a signed JWT access token for the admin
func GenerateAccessToken(cfg *config.Config, a *models.Admin, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		AID:   a.AID,
		Email: a.Email,
		Name:  a.Name,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   a.Sub(),
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	jt := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return jt.SignedString([]byte(cfg.JWT.Secret))
}

// ParseAccessToken verifies signature, algorithm and expiry.
func ParseAccessToken(cfg *config.Config, raw string) (*Claims, error) {
	var claims Claims
	_, err := jwt.ParseWithClaims(raw, &claims, func(t *jwt.Token) (interface{}, error) {
		return []byte(cfg.JWT.Secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	return &claims, nil
}
