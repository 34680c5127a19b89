package utils

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	JWTSecret   = []byte("TestSecretKeyAUTH1945")
	JWTIssuer   = "RestaurantTill"
	JWTDuration = 24 * time.Hour
)

// SetJWTConfig is called once at startup with the values from config.
func SetJWTConfig(secret, issuer string, duration time.Duration) {
	if secret != "" {
		JWTSecret = []byte(secret)
	}
	if issuer != "" {
		JWTIssuer = issuer
	}
	if duration > 0 {
		JWTDuration = duration
	}
}

// CustomClaims is what the identity provider signs. TenantID is the
// restaurant the user works for.
type CustomClaims struct {
	UserID   uint   `json:"user_id"`
	TenantID uint   `json:"tenant_id"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

// GenerateToken is used by tests and local tooling; production tokens come
// from the identity provider with the same secret.
func GenerateToken(userID, tenantID uint, role string) (string, error) {
	now := time.Now()
	claims := &CustomClaims{
		UserID:   userID,
		TenantID: tenantID,
		Role:     role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(JWTDuration)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    JWTIssuer,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(JWTSecret)
}

func ParseToken(tokenString string) (*CustomClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &CustomClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return JWTSecret, nil
	}, jwt.WithIssuer(JWTIssuer))

	if err != nil || !token.Valid {
		return nil, errors.New("invalid or expired token")
	}

	claims, ok := token.Claims.(*CustomClaims)
	if !ok {
		return nil, errors.New("invalid token claims")
	}
	if claims.TenantID == 0 {
		return nil, errors.New("token has no tenant")
	}

	return claims, nil
}
