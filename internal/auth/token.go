package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"fleet-service/internal/model"
)

var (
	ErrTokenInvalid = errors.New("token invalid")
	ErrTokenExpired = errors.New("token expired")
)

type Claims struct {
	ActorID  uuid.UUID       `json:"sub"`
	Role     model.ActorRole `json:"role"`
	DriverID *uuid.UUID      `json:"driver_id,omitempty"`
	jwt.RegisteredClaims
}

// TokenManager issues and verifies opaque signed session tokens.
// Verification fails closed: any decode, signature, or claims problem maps
// to ErrTokenInvalid, and only a confirmed expiry maps to ErrTokenExpired.
type TokenManager struct {
	secret []byte
	ttl    time.Duration
}

func NewTokenManager(secret string, ttl time.Duration) *TokenManager {
	return &TokenManager{secret: []byte(secret), ttl: ttl}
}

func (m *TokenManager) Issue(actor *model.Actor, now time.Time) (string, error) {
	claims := Claims{
		ActorID:  actor.ID,
		Role:     actor.Role,
		DriverID: actor.DriverID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.secret)
}

func (m *TokenManager) Verify(tokenStr string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrTokenInvalid
		}
		return m.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrTokenInvalid
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.ActorID == uuid.Nil {
		return nil, ErrTokenInvalid
	}

	return claims, nil
}
