package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/abhishek622/interviewflow/pkg/model"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var ErrNoRoles = errors.New("token carries no roles")

// Claims is the access token payload issued by the identity service.
type Claims struct {
	UserID uuid.UUID        `json:"user_id"`
	Roles  []model.UserRole `json:"roles"`
	jwt.RegisteredClaims
}

// Actor converts verified claims into the caller identity the core expects.
func (c *Claims) Actor() model.ActorContext {
	return model.ActorContext{UserID: c.UserID, Roles: c.Roles}
}

func GenerateToken(secret, issuer string, actor model.ActorContext, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := &Claims{
		UserID: actor.UserID,
		Roles:  actor.Roles,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    issuer,
			Subject:   actor.UserID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// ParseToken verifies an HS256 token and its issuer.
func ParseToken(secret, issuer, tokenStr string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, fmt.Errorf("parse token: %w", err)
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, jwt.ErrTokenUnverifiable
	}
	if claims.UserID == uuid.Nil {
		return nil, fmt.Errorf("parse token: %w", jwt.ErrTokenInvalidClaims)
	}
	if len(claims.Roles) == 0 {
		return nil, ErrNoRoles
	}
	return claims, nil
}
