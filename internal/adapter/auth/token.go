package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/rl1809/inventory-tracker/internal/core/domain"
)

type sessionClaims struct {
	Username string      `json:"username"`
	Role     domain.Role `json:"role"`
	jwt.RegisteredClaims
}

// TokenIssuer signs sessions into HS256 bearer tokens and reads them back.
type TokenIssuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewTokenIssuer(secret string, ttl time.Duration) *TokenIssuer {
	return &TokenIssuer{secret: []byte(secret), ttl: ttl, now: time.Now}
}

func (t *TokenIssuer) Issue(session domain.Session) (string, error) {
	if err := session.RequireAuthenticated(); err != nil {
		return "", err
	}

	now := t.now()
	claims := &sessionClaims{
		Username: session.Username,
		Role:     session.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   session.Username,
			ExpiresAt: jwt.NewNumericDate(now.Add(t.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(t.secret)
}

// Parse returns the session carried by a valid token. Any failure yields
// domain.ErrNotAuthenticated.
func (t *TokenIssuer) Parse(tokenStr string) (domain.Session, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &sessionClaims{}, func(tok *jwt.Token) (interface{}, error) {
		if _, ok := tok.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", tok.Header["alg"])
		}
		return t.secret, nil
	}, jwt.WithTimeFunc(t.now))
	if err != nil || !token.Valid {
		return domain.Anonymous(), fmt.Errorf("%w: %v", domain.ErrNotAuthenticated, err)
	}

	claims, ok := token.Claims.(*sessionClaims)
	if !ok {
		return domain.Anonymous(), domain.ErrNotAuthenticated
	}

	session := domain.Authenticated(claims.Username, claims.Role)
	if !session.IsAuthenticated() {
		return domain.Anonymous(), domain.ErrNotAuthenticated
	}
	return session, nil
}
