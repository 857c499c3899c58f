// Package session verifies access tokens issued by the auth service.
package session

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"tarasamar/internal/domain"
)

// Claims mirrors the GoTrue access-token payload fields we read.
type Claims struct {
	Email       string         `json:"email"`
	AppMetadata map[string]any `json:"app_metadata,omitempty"`
	jwt.RegisteredClaims
}

// Verifier checks HS256 tokens against the auth service's shared secret.
type Verifier struct {
	secret []byte
	leeway time.Duration
}

func NewVerifier(secret string) (*Verifier, error) {
	if secret == "" {
		return nil, errors.New("jwt secret is required")
	}
	return &Verifier{secret: []byte(secret), leeway: 30 * time.Second}, nil
}

func (v *Verifier) Verify(token string) (domain.User, error) {
	var c Claims
	_, err := jwt.ParseWithClaims(token, &c, func(t *jwt.Token) (any, error) {
		return v.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithLeeway(v.leeway),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return domain.User{}, fmt.Errorf("%w: %v", domain.ErrUnauthenticated, err)
	}
	if c.Subject == "" || c.Email == "" {
		return domain.User{}, fmt.Errorf("%w: token has no subject or email", domain.ErrUnauthenticated)
	}
	u := domain.User{ID: c.Subject, Email: c.Email}
	if role, ok := c.AppMetadata["role"].(string); ok {
		u.Role = role
	}
	return u, nil
}

// Issue signs a token in the same shape; used by tests and local tooling.
func (v *Verifier) Issue(u domain.User, ttl time.Duration) (string, error) {
	c := Claims{
		Email: u.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   u.ID,
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
		},
	}
	if u.Role != "" {
		c.AppMetadata = map[string]any{"role": u.Role}
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(v.secret)
}
