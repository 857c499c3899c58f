package session

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"tarasamar/internal/domain"
)

// LocalProvider is an in-process identity provider for APP_ENV=dev. It keeps
// bcrypt hashes in memory and signs tokens with the Verifier's secret, so the
// rest of the stack cannot tell it from the remote service.
type LocalProvider struct {
	v     *Verifier
	ttl   time.Duration
	roles map[string]string // lower(email) -> role

	mu    sync.Mutex
	users map[string]localUser // lower(email)
}

type localUser struct {
	id   string
	hash []byte
}

func NewLocalProvider(v *Verifier, ttl time.Duration, roles map[string]string) *LocalProvider {
	r := make(map[string]string, len(roles))
	for email, role := range roles {
		r[strings.ToLower(email)] = role
	}
	return &LocalProvider{v: v, ttl: ttl, roles: r, users: map[string]localUser{}}
}

func (p *LocalProvider) SignUp(ctx context.Context, email, password string) (domain.Session, error) {
	key := strings.ToLower(strings.TrimSpace(email))
	if key == "" || password == "" {
		return domain.Session{}, fmt.Errorf("%w: email and password are required", domain.ErrInvalidCredentials)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return domain.Session{}, fmt.Errorf("hash password: %w", err)
	}

	p.mu.Lock()
	if _, exists := p.users[key]; exists {
		p.mu.Unlock()
		return domain.Session{}, fmt.Errorf("%w: user already registered", domain.ErrInvalidCredentials)
	}
	u := localUser{id: uuid.NewString(), hash: hash}
	p.users[key] = u
	p.mu.Unlock()

	return p.session(u.id, email)
}

func (p *LocalProvider) SignInWithPassword(ctx context.Context, email, password string) (domain.Session, error) {
	key := strings.ToLower(strings.TrimSpace(email))
	p.mu.Lock()
	u, ok := p.users[key]
	p.mu.Unlock()
	if !ok || bcrypt.CompareHashAndPassword(u.hash, []byte(password)) != nil {
		return domain.Session{}, fmt.Errorf("%w: Invalid login credentials", domain.ErrInvalidCredentials)
	}
	return p.session(u.id, email)
}

// SignOut is a no-op: local tokens simply expire.
func (p *LocalProvider) SignOut(ctx context.Context, accessToken string) error { return nil }

func (p *LocalProvider) session(id, email string) (domain.Session, error) {
	u := domain.User{ID: id, Email: email, Role: p.roles[strings.ToLower(email)]}
	tok, err := p.v.Issue(u, p.ttl)
	if err != nil {
		return domain.Session{}, fmt.Errorf("sign token: %w", err)
	}
	return domain.Session{AccessToken: tok, ExpiresAt: time.Now().Add(p.ttl), User: u}, nil
}
