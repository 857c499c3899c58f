package app

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"tarasamar/internal/domain"
)

type Credentials struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type AuthResult struct {
	Session domain.Session
	Admin   bool
	Outcome
}

// IdentityService fronts the identity provider and records sign-in and
// sign-up activity. Subscribers registered with OnAuthChange see every
// successful transition.
type IdentityService struct {
	base
	provider domain.IdentityProvider
	logs     domain.ActivityLogRepository
	authz    domain.Authorizer

	mu     sync.RWMutex
	nextID int
	subs   map[int]func(domain.AuthEvent)
}

func NewIdentityService(provider domain.IdentityProvider, logs domain.ActivityLogRepository, authz domain.Authorizer, opts ...Option) *IdentityService {
	return &IdentityService{
		base:     newBase(nil, 0, opts),
		provider: provider,
		logs:     logs,
		authz:    authz,
		subs:     map[int]func(domain.AuthEvent){},
	}
}

func (s *IdentityService) SignIn(ctx context.Context, c Credentials) (AuthResult, error) {
	return s.authenticate(ctx, c, domain.EventSignIn)
}

func (s *IdentityService) SignUp(ctx context.Context, c Credentials) (AuthResult, error) {
	return s.authenticate(ctx, c, domain.EventSignUp)
}

func (s *IdentityService) authenticate(ctx context.Context, c Credentials, typ domain.EventType) (AuthResult, error) {
	c.Email = strings.TrimSpace(c.Email)
	if err := validateStruct(c); err != nil {
		return AuthResult{}, err
	}

	var (
		sess domain.Session
		err  error
		page = "SignIn"
		kind = domain.AuthSignedIn
	)
	if typ == domain.EventSignUp {
		page, kind = "SignUp", domain.AuthSignedUp
		sess, err = s.provider.SignUp(ctx, c.Email, c.Password)
	} else {
		sess, err = s.provider.SignInWithPassword(ctx, c.Email, c.Password)
	}
	if err != nil {
		return AuthResult{}, fmt.Errorf("%s: %w", strings.ToLower(page), err)
	}

	email := sess.User.Email
	if email == "" {
		email = c.Email
	}
	res := AuthResult{Session: sess, Admin: s.authz != nil && s.authz.CanAdminister(sess.User)}
	entry := authEntry(s.newID(), typ, ptrStr(sess.User.ID), email, page, s.now())
	if err := s.logs.InsertActivity(ctx, entry); err != nil {
		res.record(EffectActivityLog, err, email)
	}
	s.emit(domain.AuthEvent{Kind: kind, Email: email})
	return res, nil
}

func (s *IdentityService) SignOut(ctx context.Context, caller domain.User, accessToken string) error {
	if err := s.provider.SignOut(ctx, accessToken); err != nil {
		return fmt.Errorf("signout: %w", err)
	}
	s.emit(domain.AuthEvent{Kind: domain.AuthSignedOut, Email: caller.Email})
	return nil
}

// IsAdmin reports whether u passes the configured authorizer.
func (s *IdentityService) IsAdmin(u domain.User) bool {
	return s.authz != nil && s.authz.CanAdminister(u)
}

// OnAuthChange registers fn and returns a func that removes it.
func (s *IdentityService) OnAuthChange(fn func(domain.AuthEvent)) (unsubscribe func()) {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.subs[id] = fn
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.subs, id)
			s.mu.Unlock()
		})
	}
}

func (s *IdentityService) emit(ev domain.AuthEvent) {
	s.mu.RLock()
	fns := make([]func(domain.AuthEvent), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.mu.RUnlock()
	for _, fn := range fns {
		fn(ev)
	}
}
