// Package gotrue talks to a GoTrue-compatible auth service (email/password).
package gotrue

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"tarasamar/internal/adapters/observability"
	"tarasamar/internal/domain"
)

type Client struct {
	base string
	hc   *http.Client
	key  string
	rl   *rate.Limiter
}

func New(base, key string, rps int) (*Client, error) {
	if key == "" {
		return nil, fmt.Errorf("API key is required")
	}
	if rps <= 0 {
		rps = 5
	}
	return &Client{
		base: strings.TrimRight(base, "/"),
		hc:   &http.Client{Timeout: 10 * time.Second},
		key:  key,
		rl:   rate.NewLimiter(rate.Limit(rps), rps),
	}, nil
}

// ---- wire types ----

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type wireUser struct {
	ID          string         `json:"id"`
	Email       string         `json:"email"`
	AppMetadata map[string]any `json:"app_metadata"`
}

type wireSession struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	ExpiresIn    int       `json:"expires_in"`
	User         *wireUser `json:"user"`

	// signup without auto-confirm answers with the bare user object
	ID    string `json:"id"`
	Email string `json:"email"`
}

type wireError struct {
	Msg              string `json:"msg"`
	Message          string `json:"message"`
	ErrorDescription string `json:"error_description"`
}

func (e wireError) text() string {
	for _, s := range []string{e.ErrorDescription, e.Msg, e.Message} {
		if s != "" {
			return s
		}
	}
	return ""
}

// ---- Public API ----

func (c *Client) SignInWithPassword(ctx context.Context, email, password string) (domain.Session, error) {
	var out wireSession
	if err := c.do(ctx, http.MethodPost, "/token?grant_type=password", "", credentials{Email: email, Password: password}, &out); err != nil {
		return domain.Session{}, err
	}
	if out.User == nil || out.AccessToken == "" {
		return domain.Session{}, fmt.Errorf("%w: empty session", domain.ErrInvalidCredentials)
	}
	return toSession(out), nil
}

// SignUp may return a session without tokens when the service requires
// email confirmation first.
func (c *Client) SignUp(ctx context.Context, email, password string) (domain.Session, error) {
	var out wireSession
	if err := c.do(ctx, http.MethodPost, "/signup", "", credentials{Email: email, Password: password}, &out); err != nil {
		return domain.Session{}, err
	}
	if out.User == nil {
		out.User = &wireUser{ID: out.ID, Email: out.Email}
	}
	return toSession(out), nil
}

func (c *Client) SignOut(ctx context.Context, accessToken string) error {
	return c.do(ctx, http.MethodPost, "/logout", accessToken, nil, nil)
}

func toSession(w wireSession) domain.Session {
	s := domain.Session{AccessToken: w.AccessToken, RefreshToken: w.RefreshToken}
	if w.ExpiresIn > 0 {
		s.ExpiresAt = time.Now().Add(time.Duration(w.ExpiresIn) * time.Second)
	}
	if w.User != nil {
		s.User = domain.User{ID: w.User.ID, Email: w.User.Email}
		if role, ok := w.User.AppMetadata["role"].(string); ok {
			s.User.Role = role
		}
	}
	return s
}

// ---- Internals ----

var (
	ErrUnauthorized = fmt.Errorf("gotrue: %w", domain.ErrUnauthenticated)
	ErrRateLimited  = fmt.Errorf("gotrue: rate limited: %w", domain.ErrUpstream)
)

// do sends one request with client-side rate limiting and decodes JSON into
// out. There is no retry: every failure is returned to the caller once.
func (c *Client) do(ctx context.Context, method, path, bearer string, in, out any) error {
	if err := c.rl.Wait(ctx); err != nil {
		return err
	}

	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.base+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("apikey", c.key)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "tarasamar/1.0")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	endpoint := strings.SplitN(path, "?", 2)[0]
	start := time.Now()
	resp, err := c.hc.Do(req)
	if err != nil {
		observability.ObserveExternal("gotrue", endpoint, 0, time.Since(start))
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("%w: %v", domain.ErrUpstream, err)
	}
	defer resp.Body.Close()
	observability.ObserveExternal("gotrue", endpoint, resp.StatusCode, time.Since(start))

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		if out == nil || resp.StatusCode == http.StatusNoContent {
			_, _ = io.Copy(io.Discard, resp.Body)
			return nil
		}
		return json.NewDecoder(resp.Body).Decode(out)

	case resp.StatusCode == http.StatusBadRequest, resp.StatusCode == http.StatusUnprocessableEntity:
		// GoTrue answers bad credentials and rejected sign-ups with 400/422.
		return fmt.Errorf("%w: %s", domain.ErrInvalidCredentials, readError(resp.Body))

	case resp.StatusCode == http.StatusUnauthorized, resp.StatusCode == http.StatusForbidden:
		return fmt.Errorf("%w: %s", ErrUnauthorized, readError(resp.Body))

	case resp.StatusCode == http.StatusTooManyRequests:
		return ErrRateLimited

	default:
		return fmt.Errorf("%w: gotrue status %d: %s", domain.ErrUpstream, resp.StatusCode, readError(resp.Body))
	}
}

// readError extracts the service's message from a small error body.
func readError(r io.Reader) string {
	b, _ := io.ReadAll(io.LimitReader(r, 4096))
	var we wireError
	if json.Unmarshal(b, &we) == nil && we.text() != "" {
		return we.text()
	}
	return strings.TrimSpace(string(b))
}
