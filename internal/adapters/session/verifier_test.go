package session_test

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"tarasamar/internal/adapters/session"
	"tarasamar/internal/domain"
)

func TestVerifier_RoundTrip(t *testing.T) {
	v, err := session.NewVerifier("test-secret")
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	tok, err := v.Issue(domain.User{ID: "u-1", Email: "TaraSamar@gmail.com", Role: "admin"}, time.Hour)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	u, err := v.Verify(tok)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if u.ID != "u-1" || u.Email != "TaraSamar@gmail.com" || u.Role != "admin" {
		t.Fatalf("unexpected user: %+v", u)
	}
}

func TestVerifier_RejectsExpiredAndForeignTokens(t *testing.T) {
	v, _ := session.NewVerifier("test-secret")
	other, _ := session.NewVerifier("other-secret")

	expired, _ := v.Issue(domain.User{ID: "u-1", Email: "a@example.com"}, -time.Hour)
	foreign, _ := other.Issue(domain.User{ID: "u-1", Email: "a@example.com"}, time.Hour)

	for name, tok := range map[string]string{"expired": expired, "foreign": foreign, "garbage": "not-a-jwt"} {
		if _, err := v.Verify(tok); !errors.Is(err, domain.ErrUnauthenticated) {
			t.Fatalf("%s: expected ErrUnauthenticated, got %v", name, err)
		}
	}
}

func TestVerifier_RejectsOtherAlgorithms(t *testing.T) {
	v, _ := session.NewVerifier("test-secret")
	c := session.Claims{
		Email: "a@example.com",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "u-1",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS512, c).SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, err := v.Verify(tok); !errors.Is(err, domain.ErrUnauthenticated) {
		t.Fatalf("expected HS512 to be rejected, got %v", err)
	}
}

func TestNewVerifier_RequiresSecret(t *testing.T) {
	if _, err := session.NewVerifier(""); err == nil {
		t.Fatalf("expected error for empty secret")
	}
}
