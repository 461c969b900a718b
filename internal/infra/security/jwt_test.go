package security

import (
	"errors"
	"testing"
	"time"

	"github.com/badrkarrachai/WanaShip-Backend/internal/core/domain"
)

var jwtTestClock = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func newTestGenerator(t *testing.T) *TokenGenerator {
	t.Helper()
	gen, err := NewTokenGenerator("test-signing-secret", "wanaship", "wanaship-api", time.Hour)
	if err != nil {
		t.Fatalf("NewTokenGenerator failed: %v", err)
	}
	return gen.WithClock(func() time.Time { return jwtTestClock })
}

func TestTokenRoundTrip(t *testing.T) {
	gen := newTestGenerator(t)

	token, err := gen.Generate("user-1", domain.RoleReshipper)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	claims, err := gen.Parse(token)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if claims.UserID != "user-1" {
		t.Errorf("UserID = %q, want user-1", claims.UserID)
	}
	if claims.Role != domain.RoleReshipper {
		t.Errorf("Role = %q, want reshipper", claims.Role)
	}
	if claims.Issuer != "wanaship" {
		t.Errorf("Issuer = %q, want wanaship", claims.Issuer)
	}
	if claims.ID == "" {
		t.Error("expected a token id claim")
	}
}

func TestTokenExpiry(t *testing.T) {
	gen := newTestGenerator(t)

	token, err := gen.Generate("user-1", domain.RoleUser)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	later := gen.WithClock(func() time.Time { return jwtTestClock.Add(2 * time.Hour) })
	_, err = later.Parse(token)
	if !errors.Is(err, ErrTokenExpired) {
		t.Fatalf("expected ErrTokenExpired, got %v", err)
	}
}

func TestTokenForeignSecret(t *testing.T) {
	gen := newTestGenerator(t)

	other, err := NewTokenGenerator("another-secret", "wanaship", "wanaship-api", time.Hour)
	if err != nil {
		t.Fatalf("NewTokenGenerator failed: %v", err)
	}
	token, err := other.WithClock(func() time.Time { return jwtTestClock }).Generate("user-1", domain.RoleUser)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	_, err = gen.Parse(token)
	if !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("expected ErrTokenInvalid, got %v", err)
	}
}

func TestTokenForeignAudience(t *testing.T) {
	gen := newTestGenerator(t)

	other, err := NewTokenGenerator("test-signing-secret", "wanaship", "some-other-api", time.Hour)
	if err != nil {
		t.Fatalf("NewTokenGenerator failed: %v", err)
	}
	token, err := other.WithClock(func() time.Time { return jwtTestClock }).Generate("user-1", domain.RoleUser)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	_, err = gen.Parse(token)
	if !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("expected ErrTokenInvalid, got %v", err)
	}
}

func TestTokenGarbage(t *testing.T) {
	gen := newTestGenerator(t)

	for _, token := range []string{"", "garbage", "a.b.c"} {
		if _, err := gen.Parse(token); !errors.Is(err, ErrTokenInvalid) {
			t.Errorf("Parse(%q): expected ErrTokenInvalid, got %v", token, err)
		}
	}
}

func TestNewTokenGeneratorRequiresSecret(t *testing.T) {
	if _, err := NewTokenGenerator("", "wanaship", "wanaship-api", time.Hour); err == nil {
		t.Fatal("expected an error for an empty secret")
	}
}
