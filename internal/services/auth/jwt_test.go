package auth

import (
	"testing"
	"time"
)

func TestAccessTokenRoundTrip(t *testing.T) {
	mgr := NewJWTManager("test-secret", 15*time.Minute)

	token, expiresAt, err := mgr.GenerateAccessToken(42, "USER")
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}
	if expiresAt.IsZero() {
		t.Fatal("expected expiry timestamp")
	}

	claims, err := mgr.ParseAccessToken(token)
	if err != nil {
		t.Fatalf("parse token: %v", err)
	}
	if claims.UserID != 42 || claims.Role != "USER" {
		t.Fatalf("unexpected claims: %+v", claims)
	}
}

func TestParseRejectsExpiredToken(t *testing.T) {
	mgr := NewJWTManager("test-secret", time.Minute)
	mgr.now = func() time.Time { return time.Now().Add(-time.Hour) }

	token, _, err := mgr.GenerateAccessToken(42, "USER")
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}

	fresh := NewJWTManager("test-secret", time.Minute)
	if _, err := fresh.ParseAccessToken(token); err != ErrUnauthorized {
		t.Fatalf("expected ErrUnauthorized for expired token, got %v", err)
	}
}

func TestParseRejectsWrongSecret(t *testing.T) {
	mgr := NewJWTManager("test-secret", time.Minute)

	token, _, err := mgr.GenerateAccessToken(42, "USER")
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}

	other := NewJWTManager("other-secret", time.Minute)
	if _, err := other.ParseAccessToken(token); err != ErrUnauthorized {
		t.Fatalf("expected ErrUnauthorized for wrong secret, got %v", err)
	}
}
