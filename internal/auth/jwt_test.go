package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
)

const testSecret = "test-secret-that-is-long-enough-for-hs256"

func TestJWTManager_RoundTrip(t *testing.T) {
	t.Parallel()

	m := NewJWTManager(testSecret, "oratoria")
	userID := uuid.New()

	token, err := m.GenerateAccessToken(userID, "user", 15*time.Minute)
	if err != nil {
		t.Fatalf("GenerateAccessToken: unexpected error: %v", err)
	}

	gotID, gotRole, err := m.ValidateAccessToken(token)
	if err != nil {
		t.Fatalf("ValidateAccessToken: unexpected error: %v", err)
	}
	if gotID != userID {
		t.Errorf("user ID mismatch: got %s, want %s", gotID, userID)
	}
	if gotRole != "user" {
		t.Errorf("role mismatch: got %q, want %q", gotRole, "user")
	}
}

func TestJWTManager_EmptyToken(t *testing.T) {
	t.Parallel()

	m := NewJWTManager(testSecret, "oratoria")

	if _, _, err := m.ValidateAccessToken(""); err == nil {
		t.Fatal("expected error for empty token, got nil")
	}
}

func TestJWTManager_ExpiredToken(t *testing.T) {
	t.Parallel()

	m := NewJWTManager(testSecret, "oratoria")

	token, err := m.GenerateAccessToken(uuid.New(), "user", -time.Minute)
	if err != nil {
		t.Fatalf("GenerateAccessToken: unexpected error: %v", err)
	}

	if _, _, err := m.ValidateAccessToken(token); err == nil {
		t.Fatal("expected error for expired token, got nil")
	}
}

func TestJWTManager_WrongSecret(t *testing.T) {
	t.Parallel()

	issuing := NewJWTManager(testSecret, "oratoria")
	validating := NewJWTManager(strings.Repeat("x", 32), "oratoria")

	token, err := issuing.GenerateAccessToken(uuid.New(), "user", 15*time.Minute)
	if err != nil {
		t.Fatalf("GenerateAccessToken: unexpected error: %v", err)
	}

	if _, _, err := validating.ValidateAccessToken(token); err == nil {
		t.Fatal("expected error for wrong secret, got nil")
	}
}

func TestJWTManager_WrongIssuer(t *testing.T) {
	t.Parallel()

	issuing := NewJWTManager(testSecret, "someone-else")
	validating := NewJWTManager(testSecret, "oratoria")

	token, err := issuing.GenerateAccessToken(uuid.New(), "user", 15*time.Minute)
	if err != nil {
		t.Fatalf("GenerateAccessToken: unexpected error: %v", err)
	}

	if _, _, err := validating.ValidateAccessToken(token); err == nil {
		t.Fatal("expected error for wrong issuer, got nil")
	}
}

func TestJWTManager_TamperedToken(t *testing.T) {
	t.Parallel()

	m := NewJWTManager(testSecret, "oratoria")

	token, err := m.GenerateAccessToken(uuid.New(), "user", 15*time.Minute)
	if err != nil {
		t.Fatalf("GenerateAccessToken: unexpected error: %v", err)
	}

	tampered := token[:len(token)-2] + "xx"
	if _, _, err := m.ValidateAccessToken(tampered); err == nil {
		t.Fatal("expected error for tampered token, got nil")
	}
}
