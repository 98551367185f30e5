package jwtutil

import (
	"errors"
	"testing"
	"time"
)

func TestTokenRoundTrip(t *testing.T) {
	token, err := GenerateToken("secret", time.Hour, 42, "student@example.com")
	if err != nil {
		t.Fatalf("GenerateToken() error = %v", err)
	}

	claims, err := ParseToken("secret", token)
	if err != nil {
		t.Fatalf("ParseToken() error = %v", err)
	}
	if claims.UserID != 42 {
		t.Errorf("UserID = %d, want 42", claims.UserID)
	}
	if claims.Email != "student@example.com" {
		t.Errorf("Email = %q, want student@example.com", claims.Email)
	}
}

func TestParseTokenWrongSecret(t *testing.T) {
	token, err := GenerateToken("secret", time.Hour, 1, "a@b.c")
	if err != nil {
		t.Fatalf("GenerateToken() error = %v", err)
	}
	if _, err := ParseToken("other-secret", token); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("ParseToken() error = %v, want ErrInvalidToken", err)
	}
}

func TestParseTokenExpired(t *testing.T) {
	token, err := GenerateToken("secret", -time.Minute, 1, "a@b.c")
	if err != nil {
		t.Fatalf("GenerateToken() error = %v", err)
	}
	if _, err := ParseToken("secret", token); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("ParseToken() error = %v, want ErrInvalidToken", err)
	}
}

func TestParseTokenGarbage(t *testing.T) {
	if _, err := ParseToken("secret", "not-a-token"); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("ParseToken() error = %v, want ErrInvalidToken", err)
	}
}
