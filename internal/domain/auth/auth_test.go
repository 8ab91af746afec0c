package auth

import (
	"testing"
	"time"
)

func TestPasswordHashRoundTrip(t *testing.T) {
	hash, err := HashPassword("s3cret-pass")
	if err != nil {
		t.Fatalf("hash failed: %v", err)
	}
	if hash == "s3cret-pass" {
		t.Fatal("password stored in plain text")
	}
	if err := CheckPassword(hash, "s3cret-pass"); err != nil {
		t.Fatalf("expected password to verify: %v", err)
	}
	if err := CheckPassword(hash, "wrong-pass"); err == nil {
		t.Fatal("expected wrong password to fail")
	}
}

func TestTokenRoundTrip(t *testing.T) {
	claims := Claims{
		UserID:    42,
		Username:  "hrops",
		Role:      "admin",
		FullName:  "HR Operator",
		SessionID: "abc123",
	}

	token, err := GenerateToken("test-secret", claims, time.Hour)
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}

	parsed, err := ParseToken("test-secret", token)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if parsed.UserID != 42 || parsed.Username != "hrops" || parsed.Role != "admin" || parsed.SessionID != "abc123" {
		t.Fatalf("claims did not survive round trip: %+v", parsed)
	}
}

func TestTokenWrongSecret(t *testing.T) {
	token, err := GenerateToken("secret-a", Claims{UserID: 1}, time.Hour)
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}
	if _, err := ParseToken("secret-b", token); err == nil {
		t.Fatal("expected parse with wrong secret to fail")
	}
}

func TestTokenExpired(t *testing.T) {
	token, err := GenerateToken("test-secret", Claims{UserID: 1}, -time.Minute)
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}
	if _, err := ParseToken("test-secret", token); err == nil {
		t.Fatal("expected expired token to fail")
	}
}

func TestHashTokenStable(t *testing.T) {
	if HashToken("tok") != HashToken("tok") {
		t.Fatal("token hash must be deterministic")
	}
	if HashToken("tok") == HashToken("tok2") {
		t.Fatal("distinct tokens must not collide trivially")
	}
	if HashToken("tok") == "tok" {
		t.Fatal("token must not be stored raw")
	}
}
