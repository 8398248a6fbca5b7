package auth

import (
	"testing"
	"time"
)

func TestSessionToken_RoundTrip(t *testing.T) {
	token, err := NewSessionToken("secret", "wesigned-test", time.Hour, "uid-1", "ada@uni.edu")
	if err != nil {
		t.Fatalf("NewSessionToken failed: %v", err)
	}

	claims, err := ParseToken("secret", token)
	if err != nil {
		t.Fatalf("ParseToken failed: %v", err)
	}
	if claims.UserID != "uid-1" || claims.Email != "ada@uni.edu" {
		t.Errorf("unexpected claims: %+v", claims)
	}
	if claims.Issuer != "wesigned-test" || claims.Subject != "uid-1" {
		t.Errorf("unexpected registered claims: %+v", claims.RegisteredClaims)
	}
}

func TestParseToken_WrongSecret(t *testing.T) {
	token, err := NewSessionToken("secret", "wesigned-test", time.Hour, "uid-1", "ada@uni.edu")
	if err != nil {
		t.Fatalf("NewSessionToken failed: %v", err)
	}
	if _, err := ParseToken("other-secret", token); err == nil {
		t.Fatal("expected verification failure")
	}
}

func TestParseToken_Expired(t *testing.T) {
	token, err := NewSessionToken("secret", "wesigned-test", -time.Minute, "uid-1", "ada@uni.edu")
	if err != nil {
		t.Fatalf("NewSessionToken failed: %v", err)
	}
	if _, err := ParseToken("secret", token); err == nil {
		t.Fatal("expected expiry failure")
	}
}
