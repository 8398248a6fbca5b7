package vault

import (
	"encoding/base64"
	"errors"
	"testing"
)

func TestNew_EmptySecret(t *testing.T) {
	if _, err := New(""); err == nil {
		t.Fatal("expected error for empty secret")
	}
}

func TestNew_LongSecretTruncated(t *testing.T) {
	long := "this-secret-is-much-longer-than-thirty-two-bytes-in-total"
	v, err := New(long)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	w, err := New(long[:32])
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	token, err := v.Encrypt("hello")
	if err != nil {
		t.Fatalf("Encrypt failed: %v", err)
	}
	// The first 32 bytes are the whole key, so both vaults interoperate.
	plain, err := w.Decrypt(token)
	if err != nil {
		t.Fatalf("Decrypt failed: %v", err)
	}
	if plain != "hello" {
		t.Errorf("expected hello, got %q", plain)
	}
}

func TestRoundTrip(t *testing.T) {
	v, err := New("test-secret")
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	for _, s := range []string{"", "a", "user-4711", "pässwörd with spaces"} {
		token, err := v.Encrypt(s)
		if err != nil {
			t.Fatalf("Encrypt(%q) failed: %v", s, err)
		}
		plain, err := v.Decrypt(token)
		if err != nil {
			t.Fatalf("Decrypt(%q) failed: %v", s, err)
		}
		if plain != s {
			t.Errorf("round trip: expected %q, got %q", s, plain)
		}
	}
}

func TestEncrypt_NonceUniqueness(t *testing.T) {
	v, err := New("test-secret")
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	t1, err := v.Encrypt("same plaintext")
	if err != nil {
		t.Fatalf("Encrypt failed: %v", err)
	}
	t2, err := v.Encrypt("same plaintext")
	if err != nil {
		t.Fatalf("Encrypt failed: %v", err)
	}
	if t1 == t2 {
		t.Error("two encryptions of the same plaintext produced the same token")
	}
	for _, tok := range []string{t1, t2} {
		plain, err := v.Decrypt(tok)
		if err != nil || plain != "same plaintext" {
			t.Errorf("Decrypt(%q) = %q, %v", tok, plain, err)
		}
	}
}

func TestDecrypt_Malformed(t *testing.T) {
	v, err := New("test-secret")
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	cases := []string{
		"not base64 !!!",
		base64.StdEncoding.EncodeToString([]byte("short")),
	}
	for _, tok := range cases {
		if _, err := v.Decrypt(tok); !errors.Is(err, ErrIntegrity) {
			t.Errorf("Decrypt(%q): expected ErrIntegrity, got %v", tok, err)
		}
	}
}

func TestDecrypt_Tampered(t *testing.T) {
	v, err := New("test-secret")
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	token, err := v.Encrypt("sensitive")
	if err != nil {
		t.Fatalf("Encrypt failed: %v", err)
	}

	raw, _ := base64.StdEncoding.DecodeString(token)
	raw[len(raw)-1] ^= 0xff
	if _, err := v.Decrypt(base64.StdEncoding.EncodeToString(raw)); !errors.Is(err, ErrIntegrity) {
		t.Errorf("expected ErrIntegrity for tampered token, got %v", err)
	}
}

func TestDecrypt_WrongKey(t *testing.T) {
	v1, _ := New("secret-one")
	v2, _ := New("secret-two")

	token, err := v1.Encrypt("bound-to-key-one")
	if err != nil {
		t.Fatalf("Encrypt failed: %v", err)
	}
	if _, err := v2.Decrypt(token); !errors.Is(err, ErrIntegrity) {
		t.Errorf("expected ErrIntegrity for key mismatch, got %v", err)
	}
}
