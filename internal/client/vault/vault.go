// Package vault encrypts credentials before they enter the local store.
// Tokens are self-contained: a fresh random nonce is prepended to the
// AES-256-GCM ciphertext and the whole thing is base64-encoded, so
// encrypting the same plaintext twice yields different tokens and any
// token decrypts on its own.
package vault

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
)

const keyLen = 32

// ErrIntegrity is returned when a token is malformed or its
// authentication tag does not verify. It indicates tampering or a key
// mismatch and is never retryable.
var ErrIntegrity = errors.New("vault: token integrity check failed")

// Vault performs symmetric encryption with a single process-wide key.
type Vault struct {
	aead cipher.AEAD
}

// New derives the AES-256 key from the configured secret, padded with '0'
// or truncated to 32 bytes. An empty secret is refused.
func New(secret string) (*Vault, error) {
	if secret == "" {
		return nil, errors.New("vault: empty secret")
	}
	key := make([]byte, keyLen)
	for i := range key {
		key[i] = '0'
	}
	copy(key, secret)

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("vault: create cipher: %w", err)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("vault: create AEAD: %w", err)
	}
	return &Vault{aead: aead}, nil
}

// Encrypt seals plaintext under a fresh nonce and returns the combined
// nonce+ciphertext as a base64 token.
func (v *Vault) Encrypt(plaintext string) (string, error) {
	nonce := make([]byte, v.aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return "", fmt.Errorf("vault: generate nonce: %w", err)
	}
	ct := v.aead.Seal(nonce, nonce, []byte(plaintext), nil)
	return base64.StdEncoding.EncodeToString(ct), nil
}

// Decrypt opens a token produced by Encrypt. Malformed tokens and failed
// authentication both return ErrIntegrity.
func (v *Vault) Decrypt(token string) (string, error) {
	combined, err := base64.StdEncoding.DecodeString(token)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrIntegrity, err)
	}
	if len(combined) < v.aead.NonceSize() {
		return "", fmt.Errorf("%w: token too short", ErrIntegrity)
	}
	nonce, ct := combined[:v.aead.NonceSize()], combined[v.aead.NonceSize():]
	plain, err := v.aead.Open(nil, nonce, ct, nil)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrIntegrity, err)
	}
	return string(plain), nil
}
