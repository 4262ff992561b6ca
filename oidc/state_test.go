package oidc

import (
	"crypto/sha256"
	"encoding/base64"
	"testing"
)

func TestGenerateState(t *testing.T) {
	a, err := GenerateState()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b, _ := GenerateState()

	if len(a) != 64 {
		t.Errorf("state length = %d, want 64", len(a))
	}
	if a == b {
		t.Error("two states should not collide")
	}
}

func TestGenerateNonce(t *testing.T) {
	n, err := GenerateNonce()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(n) != 32 {
		t.Errorf("nonce length = %d, want 32", len(n))
	}
}

func TestNewPKCE(t *testing.T) {
	p, err := NewPKCE()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if p.CodeChallengeMethod != "S256" {
		t.Errorf("method = %q", p.CodeChallengeMethod)
	}
	if len(p.CodeVerifier) != 43 {
		t.Errorf("verifier length = %d, want 43", len(p.CodeVerifier))
	}

	h := sha256.Sum256([]byte(p.CodeVerifier))
	if want := base64.RawURLEncoding.EncodeToString(h[:]); p.CodeChallenge != want {
		t.Errorf("challenge is not S256(verifier)")
	}
}
