package oidc

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"io"
)

// GenerateState creates a cryptographically secure random state string for
// CSRF protection in the authorization-code flow.
// Returns a 32-byte hex-encoded string (64 characters).
func GenerateState() (string, error) {
	b := make([]byte, 32)
	if _, err := io.ReadFull(rand.Reader, b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// GenerateNonce creates a cryptographically secure random nonce for replay
// protection. Returns a 16-byte hex-encoded string (32 characters).
func GenerateNonce() (string, error) {
	b := make([]byte, 16)
	if _, err := io.ReadFull(rand.Reader, b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// PKCE holds a Proof Key for Code Exchange verifier/challenge pair. Send
// CodeChallenge + CodeChallengeMethod in the authorization URL and
// CodeVerifier in the token exchange. The kit never performs the exchange
// itself; the pair exists for interactive documentation and client helpers.
type PKCE struct {
	// CodeVerifier is the random secret kept by the client.
	CodeVerifier string

	// CodeChallenge is the S256 hash of the verifier.
	CodeChallenge string

	// CodeChallengeMethod is always "S256".
	CodeChallengeMethod string
}

// NewPKCE generates a PKCE pair using the S256 method. The verifier is a
// 32-byte random value, base64url-encoded (43 characters).
func NewPKCE() (*PKCE, error) {
	verifier := make([]byte, 32)
	if _, err := io.ReadFull(rand.Reader, verifier); err != nil {
		return nil, err
	}

	verifierStr := base64.RawURLEncoding.EncodeToString(verifier)
	h := sha256.Sum256([]byte(verifierStr))

	return &PKCE{
		CodeVerifier:        verifierStr,
		CodeChallenge:       base64.RawURLEncoding.EncodeToString(h[:]),
		CodeChallengeMethod: "S256",
	}, nil
}
