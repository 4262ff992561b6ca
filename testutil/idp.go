package testutil

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// IDP is a fake OIDC identity provider for tests. It serves a discovery
// document and a JWKS endpoint over httptest, holds signing keys it can mint
// tokens with, counts endpoint hits, and can be told to fail upcoming
// requests to exercise retry and stale-cache behavior.
type IDP struct {
	t   *testing.T
	srv *httptest.Server

	mu             sync.Mutex
	keys           []*idpKey
	discoveryCalls int
	jwksCalls      int
	failDiscovery  int
	failJWKS       int
	jwksDelay      time.Duration
}

type idpKey struct {
	kid    string
	alg    string
	rsaKey *rsa.PrivateKey
	ecKey  *ecdsa.PrivateKey
}

// NewIDP starts a fake provider with no keys. The server is shut down via
// t.Cleanup.
func NewIDP(t *testing.T) *IDP {
	t.Helper()

	idp := &IDP{t: t}
	mux := http.NewServeMux()
	mux.HandleFunc("/.well-known/openid-configuration", idp.handleDiscovery)
	mux.HandleFunc("/jwks", idp.handleJWKS)
	idp.srv = httptest.NewServer(mux)
	t.Cleanup(idp.srv.Close)
	return idp
}

// Issuer returns the provider's issuer URL.
func (idp *IDP) Issuer() string { return idp.srv.URL }

// JWKSURI returns the provider's JWKS endpoint.
func (idp *IDP) JWKSURI() string { return idp.srv.URL + "/jwks" }

// AddRSAKey generates and publishes a 2048-bit RSA signing key under kid.
func (idp *IDP) AddRSAKey(kid string) {
	idp.t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		idp.t.Fatalf("generate RSA key: %v", err)
	}
	idp.mu.Lock()
	idp.keys = append(idp.keys, &idpKey{kid: kid, alg: "RS256", rsaKey: key})
	idp.mu.Unlock()
}

// AddECKey generates and publishes a P-256 signing key under kid.
func (idp *IDP) AddECKey(kid string) {
	idp.t.Helper()
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		idp.t.Fatalf("generate EC key: %v", err)
	}
	idp.mu.Lock()
	idp.keys = append(idp.keys, &idpKey{kid: kid, alg: "ES256", ecKey: key})
	idp.mu.Unlock()
}

// RemoveKey unpublishes a key. Already-minted tokens keep verifying only if
// a cache still holds the key.
func (idp *IDP) RemoveKey(kid string) {
	idp.mu.Lock()
	defer idp.mu.Unlock()
	keys := idp.keys[:0]
	for _, k := range idp.keys {
		if k.kid != kid {
			keys = append(keys, k)
		}
	}
	idp.keys = keys
}

// FailJWKS makes the next n JWKS fetches return HTTP 500.
func (idp *IDP) FailJWKS(n int) {
	idp.mu.Lock()
	idp.failJWKS = n
	idp.mu.Unlock()
}

// DelayJWKS makes every JWKS response wait d before answering. Used to hold
// a fetch in flight so concurrent lookups demonstrably share it.
func (idp *IDP) DelayJWKS(d time.Duration) {
	idp.mu.Lock()
	idp.jwksDelay = d
	idp.mu.Unlock()
}

// FailDiscovery makes the next n discovery fetches return HTTP 500.
func (idp *IDP) FailDiscovery(n int) {
	idp.mu.Lock()
	idp.failDiscovery = n
	idp.mu.Unlock()
}

// JWKSCalls reports how many times the JWKS endpoint was hit.
func (idp *IDP) JWKSCalls() int {
	idp.mu.Lock()
	defer idp.mu.Unlock()
	return idp.jwksCalls
}

// DiscoveryCalls reports how many times the discovery endpoint was hit.
func (idp *IDP) DiscoveryCalls() int {
	idp.mu.Lock()
	defer idp.mu.Unlock()
	return idp.discoveryCalls
}

// Mint signs a token with the key published under kid. The kid is set in the
// token header; the signing algorithm follows the key type.
func (idp *IDP) Mint(kid string, claims jwt.MapClaims) string {
	idp.t.Helper()
	return idp.mint(kid, "", claims)
}

// MintWithAlg signs with the key under kid but declares a different alg in
// the token header. The signature bytes are produced by the key's real
// primitive, which is exactly the shape an algorithm-confusion forgery takes.
func (idp *IDP) MintWithAlg(kid, declaredAlg string, claims jwt.MapClaims) string {
	idp.t.Helper()
	return idp.mint(kid, declaredAlg, claims)
}

// MintUnknownKey signs a token under a kid the provider never published.
func (idp *IDP) MintUnknownKey(kid string, claims jwt.MapClaims) string {
	idp.t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		idp.t.Fatalf("generate RSA key: %v", err)
	}
	token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	token.Header["kid"] = kid
	signed, err := token.SignedString(key)
	if err != nil {
		idp.t.Fatalf("sign token: %v", err)
	}
	return signed
}

func (idp *IDP) mint(kid, declaredAlg string, claims jwt.MapClaims) string {
	idp.mu.Lock()
	var key *idpKey
	for _, k := range idp.keys {
		if k.kid == kid {
			key = k
			break
		}
	}
	idp.mu.Unlock()
	if key == nil {
		idp.t.Fatalf("no key published under kid %q", kid)
	}

	var (
		token  *jwt.Token
		signer any
	)
	if key.rsaKey != nil {
		token = jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
		signer = key.rsaKey
	} else {
		token = jwt.NewWithClaims(jwt.SigningMethodES256, claims)
		signer = key.ecKey
	}
	token.Header["kid"] = kid
	if declaredAlg != "" {
		token.Header["alg"] = declaredAlg
	}

	signed, err := token.SignedString(signer)
	if err != nil {
		idp.t.Fatalf("sign token: %v", err)
	}
	return signed
}

// --- HTTP handlers ---

func (idp *IDP) handleDiscovery(w http.ResponseWriter, _ *http.Request) {
	idp.mu.Lock()
	idp.discoveryCalls++
	fail := idp.failDiscovery > 0
	if fail {
		idp.failDiscovery--
	}
	idp.mu.Unlock()

	if fail {
		http.Error(w, "temporarily broken", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"issuer":                                idp.srv.URL,
		"authorization_endpoint":                idp.srv.URL + "/authorize",
		"token_endpoint":                        idp.srv.URL + "/token",
		"userinfo_endpoint":                     idp.srv.URL + "/userinfo",
		"jwks_uri":                              idp.JWKSURI(),
		"scopes_supported":                      []string{"openid", "email", "profile"},
		"id_token_signing_alg_values_supported": []string{"RS256", "ES256"},
		"code_challenge_methods_supported":      []string{"S256"},
	})
}

func (idp *IDP) handleJWKS(w http.ResponseWriter, _ *http.Request) {
	idp.mu.Lock()
	idp.jwksCalls++
	fail := idp.failJWKS > 0
	if fail {
		idp.failJWKS--
	}
	keys := make([]map[string]any, 0, len(idp.keys))
	for _, k := range idp.keys {
		keys = append(keys, k.jwk())
	}
	delay := idp.jwksDelay
	idp.mu.Unlock()

	if delay > 0 {
		time.Sleep(delay)
	}
	if fail {
		http.Error(w, "temporarily broken", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{"keys": keys})
}

func (k *idpKey) jwk() map[string]any {
	if k.rsaKey != nil {
		pub := &k.rsaKey.PublicKey
		return map[string]any{
			"kty": "RSA",
			"kid": k.kid,
			"alg": k.alg,
			"use": "sig",
			"n":   base64.RawURLEncoding.EncodeToString(pub.N.Bytes()),
			"e":   base64.RawURLEncoding.EncodeToString(bigEndianInt(pub.E)),
		}
	}

	pub := &k.ecKey.PublicKey
	byteLen := (pub.Curve.Params().BitSize + 7) / 8
	return map[string]any{
		"kty": "EC",
		"kid": k.kid,
		"alg": k.alg,
		"use": "sig",
		"crv": "P-256",
		"x":   base64.RawURLEncoding.EncodeToString(pub.X.FillBytes(make([]byte, byteLen))),
		"y":   base64.RawURLEncoding.EncodeToString(pub.Y.FillBytes(make([]byte, byteLen))),
	}
}

func bigEndianInt(n int) []byte {
	out := []byte{}
	for n > 0 {
		out = append([]byte{byte(n & 0xff)}, out...)
		n >>= 8
	}
	if len(out) == 0 {
		out = []byte{0}
	}
	return out
}
