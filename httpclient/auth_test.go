package httpclient

import (
	"net/http"
	"testing"
)

func TestBearerAuth(t *testing.T) {
	auth := BearerAuth("my-token")
	req, _ := http.NewRequest("GET", "http://example.com", nil)
	auth.apply(req)
	if got := req.Header.Get("Authorization"); got != "Bearer my-token" {
		t.Errorf("got %q, want %q", got, "Bearer my-token")
	}
}

func TestBasicAuth(t *testing.T) {
	auth := BasicAuth("user", "pass")
	req, _ := http.NewRequest("GET", "http://example.com", nil)
	auth.apply(req)
	u, p, ok := req.BasicAuth()
	if !ok || u != "user" || p != "pass" {
		t.Errorf("basic auth not set correctly: user=%q pass=%q ok=%v", u, p, ok)
	}
}

func TestNilAuth(t *testing.T) {
	var auth *AuthConfig
	req, _ := http.NewRequest("GET", "http://example.com", nil)
	auth.apply(req) // should not panic
}

func TestAuthNone(t *testing.T) {
	auth := &AuthConfig{Type: AuthNone}
	req, _ := http.NewRequest("GET", "http://example.com", nil)
	auth.apply(req) // should not modify request
	if req.Header.Get("Authorization") != "" {
		t.Error("AuthNone should not set Authorization header")
	}
}
