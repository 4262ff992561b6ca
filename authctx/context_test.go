package authctx

import (
	"context"
	"testing"
)

type testClaims struct {
	sub string
}

func (c *testClaims) Subject() string { return c.sub }

func TestSetGet(t *testing.T) {
	ctx := Set(context.Background(), &testClaims{sub: "user-1"})

	claims, ok := Get[*testClaims](ctx)
	if !ok {
		t.Fatal("expected claims in context")
	}
	if claims.sub != "user-1" {
		t.Errorf("sub = %q", claims.sub)
	}
}

func TestGet_MissingOrWrongType(t *testing.T) {
	if _, ok := Get[*testClaims](context.Background()); ok {
		t.Error("empty context should not yield claims")
	}

	ctx := Set(context.Background(), "not claims")
	if _, ok := Get[*testClaims](ctx); ok {
		t.Error("wrong type should not yield claims")
	}
}

func TestMustGet_Panics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic")
		}
	}()
	MustGet[*testClaims](context.Background())
}

func TestGetOrError(t *testing.T) {
	if _, err := GetOrError[*testClaims](context.Background()); err != ErrNoClaims {
		t.Errorf("expected ErrNoClaims, got %v", err)
	}
}

func TestSubject(t *testing.T) {
	if got := Subject(context.Background()); got != "" {
		t.Errorf("empty context subject = %q", got)
	}

	ctx := Set(context.Background(), &testClaims{sub: "user-1"})
	if got := Subject(ctx); got != "user-1" {
		t.Errorf("subject = %q", got)
	}
}
