package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/listshare/todo-share/internal/core/domain"
	"github.com/listshare/todo-share/internal/core/ports"
)

type stubParser struct{}

func (stubParser) Parse(token string) (*ports.SessionClaims, error) {
	if token != "good" && token != "revoked" {
		return nil, domain.ErrUnauthorized
	}
	return &ports.SessionClaims{
		TokenID:   token,
		UserID:    "u1",
		Username:  "alice",
		ExpiresAt: time.Now().Add(time.Hour),
	}, nil
}

type stubRevoker struct {
	err error
}

func (r stubRevoker) Revoke(context.Context, string, time.Duration) error { return nil }

func (r stubRevoker) IsRevoked(_ context.Context, id string) (bool, error) {
	return id == "revoked", r.err
}

func run(t *testing.T, mw echo.MiddlewareFunc, req *http.Request) (*ports.SessionClaims, bool, error) {
	t.Helper()
	e := echo.New()
	c := e.NewContext(req, httptest.NewRecorder())

	var (
		claims *ports.SessionClaims
		called bool
	)
	err := mw(func(c echo.Context) error {
		called = true
		claims, _ = c.Get(ClaimsKey).(*ports.SessionClaims)
		return c.NoContent(http.StatusOK)
	})(c)
	return claims, called, err
}

func newAuthn(revoker stubRevoker) *Authenticator {
	return NewAuthenticator(stubParser{}, revoker, zerolog.Nop())
}

func TestRequired_BearerToken(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer good")

	claims, called, err := run(t, newAuthn(stubRevoker{}).Required(), req)
	if err != nil || !called {
		t.Fatalf("expected next to be called, err=%v", err)
	}
	if claims == nil || claims.UserID != "u1" || claims.Username != "alice" {
		t.Fatalf("claims not set: %+v", claims)
	}
}

func TestRequired_SessionCookie(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookie, Value: "good"})

	claims, called, err := run(t, newAuthn(stubRevoker{}).Required(), req)
	if err != nil || !called || claims == nil {
		t.Fatalf("expected cookie session to authenticate, err=%v", err)
	}
}

func TestRequired_Rejects(t *testing.T) {
	cases := map[string]func(*http.Request){
		"missing":        func(*http.Request) {},
		"bad scheme":     func(r *http.Request) { r.Header.Set("Authorization", "Basic good") },
		"invalid token":  func(r *http.Request) { r.Header.Set("Authorization", "Bearer forged") },
		"revoked token":  func(r *http.Request) { r.Header.Set("Authorization", "Bearer revoked") },
		"revoked cookie": func(r *http.Request) { r.AddCookie(&http.Cookie{Name: SessionCookie, Value: "revoked"}) },
	}
	for name, setup := range cases {
		t.Run(name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			setup(req)

			_, called, err := run(t, newAuthn(stubRevoker{}).Required(), req)
			if called {
				t.Fatalf("next must not be called")
			}
			if !errors.Is(err, domain.ErrUnauthorized) {
				t.Fatalf("expected ErrUnauthorized, got %v", err)
			}
		})
	}
}

func TestRequired_RevocationStoreDown(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer good")

	_, called, err := run(t, newAuthn(stubRevoker{err: errors.New("redis down")}).Required(), req)
	if called {
		t.Fatalf("next must not be called")
	}
	if err == nil || errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected internal error, got %v", err)
	}
}

func TestOptional(t *testing.T) {
	authn := newAuthn(stubRevoker{})

	claims, called, err := run(t, authn.Optional(), httptest.NewRequest(http.MethodGet, "/", nil))
	if err != nil || !called || claims != nil {
		t.Fatalf("anonymous request should pass without claims: %v %v %+v", err, called, claims)
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer forged")
	claims, called, err = run(t, authn.Optional(), req)
	if err != nil || !called || claims != nil {
		t.Fatalf("invalid token should degrade to anonymous: %v %v %+v", err, called, claims)
	}

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer good")
	claims, _, _ = run(t, authn.Optional(), req)
	if claims == nil || claims.UserID != "u1" {
		t.Fatalf("valid token should attach claims, got %+v", claims)
	}
}
