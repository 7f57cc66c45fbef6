package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/listshare/todo-share/internal/api/middleware"
	"github.com/listshare/todo-share/internal/core/domain"
	"github.com/listshare/todo-share/internal/core/ports"
)

type stubAuthService struct {
	registerFn func(ctx context.Context, username, password, email string) (*domain.User, error)
	loginFn    func(ctx context.Context, username, password string) (*ports.Session, error)
	logoutFn   func(ctx context.Context, claims *ports.SessionClaims) error
}

func (s *stubAuthService) Register(ctx context.Context, username, password, email string) (*domain.User, error) {
	return s.registerFn(ctx, username, password, email)
}

func (s *stubAuthService) Login(ctx context.Context, username, password string) (*ports.Session, error) {
	return s.loginFn(ctx, username, password)
}

func (s *stubAuthService) Logout(ctx context.Context, claims *ports.SessionClaims) error {
	return s.logoutFn(ctx, claims)
}

func newEcho() *echo.Echo {
	e := echo.New()
	e.Validator = NewValidator()
	return e
}

func jsonRequest(method, target, body string) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	return req
}

func withClaims(c echo.Context, userID, username string) {
	c.Set(middleware.ClaimsKey, &ports.SessionClaims{
		TokenID:   "jti",
		UserID:    userID,
		Username:  username,
		ExpiresAt: time.Now().Add(time.Hour),
	})
}

func TestAuthHandler_Register_Success(t *testing.T) {
	e := newEcho()
	stub := &stubAuthService{
		registerFn: func(ctx context.Context, username, password, email string) (*domain.User, error) {
			if username != "alice" || password != "secret" || email != "a@example.com" {
				t.Fatalf("unexpected args: %s %s %s", username, password, email)
			}
			return &domain.User{ID: "u1", Username: username}, nil
		},
	}
	handler := NewAuthHandler(stub, false)

	req := jsonRequest(http.MethodPost, "/api/register", `{"username":"alice","password":"secret","email":"a@example.com"}`)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := handler.Register(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp["status"] != "success" {
		t.Fatalf("unexpected response: %+v", resp)
	}
}

func TestAuthHandler_Register_MissingFields(t *testing.T) {
	e := newEcho()
	stub := &stubAuthService{
		registerFn: func(ctx context.Context, username, password, email string) (*domain.User, error) {
			t.Fatalf("service must not be called")
			return nil, nil
		},
	}
	handler := NewAuthHandler(stub, false)

	req := jsonRequest(http.MethodPost, "/api/register", `{"username":"bob"}`)
	c := e.NewContext(req, httptest.NewRecorder())

	err := handler.Register(c)
	if err == nil || !strings.Contains(err.Error(), "password is required") {
		t.Fatalf("expected validation error naming password, got %v", err)
	}
}

func TestAuthHandler_Register_UserExists(t *testing.T) {
	e := newEcho()
	stub := &stubAuthService{
		registerFn: func(ctx context.Context, username, password, email string) (*domain.User, error) {
			return nil, domain.ErrUserExists
		},
	}
	handler := NewAuthHandler(stub, false)

	req := jsonRequest(http.MethodPost, "/api/register", `{"username":"bob","password":"x","email":"b@example.com"}`)
	c := e.NewContext(req, httptest.NewRecorder())

	if err := handler.Register(c); err != domain.ErrUserExists {
		t.Fatalf("expected ErrUserExists, got %v", err)
	}
}

func TestAuthHandler_Login_SetsCookie(t *testing.T) {
	e := newEcho()
	expires := time.Now().Add(time.Hour)
	stub := &stubAuthService{
		loginFn: func(ctx context.Context, username, password string) (*ports.Session, error) {
			if username != "carol" || password != "pw" {
				t.Fatalf("unexpected args: %s %s", username, password)
			}
			return &ports.Session{
				Token:     "tok",
				Principal: domain.Principal{UserID: "u3", Username: "carol"},
				ExpiresAt: expires,
			}, nil
		},
	}
	handler := NewAuthHandler(stub, true)

	req := jsonRequest(http.MethodPost, "/api/login", `{"username":"carol","password":"pw"}`)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := handler.Login(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	var resp loginResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp.Status != "success" || resp.Username != "carol" || resp.Token != "tok" {
		t.Fatalf("unexpected response: %+v", resp)
	}

	cookies := rec.Result().Cookies()
	if len(cookies) != 1 {
		t.Fatalf("expected one cookie, got %d", len(cookies))
	}
	ck := cookies[0]
	if ck.Name != middleware.SessionCookie || ck.Value != "tok" || !ck.HttpOnly || !ck.Secure {
		t.Fatalf("unexpected cookie: %+v", ck)
	}
}

func TestAuthHandler_Login_InvalidCredentials(t *testing.T) {
	e := newEcho()
	stub := &stubAuthService{
		loginFn: func(ctx context.Context, username, password string) (*ports.Session, error) {
			return nil, domain.ErrInvalidCredentials
		},
	}
	handler := NewAuthHandler(stub, false)

	req := jsonRequest(http.MethodPost, "/api/login", `{"username":"dave","password":"bad"}`)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := handler.Login(c); err != domain.ErrInvalidCredentials {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if len(rec.Result().Cookies()) != 0 {
		t.Fatalf("no cookie expected on failed login")
	}
}

func TestAuthHandler_Logout(t *testing.T) {
	e := newEcho()
	var revoked string
	stub := &stubAuthService{
		logoutFn: func(ctx context.Context, claims *ports.SessionClaims) error {
			revoked = claims.TokenID
			return nil
		},
	}
	handler := NewAuthHandler(stub, false)

	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodPost, "/api/logout", nil), rec)
	withClaims(c, "u1", "alice")

	if err := handler.Logout(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if revoked != "jti" {
		t.Fatalf("expected token jti revoked, got %q", revoked)
	}
	cookies := rec.Result().Cookies()
	if len(cookies) != 1 || cookies[0].MaxAge >= 0 {
		t.Fatalf("expected cookie to be cleared, got %+v", cookies)
	}
}

func TestAuthHandler_Logout_WithoutSession(t *testing.T) {
	e := newEcho()
	handler := NewAuthHandler(&stubAuthService{}, false)
	c := e.NewContext(httptest.NewRequest(http.MethodPost, "/api/logout", nil), httptest.NewRecorder())

	if err := handler.Logout(c); err != domain.ErrUnauthorized {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}
