package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/listshare/todo-share/internal/api/middleware"
	"github.com/listshare/todo-share/internal/core/domain"
	"github.com/listshare/todo-share/internal/core/ports"
)

// ctxClaims returns the session placed on the context by the auth middleware.
// A missing session means the route was wired without it, so it is treated
// as unauthenticated rather than trusted.
func ctxClaims(c echo.Context) (*ports.SessionClaims, error) {
	claims, ok := c.Get(middleware.ClaimsKey).(*ports.SessionClaims)
	if !ok || claims == nil || claims.UserID == "" {
		return nil, domain.ErrUnauthorized
	}
	return claims, nil
}

func ctxPrincipal(c echo.Context) (domain.Principal, error) {
	claims, err := ctxClaims(c)
	if err != nil {
		return domain.Principal{}, err
	}
	return claims.Principal(), nil
}

// optionalPrincipal is nil for anonymous requests.
func optionalPrincipal(c echo.Context) *domain.Principal {
	claims, err := ctxClaims(c)
	if err != nil {
		return nil
	}
	p := claims.Principal()
	return &p
}
