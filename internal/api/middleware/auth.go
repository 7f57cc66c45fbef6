package middleware

import (
	"errors"
	"fmt"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/listshare/todo-share/internal/core/domain"
	"github.com/listshare/todo-share/internal/core/ports"
)

const (
	// SessionCookie carries the session token for browser clients.
	SessionCookie = "session"
	// ClaimsKey is the echo.Context key holding *ports.SessionClaims.
	ClaimsKey = "session_claims"
)

var errNoToken = errors.New("no session token")

// Authenticator resolves the session token from the Authorization header or
// the session cookie and rejects revoked tokens.
type Authenticator struct {
	parser  ports.TokenParser
	revoker ports.TokenRevoker
	log     zerolog.Logger
}

func NewAuthenticator(parser ports.TokenParser, revoker ports.TokenRevoker, log zerolog.Logger) *Authenticator {
	return &Authenticator{parser: parser, revoker: revoker, log: log}
}

// Required rejects requests without a valid session with ErrUnauthorized.
func (a *Authenticator) Required() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			claims, err := a.authenticate(c)
			if err != nil {
				if errors.Is(err, domain.ErrUnauthorized) {
					return err
				}
				return fmt.Errorf("authenticate: %w", err)
			}
			c.Set(ClaimsKey, claims)
			return next(c)
		}
	}
}

// Optional attaches the session when one is valid and otherwise lets the
// request through anonymously.
func (a *Authenticator) Optional() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			claims, err := a.authenticate(c)
			switch {
			case err == nil:
				c.Set(ClaimsKey, claims)
			case errors.Is(err, domain.ErrUnauthorized):
			default:
				a.log.Warn().Err(err).Msg("optional auth failed, continuing anonymously")
			}
			return next(c)
		}
	}
}

func (a *Authenticator) authenticate(c echo.Context) (*ports.SessionClaims, error) {
	raw, err := extractToken(c)
	if err != nil {
		return nil, err
	}

	claims, err := a.parser.Parse(raw)
	if err != nil {
		return nil, err
	}

	revoked, err := a.revoker.IsRevoked(c.Request().Context(), claims.TokenID)
	if err != nil {
		return nil, err
	}
	if revoked {
		return nil, fmt.Errorf("%w: session revoked", domain.ErrUnauthorized)
	}
	return claims, nil
}

// extractToken prefers the Authorization header over the cookie.
func extractToken(c echo.Context) (string, error) {
	if header := c.Request().Header.Get(echo.HeaderAuthorization); header != "" {
		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") || parts[1] == "" {
			return "", fmt.Errorf("%w: invalid authorization header", domain.ErrUnauthorized)
		}
		return parts[1], nil
	}

	if cookie, err := c.Cookie(SessionCookie); err == nil && cookie.Value != "" {
		return cookie.Value, nil
	}
	return "", fmt.Errorf("%w: %v", domain.ErrUnauthorized, errNoToken)
}
