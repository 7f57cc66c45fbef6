package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/listshare/todo-share/internal/core/domain"
	"github.com/listshare/todo-share/internal/core/ports"
	"github.com/listshare/todo-share/internal/pkg/metrics"
)

// AuthService implements registration, login and logout.
type AuthService struct {
	repo    ports.UserRepository
	creds   *Credentials
	tokens  *TokenIssuer
	revoker ports.TokenRevoker
	log     zerolog.Logger
}

func NewAuthService(
	repo ports.UserRepository,
	creds *Credentials,
	tokens *TokenIssuer,
	revoker ports.TokenRevoker,
	log zerolog.Logger,
) *AuthService {
	return &AuthService{repo: repo, creds: creds, tokens: tokens, revoker: revoker, log: log}
}

func (s *AuthService) Register(ctx context.Context, username, password, email string) (*domain.User, error) {
	if username == "" || password == "" || email == "" {
		return nil, fmt.Errorf("%w: username, password and email are required", domain.ErrValidation)
	}

	hash, err := s.creds.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &domain.User{
		ID:           uuid.NewString(),
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		CreatedAt:    time.Now().UTC(),
	}

	created, err := s.repo.Create(ctx, user)
	if err != nil {
		return nil, err
	}

	metrics.UsersRegisteredTotal.Inc()
	s.log.Info().Str("user_id", created.ID).Str("username", created.Username).Msg("user registered")
	return created, nil
}

func (s *AuthService) Login(ctx context.Context, username, password string) (*ports.Session, error) {
	if username == "" || password == "" {
		metrics.LoginsTotal.WithLabelValues("failure").Inc()
		return nil, domain.ErrInvalidCredentials
	}

	user, err := s.repo.FindByUsername(ctx, username)
	if err != nil && !errors.Is(err, domain.ErrUserNotFound) {
		return nil, err
	}

	// user is nil for unknown usernames; Verify still burns a bcrypt compare.
	if !s.creds.Verify(user, password) {
		metrics.LoginsTotal.WithLabelValues("failure").Inc()
		return nil, domain.ErrInvalidCredentials
	}

	principal := s.creds.IssuePrincipal(user)
	token, claims, err := s.tokens.Issue(principal)
	if err != nil {
		return nil, err
	}

	metrics.LoginsTotal.WithLabelValues("success").Inc()
	return &ports.Session{
		Token:     token,
		User:      user,
		Principal: principal,
		ExpiresAt: claims.ExpiresAt,
	}, nil
}

func (s *AuthService) Logout(ctx context.Context, claims *ports.SessionClaims) error {
	if claims == nil {
		return domain.ErrUnauthorized
	}
	ttl := time.Until(claims.ExpiresAt)
	if ttl <= 0 {
		return nil
	}
	if err := s.revoker.Revoke(ctx, claims.TokenID, ttl); err != nil {
		return fmt.Errorf("revoke token: %w", err)
	}
	s.log.Info().Str("user_id", claims.UserID).Msg("session revoked")
	return nil
}
