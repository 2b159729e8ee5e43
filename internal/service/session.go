// Package service holds the business rules, between the HTTP layer and the
// repositories. Services validate input, enforce domain policy, and log;
// they never touch HTTP types.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/sakif/microblog/internal/apperror"
	"github.com/sakif/microblog/internal/auth"
	"github.com/sakif/microblog/internal/model"
	"github.com/sakif/microblog/internal/repository"
)

// SessionService establishes and tears down long-lived sessions. The only
// server-side session state is the remember digest column on the user row.
type SessionService struct {
	users  repository.UserRepository
	logger *slog.Logger
}

func NewSessionService(users repository.UserRepository, logger *slog.Logger) *SessionService {
	return &SessionService{users: users, logger: logger}
}

// SignIn issues a fresh remember token for the user and persists its digest,
// overwriting any previous one. The raw token is returned for the caller to
// hand to the client; it is never stored server-side.
func (s *SessionService) SignIn(ctx context.Context, userID string) (string, error) {
	rawToken, err := auth.NewToken()
	if err != nil {
		return "", fmt.Errorf("service/session: signing in user %s: %w", userID, err)
	}

	if err := s.users.UpdateRememberDigest(ctx, userID, auth.Digest(rawToken)); err != nil {
		return "", fmt.Errorf("service/session: storing remember digest for user %s: %w", userID, err)
	}

	s.logger.Info("user signed in", slog.String("userID", userID))

	return rawToken, nil
}

// Resolve maps a client-held raw token to the user it belongs to. A missing
// or unknown token resolves to (nil, nil): absence is a value here, never an
// error. Store failures still propagate.
func (s *SessionService) Resolve(ctx context.Context, rawToken string) (*model.User, error) {
	if rawToken == "" {
		return nil, nil
	}

	user, err := s.users.GetByRememberDigest(ctx, auth.Digest(rawToken))
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("service/session: resolving session: %w", err)
	}

	return user, nil
}

// SignOut rotates the stored digest to that of a fresh random token the
// client never sees. Rotating (instead of clearing) invalidates any
// previously exfiltrated copy of the old token the moment the user signs
// out; the client-side cookie is discarded afterwards by the caller.
func (s *SessionService) SignOut(ctx context.Context, userID string) error {
	rotated, err := auth.NewToken()
	if err != nil {
		return fmt.Errorf("service/session: signing out user %s: %w", userID, err)
	}

	if err := s.users.UpdateRememberDigest(ctx, userID, auth.Digest(rotated)); err != nil {
		return fmt.Errorf("service/session: rotating remember digest for user %s: %w", userID, err)
	}

	s.logger.Info("user signed out", slog.String("userID", userID))

	return nil
}
