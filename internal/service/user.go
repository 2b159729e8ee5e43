package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/sakif/microblog/internal/apperror"
	"github.com/sakif/microblog/internal/auth"
	"github.com/sakif/microblog/internal/model"
	"github.com/sakif/microblog/internal/repository"
)

const (
	maxNameLength     = 50
	minPasswordLength = 6
)

var emailPattern = regexp.MustCompile(`(?i)^[a-z0-9._%+\-]+@[a-z0-9\-.]+\.[a-z]+$`)

type UserService struct {
	users     repository.UserRepository
	passwords *auth.PasswordService
	logger    *slog.Logger
}

func NewUserService(users repository.UserRepository, passwords *auth.PasswordService, logger *slog.Logger) *UserService {
	return &UserService{
		users:     users,
		passwords: passwords,
		logger:    logger,
	}
}

// Register creates a validated user. The email is lower-cased before the
// write, so equality checks downstream never need case handling; the store's
// unique constraint catches races between two registrations of the same
// address.
func (s *UserService) Register(ctx context.Context, name, email, password string) (*model.User, error) {
	name = strings.TrimSpace(name)
	email = strings.ToLower(strings.TrimSpace(email))

	if err := validateName(name); err != nil {
		return nil, err
	}
	if err := validateEmail(email); err != nil {
		return nil, err
	}
	if len(password) < minPasswordLength {
		return nil, apperror.ValidationFailed("password",
			fmt.Sprintf("password must be at least %d characters", minPasswordLength))
	}

	digest, err := s.passwords.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("service/user: hashing password: %w", err)
	}

	user := &model.User{
		Name:           name,
		Email:          email,
		PasswordDigest: digest,
	}

	if err := s.users.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("service/user: creating user: %w", err)
	}

	s.logger.Info("user registered", slog.String("userID", user.ID))

	return user, nil
}

// Authenticate checks an email/password pair. Unknown email and wrong
// password both come back as the same forbidden error, so callers cannot
// enumerate accounts.
func (s *UserService) Authenticate(ctx context.Context, email, password string) (*model.User, error) {
	user, err := s.users.GetByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil, apperror.Forbidden("invalid email or password")
		}
		return nil, fmt.Errorf("service/user: looking up user by email: %w", err)
	}

	if err := s.passwords.Verify(user.PasswordDigest, password); err != nil {
		if errors.Is(err, auth.ErrMismatch) {
			return nil, apperror.Forbidden("invalid email or password")
		}
		return nil, fmt.Errorf("service/user: verifying password: %w", err)
	}

	return user, nil
}

// UpdateProfile edits name and email. It cannot change the admin flag or any
// digest; those have dedicated paths.
func (s *UserService) UpdateProfile(ctx context.Context, userID, name, email string) (*model.User, error) {
	name = strings.TrimSpace(name)
	email = strings.ToLower(strings.TrimSpace(email))

	if err := validateName(name); err != nil {
		return nil, err
	}
	if err := validateEmail(email); err != nil {
		return nil, err
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("service/user: loading user %s: %w", userID, err)
	}

	user.Name = name
	user.Email = email

	if err := s.users.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("service/user: updating user %s: %w", userID, err)
	}

	return user, nil
}

// PromoteToAdmin grants the admin flag. This is the only way the flag is
// ever set; the generic profile update cannot reach it.
func (s *UserService) PromoteToAdmin(ctx context.Context, userID string) error {
	if err := s.users.SetAdmin(ctx, userID, true); err != nil {
		return fmt.Errorf("service/user: promoting user %s: %w", userID, err)
	}

	s.logger.Info("user promoted to admin", slog.String("userID", userID))

	return nil
}

func (s *UserService) RevokeAdmin(ctx context.Context, userID string) error {
	if err := s.users.SetAdmin(ctx, userID, false); err != nil {
		return fmt.Errorf("service/user: revoking admin from user %s: %w", userID, err)
	}

	s.logger.Info("admin revoked from user", slog.String("userID", userID))

	return nil
}

// Delete removes the user together with their posts and both directions of
// their follow edges; the repository runs the cascade in one transaction.
func (s *UserService) Delete(ctx context.Context, userID string) error {
	if err := s.users.Delete(ctx, userID); err != nil {
		return fmt.Errorf("service/user: deleting user %s: %w", userID, err)
	}

	s.logger.Info("user deleted", slog.String("userID", userID))

	return nil
}

func (s *UserService) GetByID(ctx context.Context, userID string) (*model.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("service/user: getting user %s: %w", userID, err)
	}
	return user, nil
}

func validateName(name string) error {
	if name == "" {
		return apperror.ValidationFailed("name", "name is required")
	}
	if len([]rune(name)) > maxNameLength {
		return apperror.ValidationFailed("name",
			fmt.Sprintf("name must be at most %d characters", maxNameLength))
	}
	return nil
}

func validateEmail(email string) error {
	if email == "" {
		return apperror.ValidationFailed("email", "email is required")
	}
	if !emailPattern.MatchString(email) {
		return apperror.ValidationFailed("email", "email format is invalid")
	}
	return nil
}
