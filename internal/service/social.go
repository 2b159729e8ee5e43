package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/sakif/microblog/internal/apperror"
	"github.com/sakif/microblog/internal/model"
	"github.com/sakif/microblog/internal/repository"
)

// SocialService maintains the directed follow graph.
type SocialService struct {
	follows repository.FollowRepository
	users   repository.UserRepository
	logger  *slog.Logger
}

func NewSocialService(follows repository.FollowRepository, users repository.UserRepository, logger *slog.Logger) *SocialService {
	return &SocialService{
		follows: follows,
		users:   users,
		logger:  logger,
	}
}

// Follow creates the edge follower -> followed. A self-follow is rejected
// outright (not silently ignored); following someone already followed is a
// no-op. Both users must exist.
func (s *SocialService) Follow(ctx context.Context, followerID, followedID string) error {
	if followerID == followedID {
		return apperror.InvalidOperation("users cannot follow themselves")
	}

	if _, err := s.users.GetByID(ctx, followedID); err != nil {
		return fmt.Errorf("service/social: checking followed user: %w", err)
	}

	if err := s.follows.Follow(ctx, followerID, followedID); err != nil {
		return fmt.Errorf("service/social: following: %w", err)
	}

	s.logger.Info("follow edge created",
		slog.String("followerID", followerID),
		slog.String("followedID", followedID),
	)

	return nil
}

// Unfollow removes the edge if present. Unfollowing a user who was never
// followed is a no-op.
func (s *SocialService) Unfollow(ctx context.Context, followerID, followedID string) error {
	if err := s.follows.Unfollow(ctx, followerID, followedID); err != nil {
		return fmt.Errorf("service/social: unfollowing: %w", err)
	}

	return nil
}

func (s *SocialService) IsFollowing(ctx context.Context, followerID, followedID string) (bool, error) {
	following, err := s.follows.IsFollowing(ctx, followerID, followedID)
	if err != nil {
		return false, fmt.Errorf("service/social: checking follow state: %w", err)
	}
	return following, nil
}

func (s *SocialService) Following(ctx context.Context, userID string) ([]model.User, error) {
	users, err := s.follows.Following(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("service/social: listing followed users: %w", err)
	}
	return users, nil
}

func (s *SocialService) Followers(ctx context.Context, userID string) ([]model.User, error) {
	users, err := s.follows.Followers(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("service/social: listing followers: %w", err)
	}
	return users, nil
}
