// Package repository defines the storage interfaces the services depend on.
// Implementations live in subpackages (sqlite). Lookups that miss return an
// error matching apperror.ErrNotFound.
package repository

import (
	"context"

	"github.com/sakif/microblog/internal/model"
)

type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	GetByID(ctx context.Context, id string) (*model.User, error)
	// GetByEmail matches case-insensitively.
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	GetByRememberDigest(ctx context.Context, digest string) (*model.User, error)
	// Update persists name and email. It never touches is_admin or
	// remember_digest; those have their own single-purpose mutations.
	Update(ctx context.Context, user *model.User) error
	// UpdateRememberDigest overwrites the stored digest in one statement,
	// so concurrent sign-ins are last-write-wins.
	UpdateRememberDigest(ctx context.Context, id, digest string) error
	SetAdmin(ctx context.Context, id string, isAdmin bool) error
	// Delete removes the user, their posts, and both directions of their
	// follow edges in a single transaction.
	Delete(ctx context.Context, id string) error
}

type PostRepository interface {
	Create(ctx context.Context, post *model.Post) error
	GetByID(ctx context.Context, id string) (*model.Post, error)
	Delete(ctx context.Context, id string) error
	ListByAuthor(ctx context.Context, authorID string) ([]model.Post, error)
	// Feed returns posts authored by userID or by anyone userID follows,
	// newest first (ties broken by id ascending). Always computed from the
	// current graph and post state; nothing is cached.
	Feed(ctx context.Context, userID string) ([]model.Post, error)
}

type FollowRepository interface {
	// Follow is idempotent: inserting an existing edge is a no-op.
	Follow(ctx context.Context, followerID, followedID string) error
	// Unfollow is idempotent: deleting a missing edge is a no-op.
	Unfollow(ctx context.Context, followerID, followedID string) error
	IsFollowing(ctx context.Context, followerID, followedID string) (bool, error)
	Following(ctx context.Context, userID string) ([]model.User, error)
	Followers(ctx context.Context, userID string) ([]model.User, error)
}
