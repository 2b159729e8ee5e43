package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/sakif/microblog/internal/apperror"
	"github.com/sakif/microblog/internal/model"
	"github.com/sakif/microblog/internal/repository"
)

// FollowDB implements repository.FollowRepository on SQLite.
type FollowDB struct {
	conn *sql.DB
}

var _ repository.FollowRepository = (*FollowDB)(nil)

const followUserColumns = `u.id, u.name, u.email, u.password_digest, u.remember_digest, u.is_admin, u.created_at, u.updated_at`

// Follow inserts the edge with OR IGNORE against the (follower_id,
// followed_id) primary key, so concurrent duplicate follow calls all succeed
// and leave exactly one edge.
func (f *FollowDB) Follow(ctx context.Context, followerID, followedID string) error {
	_, err := f.conn.ExecContext(ctx,
		`INSERT OR IGNORE INTO follows (follower_id, followed_id, created_at)
		 VALUES (?, ?, ?)`,
		followerID,
		followedID,
		time.Now(),
	)
	if err != nil {
		return apperror.StoreFailed(fmt.Sprintf("creating follow edge %s -> %s", followerID, followedID), err)
	}

	return nil
}

// Unfollow deletes the edge if it exists. A missing edge is not an error.
func (f *FollowDB) Unfollow(ctx context.Context, followerID, followedID string) error {
	_, err := f.conn.ExecContext(ctx,
		`DELETE FROM follows WHERE follower_id = ? AND followed_id = ?`,
		followerID,
		followedID,
	)
	if err != nil {
		return apperror.StoreFailed(fmt.Sprintf("deleting follow edge %s -> %s", followerID, followedID), err)
	}

	return nil
}

func (f *FollowDB) IsFollowing(ctx context.Context, followerID, followedID string) (bool, error) {
	var exists bool

	err := f.conn.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM follows WHERE follower_id = ? AND followed_id = ?)`,
		followerID,
		followedID,
	).Scan(&exists)
	if err != nil {
		return false, apperror.StoreFailed(fmt.Sprintf("checking follow edge %s -> %s", followerID, followedID), err)
	}

	return exists, nil
}

func (f *FollowDB) Following(ctx context.Context, userID string) ([]model.User, error) {
	return f.listUsers(ctx,
		`SELECT `+followUserColumns+`
		 FROM users u
		 JOIN follows f ON u.id = f.followed_id
		 WHERE f.follower_id = ?
		 ORDER BY f.created_at DESC`,
		userID,
	)
}

func (f *FollowDB) Followers(ctx context.Context, userID string) ([]model.User, error) {
	return f.listUsers(ctx,
		`SELECT `+followUserColumns+`
		 FROM users u
		 JOIN follows f ON u.id = f.follower_id
		 WHERE f.followed_id = ?
		 ORDER BY f.created_at DESC`,
		userID,
	)
}

func (f *FollowDB) listUsers(ctx context.Context, query, userID string) ([]model.User, error) {
	rows, err := f.conn.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, apperror.StoreFailed(fmt.Sprintf("listing follow users for %s", userID), err)
	}
	defer rows.Close()

	users := []model.User{}

	for rows.Next() {
		var u model.User
		if err := rows.Scan(
			&u.ID,
			&u.Name,
			&u.Email,
			&u.PasswordDigest,
			&u.RememberDigest,
			&u.IsAdmin,
			&u.CreatedAt,
			&u.UpdatedAt,
		); err != nil {
			return nil, apperror.StoreFailed("scanning follow user row", err)
		}
		users = append(users, u)
	}

	if err := rows.Err(); err != nil {
		return nil, apperror.StoreFailed("iterating follow users", err)
	}

	return users, nil
}
