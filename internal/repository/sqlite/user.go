package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/rs/xid"
	"github.com/sakif/microblog/internal/apperror"
	"github.com/sakif/microblog/internal/model"
	"github.com/sakif/microblog/internal/repository"
)

// UserDB implements repository.UserRepository on SQLite.
type UserDB struct {
	conn *sql.DB
}

var _ repository.UserRepository = (*UserDB)(nil)

const userColumns = `id, name, email, password_digest, remember_digest, is_admin, created_at, updated_at`

func (u *UserDB) Create(ctx context.Context, user *model.User) error {
	user.ID = xid.New().String()

	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now

	_, err := u.conn.ExecContext(ctx,
		`INSERT INTO users (id, name, email, password_digest, remember_digest, is_admin, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		user.ID,
		user.Name,
		user.Email,
		user.PasswordDigest,
		user.RememberDigest,
		user.IsAdmin,
		user.CreatedAt,
		user.UpdatedAt,
	)
	if err != nil {
		// The email column is UNIQUE COLLATE NOCASE, so "Foo@Bar.com" and
		// "foo@bar.com" collide here even under concurrent registration.
		if isUniqueViolation(err, "users.email") {
			return apperror.ValidationFailed("email", "email is already taken")
		}
		return apperror.StoreFailed("creating user", err)
	}

	return nil
}

func (u *UserDB) GetByID(ctx context.Context, id string) (*model.User, error) {
	return u.getUser(ctx, `WHERE id = ?`, id)
}

func (u *UserDB) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	// The column collates NOCASE, so plain equality is case-insensitive.
	return u.getUser(ctx, `WHERE email = ?`, email)
}

func (u *UserDB) GetByRememberDigest(ctx context.Context, digest string) (*model.User, error) {
	if digest == "" {
		// Rows never store an empty digest as a valid session, and matching
		// one here would resolve anonymous requests to an arbitrary user.
		return nil, apperror.NotFound("user", "")
	}
	return u.getUser(ctx, `WHERE remember_digest = ?`, digest)
}

func (u *UserDB) getUser(ctx context.Context, where string, arg any) (*model.User, error) {
	var user model.User

	err := u.conn.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users `+where, arg,
	).Scan(
		&user.ID,
		&user.Name,
		&user.Email,
		&user.PasswordDigest,
		&user.RememberDigest,
		&user.IsAdmin,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("user", fmt.Sprint(arg))
		}
		return nil, apperror.StoreFailed("getting user", err)
	}

	return &user, nil
}

// Update persists profile fields only. The is_admin and remember_digest
// columns are deliberately absent from the statement.
func (u *UserDB) Update(ctx context.Context, user *model.User) error {
	user.UpdatedAt = time.Now()

	result, err := u.conn.ExecContext(ctx,
		`UPDATE users SET name = ?, email = ?, password_digest = ?, updated_at = ?
		 WHERE id = ?`,
		user.Name,
		user.Email,
		user.PasswordDigest,
		user.UpdatedAt,
		user.ID,
	)
	if err != nil {
		if isUniqueViolation(err, "users.email") {
			return apperror.ValidationFailed("email", "email is already taken")
		}
		return apperror.StoreFailed(fmt.Sprintf("updating user %s", user.ID), err)
	}

	return checkRowAffected(result, "user", user.ID)
}

// UpdateRememberDigest is a single UPDATE, so racing sign-ins or a sign-out
// racing a sign-in end in a coherent last-write-wins state.
func (u *UserDB) UpdateRememberDigest(ctx context.Context, id, digest string) error {
	result, err := u.conn.ExecContext(ctx,
		`UPDATE users SET remember_digest = ?, updated_at = ? WHERE id = ?`,
		digest, time.Now(), id,
	)
	if err != nil {
		return apperror.StoreFailed(fmt.Sprintf("updating remember digest for user %s", id), err)
	}

	return checkRowAffected(result, "user", id)
}

func (u *UserDB) SetAdmin(ctx context.Context, id string, isAdmin bool) error {
	result, err := u.conn.ExecContext(ctx,
		`UPDATE users SET is_admin = ?, updated_at = ? WHERE id = ?`,
		isAdmin, time.Now(), id,
	)
	if err != nil {
		return apperror.StoreFailed(fmt.Sprintf("setting admin flag for user %s", id), err)
	}

	return checkRowAffected(result, "user", id)
}

// Delete cascades as an explicit ordered batch inside one transaction:
// follow edges in both directions, then posts, then the user row.
func (u *UserDB) Delete(ctx context.Context, id string) error {
	tx, err := u.conn.BeginTx(ctx, nil)
	if err != nil {
		return apperror.StoreFailed("beginning delete transaction", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM follows WHERE follower_id = ? OR followed_id = ?`, id, id,
	); err != nil {
		return apperror.StoreFailed(fmt.Sprintf("deleting follow edges for user %s", id), err)
	}

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM posts WHERE author_id = ?`, id,
	); err != nil {
		return apperror.StoreFailed(fmt.Sprintf("deleting posts for user %s", id), err)
	}

	result, err := tx.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, id)
	if err != nil {
		return apperror.StoreFailed(fmt.Sprintf("deleting user %s", id), err)
	}
	if err := checkRowAffected(result, "user", id); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return apperror.StoreFailed(fmt.Sprintf("committing delete for user %s", id), err)
	}

	return nil
}

func checkRowAffected(result sql.Result, resource, id string) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return apperror.StoreFailed("checking rows affected", err)
	}
	if affected == 0 {
		return apperror.NotFound(resource, id)
	}
	return nil
}

func isUniqueViolation(err error, column string) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed: "+column)
}
