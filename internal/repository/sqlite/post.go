package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/xid"
	"github.com/sakif/microblog/internal/apperror"
	"github.com/sakif/microblog/internal/model"
	"github.com/sakif/microblog/internal/repository"
)

// PostDB implements repository.PostRepository on SQLite.
type PostDB struct {
	conn *sql.DB
}

var _ repository.PostRepository = (*PostDB)(nil)

func (p *PostDB) Create(ctx context.Context, post *model.Post) error {
	// xid is time-ordered, so id ascending doubles as insertion order.
	post.ID = xid.New().String()
	post.CreatedAt = time.Now()

	_, err := p.conn.ExecContext(ctx,
		`INSERT INTO posts (id, author_id, content, created_at)
		 VALUES (?, ?, ?, ?)`,
		post.ID,
		post.AuthorID,
		post.Content,
		post.CreatedAt,
	)
	if err != nil {
		return apperror.StoreFailed("creating post", err)
	}

	return nil
}

func (p *PostDB) GetByID(ctx context.Context, id string) (*model.Post, error) {
	var post model.Post

	err := p.conn.QueryRowContext(ctx,
		`SELECT id, author_id, content, created_at FROM posts WHERE id = ?`,
		id,
	).Scan(&post.ID, &post.AuthorID, &post.Content, &post.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("post", id)
		}
		return nil, apperror.StoreFailed(fmt.Sprintf("getting post %s", id), err)
	}

	return &post, nil
}

func (p *PostDB) Delete(ctx context.Context, id string) error {
	result, err := p.conn.ExecContext(ctx, `DELETE FROM posts WHERE id = ?`, id)
	if err != nil {
		return apperror.StoreFailed(fmt.Sprintf("deleting post %s", id), err)
	}

	return checkRowAffected(result, "post", id)
}

func (p *PostDB) ListByAuthor(ctx context.Context, authorID string) ([]model.Post, error) {
	rows, err := p.conn.QueryContext(ctx,
		`SELECT id, author_id, content, created_at
		 FROM posts
		 WHERE author_id = ?
		 ORDER BY created_at DESC, id ASC`,
		authorID,
	)
	if err != nil {
		return nil, apperror.StoreFailed(fmt.Sprintf("listing posts by author %s", authorID), err)
	}
	defer rows.Close()

	return scanPosts(rows)
}

// Feed selects the union of the user's own posts and posts by everyone the
// user currently follows. The follow set is re-read on every call, so
// following or unfollowing takes effect on the next feed without any
// invalidation step.
func (p *PostDB) Feed(ctx context.Context, userID string) ([]model.Post, error) {
	rows, err := p.conn.QueryContext(ctx,
		`SELECT id, author_id, content, created_at
		 FROM posts
		 WHERE author_id = ?
		    OR author_id IN (SELECT followed_id FROM follows WHERE follower_id = ?)
		 ORDER BY created_at DESC, id ASC`,
		userID,
		userID,
	)
	if err != nil {
		return nil, apperror.StoreFailed(fmt.Sprintf("querying feed for user %s", userID), err)
	}
	defer rows.Close()

	return scanPosts(rows)
}

func scanPosts(rows *sql.Rows) ([]model.Post, error) {
	posts := []model.Post{}

	for rows.Next() {
		var post model.Post
		if err := rows.Scan(&post.ID, &post.AuthorID, &post.Content, &post.CreatedAt); err != nil {
			return nil, apperror.StoreFailed("scanning post row", err)
		}
		posts = append(posts, post)
	}

	if err := rows.Err(); err != nil {
		return nil, apperror.StoreFailed("iterating posts", err)
	}

	return posts, nil
}
