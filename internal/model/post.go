package model

import "time"

// Post is user-authored content, owned exclusively by its author.
// CreatedAt is assigned at creation and never changes.
type Post struct {
	ID        string    `json:"id"        db:"id"`
	AuthorID  string    `json:"authorId"  db:"author_id"`
	Content   string    `json:"content"   db:"content"` // non-empty, at most 140 characters
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}
