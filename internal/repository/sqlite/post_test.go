package sqlite

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sakif/microblog/internal/apperror"
)

func TestPostCreate(t *testing.T) {
	db := newTestDB(t)
	author := createTestUser(t, db.Users(), "Author", "author@example.com")

	post := createTestPost(t, db.Posts(), author.ID, "hello world")

	if post.ID == "" {
		t.Error("Create() did not set post.ID")
	}
	if post.CreatedAt.IsZero() {
		t.Error("Create() did not set post.CreatedAt")
	}
}

func TestPostDelete_NotFound(t *testing.T) {
	db := newTestDB(t)

	err := db.Posts().Delete(context.Background(), "missing")
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("Delete() error = %v, want ErrNotFound", err)
	}
}

func TestFeed_OrderingAndInclusion(t *testing.T) {
	db := newTestDB(t)
	u := db.Users()
	p := db.Posts()
	f := db.Follows()
	ctx := context.Background()

	self := createTestUser(t, u, "Self", "self@example.com")
	followed := createTestUser(t, u, "Followed", "followed@example.com")
	if err := f.Follow(ctx, self.ID, followed.ID); err != nil {
		t.Fatalf("Follow() error = %v", err)
	}

	p1 := createTestPost(t, p, self.ID, "p1 by self")
	p2 := createTestPost(t, p, self.ID, "p2 by self")
	p3 := createTestPost(t, p, followed.ID, "p3 by followed")
	day := time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC)
	setPostTime(t, db, p1.ID, day.Add(10*time.Hour))
	setPostTime(t, db, p2.ID, day.Add(9*time.Hour))
	setPostTime(t, db, p3.ID, day.Add(9*time.Hour+30*time.Minute))

	feed, err := p.Feed(ctx, self.ID)
	if err != nil {
		t.Fatalf("Feed() error = %v", err)
	}

	want := []string{p1.ID, p3.ID, p2.ID}
	if len(feed) != len(want) {
		t.Fatalf("Feed() returned %d posts, want %d", len(feed), len(want))
	}
	for i, id := range want {
		if feed[i].ID != id {
			t.Errorf("feed[%d].ID = %q, want %q", i, feed[i].ID, id)
		}
	}
}

func TestFeed_TieBrokenByIDAscending(t *testing.T) {
	db := newTestDB(t)
	u := db.Users()
	p := db.Posts()
	ctx := context.Background()

	self := createTestUser(t, u, "Self", "self@example.com")

	first := createTestPost(t, p, self.ID, "first")
	second := createTestPost(t, p, self.ID, "second")
	// Identical timestamps: insertion order (xid ascending) must decide.
	noon := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)
	setPostTime(t, db, first.ID, noon)
	setPostTime(t, db, second.ID, noon)

	feed, err := p.Feed(ctx, self.ID)
	if err != nil {
		t.Fatalf("Feed() error = %v", err)
	}
	if len(feed) != 2 {
		t.Fatalf("Feed() returned %d posts, want 2", len(feed))
	}
	if feed[0].ID != first.ID || feed[1].ID != second.ID {
		t.Errorf("tie should be broken by id ascending, got [%s, %s]", feed[0].ID, feed[1].ID)
	}
}

func TestFeed_ExcludesUnfollowedAuthors(t *testing.T) {
	db := newTestDB(t)
	u := db.Users()
	p := db.Posts()
	ctx := context.Background()

	self := createTestUser(t, u, "Self", "self@example.com")
	stranger := createTestUser(t, u, "Stranger", "stranger@example.com")

	createTestPost(t, p, stranger.ID, "should never appear")

	feed, err := p.Feed(ctx, self.ID)
	if err != nil {
		t.Fatalf("Feed() error = %v", err)
	}
	if len(feed) != 0 {
		t.Errorf("Feed() should exclude posts by unfollowed strangers, got %d posts", len(feed))
	}
}

func TestFeed_ReactsToGraphChanges(t *testing.T) {
	db := newTestDB(t)
	u := db.Users()
	p := db.Posts()
	f := db.Follows()
	ctx := context.Background()

	self := createTestUser(t, u, "Self", "self@example.com")
	author := createTestUser(t, u, "Author", "author@example.com")
	post := createTestPost(t, p, author.ID, "existing post")

	// Not followed yet: nothing visible.
	feed, err := p.Feed(ctx, self.ID)
	if err != nil {
		t.Fatalf("Feed() error = %v", err)
	}
	if len(feed) != 0 {
		t.Fatalf("Feed() before following should be empty, got %d posts", len(feed))
	}

	// Follow: the author's existing posts appear on the very next call.
	if err := f.Follow(ctx, self.ID, author.ID); err != nil {
		t.Fatalf("Follow() error = %v", err)
	}
	feed, err = p.Feed(ctx, self.ID)
	if err != nil {
		t.Fatalf("Feed() error = %v", err)
	}
	if len(feed) != 1 || feed[0].ID != post.ID {
		t.Fatalf("Feed() after following should contain the author's post")
	}

	// Unfollow: gone again, no invalidation step in between.
	if err := f.Unfollow(ctx, self.ID, author.ID); err != nil {
		t.Fatalf("Unfollow() error = %v", err)
	}
	feed, err = p.Feed(ctx, self.ID)
	if err != nil {
		t.Fatalf("Feed() error = %v", err)
	}
	if len(feed) != 0 {
		t.Errorf("Feed() after unfollowing should be empty, got %d posts", len(feed))
	}
}
