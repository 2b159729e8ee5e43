package service

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"testing"

	"github.com/sakif/microblog/internal/apperror"
	"github.com/sakif/microblog/internal/model"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

type mockUserRepo struct {
	users  map[string]*model.User // keyed by id
	nextID int
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{users: make(map[string]*model.User)}
}

func (m *mockUserRepo) Create(_ context.Context, user *model.User) error {
	for _, u := range m.users {
		if strings.EqualFold(u.Email, user.Email) {
			return apperror.ValidationFailed("email", "email is already taken")
		}
	}
	m.nextID++
	user.ID = fmt.Sprintf("mock-%d", m.nextID)
	stored := *user
	m.users[user.ID] = &stored
	return nil
}

func (m *mockUserRepo) GetByID(_ context.Context, id string) (*model.User, error) {
	user, ok := m.users[id]
	if !ok {
		return nil, apperror.NotFound("user", id)
	}
	result := *user
	return &result, nil
}

func (m *mockUserRepo) GetByEmail(_ context.Context, email string) (*model.User, error) {
	for _, u := range m.users {
		if strings.EqualFold(u.Email, email) {
			result := *u
			return &result, nil
		}
	}
	return nil, apperror.NotFound("user", email)
}

func (m *mockUserRepo) GetByRememberDigest(_ context.Context, digest string) (*model.User, error) {
	if digest != "" {
		for _, u := range m.users {
			if u.RememberDigest == digest {
				result := *u
				return &result, nil
			}
		}
	}
	return nil, apperror.NotFound("user", "")
}

func (m *mockUserRepo) Update(_ context.Context, user *model.User) error {
	stored, ok := m.users[user.ID]
	if !ok {
		return apperror.NotFound("user", user.ID)
	}
	stored.Name = user.Name
	stored.Email = user.Email
	stored.PasswordDigest = user.PasswordDigest
	return nil
}

func (m *mockUserRepo) UpdateRememberDigest(_ context.Context, id, digest string) error {
	user, ok := m.users[id]
	if !ok {
		return apperror.NotFound("user", id)
	}
	user.RememberDigest = digest
	return nil
}

func (m *mockUserRepo) SetAdmin(_ context.Context, id string, isAdmin bool) error {
	user, ok := m.users[id]
	if !ok {
		return apperror.NotFound("user", id)
	}
	user.IsAdmin = isAdmin
	return nil
}

func (m *mockUserRepo) Delete(_ context.Context, id string) error {
	if _, ok := m.users[id]; !ok {
		return apperror.NotFound("user", id)
	}
	delete(m.users, id)
	return nil
}

func addMockUser(t *testing.T, m *mockUserRepo, name, email string) *model.User {
	t.Helper()
	user := &model.User{Name: name, Email: email, PasswordDigest: "digest"}
	if err := m.Create(context.Background(), user); err != nil {
		t.Fatalf("failed to add mock user: %v", err)
	}
	return user
}

type edge struct {
	follower, followed string
}

type mockFollowRepo struct {
	edges map[edge]bool
	users *mockUserRepo
}

func newMockFollowRepo(users *mockUserRepo) *mockFollowRepo {
	return &mockFollowRepo{edges: make(map[edge]bool), users: users}
}

func (m *mockFollowRepo) Follow(_ context.Context, followerID, followedID string) error {
	m.edges[edge{followerID, followedID}] = true
	return nil
}

func (m *mockFollowRepo) Unfollow(_ context.Context, followerID, followedID string) error {
	delete(m.edges, edge{followerID, followedID})
	return nil
}

func (m *mockFollowRepo) IsFollowing(_ context.Context, followerID, followedID string) (bool, error) {
	return m.edges[edge{followerID, followedID}], nil
}

func (m *mockFollowRepo) Following(_ context.Context, userID string) ([]model.User, error) {
	result := []model.User{}
	for e := range m.edges {
		if e.follower == userID {
			result = append(result, *m.users.users[e.followed])
		}
	}
	return result, nil
}

func (m *mockFollowRepo) Followers(_ context.Context, userID string) ([]model.User, error) {
	result := []model.User{}
	for e := range m.edges {
		if e.followed == userID {
			result = append(result, *m.users.users[e.follower])
		}
	}
	return result, nil
}

type mockPostRepo struct {
	posts  map[string]*model.Post
	nextID int
}

func newMockPostRepo() *mockPostRepo {
	return &mockPostRepo{posts: make(map[string]*model.Post)}
}

func (m *mockPostRepo) Create(_ context.Context, post *model.Post) error {
	m.nextID++
	post.ID = fmt.Sprintf("mock-post-%d", m.nextID)
	stored := *post
	m.posts[post.ID] = &stored
	return nil
}

func (m *mockPostRepo) GetByID(_ context.Context, id string) (*model.Post, error) {
	post, ok := m.posts[id]
	if !ok {
		return nil, apperror.NotFound("post", id)
	}
	result := *post
	return &result, nil
}

func (m *mockPostRepo) Delete(_ context.Context, id string) error {
	if _, ok := m.posts[id]; !ok {
		return apperror.NotFound("post", id)
	}
	delete(m.posts, id)
	return nil
}

func (m *mockPostRepo) ListByAuthor(_ context.Context, authorID string) ([]model.Post, error) {
	result := []model.Post{}
	for _, p := range m.posts {
		if p.AuthorID == authorID {
			result = append(result, *p)
		}
	}
	return result, nil
}

func (m *mockPostRepo) Feed(_ context.Context, userID string) ([]model.Post, error) {
	// Feed composition is exercised against the real store; the mock only
	// returns the user's own posts.
	return m.ListByAuthor(nil, userID)
}
