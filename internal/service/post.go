package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/sakif/microblog/internal/apperror"
	"github.com/sakif/microblog/internal/model"
	"github.com/sakif/microblog/internal/repository"
)

const maxContentLength = 140

type PostService struct {
	posts  repository.PostRepository
	logger *slog.Logger
}

func NewPostService(posts repository.PostRepository, logger *slog.Logger) *PostService {
	return &PostService{posts: posts, logger: logger}
}

func (s *PostService) Create(ctx context.Context, authorID, content string) (*model.Post, error) {
	content = strings.TrimSpace(content)

	if content == "" {
		return nil, apperror.ValidationFailed("content", "content is required")
	}
	if utf8.RuneCountInString(content) > maxContentLength {
		return nil, apperror.ValidationFailed("content",
			fmt.Sprintf("content must be at most %d characters", maxContentLength))
	}

	post := &model.Post{
		AuthorID: authorID,
		Content:  content,
	}

	if err := s.posts.Create(ctx, post); err != nil {
		return nil, fmt.Errorf("service/post: creating post: %w", err)
	}

	s.logger.Info("post created",
		slog.String("postID", post.ID),
		slog.String("authorID", authorID),
	)

	return post, nil
}

// Delete removes a post on behalf of requesterID. Only the author owns the
// post, so anyone else is refused.
func (s *PostService) Delete(ctx context.Context, postID, requesterID string) error {
	post, err := s.posts.GetByID(ctx, postID)
	if err != nil {
		return fmt.Errorf("service/post: loading post %s: %w", postID, err)
	}

	if post.AuthorID != requesterID {
		return apperror.Forbidden("only the author can delete a post")
	}

	if err := s.posts.Delete(ctx, postID); err != nil {
		return fmt.Errorf("service/post: deleting post %s: %w", postID, err)
	}

	s.logger.Info("post deleted", slog.String("postID", postID))

	return nil
}

// Feed returns the user's feed: their own posts plus posts by everyone they
// currently follow, newest first. The result is computed live from the
// current graph and post state on every call.
func (s *PostService) Feed(ctx context.Context, userID string) ([]model.Post, error) {
	posts, err := s.posts.Feed(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("service/post: computing feed for user %s: %w", userID, err)
	}
	return posts, nil
}

func (s *PostService) ListByAuthor(ctx context.Context, authorID string) ([]model.Post, error) {
	posts, err := s.posts.ListByAuthor(ctx, authorID)
	if err != nil {
		return nil, fmt.Errorf("service/post: listing posts by author %s: %w", authorID, err)
	}
	return posts, nil
}
