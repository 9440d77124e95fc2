package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"chirp/app/events"
	"chirp/app/identity"
	"chirp/app/models"
	"chirp/app/ratelimit"
	"chirp/app/repositories"
)

// FeedLimit is the most posts any read returns.
const FeedLimit = 100

// PostService handles business logic for posts
type PostService struct {
	posts     repositories.PostRepository
	directory identity.Directory
	limiter   ratelimit.Limiter
	publisher events.Publisher
}

// NewPostService creates a new PostService. A nil publisher disables
// post events.
func NewPostService(posts repositories.PostRepository, directory identity.Directory, limiter ratelimit.Limiter, publisher events.Publisher) *PostService {
	if publisher == nil {
		publisher = events.Nop{}
	}
	return &PostService{
		posts:     posts,
		directory: directory,
		limiter:   limiter,
		publisher: publisher,
	}
}

// Create validates the content, charges the author's quota and stores the
// post. Validation runs before any external call; a limiter failure fails
// the request.
func (s *PostService) Create(ctx context.Context, authorID, content string) error {
	if authorID == "" {
		return ErrUnauthenticated
	}
	if err := models.ValidateStruct(models.CreatePostInput{Content: content}); err != nil {
		return fmt.Errorf("%w: %v", ErrValidationFailed, err)
	}

	res, err := s.limiter.Limit(ctx, authorID)
	if err != nil {
		return fmt.Errorf("rate limiter: %w", err)
	}
	if !res.Success {
		return ErrRateLimited
	}

	post := &models.Post{AuthorID: authorID, Content: content}
	post.BeforeCreate()
	if err := post.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrValidationFailed, err)
	}
	if err := s.posts.Create(ctx, post); err != nil {
		return fmt.Errorf("failed to create post: %w", err)
	}

	if err := s.publisher.PublishPostCreated(ctx, post); err != nil {
		slog.WarnContext(ctx, "post event not published", "post_id", post.ID, "error", err)
	}
	return nil
}

// GetAll returns the newest posts with their authors
func (s *PostService) GetAll(ctx context.Context) ([]models.EnrichedPost, error) {
	posts, err := s.posts.ListRecent(ctx, FeedLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to list posts: %w", err)
	}
	return s.enrich(ctx, posts)
}

// GetByAuthorID returns the newest posts of one author
func (s *PostService) GetByAuthorID(ctx context.Context, authorID string) ([]models.EnrichedPost, error) {
	posts, err := s.posts.ListByAuthor(ctx, authorID, FeedLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to list posts for author %s: %w", authorID, err)
	}
	return s.enrich(ctx, posts)
}

// GetByID returns one post with its author
func (s *PostService) GetByID(ctx context.Context, id string) (*models.EnrichedPost, error) {
	post, err := s.posts.GetByID(ctx, id)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, fmt.Errorf("post %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get post %s: %w", id, err)
	}

	enriched, err := s.enrich(ctx, []*models.Post{post})
	if err != nil {
		return nil, err
	}
	return &enriched[0], nil
}

// enrich joins author profiles onto posts with one directory query. If any
// author is missing the whole batch fails.
func (s *PostService) enrich(ctx context.Context, posts []*models.Post) ([]models.EnrichedPost, error) {
	result := make([]models.EnrichedPost, 0, len(posts))
	if len(posts) == 0 {
		return result, nil
	}

	seen := make(map[string]bool)
	var authorIDs []string
	for _, p := range posts {
		if !seen[p.AuthorID] {
			seen[p.AuthorID] = true
			authorIDs = append(authorIDs, p.AuthorID)
		}
	}

	users, err := s.directory.GetUserList(ctx, identity.UserListParams{
		UserIDs: authorIDs,
		Limit:   identity.MaxLimit,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to resolve authors: %w", err)
	}

	for _, p := range posts {
		user := users.Find(p.AuthorID)
		if user == nil {
			return nil, fmt.Errorf("%w: post %s, author %s", ErrAuthorResolutionFailed, p.ID, p.AuthorID)
		}
		result = append(result, models.EnrichedPost{Post: p, Author: user.AuthorView()})
	}
	return result, nil
}
