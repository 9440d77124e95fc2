package repositories

import (
	"context"

	"chirp/app/models"
)

// PostRepository defines the interface for post data access. List methods
// return posts newest first, ties broken by insertion order.
type PostRepository interface {
	Create(ctx context.Context, post *models.Post) error
	GetByID(ctx context.Context, id string) (*models.Post, error)
	ListRecent(ctx context.Context, limit int) ([]*models.Post, error)
	ListByAuthor(ctx context.Context, authorID string, limit int) ([]*models.Post, error)
}

// UserRepository defines the interface for the local user profile table
type UserRepository interface {
	Put(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	List(ctx context.Context, limit int) ([]*models.User, error)
}
