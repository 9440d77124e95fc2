// Package events announces new posts to other systems.
package events

import (
	"context"
	"time"

	"chirp/app/models"
)

// SubjectPostCreated is the subject new-post events are published on.
const SubjectPostCreated = "post.created"

// PostCreatedEvent is the payload published for each new post.
type PostCreatedEvent struct {
	ID        string    `json:"id"`
	AuthorID  string    `json:"author_id"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

func NewPostCreatedEvent(post *models.Post) PostCreatedEvent {
	return PostCreatedEvent{
		ID:        post.ID,
		AuthorID:  post.AuthorID,
		Content:   post.Content,
		CreatedAt: post.CreatedAt,
	}
}

type Publisher interface {
	PublishPostCreated(ctx context.Context, post *models.Post) error
}

// Nop discards events.
type Nop struct{}

func (Nop) PublishPostCreated(context.Context, *models.Post) error { return nil }
