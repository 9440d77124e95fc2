package models

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// MaxContentLength is the longest post body accepted, in characters.
const MaxContentLength = 280

// Validate checks if the post meets all validation requirements
func (p *Post) Validate() error {
	if err := validate.Struct(p); err != nil {
		return err
	}

	if p.CreatedAt.IsZero() {
		return errors.New("created_at cannot be zero")
	}

	return nil
}

// BeforeCreate assigns the id and creation time of a new post
func (p *Post) BeforeCreate() {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}
}
