package models

// CreatePostInput is the body of post.create.
type CreatePostInput struct {
	Content string `json:"content" validate:"required,min=1,max=280"`
}

// GetByAuthorIDInput is the input of post.getByAuthorId.
type GetByAuthorIDInput struct {
	AuthorID string `json:"authorId" validate:"required"`
}

// GetByIDInput is the input of post.getById.
type GetByIDInput struct {
	ID string `json:"id" validate:"required"`
}

// GetByUsernameInput is the input of profile.getByUsername.
type GetByUsernameInput struct {
	Username string `json:"username" validate:"required"`
}
