package models

import "time"

// Post is a short text entry written by an external identity.
type Post struct {
	ID        string    `json:"id" validate:"required"`
	AuthorID  string    `json:"authorId" validate:"required"`
	Content   string    `json:"content" validate:"required,min=1,max=280"`
	CreatedAt time.Time `json:"createdAt" validate:"required"`
}

// User is a record from the identity directory. Username and FullName are
// optional upstream.
type User struct {
	ID       string  `json:"id" validate:"required"`
	Username *string `json:"username,omitempty"`
	FullName *string `json:"fullName,omitempty"`
	ImageURL string  `json:"imageUrl"`
}

// AuthorView is the author data joined onto a post at read time.
type AuthorView struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	FullName string `json:"fullName"`
	ImageURL string `json:"imageUrl"`
}

// EnrichedPost pairs a post with its resolved author.
type EnrichedPost struct {
	Post   *Post      `json:"post"`
	Author AuthorView `json:"author"`
}

// ProfileView is the public profile returned for a username lookup.
type ProfileView struct {
	ID       string  `json:"id"`
	Username string  `json:"username"`
	FullName *string `json:"fullName"`
	ImageURL string  `json:"imageUrl"`
}
