package services

import "errors"

var (
	// ErrValidationFailed marks client input that violates the input rules.
	// Nothing has been written when it is returned.
	ErrValidationFailed = errors.New("validation failed")
	// ErrUnauthenticated means no caller identity was supplied.
	ErrUnauthenticated = errors.New("unauthenticated")
	// ErrRateLimited means the author's post quota is used up.
	ErrRateLimited = errors.New("rate limited")
	// ErrNotFound means the requested post or profile does not exist.
	ErrNotFound = errors.New("not found")
	// ErrAuthorResolutionFailed means a stored post references an author
	// the identity directory does not know.
	ErrAuthorResolutionFailed = errors.New("author for post not found")
)
