package controllers

import (
	"net/http"

	"chirp/app/auth"
	"chirp/app/models"
	"chirp/app/services"
)

// PostController serves the post.* procedures
type PostController struct {
	postService *services.PostService
}

// NewPostController creates a new PostController
func NewPostController(postService *services.PostService) *PostController {
	return &PostController{postService: postService}
}

// Create handles post.create. The caller must be signed in.
func (pc *PostController) Create(w http.ResponseWriter, r *http.Request) {
	authorID := auth.UserID(r.Context())
	if authorID == "" {
		sendError(w, r, services.ErrUnauthenticated)
		return
	}

	var input models.CreatePostInput
	if err := decodeBodyInput(w, r, &input); err != nil {
		sendError(w, r, err)
		return
	}
	if err := validateInput(input); err != nil {
		sendError(w, r, err)
		return
	}

	if err := pc.postService.Create(r.Context(), authorID, input.Content); err != nil {
		sendError(w, r, err)
		return
	}
	sendResult(w, nil)
}

// GetAll handles post.getAll
func (pc *PostController) GetAll(w http.ResponseWriter, r *http.Request) {
	posts, err := pc.postService.GetAll(r.Context())
	if err != nil {
		sendError(w, r, err)
		return
	}
	sendResult(w, posts)
}

// GetByAuthorID handles post.getByAuthorId
func (pc *PostController) GetByAuthorID(w http.ResponseWriter, r *http.Request) {
	var input models.GetByAuthorIDInput
	if err := decodeQueryInput(r, &input); err != nil {
		sendError(w, r, err)
		return
	}
	if err := validateInput(input); err != nil {
		sendError(w, r, err)
		return
	}

	posts, err := pc.postService.GetByAuthorID(r.Context(), input.AuthorID)
	if err != nil {
		sendError(w, r, err)
		return
	}
	sendResult(w, posts)
}

// GetByID handles post.getById
func (pc *PostController) GetByID(w http.ResponseWriter, r *http.Request) {
	var input models.GetByIDInput
	if err := decodeQueryInput(r, &input); err != nil {
		sendError(w, r, err)
		return
	}
	if err := validateInput(input); err != nil {
		sendError(w, r, err)
		return
	}

	post, err := pc.postService.GetByID(r.Context(), input.ID)
	if err != nil {
		sendError(w, r, err)
		return
	}
	sendResult(w, post)
}
