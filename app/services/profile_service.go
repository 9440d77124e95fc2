package services

import (
	"context"
	"fmt"

	"chirp/app/identity"
	"chirp/app/models"
)

// ProfileService resolves public profiles from the identity directory
type ProfileService struct {
	directory identity.Directory
}

func NewProfileService(directory identity.Directory) *ProfileService {
	return &ProfileService{directory: directory}
}

// GetByUsername returns the profile whose username matches exactly. A
// directory record without a username is treated as absent.
func (s *ProfileService) GetByUsername(ctx context.Context, username string) (*models.ProfileView, error) {
	users, err := s.directory.GetUserList(ctx, identity.UserListParams{
		Usernames: []string{username},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to look up %q: %w", username, err)
	}

	for _, u := range users.Data {
		if u == nil || u.Username == nil || *u.Username != username {
			continue
		}
		return &models.ProfileView{
			ID:       u.ID,
			Username: *u.Username,
			FullName: u.FullName,
			ImageURL: u.ImageURL,
		}, nil
	}
	return nil, fmt.Errorf("profile for username %q: %w", username, ErrNotFound)
}
