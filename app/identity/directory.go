// Package identity reads user profiles from the identity directory. The
// directory owns user records; this service only looks them up.
package identity

import (
	"context"

	"chirp/app/models"
)

// MaxLimit is the largest page the directory returns for one query.
const MaxLimit = 100

// UserListParams selects users by id, by username, or both. Empty slices
// mean no filter on that field.
type UserListParams struct {
	UserIDs   []string
	Usernames []string
	Limit     int
}

// UserList is one page of directory results.
type UserList struct {
	Data []*models.User `json:"data"`
}

// Directory looks up user records.
type Directory interface {
	GetUserList(ctx context.Context, params UserListParams) (*UserList, error)
}

// effectiveLimit clamps a requested limit to (0, MaxLimit].
func effectiveLimit(limit int) int {
	if limit <= 0 || limit > MaxLimit {
		return MaxLimit
	}
	return limit
}

// Find returns the user with the given id from the list, or nil.
func (l *UserList) Find(id string) *models.User {
	if l == nil {
		return nil
	}
	for _, u := range l.Data {
		if u != nil && u.ID == id {
			return u
		}
	}
	return nil
}
