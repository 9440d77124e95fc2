package identity

import (
	"context"
	"errors"

	"chirp/app/models"
	"chirp/app/repositories"
)

// LocalDirectory answers directory queries from the local user table.
type LocalDirectory struct {
	users repositories.UserRepository
}

func NewLocalDirectory(users repositories.UserRepository) *LocalDirectory {
	return &LocalDirectory{users: users}
}

// GetUserList returns the users matching any requested id or username,
// each at most once, in request order. Unknown ids and usernames are
// skipped. With no filters it lists the table.
func (d *LocalDirectory) GetUserList(ctx context.Context, params UserListParams) (*UserList, error) {
	limit := effectiveLimit(params.Limit)
	if len(params.UserIDs) == 0 && len(params.Usernames) == 0 {
		users, err := d.users.List(ctx, limit)
		if err != nil {
			return nil, err
		}
		return &UserList{Data: users}, nil
	}

	list := &UserList{Data: []*models.User{}}
	seen := make(map[string]bool)
	add := func(u *models.User) {
		if !seen[u.ID] && len(list.Data) < limit {
			seen[u.ID] = true
			list.Data = append(list.Data, u)
		}
	}

	for _, id := range params.UserIDs {
		u, err := d.users.GetByID(ctx, id)
		if errors.Is(err, repositories.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		add(u)
	}
	for _, name := range params.Usernames {
		u, err := d.users.GetByUsername(ctx, name)
		if errors.Is(err, repositories.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		add(u)
	}
	return list, nil
}
