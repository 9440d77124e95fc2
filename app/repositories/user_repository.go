package repositories

import (
	"context"
	"errors"
	"fmt"

	"chirp/app/models"

	"github.com/dgraph-io/badger/v4"
)

var ErrUsernameTaken = errors.New("username already taken")

// BadgerUserRepository keeps user profiles for the local identity directory
type BadgerUserRepository struct {
	db *badger.DB
}

// NewBadgerUserRepository creates a new BadgerUserRepository
func NewBadgerUserRepository(db *badger.DB) *BadgerUserRepository {
	return &BadgerUserRepository{db: db}
}

// Put creates or replaces a user and keeps the username index in step.
func (r *BadgerUserRepository) Put(ctx context.Context, user *models.User) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := user.Validate(); err != nil {
		return fmt.Errorf("invalid user: %w", err)
	}

	return r.db.Update(func(txn *badger.Txn) error {
		if user.Username != nil && *user.Username != "" {
			owner, err := lookupUsername(txn, *user.Username)
			if err != nil && err != ErrNotFound {
				return err
			}
			if err == nil && owner != user.ID {
				return ErrUsernameTaken
			}
		}

		// Drop the index entry of a previous username
		previous, err := getUser(txn, user.ID)
		if err != nil && err != ErrNotFound {
			return err
		}
		if previous != nil && previous.Username != nil && *previous.Username != "" &&
			(user.Username == nil || *user.Username != *previous.Username) {
			if err := txn.Delete(usernameIndexKey(*previous.Username)); err != nil {
				return err
			}
		}

		data, err := marshalEntity(user)
		if err != nil {
			return err
		}
		if err := txn.Set(userKey(user.ID), data); err != nil {
			return err
		}
		if user.Username != nil && *user.Username != "" {
			return txn.Set(usernameIndexKey(*user.Username), []byte(user.ID))
		}
		return nil
	})
}

// GetByID retrieves a user by ID
func (r *BadgerUserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var user *models.User
	err := r.db.View(func(txn *badger.Txn) error {
		var err error
		user, err = getUser(txn, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

// GetByUsername retrieves a user through the username index
func (r *BadgerUserRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var user *models.User
	err := r.db.View(func(txn *badger.Txn) error {
		id, err := lookupUsername(txn, username)
		if err != nil {
			return err
		}
		user, err = getUser(txn, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

// List returns up to limit users in key order
func (r *BadgerUserRepository) List(ctx context.Context, limit int) ([]*models.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	users := []*models.User{}
	err := r.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		it := txn.NewIterator(opts)
		defer it.Close()

		prefix := []byte(UserKeyPrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			if limit > 0 && len(users) >= limit {
				break
			}
			var user models.User
			err := it.Item().Value(func(val []byte) error {
				return unmarshalEntity(val, &user)
			})
			if err != nil {
				return fmt.Errorf("failed to unmarshal user: %w", err)
			}
			users = append(users, &user)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return users, nil
}

func getUser(txn *badger.Txn, id string) (*models.User, error) {
	item, err := txn.Get(userKey(id))
	if err == badger.ErrKeyNotFound {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	var user models.User
	err = item.Value(func(val []byte) error {
		return unmarshalEntity(val, &user)
	})
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func lookupUsername(txn *badger.Txn, username string) (string, error) {
	item, err := txn.Get(usernameIndexKey(username))
	if err == badger.ErrKeyNotFound {
		return "", ErrNotFound
	}
	if err != nil {
		return "", err
	}
	id, err := item.ValueCopy(nil)
	if err != nil {
		return "", err
	}
	return string(id), nil
}
