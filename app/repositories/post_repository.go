package repositories

import (
	"bytes"
	"context"
	"fmt"
	"sync"

	"chirp/app/models"

	"github.com/dgraph-io/badger/v4"
)

// BadgerPostRepository implements PostRepository using BadgerDB
type BadgerPostRepository struct {
	db *badger.DB

	seqOnce sync.Once
	seq     *badger.Sequence
	seqErr  error
}

// NewBadgerPostRepository creates a new BadgerPostRepository
func NewBadgerPostRepository(db *badger.DB) *BadgerPostRepository {
	return &BadgerPostRepository{db: db}
}

// nextSeq hands out the insertion sequence. The sequence is leased outside
// the write transaction so concurrent creates never touch a shared key.
func (r *BadgerPostRepository) nextSeq() (uint64, error) {
	r.seqOnce.Do(func() {
		r.seq, r.seqErr = r.db.GetSequence([]byte(PostSeqKey), postSeqBandwidth)
	})
	if r.seqErr != nil {
		return 0, fmt.Errorf("post sequence: %w", r.seqErr)
	}
	return r.seq.Next()
}

// Release returns unused leased sequence numbers. Call it before closing
// the database.
func (r *BadgerPostRepository) Release() error {
	if r.seq == nil {
		return nil
	}
	return r.seq.Release()
}

// Create writes the post row and its time and author index entries in one
// transaction.
func (r *BadgerPostRepository) Create(ctx context.Context, post *models.Post) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	post.BeforeCreate()

	seq, err := r.nextSeq()
	if err != nil {
		return err
	}

	return r.db.Update(func(txn *badger.Txn) error {
		data, err := marshalEntity(post)
		if err != nil {
			return err
		}

		if err := txn.Set(postKey(post.ID), data); err != nil {
			return err
		}
		id := []byte(post.ID)
		if err := txn.Set(postTimeIndexKey(post.CreatedAt, seq), id); err != nil {
			return err
		}
		return txn.Set(postAuthorIndexKey(post.AuthorID, post.CreatedAt, seq), id)
	})
}

// GetByID retrieves a post by ID
func (r *BadgerPostRepository) GetByID(ctx context.Context, id string) (*models.Post, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var post *models.Post
	err := r.db.View(func(txn *badger.Txn) error {
		var err error
		post, err = getPost(txn, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return post, nil
}

// ListRecent returns up to limit posts across all authors, newest first
func (r *BadgerPostRepository) ListRecent(ctx context.Context, limit int) ([]*models.Post, error) {
	return r.listByIndex(ctx, []byte(PostTimeIndexPrefix), limit)
}

// ListByAuthor returns up to limit posts by one author, newest first
func (r *BadgerPostRepository) ListByAuthor(ctx context.Context, authorID string, limit int) ([]*models.Post, error) {
	return r.listByIndex(ctx, authorIndexPrefix(authorID), limit)
}

// listByIndex walks an index prefix backwards, so the largest
// (createdAt, seq) suffix comes first.
func (r *BadgerPostRepository) listByIndex(ctx context.Context, prefix []byte, limit int) ([]*models.Post, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	posts := []*models.Post{}
	if limit <= 0 {
		return posts, nil
	}

	err := r.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Reverse = true
		opts.Prefix = prefix
		it := txn.NewIterator(opts)
		defer it.Close()

		seek := append(append([]byte{}, prefix...), bytes.Repeat([]byte{0xFF}, indexSuffixLen+1)...)
		for it.Seek(seek); it.ValidForPrefix(prefix); it.Next() {
			if len(posts) >= limit {
				break
			}
			id, err := it.Item().ValueCopy(nil)
			if err != nil {
				return err
			}
			post, err := getPost(txn, string(id))
			if err != nil {
				return fmt.Errorf("index entry for post %s: %w", id, err)
			}
			posts = append(posts, post)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return posts, nil
}

func getPost(txn *badger.Txn, id string) (*models.Post, error) {
	item, err := txn.Get(postKey(id))
	if err == badger.ErrKeyNotFound {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	var post models.Post
	err = item.Value(func(val []byte) error {
		return unmarshalEntity(val, &post)
	})
	if err != nil {
		return nil, err
	}
	return &post, nil
}
