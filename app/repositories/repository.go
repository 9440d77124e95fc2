package repositories

import (
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/dgraph-io/badger/v4"
)

var (
	ErrNotFound = errors.New("record not found")
)

// Store owns the Badger database backing the post and user repositories.
type Store struct {
	db       *badger.DB
	posts    *BadgerPostRepository
	mutex    sync.Mutex
	dbPath   string
	isTestDB bool
	closed   bool
}

// OpenStore opens the Badger database at path. An empty path opens a
// throwaway database in a fresh temporary directory that is removed on
// Close.
func OpenStore(path string) (*Store, error) {
	isTest := false
	if path == "" {
		tempPath, err := os.MkdirTemp("", "chirp_test_db_")
		if err != nil {
			return nil, fmt.Errorf("error creating temp dir: %w", err)
		}
		path = tempPath
		isTest = true
	}
	opts := badger.DefaultOptions(path).
		WithLogger(nil).
		WithNumVersionsToKeep(1)
	if isTest {
		opts = opts.WithSyncWrites(false).WithNumGoroutines(1)
	}
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger at %s: %w", path, err)
	}
	return &Store{
		db:       db,
		posts:    NewBadgerPostRepository(db),
		dbPath:   path,
		isTestDB: isTest,
	}, nil
}

// OpenInMemoryStore opens a Badger database that lives only in memory.
func OpenInMemoryStore() (*Store, error) {
	db, err := badger.Open(badger.DefaultOptions("").WithInMemory(true).WithLogger(nil))
	if err != nil {
		return nil, err
	}
	return &Store{db: db, posts: NewBadgerPostRepository(db)}, nil
}

// DB exposes the underlying database for backup and restore.
func (s *Store) DB() *badger.DB {
	return s.db
}

// Path is the on-disk location, empty for in-memory stores.
func (s *Store) Path() string {
	return s.dbPath
}

// Posts returns the store's post repository. Every caller shares one
// instance so the insertion sequence is leased once.
func (s *Store) Posts() *BadgerPostRepository {
	return s.posts
}

func (s *Store) Users() *BadgerUserRepository {
	return NewBadgerUserRepository(s.db)
}

// Clear drops every key in the database.
func (s *Store) Clear() error {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.db.DropAll()
}

// Close closes the database. Close is idempotent.
func (s *Store) Close() error {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true

	if err := s.posts.Release(); err != nil {
		return fmt.Errorf("release post sequence: %w", err)
	}
	if err := s.db.Close(); err != nil {
		return err
	}

	// Clean up test database
	if s.isTestDB {
		if err := os.RemoveAll(s.dbPath); err != nil {
			return fmt.Errorf("failed to cleanup test database: %w", err)
		}
	}
	return nil
}
