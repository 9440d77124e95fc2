package mock

import (
	"context"
	"sort"
	"sync"

	"chirp/app/models"
	"chirp/app/repositories"
)

type PostRepository struct {
	posts []*models.Post
	mutex sync.RWMutex

	// Err, when set, is returned by every call.
	Err error
}

func NewPostRepository() *PostRepository {
	return &PostRepository{}
}

func (m *PostRepository) Clear() {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.posts = nil
}

// Len reports how many posts have been written.
func (m *PostRepository) Len() int {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	return len(m.posts)
}

// PostRepository implementation
func (m *PostRepository) Create(ctx context.Context, post *models.Post) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if m.Err != nil {
		return m.Err
	}
	post.BeforeCreate()
	stored := *post
	m.posts = append(m.posts, &stored)
	return nil
}

func (m *PostRepository) GetByID(ctx context.Context, id string) (*models.Post, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	if m.Err != nil {
		return nil, m.Err
	}
	for _, post := range m.posts {
		if post.ID == id {
			p := *post
			return &p, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (m *PostRepository) ListRecent(ctx context.Context, limit int) ([]*models.Post, error) {
	return m.list(func(*models.Post) bool { return true }, limit)
}

func (m *PostRepository) ListByAuthor(ctx context.Context, authorID string, limit int) ([]*models.Post, error) {
	return m.list(func(p *models.Post) bool { return p.AuthorID == authorID }, limit)
}

// list walks the posts newest insert first, then stable-sorts by creation
// time so equal timestamps keep that order.
func (m *PostRepository) list(match func(*models.Post) bool, limit int) ([]*models.Post, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	if m.Err != nil {
		return nil, m.Err
	}
	posts := []*models.Post{}
	for i := len(m.posts) - 1; i >= 0; i-- {
		if match(m.posts[i]) {
			p := *m.posts[i]
			posts = append(posts, &p)
		}
	}
	sort.SliceStable(posts, func(i, j int) bool {
		return posts[i].CreatedAt.After(posts[j].CreatedAt)
	})
	if limit >= 0 && len(posts) > limit {
		posts = posts[:limit]
	}
	return posts, nil
}
