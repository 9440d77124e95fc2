package repositories

import (
	"context"
	"errors"
	"fmt"

	"chirp/app/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const postsSchema = `
CREATE TABLE IF NOT EXISTS posts (
	id         TEXT PRIMARY KEY,
	author_id  TEXT NOT NULL,
	content    VARCHAR(280) NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	seq        BIGSERIAL NOT NULL
);
CREATE INDEX IF NOT EXISTS posts_created_at_idx ON posts (created_at DESC, seq DESC);
CREATE INDEX IF NOT EXISTS posts_author_id_idx ON posts (author_id, created_at DESC, seq DESC);
`

// PostgresPostRepository implements PostRepository on a pgx pool
type PostgresPostRepository struct {
	db *pgxpool.Pool
}

// NewPostgresPostRepository creates a new PostgresPostRepository
func NewPostgresPostRepository(db *pgxpool.Pool) *PostgresPostRepository {
	return &PostgresPostRepository{db: db}
}

// Migrate creates the posts table and its indexes if they are missing.
func (r *PostgresPostRepository) Migrate(ctx context.Context) error {
	if _, err := r.db.Exec(ctx, postsSchema); err != nil {
		return fmt.Errorf("migrate posts: %w", err)
	}
	return nil
}

func (r *PostgresPostRepository) Create(ctx context.Context, post *models.Post) error {
	post.BeforeCreate()

	query := `
		INSERT INTO posts (id, author_id, content, created_at)
		VALUES ($1, $2, $3, $4)
	`
	_, err := r.db.Exec(ctx, query, post.ID, post.AuthorID, post.Content, post.CreatedAt)
	return err
}

func (r *PostgresPostRepository) GetByID(ctx context.Context, id string) (*models.Post, error) {
	query := `SELECT id, author_id, content, created_at FROM posts WHERE id = $1`

	var p models.Post
	err := r.db.QueryRow(ctx, query, id).Scan(&p.ID, &p.AuthorID, &p.Content, &p.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	p.CreatedAt = p.CreatedAt.UTC()
	return &p, nil
}

func (r *PostgresPostRepository) ListRecent(ctx context.Context, limit int) ([]*models.Post, error) {
	query := `
		SELECT id, author_id, content, created_at
		FROM posts
		ORDER BY created_at DESC, seq DESC
		LIMIT $1
	`
	rows, err := r.db.Query(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectPosts(rows)
}

func (r *PostgresPostRepository) ListByAuthor(ctx context.Context, authorID string, limit int) ([]*models.Post, error) {
	query := `
		SELECT id, author_id, content, created_at
		FROM posts
		WHERE author_id = $1
		ORDER BY created_at DESC, seq DESC
		LIMIT $2
	`
	rows, err := r.db.Query(ctx, query, authorID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectPosts(rows)
}

func collectPosts(rows pgx.Rows) ([]*models.Post, error) {
	posts := []*models.Post{}
	for rows.Next() {
		var p models.Post
		if err := rows.Scan(&p.ID, &p.AuthorID, &p.Content, &p.CreatedAt); err != nil {
			return nil, err
		}
		p.CreatedAt = p.CreatedAt.UTC()
		posts = append(posts, &p)
	}
	return posts, rows.Err()
}
