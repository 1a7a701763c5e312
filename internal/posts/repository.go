package posts

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/socialgraph/socialgraph/internal/shared"
)

// Repository defines persistence operations for posts. Owner-scoped methods
// return shared.ErrNotFound when no post with the id belongs to authorEmail.
type Repository interface {
	Create(ctx context.Context, post Post) (*Post, error)
	List(ctx context.Context, page shared.Page) ([]Post, error)
	UpdateOwned(ctx context.Context, id int64, authorEmail, content string) error
	DeleteOwned(ctx context.Context, id int64, authorEmail string) error
}

// PGRepository implements Repository using PostgreSQL.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

// Create inserts a post.
func (r *PGRepository) Create(ctx context.Context, post Post) (*Post, error) {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO posts (author_email, content) VALUES ($1, $2) RETURNING id, created_at`,
		post.AuthorEmail, post.Content,
	).Scan(&post.ID, &post.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("posts: create: %w", err)
	}
	return &post, nil
}

// List returns posts ordered by id ascending.
func (r *PGRepository) List(ctx context.Context, page shared.Page) ([]Post, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, author_email, content, created_at FROM posts ORDER BY id OFFSET $1 LIMIT $2`,
		page.Offset, page.Limit)
	if err != nil {
		return nil, fmt.Errorf("posts: list: %w", err)
	}
	defer rows.Close()
	out := make([]Post, 0, min(page.Limit, 64))
	for rows.Next() {
		var p Post
		if err := rows.Scan(&p.ID, &p.AuthorEmail, &p.Content, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("posts: list scan: %w", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("posts: list: %w", err)
	}
	return out, nil
}

// UpdateOwned replaces the content of a post owned by authorEmail.
func (r *PGRepository) UpdateOwned(ctx context.Context, id int64, authorEmail, content string) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE posts SET content = $3 WHERE id = $1 AND author_email = $2`, id, authorEmail, content)
	if err != nil {
		return fmt.Errorf("posts: update: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// DeleteOwned removes a post owned by authorEmail.
func (r *PGRepository) DeleteOwned(ctx context.Context, id int64, authorEmail string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM posts WHERE id = $1 AND author_email = $2`, id, authorEmail)
	if err != nil {
		return fmt.Errorf("posts: delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

var _ Repository = (*PGRepository)(nil)
