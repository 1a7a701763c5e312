package follows

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository defines persistence operations for follow edges.
type Repository interface {
	Insert(ctx context.Context, edge Edge) (*Edge, error)
	DeleteFirst(ctx context.Context, followerEmail, followedEmail string) (bool, error)
	ListFollowers(ctx context.Context, followedEmail string) ([]Edge, error)
}

// PGRepository implements Repository using PostgreSQL.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

// Insert stores a new edge without checking for an existing pair.
func (r *PGRepository) Insert(ctx context.Context, edge Edge) (*Edge, error) {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO follows (follower_email, followed_email) VALUES ($1, $2) RETURNING id, created_at`,
		edge.FollowerEmail, edge.FollowedEmail,
	).Scan(&edge.ID, &edge.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("follows: insert: %w", err)
	}
	return &edge, nil
}

// DeleteFirst removes the oldest matching edge and reports whether one existed.
func (r *PGRepository) DeleteFirst(ctx context.Context, followerEmail, followedEmail string) (bool, error) {
	tag, err := r.pool.Exec(ctx, `
		DELETE FROM follows
		WHERE id = (
			SELECT id FROM follows
			WHERE follower_email = $1 AND followed_email = $2
			ORDER BY id
			LIMIT 1
		)`, followerEmail, followedEmail)
	if err != nil {
		return false, fmt.Errorf("follows: delete: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// ListFollowers returns every edge pointing at followedEmail ordered by id.
func (r *PGRepository) ListFollowers(ctx context.Context, followedEmail string) ([]Edge, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, follower_email, followed_email, created_at FROM follows WHERE followed_email = $1 ORDER BY id`,
		followedEmail)
	if err != nil {
		return nil, fmt.Errorf("follows: list followers: %w", err)
	}
	defer rows.Close()
	var edges []Edge
	for rows.Next() {
		var e Edge
		if err := rows.Scan(&e.ID, &e.FollowerEmail, &e.FollowedEmail, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("follows: list followers scan: %w", err)
		}
		edges = append(edges, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("follows: list followers: %w", err)
	}
	return edges, nil
}

var _ Repository = (*PGRepository)(nil)
