// Package memrepo provides in-memory repositories used by tests in place of
// the PostgreSQL implementations. They follow the same contracts, including
// the unique email index on users and unconstrained follow edges.
package memrepo

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/socialgraph/socialgraph/internal/follows"
	"github.com/socialgraph/socialgraph/internal/posts"
	"github.com/socialgraph/socialgraph/internal/shared"
	"github.com/socialgraph/socialgraph/internal/users"
)

// Users is an in-memory users.Repository.
type Users struct {
	mu     sync.Mutex
	nextID int64
	rows   map[int64]users.User

	// FindErr is returned by every lookup when set.
	FindErr error
}

// NewUsers returns an empty store.
func NewUsers() *Users {
	return &Users{nextID: 1, rows: make(map[int64]users.User)}
}

func (m *Users) Create(ctx context.Context, user users.User) (*users.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.rows {
		if u.Email == user.Email {
			return nil, shared.ErrConflict
		}
	}
	user.ID = m.nextID
	user.CreatedAt = time.Now()
	m.nextID++
	m.rows[user.ID] = user
	return &user, nil
}

func (m *Users) FindByEmail(ctx context.Context, email string) (*users.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FindErr != nil {
		return nil, m.FindErr
	}
	for _, u := range m.rows {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (m *Users) FindByID(ctx context.Context, id int64) (*users.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FindErr != nil {
		return nil, m.FindErr
	}
	u, ok := m.rows[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return &u, nil
}

func (m *Users) Delete(ctx context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.rows[id]; !ok {
		return shared.ErrNotFound
	}
	delete(m.rows, id)
	return nil
}

func (m *Users) List(ctx context.Context, page shared.Page) ([]users.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	all := make([]users.User, 0, len(m.rows))
	for _, u := range m.rows {
		all = append(all, u)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })
	return window(all, page), nil
}

// Posts is an in-memory posts.Repository.
type Posts struct {
	mu     sync.Mutex
	nextID int64
	rows   []posts.Post

	// ListCalls counts List invocations.
	ListCalls int
}

// NewPosts returns an empty store.
func NewPosts() *Posts {
	return &Posts{nextID: 1}
}

func (m *Posts) Create(ctx context.Context, post posts.Post) (*posts.Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	post.ID = m.nextID
	post.CreatedAt = time.Now()
	m.nextID++
	m.rows = append(m.rows, post)
	return &post, nil
}

func (m *Posts) List(ctx context.Context, page shared.Page) ([]posts.Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ListCalls++
	all := make([]posts.Post, len(m.rows))
	copy(all, m.rows)
	return window(all, page), nil
}

func (m *Posts) UpdateOwned(ctx context.Context, id int64, authorEmail, content string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.rows {
		if m.rows[i].ID == id && m.rows[i].AuthorEmail == authorEmail {
			m.rows[i].Content = content
			return nil
		}
	}
	return shared.ErrNotFound
}

func (m *Posts) DeleteOwned(ctx context.Context, id int64, authorEmail string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.rows {
		if m.rows[i].ID == id && m.rows[i].AuthorEmail == authorEmail {
			m.rows = append(m.rows[:i], m.rows[i+1:]...)
			return nil
		}
	}
	return shared.ErrNotFound
}

// Follows is an in-memory follows.Repository.
type Follows struct {
	mu     sync.Mutex
	nextID int64
	rows   []follows.Edge

	// ListCalls counts ListFollowers invocations.
	ListCalls int
}

// NewFollows returns an empty store.
func NewFollows() *Follows {
	return &Follows{nextID: 1}
}

func (m *Follows) Insert(ctx context.Context, edge follows.Edge) (*follows.Edge, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	edge.ID = m.nextID
	edge.CreatedAt = time.Now()
	m.nextID++
	m.rows = append(m.rows, edge)
	return &edge, nil
}

func (m *Follows) DeleteFirst(ctx context.Context, followerEmail, followedEmail string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, e := range m.rows {
		if e.FollowerEmail == followerEmail && e.FollowedEmail == followedEmail {
			m.rows = append(m.rows[:i], m.rows[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

func (m *Follows) ListFollowers(ctx context.Context, followedEmail string) ([]follows.Edge, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ListCalls++
	var out []follows.Edge
	for _, e := range m.rows {
		if e.FollowedEmail == followedEmail {
			out = append(out, e)
		}
	}
	return out, nil
}

// Len reports the number of stored edges.
func (m *Follows) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.rows)
}

func window[T any](all []T, page shared.Page) []T {
	if page.Offset >= len(all) {
		return []T{}
	}
	end := len(all)
	if page.Limit < end-page.Offset {
		end = page.Offset + page.Limit
	}
	return all[page.Offset:end]
}

var (
	_ users.Repository   = (*Users)(nil)
	_ posts.Repository   = (*Posts)(nil)
	_ follows.Repository = (*Follows)(nil)
)
