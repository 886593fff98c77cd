package todos

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"
)

var (
	ErrTitleRequired = errors.New("title required")
	ErrNotFound      = errors.New("todo not found")
)

// Repository is the storage handle the route layer is built on.
type Repository interface {
	List(ctx context.Context) ([]Todo, error)
	// Create returns the stored id together with the supplied fields.
	// CreatedAt is not read back.
	Create(ctx context.Context, in NewTodo) (Todo, error)
	// Update returns ErrNotFound when no row has the id.
	Update(ctx context.Context, id int64, in TodoUpdate) error
	// Delete succeeds whether or not a row has the id.
	Delete(ctx context.Context, id int64) error
}

// InMemoryRepo is a map-backed Repository for tests and local runs.
type InMemoryRepo struct {
	mu    sync.Mutex
	seq   int64
	store map[int64]Todo
}

func NewInMemoryRepo() *InMemoryRepo {
	return &InMemoryRepo{
		store: make(map[int64]Todo),
	}
}

func (r *InMemoryRepo) List(_ context.Context) ([]Todo, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]Todo, 0, len(r.store))
	for _, t := range r.store {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *InMemoryRepo) Create(_ context.Context, in NewTodo) (Todo, error) {
	if in.Title == "" {
		return Todo{}, ErrTitleRequired
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.seq++
	r.store[r.seq] = Todo{
		ID:          r.seq,
		Title:       in.Title,
		Description: in.Description,
		CreatedAt:   Timestamp{time.Now().UTC()},
	}
	return Todo{ID: r.seq, Title: in.Title, Description: in.Description}, nil
}

func (r *InMemoryRepo) Update(_ context.Context, id int64, in TodoUpdate) error {
	if in.Title == "" {
		return ErrTitleRequired
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	t, ok := r.store[id]
	if !ok {
		return ErrNotFound
	}
	t.Title = in.Title
	t.Description = in.Description
	t.Completed = in.Completed
	t.CompletedAt = in.CompletedAt
	r.store[id] = t
	return nil
}

func (r *InMemoryRepo) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.store, id)
	return nil
}

func (r *InMemoryRepo) Ping(context.Context) error { return nil }
