package todos

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func newTempDB(t *testing.T) *SQLRepo {
	t.Helper()
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "test.db")
	dsn, err := SQLiteFileDSN(dbPath)
	if err != nil {
		t.Fatalf("dsn error: %v", err)
	}
	db, dialect, err := Open("sqlite", dsn)
	if err != nil {
		t.Fatalf("open error: %v", err)
	}
	repo := NewSQLRepo(db, dialect)
	t.Cleanup(func() {
		_ = repo.Close()
		_ = os.RemoveAll(dir)
	})
	if err := repo.EnsureSchema(context.Background()); err != nil {
		t.Fatalf("schema error: %v", err)
	}
	return repo
}

func TestSQLiteRepo_CreateAndList(t *testing.T) {
	repo := newTempDB(t)
	ctx := context.Background()

	desc := "2%"
	a, err := repo.Create(ctx, NewTodo{Title: "first", Description: &desc})
	if err != nil {
		t.Fatalf("create first: %v", err)
	}
	if a.ID == 0 || a.Title != "first" || a.Completed {
		t.Fatalf("bad first todo: %+v", a)
	}

	b, err := repo.Create(ctx, NewTodo{Title: "second"})
	if err != nil {
		t.Fatalf("create second: %v", err)
	}
	if b.ID <= a.ID {
		t.Fatalf("expected monotonic IDs: a=%d b=%d", a.ID, b.ID)
	}

	list, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("list error: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("expected 2 todos, got %d", len(list))
	}
	if list[0].Title != "first" || list[1].Title != "second" {
		t.Fatalf("unexpected order: %+v", list)
	}
	if list[0].Description == nil || *list[0].Description != "2%" {
		t.Fatalf("expected description 2%%, got %v", list[0].Description)
	}
	if list[1].Description != nil {
		t.Fatalf("expected NULL description, got %q", *list[1].Description)
	}
	if list[0].Completed || list[0].CompletedAt != nil {
		t.Fatalf("new todos default to not completed: %+v", list[0])
	}
	if list[0].CreatedAt.IsZero() {
		t.Fatalf("expected createdAt to be set by the database")
	}
}

func TestSQLiteRepo_UpdateRoundTrip(t *testing.T) {
	repo := newTempDB(t)
	ctx := context.Background()

	created, err := repo.Create(ctx, NewTodo{Title: "Buy milk"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	before, _ := repo.List(ctx)

	desc := "2% - urgent"
	done := NewDate(2024, 1, 1)
	if err := repo.Update(ctx, created.ID, TodoUpdate{
		Title:       "Buy milk",
		Description: &desc,
		Completed:   true,
		CompletedAt: &done,
	}); err != nil {
		t.Fatalf("update: %v", err)
	}

	list, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	got := list[0]
	if !got.Completed || got.Description == nil || *got.Description != desc {
		t.Fatalf("update not persisted: %+v", got)
	}
	if got.CompletedAt == nil || got.CompletedAt.String() != "2024-01-01" {
		t.Fatalf("unexpected completedAt: %v", got.CompletedAt)
	}
	if !got.CreatedAt.Equal(before[0].CreatedAt.Time) {
		t.Fatalf("createdAt must not change: before=%v after=%v", before[0].CreatedAt, got.CreatedAt)
	}

	if err := repo.Update(ctx, created.ID+100, TodoUpdate{Title: "nope"}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestSQLiteRepo_Delete(t *testing.T) {
	repo := newTempDB(t)
	ctx := context.Background()

	a, _ := repo.Create(ctx, NewTodo{Title: "a"})
	b, _ := repo.Create(ctx, NewTodo{Title: "b"})

	if err := repo.Delete(ctx, a.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := repo.Delete(ctx, a.ID); err != nil {
		t.Fatalf("second delete should also succeed: %v", err)
	}

	list, _ := repo.List(ctx)
	if len(list) != 1 || list[0].ID != b.ID {
		t.Fatalf("expected only %d to remain, got %+v", b.ID, list)
	}

	c, _ := repo.Create(ctx, NewTodo{Title: "c"})
	if c.ID <= b.ID {
		t.Fatalf("ids must not be reused: b=%d c=%d", b.ID, c.ID)
	}
}

func TestSQLiteRepo_EnsureSchemaIsIdempotent(t *testing.T) {
	repo := newTempDB(t)
	ctx := context.Background()

	_, _ = repo.Create(ctx, NewTodo{Title: "survives"})
	if err := repo.EnsureSchema(ctx); err != nil {
		t.Fatalf("second EnsureSchema: %v", err)
	}
	list, _ := repo.List(ctx)
	if len(list) != 1 {
		t.Fatalf("existing rows must survive, got %+v", list)
	}
}

func TestSQLiteRepo_NonPositiveIDs(t *testing.T) {
	repo := newTempDB(t)
	ctx := context.Background()

	for _, id := range []int64{0, -1} {
		if err := repo.Update(ctx, id, TodoUpdate{Title: "x"}); !errors.Is(err, ErrNotFound) {
			t.Fatalf("update %d: expected ErrNotFound, got %v", id, err)
		}
		if err := repo.Delete(ctx, id); err != nil {
			t.Fatalf("delete %d: %v", id, err)
		}
	}
}
