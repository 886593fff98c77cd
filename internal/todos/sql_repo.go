package todos

import (
	"context"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const table = "todos"

var columns = []string{"id", "title", "description", "completed", `"completedAt"`, `"createdAt"`}

// SQLRepo is the Repository backed by the todos table.
type SQLRepo struct {
	db      *sqlx.DB
	dialect Dialect
	sb      sq.StatementBuilderType
}

func NewSQLRepo(db *sqlx.DB, d Dialect) *SQLRepo {
	return &SQLRepo{
		db:      db,
		dialect: d,
		sb:      sq.StatementBuilder.PlaceholderFormat(d.Placeholder),
	}
}

func (r *SQLRepo) Close() error { return r.db.Close() }

func (r *SQLRepo) Ping(ctx context.Context) error { return r.db.PingContext(ctx) }

// EnsureSchema creates the todos table when it is missing.
func (r *SQLRepo) EnsureSchema(ctx context.Context) error {
	ctx, span := r.start(ctx, "EnsureSchema")
	defer span.End()

	_, err := r.db.ExecContext(ctx, r.dialect.createTable)
	return record(span, err)
}

// List implements Repository.List
func (r *SQLRepo) List(ctx context.Context) ([]Todo, error) {
	ctx, span := r.start(ctx, "List")
	defer span.End()

	query, args, err := r.sb.Select(columns...).From(table).OrderBy("id ASC").ToSql()
	if err != nil {
		return nil, record(span, err)
	}
	out := []Todo{}
	if err := r.db.SelectContext(ctx, &out, query, args...); err != nil {
		return nil, record(span, err)
	}
	span.SetAttributes(attribute.Int("todos.count", len(out)))
	return out, nil
}

// Create implements Repository.Create
func (r *SQLRepo) Create(ctx context.Context, in NewTodo) (Todo, error) {
	ctx, span := r.start(ctx, "Create")
	defer span.End()

	query, args, err := r.sb.Insert(table).
		Columns("title", "description").
		Values(in.Title, nullable(in.Description)).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return Todo{}, record(span, err)
	}
	var id int64
	if err := r.db.QueryRowxContext(ctx, query, args...).Scan(&id); err != nil {
		return Todo{}, record(span, err)
	}
	span.SetAttributes(attribute.Int64("todos.id", id))
	return Todo{ID: id, Title: in.Title, Description: in.Description}, nil
}

// Update implements Repository.Update
func (r *SQLRepo) Update(ctx context.Context, id int64, in TodoUpdate) error {
	ctx, span := r.start(ctx, "Update")
	defer span.End()
	span.SetAttributes(attribute.Int64("todos.id", id))

	query, args, err := r.sb.Update(table).
		Set("title", in.Title).
		Set("description", nullable(in.Description)).
		Set("completed", in.Completed).
		Set(`"completedAt"`, nullableDate(in.CompletedAt)).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return record(span, err)
	}
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return record(span, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return record(span, err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete implements Repository.Delete
func (r *SQLRepo) Delete(ctx context.Context, id int64) error {
	ctx, span := r.start(ctx, "Delete")
	defer span.End()
	span.SetAttributes(attribute.Int64("todos.id", id))

	query, args, err := r.sb.Delete(table).Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return record(span, err)
	}
	_, err = r.db.ExecContext(ctx, query, args...)
	return record(span, err)
}

func (r *SQLRepo) start(ctx context.Context, op string) (context.Context, trace.Span) {
	ctx, span := otel.Tracer("todos").Start(ctx, "todos."+op, trace.WithSpanKind(trace.SpanKindClient))
	span.SetAttributes(attribute.String("db.system", r.dialect.Driver))
	return ctx, span
}

func record(span trace.Span, err error) error {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return err
}

func nullable(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}

func nullableDate(d *Date) any {
	if d == nil {
		return nil
	}
	return d.String()
}
