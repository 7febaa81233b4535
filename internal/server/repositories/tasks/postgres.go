// Package tasks stores tasks in PostgreSQL. Rows are mapped to models.Task
// here and nowhere else.
package tasks

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/dmitrijs2005/gophtasks/internal/common"
	"github.com/dmitrijs2005/gophtasks/internal/dbx"
	"github.com/dmitrijs2005/gophtasks/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
)

const taskColumns = `id, owner_id, text, completed, priority, tags, due_date, archived, important, created_at, updated_at`

// newID is a seam for tests.
var newID = func() (string, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", err
	}
	return id.String(), nil
}

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTask(s rowScanner) (*models.Task, error) {
	var (
		t        models.Task
		priority string
		tags     []byte
		due      sql.NullTime
	)
	if err := s.Scan(&t.ID, &t.OwnerID, &t.Text, &t.Completed, &priority, &tags,
		&due, &t.Archived, &t.Important, &t.CreatedAt, &t.UpdatedAt); err != nil {
		return nil, err
	}

	t.Priority = models.Priority(priority)
	t.Tags = []string{}
	if len(tags) > 0 {
		if err := json.Unmarshal(tags, &t.Tags); err != nil {
			return nil, fmt.Errorf("decode tags: %w", err)
		}
		if t.Tags == nil {
			t.Tags = []string{}
		}
	}
	if due.Valid {
		d := models.DateOf(due.Time)
		t.DueDate = &d
	}
	return &t, nil
}

func encodeTags(tags []string) (string, error) {
	if tags == nil {
		tags = []string{}
	}
	b, err := json.Marshal(tags)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func dueDateArg(d *models.Date) any {
	if d == nil {
		return nil
	}
	return d.Time()
}

// notFoundOnBadID maps malformed uuid input to ErrorNotFound; an id that
// cannot exist is reported the same way as one that does not.
func notFoundOnBadID(err error) error {
	var pgErr *pgconn.PgError
	if errors.Is(err, sql.ErrNoRows) ||
		(errors.As(err, &pgErr) && pgErr.Code == pgerrcode.InvalidTextRepresentation) {
		return common.ErrorNotFound
	}
	return fmt.Errorf("db error: %w", err)
}

func (r *PostgresRepository) FindByOwner(ctx context.Context, ownerID string) ([]models.Task, error) {
	query :=
		`SELECT ` + taskColumns + ` FROM tasks
		 WHERE owner_id = $1
		 ORDER BY created_at DESC
		 `

	rows, err := r.db.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	result := []models.Task{}
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return result, nil
}

func (r *PostgresRepository) FindByID(ctx context.Context, id string) (*models.Task, error) {
	query :=
		`SELECT ` + taskColumns + ` FROM tasks
		 WHERE id = $1
		 `

	t, err := scanTask(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, notFoundOnBadID(err)
	}
	return t, nil
}

// Insert stores task under a freshly generated id and returns it.
func (r *PostgresRepository) Insert(ctx context.Context, task *models.Task) (*models.Task, error) {
	id, err := newID()
	if err != nil {
		return nil, fmt.Errorf("generate id: %w", err)
	}
	tags, err := encodeTags(task.Tags)
	if err != nil {
		return nil, fmt.Errorf("encode tags: %w", err)
	}

	query :=
		`INSERT INTO tasks (` + taskColumns + `)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		 `

	_, err = r.db.ExecContext(ctx, query,
		id, task.OwnerID, task.Text, task.Completed, string(task.Priority), tags,
		dueDateArg(task.DueDate), task.Archived, task.Important, task.CreatedAt, task.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	out := *task
	out.ID = id
	if out.Tags == nil {
		out.Tags = []string{}
	}
	return &out, nil
}

// UpdateByID overwrites the mutable columns of the task with task.ID.
// Concurrent writers are last-write-wins.
func (r *PostgresRepository) UpdateByID(ctx context.Context, task *models.Task) error {
	tags, err := encodeTags(task.Tags)
	if err != nil {
		return fmt.Errorf("encode tags: %w", err)
	}

	query, args, err := squirrel.Update("tasks").
		Set("text", task.Text).
		Set("completed", task.Completed).
		Set("priority", string(task.Priority)).
		Set("tags", tags).
		Set("due_date", dueDateArg(task.DueDate)).
		Set("archived", task.Archived).
		Set("important", task.Important).
		Set("updated_at", task.UpdatedAt).
		Where(squirrel.Eq{"id": task.ID}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("build query: %w", err)
	}

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return notFoundOnBadID(err)
	}
	return expectOneRow(res)
}

func (r *PostgresRepository) DeleteByID(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = $1`, id)
	if err != nil {
		return notFoundOnBadID(err)
	}
	return expectOneRow(res)
}

func expectOneRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}

// compile-time check
var _ Repository = (*PostgresRepository)(nil)
