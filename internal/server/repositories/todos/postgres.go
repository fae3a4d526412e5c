package todos

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/todokeeper/internal/common"
	"github.com/dmitrijs2005/todokeeper/internal/dbx"
	"github.com/dmitrijs2005/todokeeper/internal/server/models"
)

const todoColumns = `id, text, completed, completed_at, owner_id, created_at`

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

type scanner interface {
	Scan(dest ...any) error
}

func scanTodo(s scanner) (*models.Todo, error) {
	var (
		t           models.Todo
		completedAt sql.NullInt64
		ownerID     sql.NullString
	)
	if err := s.Scan(&t.ID, &t.Text, &t.Completed, &completedAt, &ownerID, &t.CreatedAt); err != nil {
		return nil, err
	}
	if completedAt.Valid {
		v := completedAt.Int64
		t.CompletedAt = &v
	}
	if ownerID.Valid {
		v := ownerID.String
		t.OwnerID = &v
	}
	return &t, nil
}

func (r *PostgresRepository) Create(ctx context.Context, todo *models.Todo) (*models.Todo, error) {
	query := `
		INSERT INTO todos (id, text, completed, completed_at, owner_id)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING ` + todoColumns

	got, err := scanTodo(r.db.QueryRowContext(ctx, query,
		todo.ID, todo.Text, todo.Completed, todo.CompletedAt, todo.OwnerID))
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return got, nil
}

func (r *PostgresRepository) List(ctx context.Context, owner *string) ([]*models.Todo, error) {
	var (
		rows *sql.Rows
		err  error
	)
	if owner == nil {
		rows, err = r.db.QueryContext(ctx, `SELECT `+todoColumns+` FROM todos ORDER BY created_at, id`)
	} else {
		rows, err = r.db.QueryContext(ctx, `SELECT `+todoColumns+` FROM todos WHERE owner_id = $1 ORDER BY created_at, id`, *owner)
	}
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	out := []*models.Todo{}
	for rows.Next() {
		t, err := scanTodo(rows)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return out, nil
}

func (r *PostgresRepository) Get(ctx context.Context, id string, owner *string) (*models.Todo, error) {
	query := `
		SELECT ` + todoColumns + `
		FROM todos
		WHERE id = $1 AND owner_id IS NOT DISTINCT FROM $2
	`
	return one(scanTodo(r.db.QueryRowContext(ctx, query, id, owner)))
}

func (r *PostgresRepository) Update(ctx context.Context, id string, owner *string, text *string, completed bool, completedAt *int64) (*models.Todo, error) {
	query := `
		UPDATE todos
		SET text = COALESCE($3, text), completed = $4, completed_at = $5
		WHERE id = $1 AND owner_id IS NOT DISTINCT FROM $2
		RETURNING ` + todoColumns

	return one(scanTodo(r.db.QueryRowContext(ctx, query, id, owner, text, completed, completedAt)))
}

func (r *PostgresRepository) Delete(ctx context.Context, id string, owner *string) (*models.Todo, error) {
	query := `
		DELETE FROM todos
		WHERE id = $1 AND owner_id IS NOT DISTINCT FROM $2
		RETURNING ` + todoColumns

	return one(scanTodo(r.db.QueryRowContext(ctx, query, id, owner)))
}

func one(t *models.Todo, err error) (*models.Todo, error) {
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return t, nil
}
