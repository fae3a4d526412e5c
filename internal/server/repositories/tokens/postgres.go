package tokens

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/todokeeper/internal/dbx"
	"github.com/dmitrijs2005/todokeeper/internal/server/models"
)

// PostgresRepository works over dbx.DBTX (satisfied by *sql.DB or *sql.Tx).
// Add and Delete are single statements, so concurrent logins of one user
// never overwrite each other's sessions.
type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Add(ctx context.Context, userID string, t models.Token) error {
	query := `
		INSERT INTO user_tokens (user_id, access, token)
		VALUES ($1, $2, $3)
	`
	if _, err := r.db.ExecContext(ctx, query, userID, t.Access, t.Token); err != nil {
		return fmt.Errorf("error performing sql request: %w", err)
	}
	return nil
}

func (r *PostgresRepository) Delete(ctx context.Context, userID string, token string) error {
	query := `
		DELETE FROM user_tokens
		WHERE user_id = $1 AND token = $2
	`
	if _, err := r.db.ExecContext(ctx, query, userID, token); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) DeleteAll(ctx context.Context, userID string) error {
	query := `
		DELETE FROM user_tokens
		WHERE user_id = $1
	`
	if _, err := r.db.ExecContext(ctx, query, userID); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) List(ctx context.Context, userID string) ([]models.Token, error) {
	query := `
		SELECT access, token
		FROM user_tokens
		WHERE user_id = $1
		ORDER BY created_at, id
	`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var out []models.Token
	for rows.Next() {
		var t models.Token
		if err := rows.Scan(&t.Access, &t.Token); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return out, nil
}
