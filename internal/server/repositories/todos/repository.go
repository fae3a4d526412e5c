// Package todos declares the repository contract for todo items and its
// PostgreSQL implementation. Every single-item operation is scoped by owner
// in the query itself: a row owned by someone else is indistinguishable from
// a missing one.
package todos

import (
	"context"

	"github.com/dmitrijs2005/todokeeper/internal/server/models"
)

// Repository stores todos. A nil owner means "anonymous": single-item
// operations then only match owner-less rows, and List returns everything.
type Repository interface {
	Create(ctx context.Context, todo *models.Todo) (*models.Todo, error)
	List(ctx context.Context, owner *string) ([]*models.Todo, error)
	Get(ctx context.Context, id string, owner *string) (*models.Todo, error)

	// Update replaces text (when non-nil), completed and completedAt in one
	// statement.
	Update(ctx context.Context, id string, owner *string, text *string, completed bool, completedAt *int64) (*models.Todo, error)

	// Delete removes the row and returns its prior state.
	Delete(ctx context.Context, id string, owner *string) (*models.Todo, error)
}
