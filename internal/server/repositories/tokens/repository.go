// Package tokens declares the server-side repository contract for the
// per-user session list and its PostgreSQL implementation.
package tokens

import (
	"context"

	"github.com/dmitrijs2005/todokeeper/internal/server/models"
)

// Repository keeps one row per live session token.
type Repository interface {
	// Add appends token to the user's session list.
	Add(ctx context.Context, userID string, t models.Token) error

	// Delete removes the entry with exactly this token string. Deleting a
	// token that is not there is not an error.
	Delete(ctx context.Context, userID string, token string) error

	// DeleteAll drops every session of the user.
	DeleteAll(ctx context.Context, userID string) error

	// List returns the sessions oldest first.
	List(ctx context.Context, userID string) ([]models.Token, error)
}
