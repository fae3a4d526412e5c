// Package users declares the server-side repository contract for user
// accounts and its PostgreSQL implementation.
package users

import (
	"context"

	"github.com/dmitrijs2005/todokeeper/internal/server/models"
)

// Repository stores accounts. Session tokens live in the tokens repository.
type Repository interface {
	// Create inserts user. A taken email yields common.ErrorAlreadyExists.
	Create(ctx context.Context, user *models.User) (*models.User, error)

	// GetUserByEmail returns common.ErrorNotFound when no account matches.
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)

	// GetUserByID returns common.ErrorNotFound when no account matches.
	GetUserByID(ctx context.Context, id string) (*models.User, error)

	// Delete removes the account; sessions and owned todos cascade.
	Delete(ctx context.Context, id string) error
}
