// Package repomanager bundles the repositories behind one handle so services
// can run several of them inside a single transaction.
package repomanager

import (
	"context"

	"github.com/dmitrijs2005/todokeeper/internal/server/repositories/todos"
	"github.com/dmitrijs2005/todokeeper/internal/server/repositories/tokens"
	"github.com/dmitrijs2005/todokeeper/internal/server/repositories/users"
)

// Repositories is a set of repositories bound to the same connection or
// transaction.
type Repositories interface {
	Users() users.Repository
	Tokens() tokens.Repository
	Todos() todos.Repository
}

type RepositoryManager interface {
	Repositories

	// WithTx runs fn with repositories bound to one transaction. It commits
	// when fn returns nil and rolls back otherwise.
	WithTx(ctx context.Context, fn func(ctx context.Context, r Repositories) error) error

	RunMigrations(ctx context.Context) error
	Ping(ctx context.Context) error
	Close() error
}
