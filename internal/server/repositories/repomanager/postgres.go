package repomanager

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/todokeeper/internal/dbx"
	"github.com/dmitrijs2005/todokeeper/internal/server/migrations"
	"github.com/dmitrijs2005/todokeeper/internal/server/repositories/todos"
	"github.com/dmitrijs2005/todokeeper/internal/server/repositories/tokens"
	"github.com/dmitrijs2005/todokeeper/internal/server/repositories/users"
	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

// postgresRepos vends PostgreSQL repositories bound to db, which is either
// the pool or an open transaction.
type postgresRepos struct {
	db dbx.DBTX
}

func (r postgresRepos) Users() users.Repository   { return users.NewPostgresRepository(r.db) }
func (r postgresRepos) Tokens() tokens.Repository { return tokens.NewPostgresRepository(r.db) }
func (r postgresRepos) Todos() todos.Repository   { return todos.NewPostgresRepository(r.db) }

// PostgresRepositoryManager owns the connection pool.
type PostgresRepositoryManager struct {
	postgresRepos
	db *sql.DB
}

// NewPostgresRepositoryManager wraps an already opened pool.
func NewPostgresRepositoryManager(db *sql.DB) *PostgresRepositoryManager {
	return &PostgresRepositoryManager{postgresRepos: postgresRepos{db: db}, db: db}
}

// OpenPostgres opens a pgx-backed pool for dsn and checks it is reachable.
func OpenPostgres(ctx context.Context, dsn string) (*PostgresRepositoryManager, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("db open error: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("db ping error: %w", err)
	}
	return NewPostgresRepositoryManager(db), nil
}

const (
	serializationFailure = "40001"
	deadlockDetected     = "40P01"
)

// transientPgError reports failures PostgreSQL expects the client to retry.
func transientPgError(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && (pgErr.Code == serializationFailure || pgErr.Code == deadlockDetected)
}

var txRetry = dbx.Retry{Retries: 3, Base: 20 * time.Millisecond, Transient: transientPgError}

// WithTx runs fn in a transaction, replaying it on serialization failures and
// deadlocks.
func (m *PostgresRepositoryManager) WithTx(ctx context.Context, fn func(ctx context.Context, r Repositories) error) error {
	return dbx.WithRetryTx(ctx, m.db, nil, txRetry, func(ctx context.Context, tx dbx.DBTX) error {
		return fn(ctx, postgresRepos{db: tx})
	})
}

// gooseUpContext is a seam for testing goose.UpContext.
var gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
	return goose.UpContext(ctx, db, dir, opts...)
}

// RunMigrations applies the embedded goose migrations.
func (m *PostgresRepositoryManager) RunMigrations(ctx context.Context) error {
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("pgx"); err != nil {
		return err
	}
	if err := gooseUpContext(ctx, m.db, "."); err != nil {
		return err
	}
	return nil
}

func (m *PostgresRepositoryManager) Ping(ctx context.Context) error {
	return m.db.PingContext(ctx)
}

func (m *PostgresRepositoryManager) Close() error {
	return m.db.Close()
}
