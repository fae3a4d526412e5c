// Package dbx holds the transaction plumbing shared by the SQL repositories.
package dbx

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/sethvargo/go-retry"
)

// DBTX is satisfied by both *sql.DB and *sql.Tx, so a repository can run
// either on the pool or inside a transaction.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// TxFunc is the unit of work run inside a transaction.
type TxFunc func(ctx context.Context, tx DBTX) error

// WithTx runs fn in a transaction. A nil error commits. Anything else, a panic
// included, rolls back. Begin and commit failures are wrapped so callers can
// tell them apart from errors returned by fn. A failed rollback is joined to
// the error that caused it.
func WithTx(ctx context.Context, db *sql.DB, opts *sql.TxOptions, fn TxFunc) (err error) {
	tx, err := db.BeginTx(ctx, opts)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
				err = errors.Join(err, fmt.Errorf("rollback tx: %w", rbErr))
			}
			return
		}
		if cErr := tx.Commit(); cErr != nil {
			err = fmt.Errorf("commit tx: %w", cErr)
		}
	}()

	return fn(ctx, tx)
}

// Retry says how often a transaction that failed transiently is replayed.
type Retry struct {
	// Retries is the number of replays after the first attempt.
	Retries uint64
	// Base is the first backoff delay. It doubles on every replay.
	Base time.Duration
	// Transient reports whether err is worth another attempt, e.g. a
	// serialization failure or a deadlock.
	Transient func(err error) bool
}

// WithRetryTx is WithTx on a fresh transaction per attempt. fn must be safe to
// replay. The error of the last attempt is returned unwrapped.
func WithRetryTx(ctx context.Context, db *sql.DB, opts *sql.TxOptions, r Retry, fn TxFunc) error {
	if r.Retries == 0 || r.Base <= 0 || r.Transient == nil {
		return WithTx(ctx, db, opts, fn)
	}
	b := retry.WithMaxRetries(r.Retries, retry.NewExponential(r.Base))
	return retry.Do(ctx, b, func(ctx context.Context) error {
		err := WithTx(ctx, db, opts, fn)
		if err != nil && r.Transient(err) {
			return retry.RetryableError(err)
		}
		return err
	})
}
