// Package session keeps the CLI's login state in a local SQLite file, one
// row per server URL.
package session

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/todokeeper/internal/client/session/migrations"
	"github.com/dmitrijs2005/todokeeper/internal/common"
	"github.com/dmitrijs2005/todokeeper/internal/dbx"
	"github.com/dmitrijs2005/todokeeper/internal/filex"
	"github.com/pressly/goose/v3"

	_ "modernc.org/sqlite"
)

type Session struct {
	ServerURL string
	UserID    string
	Email     string
	Token     string
	SavedAt   time.Time
}

type Store struct {
	db  *sql.DB
	q   dbx.DBTX
	now func() time.Time
}

func RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)
	goose.SetLogger(goose.NopLogger())

	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}

	return goose.UpContext(ctx, db, ".")
}

// Open opens (creating if needed) the state file at path and migrates it.
// ":memory:" is accepted for tests.
func Open(ctx context.Context, path string) (*Store, error) {
	if path != ":memory:" {
		if _, err := filex.EnsureParentDir(path); err != nil {
			return nil, err
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// a single connection keeps ":memory:" databases alive across calls
	db.SetMaxOpenConns(1)

	if err := RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Store{db: db, q: db, now: time.Now}, nil
}

// Save replaces the session stored for s.ServerURL.
func (s *Store) Save(ctx context.Context, sess Session) error {
	_, err := s.q.ExecContext(ctx, `
		INSERT INTO sessions (server_url, user_id, email, token, saved_at) VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(server_url) DO UPDATE SET
			user_id = excluded.user_id,
			email = excluded.email,
			token = excluded.token,
			saved_at = excluded.saved_at
	`, sess.ServerURL, sess.UserID, sess.Email, sess.Token, s.now().UnixMilli())
	if err != nil {
		return fmt.Errorf("failed to save session[%s]: %w", sess.ServerURL, err)
	}
	return nil
}

// Load returns common.ErrorNotFound when no session exists for serverURL.
func (s *Store) Load(ctx context.Context, serverURL string) (*Session, error) {
	sess := &Session{ServerURL: serverURL}
	var savedAt int64

	err := s.q.QueryRowContext(ctx,
		`SELECT user_id, email, token, saved_at FROM sessions WHERE server_url = ?`, serverURL).
		Scan(&sess.UserID, &sess.Email, &sess.Token, &savedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrorNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load session[%s]: %w", serverURL, err)
	}

	sess.SavedAt = time.UnixMilli(savedAt)
	return sess, nil
}

// Clear forgets the session for serverURL. Missing rows are not an error.
func (s *Store) Clear(ctx context.Context, serverURL string) error {
	_, err := s.q.ExecContext(ctx, `DELETE FROM sessions WHERE server_url = ?`, serverURL)
	if err != nil {
		return fmt.Errorf("failed to clear session[%s]: %w", serverURL, err)
	}
	return nil
}

func (s *Store) Close() error {
	return s.db.Close()
}
