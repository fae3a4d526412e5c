// Package memory is an in-process RepositoryManager. It keeps the same
// contracts as the PostgreSQL repositories (unique emails, owner scoping,
// cascading account deletion) and is selected with the "memory" DSN.
package memory

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/dmitrijs2005/todokeeper/internal/server/models"
	"github.com/dmitrijs2005/todokeeper/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/todokeeper/internal/server/repositories/todos"
	"github.com/dmitrijs2005/todokeeper/internal/server/repositories/tokens"
	"github.com/dmitrijs2005/todokeeper/internal/server/repositories/users"
)

// errUnknownUser mirrors a foreign key violation.
var errUnknownUser = errors.New("db error: user does not exist")

type data struct {
	users   map[string]models.User
	byEmail map[string]string
	tokens  map[string][]models.Token
	todos   map[string]models.Todo
	order   []string
}

func newData() *data {
	return &data{
		users:   map[string]models.User{},
		byEmail: map[string]string{},
		tokens:  map[string][]models.Token{},
		todos:   map[string]models.Todo{},
	}
}

func (d *data) clone() *data {
	c := newData()
	for k, v := range d.users {
		c.users[k] = v
	}
	for k, v := range d.byEmail {
		c.byEmail[k] = v
	}
	for k, v := range d.tokens {
		c.tokens[k] = append([]models.Token(nil), v...)
	}
	for k, v := range d.todos {
		c.todos[k] = v
	}
	c.order = append([]string(nil), d.order...)
	return c
}

// Manager implements repomanager.RepositoryManager.
type Manager struct {
	mu  sync.Mutex
	d   *data
	now func() time.Time
}

var _ repomanager.RepositoryManager = (*Manager)(nil)

func NewManager() *Manager {
	return &Manager{d: newData(), now: time.Now}
}

// view binds repositories to the manager. Inside WithTx the lock is
// already held, so inTx views skip it.
type view struct {
	m    *Manager
	inTx bool
}

func (v view) do(fn func(d *data) error) error {
	if !v.inTx {
		v.m.mu.Lock()
		defer v.m.mu.Unlock()
	}
	return fn(v.m.d)
}

func (v view) Users() users.Repository   { return &userRepo{v} }
func (v view) Tokens() tokens.Repository { return &tokenRepo{v} }
func (v view) Todos() todos.Repository   { return &todoRepo{v} }

func (m *Manager) Users() users.Repository   { return view{m: m}.Users() }
func (m *Manager) Tokens() tokens.Repository { return view{m: m}.Tokens() }
func (m *Manager) Todos() todos.Repository   { return view{m: m}.Todos() }

// WithTx serializes fn against every other access and restores the prior
// state if fn fails or panics.
func (m *Manager) WithTx(ctx context.Context, fn func(ctx context.Context, r repomanager.Repositories) error) (err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	snapshot := m.d.clone()
	committed := false
	defer func() {
		if !committed {
			m.d = snapshot
		}
	}()

	if err := ctx.Err(); err != nil {
		return err
	}
	if err = fn(ctx, view{m: m, inTx: true}); err != nil {
		return err
	}
	committed = true
	return nil
}

func (m *Manager) RunMigrations(ctx context.Context) error { return nil }
func (m *Manager) Ping(ctx context.Context) error          { return ctx.Err() }
func (m *Manager) Close() error                            { return nil }
