package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/dmitrijs2005/todokeeper/internal/common"
	"github.com/dmitrijs2005/todokeeper/internal/server/models"
	"github.com/dmitrijs2005/todokeeper/internal/server/repositories/memory"
	"github.com/dmitrijs2005/todokeeper/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/todokeeper/internal/server/repositories/todos"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T { return &v }

func newTodoFixture(t *testing.T) (*TodoService, *memory.Manager, string, string) {
	t.Helper()
	rm := memory.NewManager()
	ctx := context.Background()

	a, b := uuid.NewString(), uuid.NewString()
	for i, id := range []string{a, b} {
		_, err := rm.Users().Create(ctx, &models.User{ID: id, Email: string(rune('a'+i)) + "@x.com"})
		require.NoError(t, err)
	}

	s := NewTodoService(rm, nil)
	s.now = func() time.Time { return time.UnixMilli(1_700_000_000_000) }
	return s, rm, a, b
}

func TestTodoCreate(t *testing.T) {
	s, _, a, _ := newTodoFixture(t)
	ctx := context.Background()

	td, err := s.Create(ctx, &a, "  buy milk  ")
	require.NoError(t, err)
	assert.Equal(t, "buy milk", td.Text)
	assert.False(t, td.Completed)
	assert.Nil(t, td.CompletedAt)
	require.NotNil(t, td.OwnerID)
	assert.Equal(t, a, *td.OwnerID)

	anon, err := s.Create(ctx, nil, "legacy")
	require.NoError(t, err)
	assert.Nil(t, anon.OwnerID)

	_, err = s.Create(ctx, &a, "   ")
	assert.ErrorIs(t, err, common.ErrorValidation)
}

func TestTodoList_Scoping(t *testing.T) {
	s, _, a, b := newTodoFixture(t)
	ctx := context.Background()

	_, err := s.Create(ctx, &a, "a1")
	require.NoError(t, err)
	_, err = s.Create(ctx, &b, "b1")
	require.NoError(t, err)
	_, err = s.Create(ctx, nil, "anon")
	require.NoError(t, err)

	mine, err := s.List(ctx, &a)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, "a1", mine[0].Text)

	all, err := s.List(ctx, nil)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestTodo_NotFoundCollapse(t *testing.T) {
	s, _, a, b := newTodoFixture(t)
	ctx := context.Background()

	td, err := s.Create(ctx, &a, "private")
	require.NoError(t, err)

	ids := map[string]string{
		"malformed id": "not-a-uuid",
		"missing":      uuid.NewString(),
		"foreign":      td.ID,
	}
	for name, id := range ids {
		t.Run(name, func(t *testing.T) {
			_, errGet := s.Get(ctx, &b, id)
			_, errDel := s.Delete(ctx, &b, id)
			_, errUpd := s.Update(ctx, &b, id, TodoPatch{Text: ptr("hijack")})

			for _, err := range []error{errGet, errDel, errUpd} {
				assert.ErrorIs(t, err, common.ErrorNotFound)
				assert.Equal(t, common.ErrorNotFound.Error(), err.Error())
			}
		})
	}

	// the foreign attempts changed nothing
	got, err := s.Get(ctx, &a, td.ID)
	require.NoError(t, err)
	assert.Equal(t, "private", got.Text)
}

func TestTodo_NonCanonicalIDIsNotFound(t *testing.T) {
	s, _, a, _ := newTodoFixture(t)
	ctx := context.Background()

	td, err := s.Create(ctx, &a, "mine")
	require.NoError(t, err)

	for _, id := range []string{
		"urn:uuid:" + td.ID,
		"{" + td.ID + "}",
		strings.ReplaceAll(td.ID, "-", ""),
	} {
		_, errGet := s.Get(ctx, &a, id)
		_, errDel := s.Delete(ctx, &a, id)
		_, errUpd := s.Update(ctx, &a, id, TodoPatch{Completed: ptr(true)})

		for _, err := range []error{errGet, errDel, errUpd} {
			assert.ErrorIs(t, err, common.ErrorNotFound, id)
		}
	}

	got, err := s.Get(ctx, &a, td.ID)
	require.NoError(t, err)
	assert.False(t, got.Completed)
}

func TestTodoUpdate_CompletedAt(t *testing.T) {
	s, _, a, _ := newTodoFixture(t)
	ctx := context.Background()

	td, err := s.Create(ctx, &a, "x")
	require.NoError(t, err)

	done, err := s.Update(ctx, &a, td.ID, TodoPatch{Text: ptr("x"), Completed: ptr(true)})
	require.NoError(t, err)
	assert.True(t, done.Completed)
	require.NotNil(t, done.CompletedAt)
	assert.Equal(t, int64(1_700_000_000_000), *done.CompletedAt)

	undone, err := s.Update(ctx, &a, td.ID, TodoPatch{Text: ptr("x"), Completed: ptr(false)})
	require.NoError(t, err)
	assert.False(t, undone.Completed)
	assert.Nil(t, undone.CompletedAt)

	_, err = s.Update(ctx, &a, td.ID, TodoPatch{Completed: ptr(true)})
	require.NoError(t, err)
	omitted, err := s.Update(ctx, &a, td.ID, TodoPatch{Text: ptr("renamed")})
	require.NoError(t, err)
	assert.Equal(t, "renamed", omitted.Text)
	assert.False(t, omitted.Completed)
	assert.Nil(t, omitted.CompletedAt)
}

func TestTodoUpdate_KeepsTextWhenOmitted(t *testing.T) {
	s, _, a, _ := newTodoFixture(t)
	ctx := context.Background()

	td, err := s.Create(ctx, &a, "keep me")
	require.NoError(t, err)

	got, err := s.Update(ctx, &a, td.ID, TodoPatch{Completed: ptr(true)})
	require.NoError(t, err)
	assert.Equal(t, "keep me", got.Text)

	_, err = s.Update(ctx, &a, td.ID, TodoPatch{Text: ptr("  ")})
	assert.ErrorIs(t, err, common.ErrorValidation)
}

func TestTodoDelete_ReturnsPriorState(t *testing.T) {
	s, _, a, _ := newTodoFixture(t)
	ctx := context.Background()

	td, err := s.Create(ctx, &a, "bye")
	require.NoError(t, err)

	prior, err := s.Delete(ctx, &a, td.ID)
	require.NoError(t, err)
	assert.Equal(t, "bye", prior.Text)

	_, err = s.Get(ctx, &a, td.ID)
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestTodo_AnonymousSeesOnlyOwnerless(t *testing.T) {
	s, _, a, _ := newTodoFixture(t)
	ctx := context.Background()

	owned, err := s.Create(ctx, &a, "owned")
	require.NoError(t, err)
	anon, err := s.Create(ctx, nil, "anon")
	require.NoError(t, err)

	_, err = s.Get(ctx, nil, owned.ID)
	assert.ErrorIs(t, err, common.ErrorNotFound)
	got, err := s.Get(ctx, nil, anon.ID)
	require.NoError(t, err)
	assert.Equal(t, "anon", got.Text)
}

type failingTodos struct{ err error }

func (f failingTodos) Create(context.Context, *models.Todo) (*models.Todo, error) { return nil, f.err }
func (f failingTodos) List(context.Context, *string) ([]*models.Todo, error)     { return nil, f.err }
func (f failingTodos) Get(context.Context, string, *string) (*models.Todo, error) {
	return nil, f.err
}
func (f failingTodos) Update(context.Context, string, *string, *string, bool, *int64) (*models.Todo, error) {
	return nil, f.err
}
func (f failingTodos) Delete(context.Context, string, *string) (*models.Todo, error) {
	return nil, f.err
}

type brokenTodosManager struct {
	repomanager.RepositoryManager
	err error
}

func (b brokenTodosManager) Todos() todos.Repository { return failingTodos{b.err} }

func TestTodo_PersistenceErrorsAreInternal(t *testing.T) {
	s := NewTodoService(brokenTodosManager{RepositoryManager: memory.NewManager(), err: errors.New("db down")}, nil)
	ctx := context.Background()
	id := uuid.NewString()

	_, err := s.Create(ctx, nil, "x")
	assert.ErrorIs(t, err, common.ErrorInternal)
	_, err = s.List(ctx, nil)
	assert.ErrorIs(t, err, common.ErrorInternal)
	_, err = s.Get(ctx, nil, id)
	assert.ErrorIs(t, err, common.ErrorInternal)
	_, err = s.Update(ctx, nil, id, TodoPatch{})
	assert.ErrorIs(t, err, common.ErrorInternal)
	_, err = s.Delete(ctx, nil, id)
	assert.ErrorIs(t, err, common.ErrorInternal)
}
