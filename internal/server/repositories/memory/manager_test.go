package memory

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/dmitrijs2005/todokeeper/internal/common"
	"github.com/dmitrijs2005/todokeeper/internal/server/models"
	"github.com/dmitrijs2005/todokeeper/internal/server/repositories/repomanager"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T { return &v }

func seedUser(t *testing.T, m *Manager, id, email string) {
	t.Helper()
	_, err := m.Users().Create(context.Background(), &models.User{ID: id, Email: email, PasswordHash: "h"})
	require.NoError(t, err)
}

func TestUsers_UniqueEmailAndLookup(t *testing.T) {
	m := NewManager()
	ctx := context.Background()
	seedUser(t, m, "u1", "a@x.com")

	_, err := m.Users().Create(ctx, &models.User{ID: "u2", Email: "a@x.com"})
	assert.ErrorIs(t, err, common.ErrorAlreadyExists)

	u, err := m.Users().GetUserByEmail(ctx, "a@x.com")
	require.NoError(t, err)
	assert.Equal(t, "u1", u.ID)
	assert.False(t, u.CreatedAt.IsZero())

	_, err = m.Users().GetUserByID(ctx, "nope")
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestTokens_AddDeleteList(t *testing.T) {
	m := NewManager()
	ctx := context.Background()
	seedUser(t, m, "u1", "a@x.com")

	require.NoError(t, m.Tokens().Add(ctx, "u1", models.Token{Access: "auth", Token: "t1"}))
	require.NoError(t, m.Tokens().Add(ctx, "u1", models.Token{Access: "auth", Token: "t2"}))
	assert.Error(t, m.Tokens().Add(ctx, "u1", models.Token{Access: "auth", Token: "t1"}))
	assert.Error(t, m.Tokens().Add(ctx, "ghost", models.Token{Access: "auth", Token: "t1"}))

	require.NoError(t, m.Tokens().Delete(ctx, "u1", "t1"))
	require.NoError(t, m.Tokens().Delete(ctx, "u1", "t1"))

	got, err := m.Tokens().List(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, []models.Token{{Access: "auth", Token: "t2"}}, got)

	// callers get a copy
	got[0].Token = "mutated"
	again, err := m.Tokens().List(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "t2", again[0].Token)

	require.NoError(t, m.Tokens().DeleteAll(ctx, "u1"))
	got, err = m.Tokens().List(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestTodos_OwnerScoping(t *testing.T) {
	m := NewManager()
	ctx := context.Background()
	seedUser(t, m, "a", "a@x.com")
	seedUser(t, m, "b", "b@x.com")

	_, err := m.Todos().Create(ctx, &models.Todo{ID: "t1", Text: "mine", OwnerID: ptr("a")})
	require.NoError(t, err)
	_, err = m.Todos().Create(ctx, &models.Todo{ID: "t2", Text: "legacy"})
	require.NoError(t, err)
	_, err = m.Todos().Create(ctx, &models.Todo{ID: "t3", Text: "x", OwnerID: ptr("ghost")})
	assert.Error(t, err)

	_, err = m.Todos().Get(ctx, "t1", ptr("b"))
	assert.ErrorIs(t, err, common.ErrorNotFound)
	_, err = m.Todos().Get(ctx, "t1", nil)
	assert.ErrorIs(t, err, common.ErrorNotFound)
	_, err = m.Todos().Get(ctx, "t2", ptr("a"))
	assert.ErrorIs(t, err, common.ErrorNotFound)

	got, err := m.Todos().Get(ctx, "t2", nil)
	require.NoError(t, err)
	assert.Equal(t, "legacy", got.Text)

	mine, err := m.Todos().List(ctx, ptr("a"))
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, "t1", mine[0].ID)

	all, err := m.Todos().List(ctx, nil)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestTodos_UpdateAndDelete(t *testing.T) {
	m := NewManager()
	ctx := context.Background()
	seedUser(t, m, "a", "a@x.com")
	_, err := m.Todos().Create(ctx, &models.Todo{ID: "t1", Text: "old", OwnerID: ptr("a")})
	require.NoError(t, err)

	at := int64(42)
	got, err := m.Todos().Update(ctx, "t1", ptr("a"), nil, true, &at)
	require.NoError(t, err)
	assert.Equal(t, "old", got.Text)
	assert.True(t, got.Completed)
	assert.Equal(t, int64(42), *got.CompletedAt)

	got, err = m.Todos().Update(ctx, "t1", ptr("a"), ptr("new"), false, nil)
	require.NoError(t, err)
	assert.Equal(t, "new", got.Text)
	assert.Nil(t, got.CompletedAt)

	_, err = m.Todos().Update(ctx, "t1", ptr("b"), ptr("hijack"), false, nil)
	assert.ErrorIs(t, err, common.ErrorNotFound)

	prior, err := m.Todos().Delete(ctx, "t1", ptr("a"))
	require.NoError(t, err)
	assert.Equal(t, "new", prior.Text)

	_, err = m.Todos().Delete(ctx, "t1", ptr("a"))
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestReturnedTodoIsACopy(t *testing.T) {
	m := NewManager()
	ctx := context.Background()
	_, err := m.Todos().Create(ctx, &models.Todo{ID: "t1", Text: "keep"})
	require.NoError(t, err)

	got, err := m.Todos().Get(ctx, "t1", nil)
	require.NoError(t, err)
	got.Text = "mutated"

	again, err := m.Todos().Get(ctx, "t1", nil)
	require.NoError(t, err)
	assert.Equal(t, "keep", again.Text)
}

func TestUserDelete_Cascades(t *testing.T) {
	m := NewManager()
	ctx := context.Background()
	seedUser(t, m, "a", "a@x.com")
	require.NoError(t, m.Tokens().Add(ctx, "a", models.Token{Access: "auth", Token: "t"}))
	_, err := m.Todos().Create(ctx, &models.Todo{ID: "t1", Text: "mine", OwnerID: ptr("a")})
	require.NoError(t, err)
	_, err = m.Todos().Create(ctx, &models.Todo{ID: "t2", Text: "legacy"})
	require.NoError(t, err)

	require.NoError(t, m.Users().Delete(ctx, "a"))

	_, err = m.Users().GetUserByEmail(ctx, "a@x.com")
	assert.ErrorIs(t, err, common.ErrorNotFound)
	toks, _ := m.Tokens().List(ctx, "a")
	assert.Empty(t, toks)
	all, _ := m.Todos().List(ctx, nil)
	require.Len(t, all, 1)
	assert.Equal(t, "t2", all[0].ID)

	// email is free again
	seedUser(t, m, "a2", "a@x.com")
}

func TestWithTx_RollbackRestoresState(t *testing.T) {
	m := NewManager()
	ctx := context.Background()
	boom := errors.New("boom")

	err := m.WithTx(ctx, func(ctx context.Context, r repomanager.Repositories) error {
		if _, err := r.Users().Create(ctx, &models.User{ID: "u1", Email: "a@x.com"}); err != nil {
			return err
		}
		if err := r.Tokens().Add(ctx, "u1", models.Token{Access: "auth", Token: "t"}); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	_, err = m.Users().GetUserByID(ctx, "u1")
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestWithTx_Commit(t *testing.T) {
	m := NewManager()
	ctx := context.Background()

	err := m.WithTx(ctx, func(ctx context.Context, r repomanager.Repositories) error {
		if _, err := r.Users().Create(ctx, &models.User{ID: "u1", Email: "a@x.com"}); err != nil {
			return err
		}
		return r.Tokens().Add(ctx, "u1", models.Token{Access: "auth", Token: "t"})
	})
	require.NoError(t, err)

	toks, err := m.Tokens().List(ctx, "u1")
	require.NoError(t, err)
	assert.Len(t, toks, 1)
}

func TestConcurrentTokenAdds_AllSurvive(t *testing.T) {
	m := NewManager()
	ctx := context.Background()
	seedUser(t, m, "u1", "a@x.com")

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_ = m.Tokens().Add(ctx, "u1", models.Token{Access: "auth", Token: string(rune('a' + i))})
		}(i)
	}
	wg.Wait()

	toks, err := m.Tokens().List(ctx, "u1")
	require.NoError(t, err)
	assert.Len(t, toks, 20)
}
