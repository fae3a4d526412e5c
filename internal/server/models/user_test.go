package models

import (
	"errors"
	"testing"

	"github.com/dmitrijs2005/todokeeper/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubHasher struct {
	calls int
	err   error
}

func (s *stubHasher) Hash(plain []byte) (string, error) {
	s.calls++
	if s.err != nil {
		return "", s.err
	}
	return "digest:" + string(plain), nil
}

func TestUser_SetPassword(t *testing.T) {
	h := &stubHasher{}
	u := &User{Email: "a@x.com"}

	require.NoError(t, u.SetPassword(h, []byte("secretpw")))
	assert.Equal(t, "digest:secretpw", u.PasswordHash)
	assert.Equal(t, 1, h.calls)

	h.err = errors.New("boom")
	require.Error(t, u.SetPassword(h, []byte("other")))
	assert.Equal(t, "digest:secretpw", u.PasswordHash, "failed hash must not clobber the stored digest")
}

func TestUser_Sessions(t *testing.T) {
	u := &User{}

	u.AddToken("t1")
	u.AddToken("t2")
	u.AddToken("t3")
	require.Len(t, u.Tokens, 3)
	assert.Equal(t, common.AccessAuth, u.Tokens[0].Access)
	assert.True(t, u.HasToken("t2"))

	u.RemoveToken("t2")
	assert.False(t, u.HasToken("t2"))
	assert.True(t, u.HasToken("t1"))
	assert.True(t, u.HasToken("t3"))
	assert.Equal(t, []Token{{Access: "auth", Token: "t1"}, {Access: "auth", Token: "t3"}}, u.ListTokens())

	u.RemoveToken("missing")
	assert.Len(t, u.Tokens, 2)

	listed := u.ListTokens()
	listed[0].Token = "mutated"
	assert.True(t, u.HasToken("t1"), "ListTokens must return a copy")
}

func TestUser_HasToken_IgnoresOtherPurposes(t *testing.T) {
	u := &User{Tokens: []Token{{Access: "reset", Token: "t1"}}}
	assert.False(t, u.HasToken("t1"))
}
