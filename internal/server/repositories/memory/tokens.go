package memory

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/todokeeper/internal/server/models"
)

type tokenRepo struct{ v view }

func (r *tokenRepo) Add(ctx context.Context, userID string, t models.Token) error {
	return r.v.do(func(d *data) error {
		if _, ok := d.users[userID]; !ok {
			return errUnknownUser
		}
		u := models.User{Tokens: d.tokens[userID]}
		if u.HasToken(t.Token) {
			return fmt.Errorf("db error: duplicate token for user %s", userID)
		}
		d.tokens[userID] = append(u.ListTokens(), t)
		return nil
	})
}

func (r *tokenRepo) Delete(ctx context.Context, userID string, token string) error {
	return r.v.do(func(d *data) error {
		u := models.User{Tokens: d.tokens[userID]}
		u.RemoveToken(token)
		if len(u.Tokens) == 0 {
			delete(d.tokens, userID)
		} else {
			d.tokens[userID] = u.Tokens
		}
		return nil
	})
}

func (r *tokenRepo) DeleteAll(ctx context.Context, userID string) error {
	return r.v.do(func(d *data) error {
		delete(d.tokens, userID)
		return nil
	})
}

func (r *tokenRepo) List(ctx context.Context, userID string) ([]models.Token, error) {
	var out []models.Token
	err := r.v.do(func(d *data) error {
		u := models.User{Tokens: d.tokens[userID]}
		out = u.ListTokens()
		return nil
	})
	return out, err
}
