package memory

import (
	"context"

	"github.com/dmitrijs2005/todokeeper/internal/common"
	"github.com/dmitrijs2005/todokeeper/internal/server/models"
)

type userRepo struct{ v view }

func (r *userRepo) Create(ctx context.Context, user *models.User) (*models.User, error) {
	err := r.v.do(func(d *data) error {
		if _, taken := d.byEmail[user.Email]; taken {
			return common.ErrorAlreadyExists
		}
		if _, taken := d.users[user.ID]; taken {
			return common.ErrorAlreadyExists
		}
		user.CreatedAt = r.v.m.now()
		stored := *user
		stored.Tokens = nil
		d.users[user.ID] = stored
		d.byEmail[user.Email] = user.ID
		return nil
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (r *userRepo) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var out *models.User
	err := r.v.do(func(d *data) error {
		id, ok := d.byEmail[email]
		if !ok {
			return common.ErrorNotFound
		}
		u := d.users[id]
		out = &u
		return nil
	})
	return out, err
}

func (r *userRepo) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	var out *models.User
	err := r.v.do(func(d *data) error {
		u, ok := d.users[id]
		if !ok {
			return common.ErrorNotFound
		}
		out = &u
		return nil
	})
	return out, err
}

// Delete cascades to sessions and owned todos.
func (r *userRepo) Delete(ctx context.Context, id string) error {
	return r.v.do(func(d *data) error {
		u, ok := d.users[id]
		if !ok {
			return nil
		}
		delete(d.users, id)
		delete(d.byEmail, u.Email)
		delete(d.tokens, id)

		kept := d.order[:0]
		for _, tid := range d.order {
			t := d.todos[tid]
			if t.OwnerID != nil && *t.OwnerID == id {
				delete(d.todos, tid)
				continue
			}
			kept = append(kept, tid)
		}
		d.order = kept
		return nil
	})
}
