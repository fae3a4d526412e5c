package memory

import (
	"context"

	"github.com/dmitrijs2005/todokeeper/internal/common"
	"github.com/dmitrijs2005/todokeeper/internal/server/models"
)

type todoRepo struct{ v view }

func copyTodo(t models.Todo) *models.Todo {
	if t.CompletedAt != nil {
		v := *t.CompletedAt
		t.CompletedAt = &v
	}
	if t.OwnerID != nil {
		v := *t.OwnerID
		t.OwnerID = &v
	}
	return &t
}

func (r *todoRepo) Create(ctx context.Context, todo *models.Todo) (*models.Todo, error) {
	var out *models.Todo
	err := r.v.do(func(d *data) error {
		if todo.OwnerID != nil {
			if _, ok := d.users[*todo.OwnerID]; !ok {
				return errUnknownUser
			}
		}
		if _, taken := d.todos[todo.ID]; taken {
			return common.ErrorAlreadyExists
		}
		stored := *copyTodo(*todo)
		stored.CreatedAt = r.v.m.now()
		d.todos[todo.ID] = stored
		d.order = append(d.order, todo.ID)
		out = copyTodo(stored)
		return nil
	})
	return out, err
}

func (r *todoRepo) List(ctx context.Context, owner *string) ([]*models.Todo, error) {
	out := []*models.Todo{}
	err := r.v.do(func(d *data) error {
		for _, id := range d.order {
			t := d.todos[id]
			if owner != nil && !t.OwnedBy(owner) {
				continue
			}
			out = append(out, copyTodo(t))
		}
		return nil
	})
	return out, err
}

// lookup applies the same owner scoping as the SQL predicate
// "owner_id IS NOT DISTINCT FROM $2".
func lookup(d *data, id string, owner *string) (models.Todo, error) {
	t, ok := d.todos[id]
	if !ok || !t.OwnedBy(owner) {
		return models.Todo{}, common.ErrorNotFound
	}
	return t, nil
}

func (r *todoRepo) Get(ctx context.Context, id string, owner *string) (*models.Todo, error) {
	var out *models.Todo
	err := r.v.do(func(d *data) error {
		t, err := lookup(d, id, owner)
		if err != nil {
			return err
		}
		out = copyTodo(t)
		return nil
	})
	return out, err
}

func (r *todoRepo) Update(ctx context.Context, id string, owner *string, text *string, completed bool, completedAt *int64) (*models.Todo, error) {
	var out *models.Todo
	err := r.v.do(func(d *data) error {
		t, err := lookup(d, id, owner)
		if err != nil {
			return err
		}
		if text != nil {
			t.Text = *text
		}
		t.Completed = completed
		t.CompletedAt = nil
		if completedAt != nil {
			v := *completedAt
			t.CompletedAt = &v
		}
		d.todos[id] = t
		out = copyTodo(t)
		return nil
	})
	return out, err
}

func (r *todoRepo) Delete(ctx context.Context, id string, owner *string) (*models.Todo, error) {
	var out *models.Todo
	err := r.v.do(func(d *data) error {
		t, err := lookup(d, id, owner)
		if err != nil {
			return err
		}
		delete(d.todos, id)
		for i, tid := range d.order {
			if tid == id {
				d.order = append(d.order[:i], d.order[i+1:]...)
				break
			}
		}
		out = copyTodo(t)
		return nil
	})
	return out, err
}
