package models

import "time"

// Todo is a task item. CompletedAt is unix milliseconds and is set exactly
// when Completed is true. OwnerID is nil for legacy anonymous todos.
type Todo struct {
	ID          string
	Text        string
	Completed   bool
	CompletedAt *int64
	OwnerID     *string
	CreatedAt   time.Time
}

// SetCompleted keeps Completed and CompletedAt consistent.
func (t *Todo) SetCompleted(completed bool, now time.Time) {
	if !completed {
		t.Completed = false
		t.CompletedAt = nil
		return
	}
	ms := now.UnixMilli()
	t.Completed = true
	t.CompletedAt = &ms
}

// OwnedBy reports whether the todo belongs to owner; a nil owner matches
// only owner-less todos.
func (t *Todo) OwnedBy(owner *string) bool {
	if t.OwnerID == nil || owner == nil {
		return t.OwnerID == nil && owner == nil
	}
	return *t.OwnerID == *owner
}
