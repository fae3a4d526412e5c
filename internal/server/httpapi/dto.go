package httpapi

import (
	"encoding/json"

	"github.com/dmitrijs2005/todokeeper/internal/server/models"
)

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type userResponse struct {
	ID    string `json:"_id"`
	Email string `json:"email"`
}

func toUser(u *models.User) userResponse {
	return userResponse{ID: u.ID, Email: u.Email}
}

type createTodoRequest struct {
	Text string `json:"text"`
}

// updateTodoRequest takes completed raw: anything but a JSON true counts
// as "not completed".
type updateTodoRequest struct {
	Text      *string         `json:"text"`
	Completed json.RawMessage `json:"completed"`
}

func (u updateTodoRequest) completed() bool {
	var b bool
	if len(u.Completed) == 0 || json.Unmarshal(u.Completed, &b) != nil {
		return false
	}
	return b
}

type todoResponse struct {
	ID          string  `json:"_id"`
	Text        string  `json:"text"`
	Completed   bool    `json:"completed"`
	CompletedAt *int64  `json:"completedAt"`
	Creator     *string `json:"_creator,omitempty"`
}

func toTodo(t *models.Todo) todoResponse {
	return todoResponse{
		ID:          t.ID,
		Text:        t.Text,
		Completed:   t.Completed,
		CompletedAt: t.CompletedAt,
		Creator:     t.OwnerID,
	}
}

type todoEnvelope struct {
	Todo todoResponse `json:"todo"`
}

type todoListResponse struct {
	Status  string         `json:"status"`
	Results []todoResponse `json:"results"`
}
