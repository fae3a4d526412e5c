package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/todokeeper/internal/common"
	"github.com/dmitrijs2005/todokeeper/internal/logging"
	"github.com/dmitrijs2005/todokeeper/internal/server/models"
	"github.com/dmitrijs2005/todokeeper/internal/server/repositories/repomanager"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// TodoPatch carries the only fields a client may change. Nil means "not
// supplied".
type TodoPatch struct {
	Text      *string
	Completed *bool
}

// TodoService scopes every operation by owner. A nil owner is the anonymous
// caller: it creates owner-less todos, lists everything and can only touch
// owner-less todos.
type TodoService struct {
	repomanager repomanager.RepositoryManager
	validate    *validator.Validate
	logger      logging.Logger
	now         func() time.Time
}

func NewTodoService(m repomanager.RepositoryManager, logger logging.Logger) *TodoService {
	if logger == nil {
		logger = logging.Nop{}
	}
	return &TodoService{
		repomanager: m,
		validate:    validator.New(),
		logger:      logger,
		now:         time.Now,
	}
}

func (s *TodoService) cleanText(text string) (string, error) {
	text = strings.TrimSpace(text)
	if err := s.validate.Var(text, "required"); err != nil {
		return "", fmt.Errorf("%w: text is required", common.ErrorValidation)
	}
	return text, nil
}

// repoErr passes not-found through and hides everything else.
func (s *TodoService) repoErr(ctx context.Context, op string, err error) error {
	if errors.Is(err, common.ErrorNotFound) {
		return common.ErrorNotFound
	}
	s.logger.Error(ctx, "todo "+op+" failed", "error", err)
	return common.ErrorInternal
}

func (s *TodoService) Create(ctx context.Context, owner *string, text string) (*models.Todo, error) {
	text, err := s.cleanText(text)
	if err != nil {
		return nil, err
	}

	todo := &models.Todo{ID: uuid.NewString(), Text: text, OwnerID: owner}
	created, err := s.repomanager.Todos().Create(ctx, todo)
	if err != nil {
		return nil, s.repoErr(ctx, "create", err)
	}
	return created, nil
}

func (s *TodoService) List(ctx context.Context, owner *string) ([]*models.Todo, error) {
	todos, err := s.repomanager.Todos().List(ctx, owner)
	if err != nil {
		return nil, s.repoErr(ctx, "list", err)
	}
	return todos, nil
}

// canonicalID accepts only the 36-character hyphenated form. uuid.Parse also
// takes urn:uuid: and braced forms, which the uuid column does not.
func canonicalID(id string) bool {
	u, err := uuid.Parse(id)
	return err == nil && u.String() == strings.ToLower(id)
}

// Get returns common.ErrorNotFound for a malformed id, a missing todo and a
// todo owned by someone else alike.
func (s *TodoService) Get(ctx context.Context, owner *string, id string) (*models.Todo, error) {
	if !canonicalID(id) {
		return nil, common.ErrorNotFound
	}
	todo, err := s.repomanager.Todos().Get(ctx, id, owner)
	if err != nil {
		return nil, s.repoErr(ctx, "get", err)
	}
	return todo, nil
}

// Delete removes the todo and returns its state before removal.
func (s *TodoService) Delete(ctx context.Context, owner *string, id string) (*models.Todo, error) {
	if !canonicalID(id) {
		return nil, common.ErrorNotFound
	}
	todo, err := s.repomanager.Todos().Delete(ctx, id, owner)
	if err != nil {
		return nil, s.repoErr(ctx, "delete", err)
	}
	return todo, nil
}

// Update applies patch in a single statement. Completed=true stamps the
// completion time; anything else clears it, even when Completed is omitted.
func (s *TodoService) Update(ctx context.Context, owner *string, id string, patch TodoPatch) (*models.Todo, error) {
	if !canonicalID(id) {
		return nil, common.ErrorNotFound
	}

	var text *string
	if patch.Text != nil {
		t, err := s.cleanText(*patch.Text)
		if err != nil {
			return nil, err
		}
		text = &t
	}

	var state models.Todo
	state.SetCompleted(patch.Completed != nil && *patch.Completed, s.now())

	todo, err := s.repomanager.Todos().Update(ctx, id, owner, text, state.Completed, state.CompletedAt)
	if err != nil {
		return nil, s.repoErr(ctx, "update", err)
	}
	return todo, nil
}
