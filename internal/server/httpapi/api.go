// Package httpapi is the JSON-over-HTTP surface of the server: routing,
// the x-auth authentication gate, request decoding and error mapping.
package httpapi

import (
	"context"
	"net/http"

	"github.com/dmitrijs2005/todokeeper/internal/logging"
	"github.com/dmitrijs2005/todokeeper/internal/server/models"
	"github.com/dmitrijs2005/todokeeper/internal/server/services"
	"github.com/julienschmidt/httprouter"
)

// Accounts is implemented by services.UserService.
type Accounts interface {
	Register(ctx context.Context, email, password string) (*services.AuthResult, error)
	Login(ctx context.Context, client, email, password string) (*services.AuthResult, error)
	Authenticate(ctx context.Context, token string) (*models.User, error)
	Logout(ctx context.Context, userID, token string) error
	LogoutAll(ctx context.Context, userID string) error
	DeleteAccount(ctx context.Context, userID string) error
}

// Todos is implemented by services.TodoService.
type Todos interface {
	Create(ctx context.Context, owner *string, text string) (*models.Todo, error)
	List(ctx context.Context, owner *string) ([]*models.Todo, error)
	Get(ctx context.Context, owner *string, id string) (*models.Todo, error)
	Delete(ctx context.Context, owner *string, id string) (*models.Todo, error)
	Update(ctx context.Context, owner *string, id string, patch services.TodoPatch) (*models.Todo, error)
}

// Pinger reports storage health for /healthz.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Options struct {
	Accounts Accounts
	Todos    Todos
	Health   Pinger
	Logger   logging.Logger

	// AllowAnonymousTodos makes the gate optional on todo routes. Requests
	// without a token then act on owner-less todos.
	AllowAnonymousTodos bool
}

type API struct {
	accounts  Accounts
	todos     Todos
	health    Pinger
	logger    logging.Logger
	anonymous bool
}

// New builds the routed handler.
func New(o Options) http.Handler {
	logger := o.Logger
	if logger == nil {
		logger = logging.Nop{}
	}
	a := &API{
		accounts:  o.Accounts,
		todos:     o.Todos,
		health:    o.Health,
		logger:    logger.With("module", "http_api"),
		anonymous: o.AllowAnonymousTodos,
	}

	todoGate := a.authenticated
	if a.anonymous {
		todoGate = a.optionalAuth
	}

	router := httprouter.New()
	router.POST("/users", a.register)
	router.POST("/users/login", a.login)
	router.GET("/users/me", a.authenticated(a.me))
	router.DELETE("/users/me/token", a.authenticated(a.logout))
	router.DELETE("/users/me/tokens", a.authenticated(a.logoutAll))
	router.DELETE("/users/me", a.authenticated(a.deleteAccount))

	router.POST("/todos", todoGate(a.createTodo))
	router.GET("/todos", todoGate(a.listTodos))
	router.GET("/todos/:id", todoGate(a.getTodo))
	router.DELETE("/todos/:id", todoGate(a.deleteTodo))
	router.PATCH("/todos/:id", todoGate(a.updateTodo))

	router.GET("/healthz", a.healthz)

	router.PanicHandler = a.panicHandler

	return a.accessLog(router)
}

func (a *API) healthz(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	if a.health != nil {
		if err := a.health.Ping(r.Context()); err != nil {
			a.logger.Warn(r.Context(), "health check failed", "error", err)
			writeJSON(w, http.StatusServiceUnavailable, statusResponse{Status: "UNAVAILABLE"})
			return
		}
	}
	writeJSON(w, http.StatusOK, statusResponse{Status: "OK"})
}

func (a *API) panicHandler(w http.ResponseWriter, r *http.Request, p interface{}) {
	a.logger.Error(r.Context(), "panic serving request", "path", r.URL.Path, "panic", p)
	w.WriteHeader(http.StatusInternalServerError)
}
