package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/dmitrijs2005/todokeeper/internal/common"
	"github.com/dmitrijs2005/todokeeper/internal/server/services"
	"github.com/julienschmidt/httprouter"
)

func (a *API) createTodo(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req createTodoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.writeError(w, r, common.ErrorValidation)
		return
	}

	todo, err := a.todos.Create(r.Context(), ownerOf(r.Context()), req.Text)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toTodo(todo))
}

func (a *API) listTodos(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	todos, err := a.todos.List(r.Context(), ownerOf(r.Context()))
	if err != nil {
		a.writeError(w, r, err)
		return
	}

	out := todoListResponse{Status: "OK", Results: make([]todoResponse, 0, len(todos))}
	for _, t := range todos {
		out.Results = append(out.Results, toTodo(t))
	}
	writeJSON(w, http.StatusOK, out)
}

func (a *API) getTodo(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	todo, err := a.todos.Get(r.Context(), ownerOf(r.Context()), ps.ByName("id"))
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, todoEnvelope{Todo: toTodo(todo)})
}

func (a *API) deleteTodo(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	todo, err := a.todos.Delete(r.Context(), ownerOf(r.Context()), ps.ByName("id"))
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, todoEnvelope{Todo: toTodo(todo)})
}

func (a *API) updateTodo(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var req updateTodoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.writeError(w, r, common.ErrorValidation)
		return
	}

	completed := req.completed()
	patch := services.TodoPatch{Text: req.Text, Completed: &completed}

	todo, err := a.todos.Update(r.Context(), ownerOf(r.Context()), ps.ByName("id"), patch)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, todoEnvelope{Todo: toTodo(todo)})
}
