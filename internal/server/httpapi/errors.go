package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/dmitrijs2005/todokeeper/internal/common"
)

type errorResponse struct {
	Error string `json:"error"`
}

type statusResponse struct {
	Status string `json:"status"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps service errors to statuses. Not-found answers carry no
// body so they never hint at what exists. Unauthorized here means failed
// credentials on login or register; the gate answers 401 on its own.
func (a *API) writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, common.ErrorNotFound):
		w.WriteHeader(http.StatusNotFound)
	case errors.Is(err, common.ErrorTooManyAttempts):
		writeJSON(w, http.StatusTooManyRequests, errorResponse{Error: err.Error()})
	case errors.Is(err, common.ErrorValidation), errors.Is(err, common.ErrorUnauthorized):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
	default:
		a.logger.Error(r.Context(), "request failed", "path", r.URL.Path, "error", err)
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "request failed"})
	}
}
