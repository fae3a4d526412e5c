package httpapi

import (
	"encoding/json"
	"net"
	"net/http"

	"github.com/dmitrijs2005/todokeeper/internal/common"
	"github.com/dmitrijs2005/todokeeper/internal/server/services"
	"github.com/julienschmidt/httprouter"
)

func decodeCredentials(r *http.Request) (credentialsRequest, error) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return req, common.ErrorValidation
	}
	return req, nil
}

func clientAddr(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func writeAuth(w http.ResponseWriter, res *services.AuthResult) {
	w.Header().Set(common.AuthHeaderName, res.Token)
	writeJSON(w, http.StatusOK, toUser(res.User))
}

func (a *API) register(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	req, err := decodeCredentials(r)
	if err != nil {
		a.writeError(w, r, err)
		return
	}

	res, err := a.accounts.Register(r.Context(), req.Email, req.Password)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeAuth(w, res)
}

func (a *API) login(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	req, err := decodeCredentials(r)
	if err != nil {
		a.writeError(w, r, err)
		return
	}

	res, err := a.accounts.Login(r.Context(), clientAddr(r), req.Email, req.Password)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeAuth(w, res)
}

func (a *API) me(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	p := PrincipalFromContext(r.Context())
	writeJSON(w, http.StatusOK, toUser(p.User))
}

func (a *API) logout(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	p := PrincipalFromContext(r.Context())
	if err := a.accounts.Logout(r.Context(), p.User.ID, p.Token); err != nil {
		a.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (a *API) logoutAll(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	p := PrincipalFromContext(r.Context())
	if err := a.accounts.LogoutAll(r.Context(), p.User.ID); err != nil {
		a.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (a *API) deleteAccount(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	p := PrincipalFromContext(r.Context())
	if err := a.accounts.DeleteAccount(r.Context(), p.User.ID); err != nil {
		a.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}
