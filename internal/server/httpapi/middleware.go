package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/dmitrijs2005/todokeeper/internal/common"
	"github.com/dmitrijs2005/todokeeper/internal/logging"
	"github.com/dmitrijs2005/todokeeper/internal/server/models"
	"github.com/julienschmidt/httprouter"
)

// Principal is the authenticated caller of a request.
type Principal struct {
	User  *models.User
	Token string
}

type ctxKey string

const principalKey ctxKey = "principal"

func withPrincipal(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, principalKey, p)
}

// PrincipalFromContext returns the caller, or nil for anonymous requests.
func PrincipalFromContext(ctx context.Context) *Principal {
	p, _ := ctx.Value(principalKey).(*Principal)
	return p
}

// ownerOf is the owner scope for todo operations: the caller's id, or nil
// when anonymous.
func ownerOf(ctx context.Context) *string {
	p := PrincipalFromContext(ctx)
	if p == nil {
		return nil
	}
	id := p.User.ID
	return &id
}

// gate resolves the x-auth header. ok is false when the request has been
// answered already.
func (a *API) gate(w http.ResponseWriter, r *http.Request, required bool) (*http.Request, bool) {
	token := r.Header.Get(common.AuthHeaderName)
	if token == "" && !required {
		return r, true
	}

	user, err := a.accounts.Authenticate(r.Context(), token)
	if err != nil {
		if !errors.Is(err, common.ErrorUnauthorized) {
			a.logger.Error(r.Context(), "authentication failed", "error", err)
		}
		w.WriteHeader(http.StatusUnauthorized)
		return r, false
	}

	ctx := withPrincipal(r.Context(), &Principal{User: user, Token: token})
	return r.WithContext(ctx), true
}

// authenticated rejects requests without a live session with 401 and an
// empty body.
func (a *API) authenticated(h httprouter.Handle) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		r, ok := a.gate(w, r, true)
		if !ok {
			return
		}
		h(w, r, ps)
	}
}

// optionalAuth lets token-less requests through anonymously. A token that is
// present but invalid is still rejected.
func (a *API) optionalAuth(h httprouter.Handle) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		r, ok := a.gate(w, r, false)
		if !ok {
			return
		}
		h(w, r, ps)
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

func (s *statusRecorder) Write(b []byte) (int, error) {
	if s.status == 0 {
		s.status = http.StatusOK
	}
	return s.ResponseWriter.Write(b)
}

func (a *API) accessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		reqID := r.Header.Get(common.RequestIDHeader)
		if reqID == "" {
			reqID, _ = common.MakeRandHexString(8)
		}
		w.Header().Set(common.RequestIDHeader, reqID)
		r = r.WithContext(logging.WithRequestID(r.Context(), reqID))

		rec := &statusRecorder{ResponseWriter: w}

		next.ServeHTTP(rec, r)

		if rec.status == 0 {
			rec.status = http.StatusOK
		}
		a.logger.Info(r.Context(), "request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration", time.Since(start).String(),
		)
	})
}
