// Package services contains server-side business logic. UserService owns
// registration, login, logout and the authentication check every protected
// request goes through; TodoService owns the owner-scoped todo operations.
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/dmitrijs2005/todokeeper/internal/common"
	"github.com/dmitrijs2005/todokeeper/internal/logging"
	"github.com/dmitrijs2005/todokeeper/internal/server/auth"
	"github.com/dmitrijs2005/todokeeper/internal/server/models"
	"github.com/dmitrijs2005/todokeeper/internal/server/repositories/repomanager"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// AuthResult is what register and login hand back: the account and the
// freshly issued session token.
type AuthResult struct {
	User  *models.User
	Token string
}

// LoginLimiter throttles repeated failed logins per client and email.
type LoginLimiter interface {
	Allowed(client, email string) bool
	Fail(client, email string)
	Reset(client, email string)
}

type noLimit struct{}

func (noLimit) Allowed(string, string) bool { return true }
func (noLimit) Fail(string, string)         {}
func (noLimit) Reset(string, string)        {}

type credentials struct {
	Email    string `validate:"required,email"`
	Password string `validate:"required,min=6"`
}

type UserService struct {
	repomanager repomanager.RepositoryManager
	codec       *auth.Codec
	hasher      auth.Hasher
	limiter     LoginLimiter
	validate    *validator.Validate
	logger      logging.Logger

	dummyOnce   sync.Once
	dummyDigest string
}

// NewUserService wires a UserService. A nil limiter disables throttling.
func NewUserService(m repomanager.RepositoryManager, codec *auth.Codec, hasher auth.Hasher, limiter LoginLimiter, logger logging.Logger) *UserService {
	if limiter == nil {
		limiter = noLimit{}
	}
	if logger == nil {
		logger = logging.Nop{}
	}
	return &UserService{
		repomanager: m,
		codec:       codec,
		hasher:      hasher,
		limiter:     limiter,
		validate:    validator.New(validator.WithRequiredStructEnabled()),
		logger:      logger,
	}
}

func (s *UserService) checkCredentials(email, password string) (credentials, error) {
	c := credentials{Email: strings.TrimSpace(email), Password: password}
	if len(password) > auth.MaxPasswordBytes {
		return c, fmt.Errorf("%w: password longer than %d bytes", common.ErrorValidation, auth.MaxPasswordBytes)
	}
	if err := s.validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return c, fmt.Errorf("%w: %s failed on %s", common.ErrorValidation, strings.ToLower(verrs[0].Field()), verrs[0].Tag())
		}
		return c, common.ErrorValidation
	}
	return c, nil
}

// Register creates the account and its first session in one transaction.
// A taken email is reported as a validation error.
func (s *UserService) Register(ctx context.Context, email, password string) (*AuthResult, error) {

	c, err := s.checkCredentials(email, password)
	if err != nil {
		return nil, err
	}

	user := &models.User{ID: uuid.NewString(), Email: c.Email}
	if err := user.SetPassword(s.hasher, []byte(c.Password)); err != nil {
		if errors.Is(err, auth.ErrPasswordTooLong) {
			return nil, fmt.Errorf("%w: %s", common.ErrorValidation, err)
		}
		s.logger.Error(ctx, "password hashing failed", "error", err)
		return nil, common.ErrorInternal
	}

	token, err := s.codec.Issue(user.ID, common.AccessAuth)
	if err != nil {
		s.logger.Error(ctx, "token issue failed", "error", err)
		return nil, common.ErrorInternal
	}

	err = s.repomanager.WithTx(ctx, func(ctx context.Context, r repomanager.Repositories) error {
		if _, err := r.Users().Create(ctx, user); err != nil {
			return err
		}
		return r.Tokens().Add(ctx, user.ID, models.Token{Access: common.AccessAuth, Token: token})
	})
	if err != nil {
		if errors.Is(err, common.ErrorAlreadyExists) {
			return nil, fmt.Errorf("%w: email already in use", common.ErrorValidation)
		}
		s.logger.Error(ctx, "error creating user", "error", err)
		return nil, common.ErrorInternal
	}

	user.AddToken(token)
	return &AuthResult{User: user, Token: token}, nil
}

// dummy returns a digest to verify against when the email is unknown, so
// both failure paths cost one hash verification.
func (s *UserService) dummy() string {
	s.dummyOnce.Do(func() {
		s.dummyDigest, _ = s.hasher.Hash(common.GenerateRandByteArray(16))
	})
	return s.dummyDigest
}

// Login checks the password and opens a new session. Unknown email and wrong
// password are indistinguishable. client identifies the caller for
// throttling, typically its IP address.
func (s *UserService) Login(ctx context.Context, client, email, password string) (*AuthResult, error) {

	email = strings.TrimSpace(email)

	if !s.limiter.Allowed(client, email) {
		return nil, common.ErrorTooManyAttempts
	}

	user, err := s.repomanager.Users().GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			s.hasher.Verify([]byte(password), s.dummy())
			s.limiter.Fail(client, email)
			return nil, common.ErrorUnauthorized
		}
		s.logger.Error(ctx, "error loading user", "error", err)
		return nil, common.ErrorInternal
	}

	if !s.hasher.Verify([]byte(password), user.PasswordHash) {
		s.limiter.Fail(client, email)
		return nil, common.ErrorUnauthorized
	}

	token, err := s.codec.Issue(user.ID, common.AccessAuth)
	if err != nil {
		s.logger.Error(ctx, "token issue failed", "error", err)
		return nil, common.ErrorInternal
	}

	if err := s.repomanager.Tokens().Add(ctx, user.ID, models.Token{Access: common.AccessAuth, Token: token}); err != nil {
		s.logger.Error(ctx, "error saving session", "error", err)
		return nil, common.ErrorInternal
	}

	s.limiter.Reset(client, email)

	tokens, err := s.repomanager.Tokens().List(ctx, user.ID)
	if err != nil {
		user.AddToken(token)
	} else {
		user.Tokens = tokens
	}

	return &AuthResult{User: user, Token: token}, nil
}

// Authenticate resolves a presented token to its user. A missing token, a
// token that fails verification, a vanished user and a revoked session all
// yield common.ErrorUnauthorized. The returned user has its session list
// loaded.
func (s *UserService) Authenticate(ctx context.Context, token string) (*models.User, error) {

	if token == "" {
		return nil, common.ErrorUnauthorized
	}

	userID, err := s.codec.GetUserIDFromToken(token)
	if err != nil {
		return nil, common.ErrorUnauthorized
	}
	if _, err := uuid.Parse(userID); err != nil {
		return nil, common.ErrorUnauthorized
	}

	user, err := s.repomanager.Users().GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorUnauthorized
		}
		s.logger.Error(ctx, "error loading user", "error", err)
		return nil, common.ErrorInternal
	}

	tokens, err := s.repomanager.Tokens().List(ctx, user.ID)
	if err != nil {
		s.logger.Error(ctx, "error loading sessions", "error", err)
		return nil, common.ErrorInternal
	}
	user.Tokens = tokens

	if !user.HasToken(token) {
		return nil, common.ErrorUnauthorized
	}

	return user, nil
}

// Logout revokes exactly one session. Revoking an already revoked token is
// not an error.
func (s *UserService) Logout(ctx context.Context, userID, token string) error {
	if err := s.repomanager.Tokens().Delete(ctx, userID, token); err != nil {
		s.logger.Error(ctx, "error deleting session", "error", err)
		return common.ErrorInternal
	}
	return nil
}

// LogoutAll revokes every session of the user.
func (s *UserService) LogoutAll(ctx context.Context, userID string) error {
	if err := s.repomanager.Tokens().DeleteAll(ctx, userID); err != nil {
		s.logger.Error(ctx, "error deleting sessions", "error", err)
		return common.ErrorInternal
	}
	return nil
}

// DeleteAccount removes the user. Sessions and owned todos go with it.
func (s *UserService) DeleteAccount(ctx context.Context, userID string) error {
	if err := s.repomanager.Users().Delete(ctx, userID); err != nil {
		s.logger.Error(ctx, "error deleting user", "error", err)
		return common.ErrorInternal
	}
	return nil
}
