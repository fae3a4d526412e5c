// Package api is a small client for the todokeeper HTTP API.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dmitrijs2005/todokeeper/internal/common"
)

type User struct {
	ID    string `json:"_id"`
	Email string `json:"email"`
}

type Todo struct {
	ID          string  `json:"_id"`
	Text        string  `json:"text"`
	Completed   bool    `json:"completed"`
	CompletedAt *int64  `json:"completedAt"`
	Creator     *string `json:"_creator,omitempty"`
}

// TodoUpdate mirrors the PATCH body. The server treats an omitted
// Completed as false.
type TodoUpdate struct {
	Text      *string `json:"text,omitempty"`
	Completed bool    `json:"completed"`
}

// Error is a non-2xx answer. It unwraps to the matching common sentinel so
// callers can use errors.Is.
type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("server returned %d: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("server returned %d", e.Status)
}

func (e *Error) Unwrap() error {
	switch e.Status {
	case http.StatusUnauthorized:
		return common.ErrorUnauthorized
	case http.StatusNotFound:
		return common.ErrorNotFound
	case http.StatusTooManyRequests:
		return common.ErrorTooManyAttempts
	case http.StatusBadRequest:
		return common.ErrorValidation
	default:
		return common.ErrorInternal
	}
}

type Client struct {
	base string
	http *http.Client
}

// New returns a client for the server at baseURL, e.g. "http://127.0.0.1:3000".
func New(baseURL string, timeout time.Duration) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("unsupported server url %q", baseURL)
	}
	return &Client{
		base: strings.TrimRight(u.String(), "/"),
		http: &http.Client{Timeout: timeout},
	}, nil
}

// do sends body as JSON and decodes a JSON answer into out when out is
// non-nil. It returns the response headers.
func (c *Client) do(ctx context.Context, method, path, token string, body, out any) (http.Header, error) {
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		rd = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.base+path, rd)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set(common.AuthHeaderName, token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &Error{Status: resp.StatusCode}
		var e struct {
			Error string `json:"error"`
		}
		if json.NewDecoder(resp.Body).Decode(&e) == nil {
			apiErr.Message = e.Error
		}
		return resp.Header, apiErr
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return resp.Header, fmt.Errorf("decoding response: %w", err)
		}
	}
	return resp.Header, nil
}

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (c *Client) authenticate(ctx context.Context, path, email, password string) (*User, string, error) {
	var u User
	h, err := c.do(ctx, http.MethodPost, path, "", credentials{Email: email, Password: password}, &u)
	if err != nil {
		return nil, "", err
	}
	token := h.Get(common.AuthHeaderName)
	if token == "" {
		return nil, "", fmt.Errorf("server did not return a session token")
	}
	return &u, token, nil
}

// Register creates an account and returns it with its first session token.
func (c *Client) Register(ctx context.Context, email, password string) (*User, string, error) {
	return c.authenticate(ctx, "/users", email, password)
}

// Login opens a new session.
func (c *Client) Login(ctx context.Context, email, password string) (*User, string, error) {
	return c.authenticate(ctx, "/users/login", email, password)
}

func (c *Client) Me(ctx context.Context, token string) (*User, error) {
	var u User
	if _, err := c.do(ctx, http.MethodGet, "/users/me", token, nil, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// Logout revokes token only.
func (c *Client) Logout(ctx context.Context, token string) error {
	_, err := c.do(ctx, http.MethodDelete, "/users/me/token", token, nil, nil)
	return err
}

// LogoutAll revokes every session of the account.
func (c *Client) LogoutAll(ctx context.Context, token string) error {
	_, err := c.do(ctx, http.MethodDelete, "/users/me/tokens", token, nil, nil)
	return err
}

func (c *Client) DeleteAccount(ctx context.Context, token string) error {
	_, err := c.do(ctx, http.MethodDelete, "/users/me", token, nil, nil)
	return err
}

func (c *Client) CreateTodo(ctx context.Context, token, text string) (*Todo, error) {
	var t Todo
	body := struct {
		Text string `json:"text"`
	}{Text: text}
	if _, err := c.do(ctx, http.MethodPost, "/todos", token, body, &t); err != nil {
		return nil, err
	}
	return &t, nil
}

func (c *Client) ListTodos(ctx context.Context, token string) ([]Todo, error) {
	var out struct {
		Results []Todo `json:"results"`
	}
	if _, err := c.do(ctx, http.MethodGet, "/todos", token, nil, &out); err != nil {
		return nil, err
	}
	return out.Results, nil
}

type todoEnvelope struct {
	Todo Todo `json:"todo"`
}

func (c *Client) GetTodo(ctx context.Context, token, id string) (*Todo, error) {
	var out todoEnvelope
	if _, err := c.do(ctx, http.MethodGet, "/todos/"+url.PathEscape(id), token, nil, &out); err != nil {
		return nil, err
	}
	return &out.Todo, nil
}

func (c *Client) UpdateTodo(ctx context.Context, token, id string, upd TodoUpdate) (*Todo, error) {
	var out todoEnvelope
	if _, err := c.do(ctx, http.MethodPatch, "/todos/"+url.PathEscape(id), token, upd, &out); err != nil {
		return nil, err
	}
	return &out.Todo, nil
}

// DeleteTodo removes the todo and returns what it was.
func (c *Client) DeleteTodo(ctx context.Context, token, id string) (*Todo, error) {
	var out todoEnvelope
	if _, err := c.do(ctx, http.MethodDelete, "/todos/"+url.PathEscape(id), token, nil, &out); err != nil {
		return nil, err
	}
	return &out.Todo, nil
}
