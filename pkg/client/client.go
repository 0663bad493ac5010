// Package client is a Go client for the todo API. The only state it keeps
// is the session token, held in an injected TokenStore.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"simple-todo/internal/models"
)

// ErrUnauthenticated means there is no usable token. The stored token has
// already been discarded when this is returned.
var ErrUnauthenticated = errors.New("not logged in")

// APIError is a non-2xx answer from the server.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%d: %s", e.Status, e.Message)
}

type Client struct {
	baseURL string
	http    *http.Client
	tokens  TokenStore
}

type Option func(*Client)

// WithHTTPClient replaces the default client (10s timeout).
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

func New(baseURL string, tokens TokenStore, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 10 * time.Second},
		tokens:  tokens,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string            `json:"token"`
	User  models.PublicUser `json:"user"`
}

func (c *Client) Register(ctx context.Context, username, password string) error {
	return c.do(ctx, http.MethodPost, "/api/auth/register", false, credentials{username, password}, nil)
}

// Login stores the issued token and returns the logged-in user.
func (c *Client) Login(ctx context.Context, username, password string) (models.PublicUser, error) {
	var res loginResponse
	if err := c.do(ctx, http.MethodPost, "/api/auth/login", false, credentials{username, password}, &res); err != nil {
		return models.PublicUser{}, err
	}
	if res.Token == "" {
		return models.PublicUser{}, errors.New("login response carried no token")
	}
	if err := c.tokens.Save(res.Token); err != nil {
		return models.PublicUser{}, err
	}
	return res.User, nil
}

// Logout forgets the token. Tokens are not revoked server-side.
func (c *Client) Logout() error {
	return c.tokens.Clear()
}

func (c *Client) LoggedIn() (bool, error) {
	token, err := c.tokens.Load()
	return token != "", err
}

func (c *Client) Me(ctx context.Context) (models.PublicUser, error) {
	var user models.PublicUser
	err := c.do(ctx, http.MethodGet, "/api/auth/me", true, nil, &user)
	return user, err
}

func (c *Client) ListTodos(ctx context.Context) ([]models.Task, error) {
	var tasks []models.Task
	if err := c.do(ctx, http.MethodGet, "/api/todo", true, nil, &tasks); err != nil {
		return nil, err
	}
	if tasks == nil {
		tasks = []models.Task{}
	}
	return tasks, nil
}

func (c *Client) CreateTodo(ctx context.Context, title, description string) (models.Task, error) {
	var res struct {
		Todo models.Task `json:"todo"`
	}
	body := map[string]string{"title": title, "description": description}
	err := c.do(ctx, http.MethodPost, "/api/todo", true, body, &res)
	return res.Todo, err
}

func (c *Client) UpdateTodo(ctx context.Context, id string, patch models.TaskPatch) (models.Task, error) {
	var task models.Task
	err := c.do(ctx, http.MethodPut, todoPath(id), true, patch, &task)
	return task, err
}

func (c *Client) DeleteTodo(ctx context.Context, id string) (models.Task, error) {
	var res struct {
		Deleted models.Task `json:"deleted"`
	}
	err := c.do(ctx, http.MethodDelete, todoPath(id), true, nil, &res)
	return res.Deleted, err
}

func todoPath(id string) string {
	return "/api/todo/" + url.PathEscape(id)
}

func (c *Client) do(ctx context.Context, method, path string, guarded bool, in, out any) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	if guarded {
		token, err := c.tokens.Load()
		if err != nil {
			return err
		}
		if token == "" {
			return ErrUnauthenticated
		}
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode >= 300 {
		apiErr := &APIError{Status: resp.StatusCode, Message: messageOf(raw, resp.Status)}
		if guarded && (resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden) {
			if err := c.tokens.Clear(); err != nil {
				return errors.Join(apiErr, err)
			}
			return fmt.Errorf("%w: %w", ErrUnauthenticated, apiErr)
		}
		return apiErr
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func messageOf(raw []byte, fallback string) string {
	var body struct {
		Message string `json:"message"`
	}
	if json.Unmarshal(raw, &body) == nil && body.Message != "" {
		return body.Message
	}
	return fallback
}
