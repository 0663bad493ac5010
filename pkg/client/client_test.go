package client

import (
	"context"
	"errors"
	"net/http"
	"path/filepath"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"simple-todo/configs"
	"simple-todo/internal/api"
	"simple-todo/internal/config"
	"simple-todo/internal/models"
	"simple-todo/internal/repository"
	"simple-todo/pkg/logger"
)

// fiberTransport serves requests in-process through app.Test.
type fiberTransport struct {
	app *fiber.App
}

func (t fiberTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	return t.app.Test(req, -1)
}

type statusTransport int

func (s statusTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	return &http.Response{
		StatusCode: int(s),
		Status:     http.StatusText(int(s)),
		Body:       http.NoBody,
		Header:     make(http.Header),
		Request:    req,
	}, nil
}

type clock struct{ now time.Time }

func (c *clock) Now() time.Time { return c.now }

func newServer(t *testing.T) (*fiber.App, *clock) {
	t.Helper()
	mem := repository.NewMemoryStore()
	clk := &clock{now: time.Now()}
	cfg := configs.Config{
		ClientOrigin: "*",
		JWTSecret:    "client-test-secret",
		JWTExpiresIn: 2 * time.Hour,
		BcryptCost:   4,
	}
	deps, err := config.NewDependencies(cfg, logger.NewNop(), mem.Users(), mem.Tasks(), clk.Now)
	require.NoError(t, err)
	return api.NewApp(deps), clk
}

func newClient(app *fiber.App, tokens TokenStore) *Client {
	return New("http://todo.test/", tokens, WithHTTPClient(&http.Client{Transport: fiberTransport{app}}))
}

func TestClient_Session(t *testing.T) {
	ctx := context.Background()
	app, _ := newServer(t)
	tokens := NewMemoryTokenStore()
	c := newClient(app, tokens)

	_, err := c.ListTodos(ctx)
	assert.ErrorIs(t, err, ErrUnauthenticated)

	require.NoError(t, c.Register(ctx, "alice", "pw123"))

	user, err := c.Login(ctx, "alice", "pw123")
	require.NoError(t, err)
	assert.Equal(t, "alice", user.Username)

	token, _ := tokens.Load()
	assert.NotEmpty(t, token)

	me, err := c.Me(ctx)
	require.NoError(t, err)
	assert.Equal(t, user, me)

	list, err := c.ListTodos(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)
	assert.NotNil(t, list)

	task, err := c.CreateTodo(ctx, "buy milk", "")
	require.NoError(t, err)
	assert.Equal(t, "buy milk", task.Title)

	done := true
	updated, err := c.UpdateTodo(ctx, task.ID, models.TaskPatch{Completed: &done})
	require.NoError(t, err)
	assert.True(t, updated.Completed)
	assert.Equal(t, "buy milk", updated.Title)

	deleted, err := c.DeleteTodo(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, task.ID, deleted.ID)

	_, err = c.DeleteTodo(ctx, task.ID)
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusNotFound, apiErr.Status)
	assert.Equal(t, "Todo not found", apiErr.Message)

	require.NoError(t, c.Logout())
	loggedIn, err := c.LoggedIn()
	require.NoError(t, err)
	assert.False(t, loggedIn)
}

func TestClient_ErrorsFromServer(t *testing.T) {
	ctx := context.Background()
	app, _ := newServer(t)
	c := newClient(app, NewMemoryTokenStore())

	require.NoError(t, c.Register(ctx, "alice", "pw123"))

	err := c.Register(ctx, "alice", "pw123")
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusConflict, apiErr.Status)

	_, err = c.Login(ctx, "alice", "wrong")
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.Status)
	assert.False(t, errors.Is(err, ErrUnauthenticated))

	_, err = c.Login(ctx, "alice", "pw123")
	require.NoError(t, err)

	_, err = c.CreateTodo(ctx, "  ", "")
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.Status)
}

func TestClient_ExpiredTokenIsDiscarded(t *testing.T) {
	ctx := context.Background()
	app, clk := newServer(t)
	tokens := NewMemoryTokenStore()
	c := newClient(app, tokens)

	require.NoError(t, c.Register(ctx, "alice", "pw123"))
	_, err := c.Login(ctx, "alice", "pw123")
	require.NoError(t, err)

	clk.now = clk.now.Add(3 * time.Hour)

	_, err = c.ListTodos(ctx)
	assert.ErrorIs(t, err, ErrUnauthenticated)
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.Status)

	token, _ := tokens.Load()
	assert.Empty(t, token)
}

func TestClient_ForbiddenAlsoDiscardsToken(t *testing.T) {
	tokens := NewMemoryTokenStore()
	require.NoError(t, tokens.Save("stale"))
	c := New("http://todo.test", tokens, WithHTTPClient(&http.Client{Transport: statusTransport(http.StatusForbidden)}))

	_, err := c.Me(context.Background())
	assert.ErrorIs(t, err, ErrUnauthenticated)

	token, _ := tokens.Load()
	assert.Empty(t, token)
}

func TestFileTokenStore(t *testing.T) {
	store := NewFileTokenStore(filepath.Join(t.TempDir(), "todoctl", "session.toml"))

	token, err := store.Load()
	require.NoError(t, err)
	assert.Empty(t, token)

	require.NoError(t, store.Save("abc.def.ghi"))

	token, err = NewFileTokenStore(store.Path()).Load()
	require.NoError(t, err)
	assert.Equal(t, "abc.def.ghi", token)

	require.NoError(t, store.Save("second"))
	token, err = store.Load()
	require.NoError(t, err)
	assert.Equal(t, "second", token)

	require.NoError(t, store.Clear())
	require.NoError(t, store.Clear())
	token, err = store.Load()
	require.NoError(t, err)
	assert.Empty(t, token)
}

// recordingTransport answers 404 and keeps the escaped path of each request.
type recordingTransport struct {
	paths []string
}

func (r *recordingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	r.paths = append(r.paths, req.URL.EscapedPath())
	return &http.Response{
		StatusCode: http.StatusNotFound,
		Status:     http.StatusText(http.StatusNotFound),
		Body:       http.NoBody,
		Header:     make(http.Header),
		Request:    req,
	}, nil
}

func TestClient_EscapesTodoIDs(t *testing.T) {
	ctx := context.Background()
	tokens := NewMemoryTokenStore()
	require.NoError(t, tokens.Save("token"))
	rec := &recordingTransport{}
	c := New("http://todo.test", tokens, WithHTTPClient(&http.Client{Transport: rec}))

	done := true
	_, err := c.UpdateTodo(ctx, "a/b?c#d", models.TaskPatch{Completed: &done})
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusNotFound, apiErr.Status)

	_, err = c.DeleteTodo(ctx, "../auth/me")
	require.ErrorAs(t, err, &apiErr)

	assert.Equal(t, []string{
		"/api/todo/a%2Fb%3Fc%23d",
		"/api/todo/..%2Fauth%2Fme",
	}, rec.paths)
}
