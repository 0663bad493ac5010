package cli

import (
	"bytes"
	"context"
	"net/http"
	"strings"
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
	"simple-todo/pkg/client"
	"simple-todo/pkg/logger"
)

type fiberTransport struct {
	app *fiber.App
}

func (t fiberTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	return t.app.Test(req, -1)
}

type harness struct {
	tokens *client.MemoryTokenStore
	client *client.Client
	out    bytes.Buffer
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	mem := repository.NewMemoryStore()
	cfg := configs.Config{
		ClientOrigin: "*",
		JWTSecret:    "cli-test-secret",
		JWTExpiresIn: time.Hour,
		BcryptCost:   4,
	}
	deps, err := config.NewDependencies(cfg, logger.NewNop(), mem.Users(), mem.Tasks(), nil)
	require.NoError(t, err)

	h := &harness{tokens: client.NewMemoryTokenStore()}
	h.client = client.New("http://todo.test", h.tokens,
		client.WithHTTPClient(&http.Client{Transport: fiberTransport{api.NewApp(deps)}}))
	return h
}

// run executes one command with stdin set to input.
func (h *harness) run(t *testing.T, input string, args ...string) error {
	t.Helper()
	h.out.Reset()
	app := NewApp(h.client, strings.NewReader(input), &h.out)
	return app.Run(context.Background(), args[0], args[1:])
}

func stubPassword(t *testing.T, password string) {
	old := readPassword
	t.Cleanup(func() { readPassword = old })
	readPassword = func(int) ([]byte, error) {
		return []byte(password), nil
	}
}

func (h *harness) tasks(t *testing.T) []models.Task {
	t.Helper()
	tasks, err := h.client.ListTodos(context.Background())
	require.NoError(t, err)
	return tasks
}

func TestCLI_Workflow(t *testing.T) {
	h := newHarness(t)
	stubPassword(t, "pw123")

	err := h.run(t, "", "list")
	assert.ErrorContains(t, err, "not logged in")

	require.NoError(t, h.run(t, "alice\n", "register"))
	assert.Contains(t, h.out.String(), "Account created")

	require.NoError(t, h.run(t, "", "login", "-u", "alice"))
	assert.Contains(t, h.out.String(), "Logged in as alice")

	require.NoError(t, h.run(t, "", "whoami"))
	assert.Equal(t, "alice\n", h.out.String())

	require.NoError(t, h.run(t, "", "list"))
	assert.Contains(t, h.out.String(), "nothing to do")

	require.NoError(t, h.run(t, "", "add", "-d", "2 litres", "buy", "milk"))
	tasks := h.tasks(t)
	require.Len(t, tasks, 1)
	assert.Equal(t, "buy milk", tasks[0].Title)
	assert.Equal(t, "2 litres", tasks[0].Description)
	id := tasks[0].ID

	require.NoError(t, h.run(t, "", "done", id))
	assert.Contains(t, h.out.String(), "[x]")
	assert.True(t, h.tasks(t)[0].Completed)

	require.NoError(t, h.run(t, "", "undone", id))
	assert.Contains(t, h.out.String(), "[ ]")

	require.NoError(t, h.run(t, "", "edit", "-t", "buy oat milk", id))
	assert.Equal(t, "buy oat milk", h.tasks(t)[0].Title)
	assert.Equal(t, "2 litres", h.tasks(t)[0].Description)

	require.NoError(t, h.run(t, "", "list"))
	assert.Contains(t, h.out.String(), "buy oat milk")
	assert.Contains(t, h.out.String(), "0 of 1 done")

	require.NoError(t, h.run(t, "", "rm", id))
	assert.Contains(t, h.out.String(), "Deleted buy oat milk")
	assert.Empty(t, h.tasks(t))

	require.NoError(t, h.run(t, "", "logout"))
	token, _ := h.tokens.Load()
	assert.Empty(t, token)
}

func TestCLI_Errors(t *testing.T) {
	h := newHarness(t)
	stubPassword(t, "pw123")

	assert.ErrorContains(t, h.run(t, "", "frobnicate"), "unknown command")

	require.NoError(t, h.run(t, "", "register", "-u", "alice"))
	require.NoError(t, h.run(t, "", "login", "-u", "alice"))

	assert.ErrorContains(t, h.run(t, "", "done"), "exactly one todo id")
	assert.ErrorContains(t, h.run(t, "", "edit", "some-id"), "nothing to change")
	assert.ErrorContains(t, h.run(t, "", "add"), "Title is required")
	assert.ErrorContains(t, h.run(t, "", "rm", "missing"), "Todo not found")

	stubPassword(t, "wrong")
	assert.ErrorContains(t, h.run(t, "", "login", "-u", "alice"), "Invalid username or password")
}

func TestParseOptions(t *testing.T) {
	t.Setenv("TODO_SERVER", "http://api.example:9000")
	var stderr bytes.Buffer

	opts, err := ParseOptions([]string{"-session", "/tmp/s.toml", "add", "-d", "x", "title"}, &stderr)
	require.NoError(t, err)
	assert.Equal(t, "http://api.example:9000", opts.Server)
	assert.Equal(t, "/tmp/s.toml", opts.Session)
	assert.Equal(t, "add", opts.Command)
	assert.Equal(t, []string{"-d", "x", "title"}, opts.Args)

	_, err = ParseOptions(nil, &stderr)
	assert.Error(t, err)
	assert.Contains(t, stderr.String(), "Usage: todoctl")
}
