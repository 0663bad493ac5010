// Package cli implements todoctl, a command-line front-end for the todo API.
package cli

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"simple-todo/internal/models"
	"simple-todo/pkg/client"
)

const usage = `Usage: todoctl [-server URL] [-session FILE] <command> [args]

Commands:
  register [-u name]            create an account
  login [-u name]               log in and remember the session
  logout                        forget the session
  whoami                        show the logged-in user
  list                          list your todos
  add [-d text] <title>         create a todo
  edit [-t title] [-d text] <id>
  done <id>                     mark a todo completed
  undone <id>                   mark a todo not completed
  rm <id>                       delete a todo
`

type App struct {
	client *client.Client
	in     *bufio.Reader
	out    io.Writer
}

func NewApp(c *client.Client, in io.Reader, out io.Writer) *App {
	return &App{client: c, in: bufio.NewReader(in), out: out}
}

// DefaultSessionPath is where the session token is kept between runs.
func DefaultSessionPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = "."
	}
	return filepath.Join(dir, "todoctl", "session.toml")
}

// Options are the global flags, parsed before the command name.
type Options struct {
	Server  string
	Session string
	Command string
	Args    []string
}

func ParseOptions(args []string, stderr io.Writer) (Options, error) {
	fs := flag.NewFlagSet("todoctl", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() { fmt.Fprint(stderr, usage) }

	server := os.Getenv("TODO_SERVER")
	if server == "" {
		server = "http://localhost:8000"
	}

	var opts Options
	fs.StringVar(&opts.Server, "server", server, "API base URL")
	fs.StringVar(&opts.Session, "session", DefaultSessionPath(), "session file")
	if err := fs.Parse(args); err != nil {
		return opts, err
	}
	if fs.NArg() == 0 {
		fs.Usage()
		return opts, errors.New("no command given")
	}
	opts.Command = fs.Arg(0)
	opts.Args = fs.Args()[1:]
	return opts, nil
}

// Run executes one command.
func (a *App) Run(ctx context.Context, command string, args []string) error {
	var err error
	switch command {
	case "register":
		err = a.register(ctx, args)
	case "login":
		err = a.login(ctx, args)
	case "logout":
		err = a.logout()
	case "whoami":
		err = a.whoami(ctx)
	case "list", "ls":
		err = a.list(ctx)
	case "add":
		err = a.add(ctx, args)
	case "edit":
		err = a.edit(ctx, args)
	case "done":
		err = a.setCompleted(ctx, args, true)
	case "undone":
		err = a.setCompleted(ctx, args, false)
	case "rm", "delete":
		err = a.remove(ctx, args)
	case "help":
		fmt.Fprint(a.out, usage)
	default:
		return fmt.Errorf("unknown command %q", command)
	}

	if errors.Is(err, client.ErrUnauthenticated) {
		return errors.New("not logged in, run `todoctl login`")
	}
	return err
}

func (a *App) readCredentials(name string, args []string) (string, string, error) {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(a.out)
	username := fs.String("u", "", "username")
	if err := fs.Parse(args); err != nil {
		return "", "", err
	}

	if *username == "" {
		var err error
		if *username, err = promptLine(a.in, a.out, "Username"); err != nil {
			return "", "", err
		}
	}
	password, err := promptPassword(a.out)
	if err != nil {
		return "", "", err
	}
	return *username, password, nil
}

func (a *App) register(ctx context.Context, args []string) error {
	username, password, err := a.readCredentials("register", args)
	if err != nil {
		return err
	}
	if err := a.client.Register(ctx, username, password); err != nil {
		return err
	}
	fmt.Fprintln(a.out, SuccessStyle.Render("Account created. You can now log in."))
	return nil
}

func (a *App) login(ctx context.Context, args []string) error {
	username, password, err := a.readCredentials("login", args)
	if err != nil {
		return err
	}
	user, err := a.client.Login(ctx, username, password)
	if err != nil {
		return err
	}
	fmt.Fprintln(a.out, SuccessStyle.Render("Logged in as "+user.Username))
	return nil
}

func (a *App) logout() error {
	if err := a.client.Logout(); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Logged out")
	return nil
}

func (a *App) whoami(ctx context.Context) error {
	user, err := a.client.Me(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintln(a.out, user.Username)
	return nil
}

func (a *App) list(ctx context.Context) error {
	tasks, err := a.client.ListTodos(ctx)
	if err != nil {
		return err
	}
	fmt.Fprint(a.out, renderTasks(tasks))
	return nil
}

func (a *App) add(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("add", flag.ContinueOnError)
	fs.SetOutput(a.out)
	description := fs.String("d", "", "description")
	if err := fs.Parse(args); err != nil {
		return err
	}

	task, err := a.client.CreateTodo(ctx, strings.Join(fs.Args(), " "), *description)
	if err != nil {
		return err
	}
	fmt.Fprintln(a.out, SuccessStyle.Render("Added ")+renderTask(task))
	return nil
}

func (a *App) edit(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("edit", flag.ContinueOnError)
	fs.SetOutput(a.out)

	var patch models.TaskPatch
	fs.Func("t", "new title", func(s string) error {
		patch.Title = &s
		return nil
	})
	fs.Func("d", "new description", func(s string) error {
		patch.Description = &s
		return nil
	})
	if err := fs.Parse(args); err != nil {
		return err
	}
	id, err := oneID(fs.Args())
	if err != nil {
		return err
	}
	if patch.Title == nil && patch.Description == nil {
		return errors.New("nothing to change, pass -t and/or -d")
	}

	task, err := a.client.UpdateTodo(ctx, id, patch)
	if err != nil {
		return err
	}
	fmt.Fprintln(a.out, renderTask(task))
	return nil
}

func (a *App) setCompleted(ctx context.Context, args []string, completed bool) error {
	id, err := oneID(args)
	if err != nil {
		return err
	}
	task, err := a.client.UpdateTodo(ctx, id, models.TaskPatch{Completed: &completed})
	if err != nil {
		return err
	}
	fmt.Fprintln(a.out, renderTask(task))
	return nil
}

func (a *App) remove(ctx context.Context, args []string) error {
	id, err := oneID(args)
	if err != nil {
		return err
	}
	task, err := a.client.DeleteTodo(ctx, id)
	if err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Deleted "+task.Title)
	return nil
}

func oneID(args []string) (string, error) {
	if len(args) != 1 || strings.TrimSpace(args[0]) == "" {
		return "", errors.New("expected exactly one todo id")
	}
	return args[0], nil
}
