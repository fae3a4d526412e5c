package cli

import (
	"bufio"
	"errors"
	"io"

	"github.com/dmitrijs2005/todokeeper/internal/client/api"
	"github.com/dmitrijs2005/todokeeper/internal/client/config"
	"github.com/dmitrijs2005/todokeeper/internal/client/session"
	"github.com/dmitrijs2005/todokeeper/internal/common"
	"github.com/urfave/cli/v2"
)

var (
	errNotLoggedIn    = errors.New("not logged in, run `todokeeper login` first")
	errSessionExpired = errors.New("session is no longer valid, please log in again")
)

type App struct {
	cfg    *config.Config
	in     *bufio.Reader
	out    io.Writer
	client *api.Client
	store  *session.Store
}

// New builds the command tree. Global flags and TODOKEEPER_* variables
// override the values already loaded into cfg.
func New(cfg *config.Config, in io.Reader, out io.Writer) *cli.App {
	a := &App{cfg: cfg, in: bufio.NewReader(in), out: out}

	return &cli.App{
		Name:      "todokeeper",
		Usage:     "Manage your todos from the terminal",
		Writer:    out,
		ErrWriter: out,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "server",
				Aliases:     []string{"a"},
				Usage:       "Base URL of the todokeeper server",
				EnvVars:     []string{"TODOKEEPER_SERVER"},
				Value:       cfg.ServerURL,
				Destination: &cfg.ServerURL,
			},
			&cli.StringFlag{
				Name:        "state",
				Aliases:     []string{"s"},
				Usage:       "Path of the local session file",
				EnvVars:     []string{"TODOKEEPER_STATE"},
				Value:       cfg.StatePath,
				Destination: &cfg.StatePath,
			},
			&cli.DurationFlag{
				Name:        "timeout",
				Aliases:     []string{"t"},
				Usage:       "Request timeout",
				Value:       cfg.Timeout,
				Destination: &cfg.Timeout,
			},
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to a JSON config file",
			},
		},
		Before: a.open,
		After:  a.close,
		Commands: []*cli.Command{
			a.registerCmd(),
			a.loginCmd(),
			a.logoutCmd(),
			a.logoutAllCmd(),
			a.deleteAccountCmd(),
			a.whoamiCmd(),
			a.addCmd(),
			a.listCmd(),
			a.showCmd(),
			a.setCompletedCmd("done", "Mark a todo as completed", true),
			a.setCompletedCmd("undone", "Mark a todo as not completed", false),
			a.renameCmd(),
			a.removeCmd(),
		},
	}
}

func (a *App) open(c *cli.Context) error {
	client, err := api.New(a.cfg.ServerURL, a.cfg.Timeout)
	if err != nil {
		return err
	}
	store, err := session.Open(c.Context, a.cfg.StatePath)
	if err != nil {
		return err
	}
	a.client, a.store = client, store
	return nil
}

func (a *App) close(*cli.Context) error {
	if a.store == nil {
		return nil
	}
	err := a.store.Close()
	a.store = nil
	return err
}

// authed loads the stored session for the current server and runs fn with
// it. A token the server no longer accepts is forgotten.
func (a *App) authed(fn func(c *cli.Context, sess *session.Session) error) cli.ActionFunc {
	return func(c *cli.Context) error {
		sess, err := a.store.Load(c.Context, a.cfg.ServerURL)
		if errors.Is(err, common.ErrorNotFound) {
			return errNotLoggedIn
		}
		if err != nil {
			return err
		}

		err = fn(c, sess)
		if errors.Is(err, common.ErrorUnauthorized) {
			_ = a.store.Clear(c.Context, a.cfg.ServerURL)
			return errSessionExpired
		}
		return err
	}
}
