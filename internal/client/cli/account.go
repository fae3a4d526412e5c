package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/todokeeper/internal/client/api"
	"github.com/dmitrijs2005/todokeeper/internal/client/session"
	"github.com/dmitrijs2005/todokeeper/internal/common"
	"github.com/urfave/cli/v2"
)

func credentialFlags(email, password *string) []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "email",
			Aliases:     []string{"e"},
			Usage:       "Account email (prompted when empty)",
			Destination: email,
		},
		&cli.StringFlag{
			Name:        "password",
			Aliases:     []string{"p"},
			Usage:       "Account password (prompted when empty)",
			Destination: password,
		},
	}
}

func (a *App) credentials(email, password string) (string, string, error) {
	var err error
	if email == "" {
		if email, err = GetSimpleText(a.in, "Enter email", a.out); err != nil {
			return "", "", err
		}
	}
	if password == "" {
		if password, err = GetPassword(a.in, a.out); err != nil {
			return "", "", err
		}
	}
	return email, password, nil
}

type authFunc func(ctx context.Context, email, password string) (*api.User, string, error)

func (a *App) authCommand(name, usage, done string, call func() authFunc) *cli.Command {
	var email, password string
	return &cli.Command{
		Name:  name,
		Usage: usage,
		Flags: credentialFlags(&email, &password),
		Action: func(c *cli.Context) error {
			email, password, err := a.credentials(email, password)
			if err != nil {
				return err
			}

			user, token, err := call()(c.Context, email, password)
			if err != nil {
				return err
			}

			err = a.store.Save(c.Context, session.Session{
				ServerURL: a.cfg.ServerURL,
				UserID:    user.ID,
				Email:     user.Email,
				Token:     token,
			})
			if err != nil {
				return err
			}

			fmt.Fprintf(a.out, "%s %s\n", done, user.Email)
			return nil
		},
	}
}

func (a *App) registerCmd() *cli.Command {
	return a.authCommand("register", "Create an account and log in", "Registered as",
		func() authFunc { return a.client.Register })
}

func (a *App) loginCmd() *cli.Command {
	return a.authCommand("login", "Log in to an existing account", "Logged in as",
		func() authFunc { return a.client.Login })
}

// revoke runs call and forgets the local session. A server that already
// rejects the token is treated as logged out.
func (a *App) revoke(c *cli.Context, sess *session.Session, call func(context.Context, string) error, msg string) error {
	err := call(c.Context, sess.Token)
	if err != nil && !errors.Is(err, common.ErrorUnauthorized) {
		return err
	}
	if err := a.store.Clear(c.Context, a.cfg.ServerURL); err != nil {
		return err
	}
	fmt.Fprintln(a.out, msg)
	return nil
}

func (a *App) logoutCmd() *cli.Command {
	return &cli.Command{
		Name:  "logout",
		Usage: "End the current session",
		Action: a.authed(func(c *cli.Context, sess *session.Session) error {
			return a.revoke(c, sess, a.client.Logout, "Logged out")
		}),
	}
}

func (a *App) logoutAllCmd() *cli.Command {
	return &cli.Command{
		Name:  "logout-all",
		Usage: "End every session of the account, on all devices",
		Action: a.authed(func(c *cli.Context, sess *session.Session) error {
			return a.revoke(c, sess, a.client.LogoutAll, "Logged out everywhere")
		}),
	}
}

func (a *App) deleteAccountCmd() *cli.Command {
	var yes bool
	return &cli.Command{
		Name:  "delete-account",
		Usage: "Delete the account and all of its todos",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "yes", Aliases: []string{"y"}, Usage: "Do not ask for confirmation", Destination: &yes},
		},
		Action: a.authed(func(c *cli.Context, sess *session.Session) error {
			if !yes {
				answer, err := GetSimpleText(a.in, fmt.Sprintf("Delete %s and all its todos? [y/N]", sess.Email), a.out)
				if err != nil {
					return err
				}
				if !strings.EqualFold(answer, "y") && !strings.EqualFold(answer, "yes") {
					fmt.Fprintln(a.out, "Aborted")
					return nil
				}
			}
			if err := a.client.DeleteAccount(c.Context, sess.Token); err != nil {
				return err
			}
			if err := a.store.Clear(c.Context, a.cfg.ServerURL); err != nil {
				return err
			}
			fmt.Fprintln(a.out, "Account deleted")
			return nil
		}),
	}
}

func (a *App) whoamiCmd() *cli.Command {
	return &cli.Command{
		Name:  "whoami",
		Usage: "Show the logged in account",
		Action: a.authed(func(c *cli.Context, sess *session.Session) error {
			u, err := a.client.Me(c.Context, sess.Token)
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "%s (%s)\n", u.Email, u.ID)
			return nil
		}),
	}
}
