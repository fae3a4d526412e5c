package cli

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/todokeeper/internal/client/api"
	"github.com/dmitrijs2005/todokeeper/internal/client/session"
	"github.com/urfave/cli/v2"
)

var errMissingID = errors.New("todo id is required")

func (a *App) printTodo(t *api.Todo) {
	mark := " "
	if t.Completed {
		mark = "x"
	}
	fmt.Fprintf(a.out, "[%s] %s  %s\n", mark, t.ID, t.Text)
}

func (a *App) text(c *cli.Context, from int) (string, error) {
	text := strings.TrimSpace(strings.Join(c.Args().Slice()[min(from, c.Args().Len()):], " "))
	if text != "" {
		return text, nil
	}
	return GetSimpleText(a.in, "Enter todo text", a.out)
}

func (a *App) addCmd() *cli.Command {
	return &cli.Command{
		Name:      "add",
		Usage:     "Create a todo",
		ArgsUsage: "<text>",
		Action: a.authed(func(c *cli.Context, sess *session.Session) error {
			text, err := a.text(c, 0)
			if err != nil {
				return err
			}
			t, err := a.client.CreateTodo(c.Context, sess.Token, text)
			if err != nil {
				return err
			}
			a.printTodo(t)
			return nil
		}),
	}
}

func (a *App) listCmd() *cli.Command {
	var pending bool
	return &cli.Command{
		Name:    "list",
		Aliases: []string{"ls"},
		Usage:   "List todos",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "pending", Usage: "Only show todos that are not completed", Destination: &pending},
		},
		Action: a.authed(func(c *cli.Context, sess *session.Session) error {
			todos, err := a.client.ListTodos(c.Context, sess.Token)
			if err != nil {
				return err
			}
			shown := 0
			for i := range todos {
				if pending && todos[i].Completed {
					continue
				}
				a.printTodo(&todos[i])
				shown++
			}
			if shown == 0 {
				fmt.Fprintln(a.out, "No todos")
			}
			return nil
		}),
	}
}

func (a *App) showCmd() *cli.Command {
	return &cli.Command{
		Name:      "show",
		Usage:     "Show one todo",
		ArgsUsage: "<id>",
		Action: a.authed(func(c *cli.Context, sess *session.Session) error {
			if c.Args().Len() == 0 {
				return errMissingID
			}
			t, err := a.client.GetTodo(c.Context, sess.Token, c.Args().First())
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "ID:        %s\nText:      %s\nCompleted: %t\n", t.ID, t.Text, t.Completed)
			if t.CompletedAt != nil {
				fmt.Fprintf(a.out, "Done at:   %s\n", time.UnixMilli(*t.CompletedAt).Format(time.RFC3339))
			}
			return nil
		}),
	}
}

func (a *App) setCompletedCmd(name, usage string, completed bool) *cli.Command {
	return &cli.Command{
		Name:      name,
		Usage:     usage,
		ArgsUsage: "<id>",
		Action: a.authed(func(c *cli.Context, sess *session.Session) error {
			if c.Args().Len() == 0 {
				return errMissingID
			}
			t, err := a.client.UpdateTodo(c.Context, sess.Token, c.Args().First(), api.TodoUpdate{Completed: completed})
			if err != nil {
				return err
			}
			a.printTodo(t)
			return nil
		}),
	}
}

func (a *App) renameCmd() *cli.Command {
	return &cli.Command{
		Name:      "rename",
		Usage:     "Change the text of a todo",
		ArgsUsage: "<id> <text>",
		Action: a.authed(func(c *cli.Context, sess *session.Session) error {
			if c.Args().Len() == 0 {
				return errMissingID
			}
			id := c.Args().First()

			// an update without "completed" would reopen the todo
			cur, err := a.client.GetTodo(c.Context, sess.Token, id)
			if err != nil {
				return err
			}

			text, err := a.text(c, 1)
			if err != nil {
				return err
			}

			t, err := a.client.UpdateTodo(c.Context, sess.Token, id, api.TodoUpdate{Text: &text, Completed: cur.Completed})
			if err != nil {
				return err
			}
			a.printTodo(t)
			return nil
		}),
	}
}

func (a *App) removeCmd() *cli.Command {
	return &cli.Command{
		Name:      "rm",
		Usage:     "Delete a todo",
		ArgsUsage: "<id>",
		Action: a.authed(func(c *cli.Context, sess *session.Session) error {
			if c.Args().Len() == 0 {
				return errMissingID
			}
			t, err := a.client.DeleteTodo(c.Context, sess.Token, c.Args().First())
			if err != nil {
				return err
			}
			fmt.Fprint(a.out, "Deleted ")
			a.printTodo(t)
			return nil
		}),
	}
}
