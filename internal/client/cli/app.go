package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/dmitrijs2005/gophtasks/internal/buildinfo"
	"github.com/dmitrijs2005/gophtasks/internal/client/client"
	"github.com/dmitrijs2005/gophtasks/internal/client/config"
	"github.com/dmitrijs2005/gophtasks/internal/client/session"
	"github.com/spf13/cobra"
)

var errNotLoggedIn = errors.New("not logged in, run `gophtasks login` first")

// newClient builds the API client for a command; tests swap it for a fake.
var newClient = func(baseURL, token string, timeout time.Duration) client.Client {
	return client.NewHTTPClient(baseURL, token, timeout)
}

// App carries everything one command invocation needs. It is built fresh
// by the root command's pre-run hook.
type App struct {
	config  *config.Config
	session *session.Session
	api     client.Client
	reader  *bufio.Reader
	out     io.Writer
	now     func() time.Time
}

// NewRootCommand returns the gophtasks command tree reading prompts from in
// and writing to out.
func NewRootCommand(in io.Reader, out io.Writer) *cobra.Command {
	a := &App{reader: bufio.NewReader(in), out: out, now: time.Now}

	root := &cobra.Command{
		Use:           "gophtasks",
		Short:         "Manage your gophtasks to-do list from the terminal",
		Version:       buildinfo.Version(),
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init(cmd)
		},
	}
	root.SetOut(out)
	root.SetErr(out)
	config.BindFlags(root.PersistentFlags())

	root.AddCommand(
		a.registerCommand(),
		a.loginCommand(),
		a.logoutCommand(),
		a.healthCommand(),
		a.listCommand(),
		a.statsCommand(),
		a.addCommand(),
		a.editCommand(),
		a.deleteCommand(),
	)
	root.AddCommand(a.toggleCommands()...)

	return root
}

func (a *App) init(cmd *cobra.Command) error {
	cfg, err := config.LoadConfig(cmd.Flags())
	if err != nil {
		return err
	}
	sess, err := session.Load(cfg.SessionFile)
	if err != nil {
		return err
	}

	a.config = cfg
	a.session = sess
	a.api = newClient(cfg.ServerURL, sess.Token, cfg.RequestTimeout)
	return nil
}

func (a *App) requireLogin() error {
	if !a.session.LoggedIn() {
		return errNotLoggedIn
	}
	return nil
}

// check drops the stored session when the server no longer accepts its
// token, so the next command asks for a login instead of failing again.
func (a *App) check(err error) error {
	if err == nil || !client.IsAuthFailure(err) || !a.session.LoggedIn() {
		return err
	}
	if clearErr := session.Clear(a.config.SessionFile); clearErr != nil {
		return errors.Join(err, clearErr)
	}
	return fmt.Errorf("%w (session cleared, run `gophtasks login` again)", err)
}

func (a *App) printf(format string, args ...any) {
	fmt.Fprintf(a.out, format, args...)
}
