package cli

import (
	"bufio"
	"io"

	"github.com/dmitrijs2005/gophtasks/internal/client/session"
	"github.com/dmitrijs2005/gophtasks/internal/common"
	"github.com/spf13/cobra"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
var (
	getSimpleText = GetSimpleText
	getPassword   = GetPassword
)

// readCredentials takes the username from args when given and prompts for
// the rest. The caller wipes the password.
func readCredentials(args []string, reader *bufio.Reader, w io.Writer) (string, []byte, error) {
	var userName string
	if len(args) > 0 {
		userName = args[0]
	} else {
		name, err := getSimpleText(reader, "Enter username", w)
		if err != nil {
			return "", nil, err
		}
		userName = name
	}

	password, err := getPassword(reader, w)
	if err != nil {
		return "", nil, err
	}
	return userName, password, nil
}

func (a *App) registerCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "register [username]",
		Short: "Create an account",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			userName, password, err := readCredentials(args, a.reader, a.out)
			if err != nil {
				return err
			}
			defer common.WipeByteArray(password)

			if err := a.api.Register(cmd.Context(), userName, password); err != nil {
				return err
			}
			a.printf("Registration successful! Run `gophtasks login %s` to sign in.\n", userName)
			return nil
		},
	}
}

func (a *App) loginCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "login [username]",
		Short: "Sign in and store the session",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			userName, password, err := readCredentials(args, a.reader, a.out)
			if err != nil {
				return err
			}
			defer common.WipeByteArray(password)

			res, err := a.api.Login(cmd.Context(), userName, password)
			if err != nil {
				return err
			}

			s := &session.Session{ServerURL: a.config.ServerURL, Token: res.Token, UserName: res.UserName}
			if err := session.Save(a.config.SessionFile, s); err != nil {
				return err
			}
			a.session = s
			a.printf("Logged in as %s\n", res.UserName)
			return nil
		},
	}
}

func (a *App) logoutCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := session.Clear(a.config.SessionFile); err != nil {
				return err
			}
			a.session = &session.Session{}
			a.printf("Logged out\n")
			return nil
		},
	}
}

func (a *App) healthCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check that the server is up",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			h, err := a.api.Health(cmd.Context())
			if err != nil {
				return err
			}
			a.printf("%s: %s (database %s)\n", h.Service, h.Status, h.Database)
			return nil
		},
	}
}
