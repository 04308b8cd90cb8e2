package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/five82/shelf/internal/booktracker"
	"github.com/five82/shelf/internal/config"
)

var usernameFlag string

func init() {
	signupCmd.Flags().StringVarP(&usernameFlag, "username", "u", "", "Account name (default from config)")
	loginCmd.Flags().StringVarP(&usernameFlag, "username", "u", "", "Account name (default from config)")
}

var signupCmd = &cobra.Command{
	Use:   "signup",
	Short: "Create an account and log in",
	RunE: func(cmd *cobra.Command, args []string) error {
		return authenticate(cmd, true)
	},
}

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Log in and remember the session",
	RunE: func(cmd *cobra.Command, args []string) error {
		return authenticate(cmd, false)
	},
}

func authenticate(cmd *cobra.Command, signup bool) error {
	env, err := openEnv()
	if err != nil {
		return err
	}
	defer env.Close()

	in := bufio.NewReader(cmd.InOrStdin())
	creds, err := credentials(in, cmd.ErrOrStderr(), env.Config)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if signup {
		if err := env.Client.Signup(ctx, creds); err != nil {
			return err
		}
		// Signup does not always leave a session behind.
		if _, err := env.Client.Me(ctx); errors.Is(err, booktracker.ErrUnauthorized) {
			if err := env.Client.Login(ctx, creds); err != nil {
				return err
			}
		}
	} else if err := env.Client.Login(ctx, creds); err != nil {
		return err
	}

	if err := env.SaveLogin(); err != nil {
		return fmt.Errorf("save login: %w", err)
	}
	env.Logger.Info("logged in", zap.String("username", creds.Username), zap.Bool("signup", signup))
	fmt.Fprintf(cmd.OutOrStdout(), "Logged in as %s\n", creds.Username)
	return nil
}

// credentials resolves the username from the flag or config and the
// password from SHELF_PASSWORD, prompting for whichever is missing.
func credentials(in *bufio.Reader, prompt io.Writer, cfg config.Config) (booktracker.Credentials, error) {
	creds := booktracker.Credentials{Username: usernameFlag, Password: cfg.Password}
	if creds.Username == "" {
		creds.Username = cfg.Username
	}
	var err error
	if creds.Username == "" {
		if creds.Username, err = readLine(in, prompt, "Username: "); err != nil {
			return booktracker.Credentials{}, err
		}
	}
	if creds.Password == "" {
		fmt.Fprintf(prompt, "(set %s to skip this prompt)\n", config.EnvPassword)
		if creds.Password, err = readLine(in, prompt, "Password: "); err != nil {
			return booktracker.Credentials{}, err
		}
	}
	return creds, nil
}

func readLine(in *bufio.Reader, prompt io.Writer, label string) (string, error) {
	fmt.Fprint(prompt, label)
	line, err := in.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", fmt.Errorf("read %s: %w", strings.ToLower(strings.TrimSuffix(label, ": ")), err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "End the session and forget the saved login",
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := openEnv()
		if err != nil {
			return err
		}
		defer env.Close()

		if err := env.Client.Logout(cmd.Context()); err != nil && !errors.Is(err, booktracker.ErrUnauthorized) {
			env.Logger.Warn("backend logout failed", zap.Error(err))
		}
		if err := env.ClearLogin(); err != nil {
			return fmt.Errorf("clear login: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Logged out")
		return nil
	},
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the logged-in account",
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := openEnv()
		if err != nil {
			return err
		}
		defer env.Close()

		user, err := env.Client.Me(cmd.Context())
		if errors.Is(err, booktracker.ErrUnauthorized) {
			return errors.New("not logged in; run `shelf login`")
		}
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s (id %d) at %s\n", user.Username, user.ID, env.Client.BaseURL())
		return nil
	},
}
