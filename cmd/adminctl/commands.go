package main

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/99minutos/admin-console/internal/core/domain"
	"github.com/99minutos/admin-console/internal/core/service"
)

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:           "adminctl",
		Short:         "Manage the users of the directory service",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return validOutput(a.out)
		},
	}
	root.SetIn(a.stdin)
	root.SetOut(a.stdout)
	root.SetErr(a.stderr)

	root.PersistentFlags().StringVar(&a.apiURL, "api-url", a.apiURL, "base URL of the user-directory service (env ADMIN_API_URL)")
	root.PersistentFlags().DurationVar(&a.timeout, "timeout", a.timeout, "request timeout (env ADMIN_API_TIMEOUT)")
	root.PersistentFlags().StringVar(&a.credentials, "credentials", a.credentials, "credentials file (env ADMINCTL_CREDENTIALS)")
	root.PersistentFlags().StringVar(&a.out, "out", a.out, "output format: text|json")

	root.AddCommand(newLoginCmd(a), newLogoutCmd(a), newWhoamiCmd(a), newUsersCmd(a))
	return root
}

func newLoginCmd(a *app) *cobra.Command {
	var email, password, token, userID string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and store the issued token",
		Long: "Sign in with --email (the password is prompted when --password is omitted),\n" +
			"or store an already issued token with --token.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			sess := a.session()

			if token == "" {
				if email == "" {
					return errors.New("--email or --token is required")
				}
				if password == "" {
					p, err := readLine(a.stdin, a.stderr, "Password: ")
					if err != nil {
						return err
					}
					password = p
				}
				res, err := a.client().Login(ctx, email, password)
				if err != nil {
					var netErr *domain.NetworkError
					if errors.As(err, &netErr) && netErr.Status == http.StatusUnauthorized {
						return errors.New("invalid email or password")
					}
					return err
				}
				token = res.Token
				if userID == "" && res.User != nil {
					userID = res.User.ID
				}
			}

			if err := sess.Login(ctx, token, userID); err != nil {
				return err
			}
			cred, err := sess.Credential(ctx)
			if err != nil {
				return err
			}
			if !cred.Present {
				fmt.Fprintln(a.stderr, "warning: the stored token could not be decoded; guarded commands will refuse it")
			}
			return printWhoami(a.stdout, a.out, cred)
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "account email")
	cmd.Flags().StringVar(&password, "password", "", "account password (prompted when omitted)")
	cmd.Flags().StringVar(&token, "token", "", "store this bearer token instead of signing in")
	cmd.Flags().StringVar(&userID, "user-id", "", "user id to store alongside --token")
	return cmd
}

func newLogoutCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.session().Logout(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(a.stderr, "signed out")
			return nil
		},
	}
}

func newWhoamiCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the stored credential (decoded, not verified)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cred, err := a.session().Credential(cmd.Context())
			if err != nil {
				return err
			}
			return printWhoami(a.stdout, a.out, cred)
		},
	}
}

func newUsersCmd(a *app) *cobra.Command {
	var cred domain.Credential
	users := &cobra.Command{
		Use:   "users",
		Short: "List and manage users (admin only)",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := validOutput(a.out); err != nil {
				return err
			}
			c, err := a.authorize(cmd.Context(), domain.RoleAdmin)
			if err != nil {
				return err
			}
			cred = c
			return nil
		},
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List all users",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			l := a.userList(cred, nil)
			defer l.Close()
			items, err := l.Load(cmd.Context())
			if err != nil {
				return err
			}
			return printUsers(a.stdout, a.out, items)
		},
	}

	toggle := &cobra.Command{
		Use:   "toggle-role ID",
		Short: "Toggle a user's role, then show the reloaded list",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			l := a.userList(cred, nil)
			defer l.Close()
			err := l.ChangeRole(cmd.Context(), args[0])
			return a.afterAction(l, err)
		},
	}

	var yes bool
	del := &cobra.Command{
		Use:   "delete ID",
		Short: "Delete a user after confirmation, then show the reloaded list",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			l := a.userList(cred, &promptConfirmer{in: a.stdin, out: a.stderr, assumeYes: yes})
			defer l.Close()
			err := l.Delete(cmd.Context(), args[0])
			if service.IsDeclined(err) {
				fmt.Fprintln(a.stderr, "cancelled; nothing was deleted")
				return nil
			}
			return a.afterAction(l, err)
		},
	}
	del.Flags().BoolVarP(&yes, "yes", "y", false, "do not ask for confirmation")

	users.AddCommand(list, toggle, del)
	return users
}

// afterAction prints whatever the reload produced, then the action's error.
func (a *app) afterAction(l *service.UserList, err error) error {
	var actionErr *service.ActionError
	if err == nil || (errors.As(err, &actionErr) && actionErr.ReloadErr == nil) {
		if perr := printUsers(a.stdout, a.out, l.Snapshot().Items); perr != nil {
			return perr
		}
	}
	return err
}
