package main

import (
	"fmt"

	"cctv-surveillance-reports/be/client/session"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newLoginCmd(a *app) *cobra.Command {
	var username, password string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in and store the session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if username == "" {
				username = a.ask("Username: ")
			}
			if password == "" {
				password = a.ask("Password: ")
			}
			if username == "" || password == "" {
				return fmt.Errorf("username and password are required")
			}

			user, token, err := a.client().Login(cmd.Context(), username, password)
			if err != nil {
				return err
			}
			sess := session.Session{Authenticated: true, Username: user.Username, Role: user.Role, Token: token}
			if err := a.store.Save(sess); err != nil {
				return err
			}
			a.sess = sess
			a.log.Debug("session saved", zap.String("path", a.store.Path()))
			fmt.Fprintf(a.out, "Logged in as %s (%s)\n", user.Username, user.Role)
			return nil
		},
	}
	cmd.Flags().StringVarP(&username, "username", "u", "", "username")
	cmd.Flags().StringVarP(&password, "password", "p", "", "password (prompted when empty)")
	return cmd
}

func newLogoutCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.store.Clear(); err != nil {
				return err
			}
			a.sess = session.Session{}
			fmt.Fprintln(a.out, "Logged out")
			return nil
		},
	}
}

func newWhoamiCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the session user and the pages it may open",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if a.sess.Authenticated {
				fmt.Fprintf(a.out, "%s (%s)\n", a.sess.Username, a.sess.Role)
			} else {
				fmt.Fprintln(a.out, "Not logged in")
			}
			for _, r := range a.sess.VisibleRoutes() {
				fmt.Fprintf(a.out, "  %s\n", r)
			}
			return nil
		},
	}
}
