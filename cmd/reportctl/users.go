package main

import (
	"fmt"
	"text/tabwriter"

	"cctv-surveillance-reports/be/client/session"
	"cctv-surveillance-reports/be/vocab"

	"github.com/spf13/cobra"
)

func newUserCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage operator accounts (admin)",
	}
	cmd.AddCommand(newUserAddCmd(a), newUserListCmd(a), newUserPasswdCmd(a))
	return cmd
}

func newUserAddCmd(a *app) *cobra.Command {
	var username, password, role string
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Create an operator account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.require(session.RouteAddUser); err != nil {
				return err
			}
			if username == "" {
				username = a.ask("Username: ")
			}
			if password == "" {
				password = a.ask("Password: ")
			}
			if username == "" || password == "" {
				return fmt.Errorf("username and password are required")
			}
			if !vocab.Roles().Contains(role) {
				return fmt.Errorf("unknown role %q", role)
			}

			user, err := a.client().Register(cmd.Context(), username, password, role)
			if err != nil {
				return err
			}
			if user != nil {
				username, role = user.Username, user.Role
			}
			fmt.Fprintf(a.out, "User %s created with role %s\n", username, role)
			return nil
		},
	}
	cmd.Flags().StringVarP(&username, "username", "u", "", "username")
	cmd.Flags().StringVarP(&password, "password", "p", "", "password (prompted when empty)")
	cmd.Flags().StringVar(&role, "role", vocab.RoleUser, "admin or user")
	return cmd
}

func newUserListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List operator accounts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.require(session.RouteAddUser); err != nil {
				return err
			}
			users, err := a.client().ListUsers(cmd.Context())
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "USERNAME\tROLE")
			for _, u := range users {
				fmt.Fprintf(tw, "%s\t%s\n", u.Username, u.Role)
			}
			return tw.Flush()
		},
	}
}

// newUserPasswdCmd changes the session user's password, or with --user
// resets another account's password without the old one.
func newUserPasswdCmd(a *app) *cobra.Command {
	var target, oldPassword, newPassword string
	cmd := &cobra.Command{
		Use:   "passwd",
		Short: "Change a password",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.require(session.RouteChangePassword); err != nil {
				return err
			}
			if newPassword == "" {
				newPassword = a.ask("New password: ")
			}
			if newPassword == "" {
				return fmt.Errorf("new password is required")
			}

			if target != "" && target != a.sess.Username {
				if err := a.client().AdminChangePassword(cmd.Context(), target, newPassword); err != nil {
					return err
				}
				fmt.Fprintf(a.out, "Password changed for %s\n", target)
				return nil
			}

			if oldPassword == "" {
				oldPassword = a.ask("Old password: ")
			}
			if err := a.client().ChangePassword(cmd.Context(), a.sess.Username, oldPassword, newPassword); err != nil {
				return err
			}
			fmt.Fprintln(a.out, "Password changed successfully")
			return nil
		},
	}
	cmd.Flags().StringVar(&target, "user", "", "account to reset (default: yourself)")
	cmd.Flags().StringVar(&oldPassword, "old", "", "current password")
	cmd.Flags().StringVar(&newPassword, "new", "", "new password")
	return cmd
}
