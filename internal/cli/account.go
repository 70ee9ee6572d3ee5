package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/adanyl0v/sprintsync/internal/client"
	"github.com/adanyl0v/sprintsync/internal/models"
	"github.com/adanyl0v/sprintsync/internal/query"
)

func newHealthCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check that the API is reachable",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := a.ctx(cmd)
			defer cancel()

			health, err := a.client.Health(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s: %s\n", health.Service, health.Version, health.Status)
			return nil
		},
	}
}

func newRegisterCommand(a *app) *cobra.Command {
	var req client.RegisterRequest

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := a.ctx(cmd)
			defer cancel()

			user, err := a.client.Register(ctx, req)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "registered %s, now run `sprintsync login`\n", user.Email)
			return nil
		},
	}

	cmd.Flags().StringVar(&req.Email, "email", "", "email address")
	cmd.Flags().StringVar(&req.Password, "password", "", "password (6-100 characters)")
	cmd.Flags().StringVar(&req.FullName, "name", "", "full name")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	_ = cmd.MarkFlagRequired("name")
	return cmd
}

func newLoginCommand(a *app) *cobra.Command {
	var req client.LoginRequest

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and remember the session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := a.ctx(cmd)
			defer cancel()

			user, err := a.client.Login(ctx, req)
			if err != nil {
				return err
			}
			a.cache.Reset()

			name := req.Email
			if user != nil && user.FullName != "" {
				name = user.FullName
			}
			fmt.Fprintf(cmd.OutOrStdout(), "signed in as %s\n", name)
			return nil
		},
	}

	cmd.Flags().StringVar(&req.Email, "email", "", "email address")
	cmd.Flags().StringVar(&req.Password, "password", "", "password")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func newLogoutCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.client.Logout(); err != nil {
				return err
			}
			a.cache.Reset()
			fmt.Fprintln(cmd.OutOrStdout(), "signed out")
			return nil
		},
	}
}

func newWhoamiCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.requireLogin(); err != nil {
				return err
			}
			ctx, cancel := a.ctx(cmd)
			defer cancel()

			user, err := a.client.Me(ctx)
			if err != nil {
				return explain(err)
			}
			role := "user"
			if user.IsAdmin {
				role = "admin"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s <%s> (%s)\n", user.FullName, user.Email, role)
			return nil
		},
	}
}

func newUsersCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "users",
		Short: "List users (admin)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.requireLogin(); err != nil {
				return err
			}
			ctx, cancel := a.ctx(cmd)
			defer cancel()

			users, err := query.Get(ctx, a.cache, query.KeyAdminUsers, a.client.ListUsers)
			if err != nil {
				return explain(err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderUsers(users))
			return nil
		},
	}

	var req client.CreateUserRequest
	add := &cobra.Command{
		Use:   "add",
		Short: "Create a user (admin)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.requireLogin(); err != nil {
				return err
			}
			ctx, cancel := a.ctx(cmd)
			defer cancel()

			_, err := query.Mutate(ctx, a.cache, a.createUser(req), query.KeyAdminUsers)
			if err != nil {
				return explain(err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created %s\n", req.Email)
			return nil
		},
	}
	add.Flags().StringVar(&req.Email, "email", "", "email address")
	add.Flags().StringVar(&req.Password, "password", "", "password")
	add.Flags().StringVar(&req.FullName, "name", "", "full name")
	add.Flags().BoolVar(&req.IsAdmin, "admin", false, "grant admin rights")
	_ = add.MarkFlagRequired("email")
	_ = add.MarkFlagRequired("password")
	_ = add.MarkFlagRequired("name")

	remove := &cobra.Command{
		Use:   "rm <user-id>",
		Short: "Delete a user and the tasks they own (admin)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireLogin(); err != nil {
				return err
			}
			ctx, cancel := a.ctx(cmd)
			defer cancel()

			keys := append([]string{query.KeyAdminUsers}, query.TaskKeys...)
			_, err := query.Mutate(ctx, a.cache, func(ctx context.Context) (struct{}, error) {
				return struct{}{}, a.client.DeleteUser(ctx, args[0])
			}, keys...)
			return explain(err)
		},
	}

	cmd.AddCommand(add, remove)
	return cmd
}

func (a *app) createUser(req client.CreateUserRequest) func(ctx context.Context) (*models.User, error) {
	return func(ctx context.Context) (*models.User, error) {
		return a.client.CreateUser(ctx, req)
	}
}
