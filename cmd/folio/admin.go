package main

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-folio/internal/domain"
	"github.com/goliatone/go-folio/internal/users"
)

func (a *app) migrateCommand() *cobra.Command {
	var rollback bool
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending schema migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			module, _, err := a.open()
			if err != nil {
				return err
			}
			defer module.Close()

			run := module.Migrate
			verb := "applied"
			if rollback {
				run = module.Rollback
				verb = "rolled back"
			}
			names, err := run(cmd.Context())
			if err != nil {
				return err
			}
			if len(names) == 0 {
				a.printf("no migrations %s\n", verb)
				return nil
			}
			for _, name := range names {
				a.printf("%s %s\n", verb, name)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&rollback, "rollback", false, "roll back the last migration group")
	return cmd
}

func (a *app) seedCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Seed locales and the bootstrap admin account",
		RunE: func(cmd *cobra.Command, args []string) error {
			module, _, err := a.open()
			if err != nil {
				return err
			}
			defer module.Close()

			if err := module.Bootstrap(cmd.Context()); err != nil {
				return err
			}
			active, err := module.Locales().Active(cmd.Context())
			if err != nil {
				return err
			}
			codes := make([]string, 0, len(active))
			for _, locale := range active {
				codes = append(codes, locale.Code)
			}
			a.printf("seeded locales: %s\n", strings.Join(codes, ", "))
			return nil
		},
	}
}

func (a *app) userCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage admin accounts",
	}

	var req users.CreateUserRequest
	var role string
	create := &cobra.Command{
		Use:   "create",
		Short: "Create an account",
		RunE: func(cmd *cobra.Command, args []string) error {
			module, _, err := a.open()
			if err != nil {
				return err
			}
			defer module.Close()

			if err := module.Bootstrap(cmd.Context()); err != nil {
				return err
			}
			req.Role = domain.ParseRole(role)
			user, err := module.Users().Create(cmd.Context(), req)
			if err != nil {
				return err
			}
			a.printf("created %s %s (%s)\n", user.Role, user.Email, user.ID)
			return nil
		},
	}
	create.Flags().StringVar(&req.Email, "email", "", "login email")
	create.Flags().StringVar(&req.Name, "name", "", "display name")
	create.Flags().StringVar(&req.Password, "password", "", "initial password")
	create.Flags().StringVar(&role, "role", string(domain.RoleEditor), "admin, editor or viewer")
	_ = create.MarkFlagRequired("email")
	_ = create.MarkFlagRequired("password")

	cmd.AddCommand(create)
	return cmd
}
