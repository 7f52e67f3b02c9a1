package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/Xunop/library-tracker/internal/api/auth"
	"github.com/Xunop/library-tracker/internal/catalog"
	"github.com/Xunop/library-tracker/internal/log"
	"github.com/Xunop/library-tracker/internal/model"
	"github.com/Xunop/library-tracker/internal/store"
	"github.com/Xunop/library-tracker/internal/store/db"
	"github.com/Xunop/library-tracker/internal/validator"
)

const (
	defaultAdminUsername = "admin"
	defaultAdminPassword = "admin"
)

var (
	userEmail string
	userRoles []string

	seedCmd = &cobra.Command{
		Use:   "seed",
		Short: "Insert the roles and a default admin/admin account",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd.Context(), func(ctx context.Context, d *db.DB, s *store.Store) error {
				if err := d.Seed(ctx); err != nil {
					return err
				}
				return seedAdmin(ctx, s)
			})
		},
	}

	seedDemoCmd = &cobra.Command{
		Use:   "seed-demo",
		Short: "Insert a few demo books",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd.Context(), func(ctx context.Context, _ *db.DB, s *store.Store) error {
				return catalog.SeedDemo(ctx, s)
			})
		},
	}

	userCmd = &cobra.Command{
		Use:   "user",
		Short: "Manage user accounts",
	}

	userCreateCmd = &cobra.Command{
		Use:   "create <username>",
		Short: "Create a user, the password is prompted",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd.Context(), func(ctx context.Context, _ *db.DB, s *store.Store) error {
				return createUser(ctx, s, args[0])
			})
		},
	}

	importCmd = &cobra.Command{
		Use:   "import <file.csv>",
		Short: "Import books from a CSV file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd.Context(), func(ctx context.Context, _ *db.DB, s *store.Store) error {
				return importFile(ctx, s, args[0])
			})
		},
	}

	exportCmd = &cobra.Command{
		Use:   "export [file.csv]",
		Short: "Export the catalog as CSV, to stdout when no file is given",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd.Context(), func(ctx context.Context, _ *db.DB, s *store.Store) error {
				if len(args) == 0 {
					return catalog.Export(ctx, s, os.Stdout)
				}
				return exportFile(ctx, s, args[0])
			})
		},
	}
)

func init() {
	userCreateCmd.Flags().StringVar(&userEmail, "email", "", "email address")
	userCreateCmd.Flags().StringSliceVar(&userRoles, "role", []string{string(model.RoleViewer)}, "role to grant, repeatable (admin, editeur, lecteur)")
	userCmd.AddCommand(userCreateCmd)
}

// seedAdmin creates admin/admin unless an admin account already exists.
func seedAdmin(ctx context.Context, s *store.Store) error {
	username := defaultAdminUsername
	existing, err := s.GetUser(ctx, &model.FindUser{Username: &username})
	if err != nil {
		return err
	}
	if existing != nil {
		log.Info("Admin user already exists, skipping")
		return nil
	}

	hash, err := auth.HashPassword(defaultAdminPassword)
	if err != nil {
		return err
	}
	if _, err := s.CreateUser(ctx, &model.User{
		Username:     username,
		PasswordHash: hash,
		Roles:        model.NewRoleSet(model.RoleAdmin),
	}); err != nil {
		return err
	}
	log.Warn("Created the admin user with the default password, change it after the first login",
		zap.String("username", username))
	return nil
}

func createUser(ctx context.Context, s *store.Store, username string) error {
	roles := make([]model.Role, 0, len(userRoles))
	for _, name := range userRoles {
		roles = append(roles, model.Role(strings.TrimSpace(name)))
	}

	password, err := readPassword("Password: ")
	if err != nil {
		return err
	}
	confirm, err := readPassword("Confirm password: ")
	if err != nil {
		return err
	}
	if password != confirm {
		return errors.New("passwords do not match")
	}

	create := &model.UserCreateRequest{
		Username: strings.TrimSpace(username),
		Password: password,
		Email:    strings.TrimSpace(userEmail),
		Roles:    roles,
	}
	if err := validator.ValidateUserCreateRequest(ctx, s, create); err != nil {
		return err
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return err
	}
	user, err := s.CreateUser(ctx, &model.User{
		Username:     create.Username,
		Email:        create.Email,
		PasswordHash: hash,
		Roles:        model.NewRoleSet(roles...),
	})
	if err != nil {
		return err
	}
	fmt.Printf("Created user %s (id %d)\n", user.Username, user.ID)
	return nil
}

// readPassword reads a password from the terminal without echo.
func readPassword(prompt string) (string, error) {
	fmt.Fprint(os.Stderr, prompt)
	bytePassword, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", errors.Wrap(err, "failed to read password")
	}
	return strings.TrimSpace(string(bytePassword)), nil
}

func importFile(ctx context.Context, s *store.Store, path string) error {
	file, err := os.Open(path)
	if err != nil {
		return errors.Wrapf(err, "unable to open %s", path)
	}
	defer file.Close()

	result, err := catalog.Import(ctx, s, file)
	if err != nil {
		return err
	}
	fmt.Printf("created: %d, updated: %d, skipped: %d\n", result.Created, result.Updated, result.Skipped)
	for _, message := range result.Errors {
		fmt.Println(message)
	}
	return nil
}

func exportFile(ctx context.Context, s *store.Store, path string) error {
	file, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "unable to create %s", path)
	}
	if err := catalog.Export(ctx, s, file); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}
