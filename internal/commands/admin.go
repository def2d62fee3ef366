package commands

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/fastygo/contentflow/domain"
	"github.com/fastygo/contentflow/internal/bootstrap"
	authUC "github.com/fastygo/contentflow/usecase/auth"
)

const passwordEnv = "CONTENTCTL_ADMIN_PASSWORD"

func newCreateAdminCmd(e *env) *cobra.Command {
	var email, name, password string

	cmd := &cobra.Command{
		Use:   "create-admin",
		Short: "Create an admin account",
		Long: `Sign-up always creates team members, so the first admin is created here.
The password may be passed with --password or the ` + passwordEnv + ` variable.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if password == "" {
				password = os.Getenv(passwordEnv)
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()

			backend, err := bootstrap.OpenStore(ctx, e.cfg, e.logger)
			if err != nil {
				return err
			}
			defer backend.Close(context.Background())

			auth := authUC.New(backend.Store.Users, backend.Store.Credentials, nil, authUC.Config{
				Secret: e.cfg.JWT.Secret,
				Issuer: e.cfg.JWT.Issuer,
			}, e.logger)

			user, err := auth.Register(ctx, domain.User{Email: email, Name: name, Role: domain.RoleAdmin}, password)
			if err != nil {
				return err
			}
			fmt.Fprintf(e.out, "admin %s created with id %s\n", user.Email, user.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "admin email (required)")
	cmd.Flags().StringVar(&name, "name", "", "display name (required)")
	cmd.Flags().StringVar(&password, "password", "", "initial password")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("name")
	return cmd
}
