package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/brianmay/penguin-nurse/internal"
	"github.com/brianmay/penguin-nurse/internal/service"
	"github.com/brianmay/penguin-nurse/internal/storage"
	"github.com/spf13/cobra"
)

const passwordEnv = "PENGUIN_NURSE_PASSWORD"

var userCmd = &cobra.Command{
	Use:   "user",
	Short: "Manage accounts",
}

var (
	userUsername string
	userEmail    string
	userFullName string
	userOIDCID   string
	userAdmin    bool
)

var userCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create an account",
	Long:  "Create an account. The password is read from " + passwordEnv + "; it may be left unset for OIDC-only accounts.",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := setup()
		if err != nil {
			return err
		}
		defer logger.Sync()

		store, err := storage.Open(cmd.Context(), cfg, logger)
		if err != nil {
			return err
		}
		defer store.Close()

		password := os.Getenv(passwordEnv)
		n := &internal.NewUser{
			Username:        userUsername,
			Password:        password,
			PasswordConfirm: password,
			FullName:        userFullName,
			Email:           userEmail,
			IsAdmin:         userAdmin,
		}
		if userOIDCID != "" {
			n.OIDCID = internal.Ptr(userOIDCID)
		}
		if n.FullName == "" {
			n.FullName = n.Username
		}
		u, err := service.NewUserService(store.Users()).CreateInitial(cmd.Context(), n)
		var verrs service.ValidationErrors
		if errors.As(err, &verrs) {
			for field, msg := range verrs {
				fmt.Fprintf(cmd.ErrOrStderr(), "%s: %s\n", field, msg)
			}
			return errors.New("invalid user")
		}
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Created user %s (id %d)\n", u.Username, u.ID)
		return nil
	},
}

func init() {
	userCreateCmd.Flags().StringVar(&userUsername, "username", "", "Login name")
	userCreateCmd.Flags().StringVar(&userEmail, "email", "", "Email address")
	userCreateCmd.Flags().StringVar(&userFullName, "full-name", "", "Display name (defaults to the username)")
	userCreateCmd.Flags().StringVar(&userOIDCID, "oidc-id", "", "OIDC subject to link")
	userCreateCmd.Flags().BoolVar(&userAdmin, "admin", false, "Grant admin rights")
	_ = userCreateCmd.MarkFlagRequired("username")
	_ = userCreateCmd.MarkFlagRequired("email")

	userCmd.AddCommand(userCreateCmd)
	rootCmd.AddCommand(userCmd)
}
