// cmd/ledgerctl/user.go
package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	app "wallet-ledger/internal"
	"wallet-ledger/internal/domain"
	"wallet-ledger/internal/util"
)

var (
	userCreateUsername string
	userShowUsername   string
	userShowID         int64
)

var userCmd = &cobra.Command{
	Use:   "user",
	Short: "Manage user aggregates",
}

var userCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a user with an empty wallet",
	Long: `Create registers a user aggregate with zeroed wallet fields. Events can only
be appended for users that exist; this is how a ledger is bootstrapped.`,
	RunE: runUserCreate,
}

var userShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show a user and their materialized wallet fields",
	RunE:  runUserShow,
}

func init() {
	userCreateCmd.Flags().StringVar(&userCreateUsername, "username", "", "unique username")
	_ = userCreateCmd.MarkFlagRequired("username")

	userShowCmd.Flags().StringVar(&userShowUsername, "username", "", "look up by username")
	userShowCmd.Flags().Int64Var(&userShowID, "id", 0, "look up by user ID")

	userCmd.AddCommand(userCreateCmd)
	userCmd.AddCommand(userShowCmd)
	rootCmd.AddCommand(userCmd)
}

func runUserCreate(cmd *cobra.Command, args []string) error {
	username := strings.TrimSpace(userCreateUsername)
	if username == "" {
		return fmt.Errorf("username must not be blank: %w", util.ErrInvalidInput)
	}

	return withApp(cmd, func(ctx context.Context, application *app.Application) error {
		user := domain.NewUser(username)
		if err := application.UserRepository.CreateUser(ctx, application.DB, user); err != nil {
			return err
		}
		return printJSON(cmd, user)
	})
}

func runUserShow(cmd *cobra.Command, args []string) error {
	return withApp(cmd, func(ctx context.Context, application *app.Application) error {
		var (
			user *domain.User
			err  error
		)
		switch {
		case userShowUsername != "":
			user, err = application.UserRepository.GetUserByUsername(ctx, application.DB, userShowUsername)
		case userShowID > 0:
			user, err = application.UserRepository.GetUserByID(ctx, application.DB, userShowID)
		default:
			return fmt.Errorf("either --id or --username is required: %w", util.ErrInvalidInput)
		}
		if err != nil {
			return err
		}
		return printJSON(cmd, user)
	})
}
