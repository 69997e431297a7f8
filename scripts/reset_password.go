package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"cctv-surveillance-reports/be/config"
	"cctv-surveillance-reports/be/database"
	"cctv-surveillance-reports/be/logging"
	"cctv-surveillance-reports/be/utils"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func main() {
	var username, password string
	cmd := &cobra.Command{
		Use:          "reset_password",
		Short:        "Set a user's password directly in the database",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			_ = godotenv.Load()
			cfg := config.Load()
			logger := logging.New(false)
			defer logger.Sync()

			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()

			store, err := database.Initialize(ctx, cfg.Database, false, logger)
			if err != nil {
				return fmt.Errorf("failed to connect to database: %w", err)
			}
			defer store.Close(ctx)

			hashed, err := utils.HashPassword(password)
			if err != nil {
				return fmt.Errorf("failed to hash password: %w", err)
			}
			if err := store.Users.UpdatePassword(ctx, username, hashed); err != nil {
				return fmt.Errorf("failed to update password for %s: %w", username, err)
			}
			logger.Info("password updated", zap.String("username", username))
			return nil
		},
	}
	cmd.Flags().StringVar(&username, "username", "", "account to update")
	cmd.Flags().StringVar(&password, "password", "", "new password")
	_ = cmd.MarkFlagRequired("username")
	_ = cmd.MarkFlagRequired("password")

	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
