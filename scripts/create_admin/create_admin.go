package main

import (
	"context"
	"errors"
	"time"

	"cctv-surveillance-reports/be/config"
	"cctv-surveillance-reports/be/database"
	"cctv-surveillance-reports/be/logging"
	"cctv-surveillance-reports/be/repository"
	"cctv-surveillance-reports/be/utils"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

// Creates the DEFAULT_ADMIN_* account, or resets its password if it exists.
func main() {
	envErr := godotenv.Load()
	cfg := config.Load()

	logger := logging.New(false)
	defer logger.Sync()
	if envErr != nil {
		logger.Info("no .env file found, using environment variables")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	store, err := database.Initialize(ctx, cfg.Database, false, logger)
	if err != nil {
		logger.Fatal("failed to connect to database", zap.Error(err))
	}
	defer store.Close(ctx)

	admin := cfg.Admin
	_, err = store.Users.FindByUsername(ctx, admin.Username)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		logger.Info("admin user not found, creating", zap.String("username", admin.Username))
		if err := database.EnsureDefaultAdmin(ctx, store.Users, admin, logger); err != nil {
			logger.Fatal("failed to create admin user", zap.Error(err))
		}
	case err != nil:
		logger.Fatal("failed to look up admin user", zap.Error(err))
	default:
		logger.Info("admin user found, resetting password", zap.String("username", admin.Username))
		hashed, err := utils.HashPassword(admin.Password)
		if err != nil {
			logger.Fatal("failed to hash password", zap.Error(err))
		}
		if err := store.Users.UpdatePassword(ctx, admin.Username, hashed); err != nil {
			logger.Fatal("failed to update password", zap.Error(err))
		}
		logger.Info("admin password reset", zap.String("username", admin.Username))
	}
}
