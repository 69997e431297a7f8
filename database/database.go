package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cctv-surveillance-reports/be/config"
	"cctv-surveillance-reports/be/models"
	"cctv-surveillance-reports/be/repository"
	"cctv-surveillance-reports/be/utils"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Initialize connects the configured backend and returns its repositories.
func Initialize(ctx context.Context, cfg config.DatabaseConfig, debug bool, log *zap.Logger) (*repository.Store, error) {
	switch cfg.Driver {
	case "postgres", "":
		dsn := fmt.Sprintf(
			"host=%s user=%s password=%s dbname=%s port=%s sslmode=%s",
			cfg.Host, cfg.User, cfg.Password, cfg.DBName, cfg.Port, cfg.SSLMode,
		)
		return openGorm(postgres.Open(dsn), debug, log)
	case "sqlite":
		return openGorm(sqlite.Open(cfg.SQLitePath), debug, log)
	case "mongo":
		return openMongo(ctx, cfg, log)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
}

func openGorm(dialector gorm.Dialector, debug bool, log *zap.Logger) (*repository.Store, error) {
	level := logger.Warn
	if debug {
		level = logger.Info
	}
	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(level),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := repository.Migrate(db); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	log.Info("database initialized", zap.String("dialect", dialector.Name()))
	return repository.NewGormStore(db), nil
}

func openMongo(ctx context.Context, cfg config.DatabaseConfig, log *zap.Logger) (*repository.Store, error) {
	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}
	if err := client.Ping(connectCtx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	store, err := repository.NewMongoStore(connectCtx, client, cfg.MongoDatabase)
	if err != nil {
		_ = client.Disconnect(ctx)
		return nil, err
	}

	log.Info("database initialized", zap.String("dialect", "mongo"), zap.String("database", cfg.MongoDatabase))
	return store, nil
}

// EnsureDefaultAdmin creates the bootstrap account when no user with that
// username exists yet. An existing account is left untouched.
func EnsureDefaultAdmin(ctx context.Context, users repository.Users, admin config.AdminConfig, log *zap.Logger) error {
	if _, err := users.FindByUsername(ctx, admin.Username); err == nil {
		log.Info("default admin user already exists", zap.String("username", admin.Username))
		return nil
	} else if !errors.Is(err, repository.ErrNotFound) {
		return err
	}

	hashedPassword, err := utils.HashPassword(admin.Password)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	if err := users.Create(ctx, &models.User{
		Username:     admin.Username,
		PasswordHash: hashedPassword,
		Role:         admin.Role,
	}); err != nil {
		return err
	}

	log.Info("default admin user created", zap.String("username", admin.Username), zap.String("role", admin.Role))
	return nil
}
