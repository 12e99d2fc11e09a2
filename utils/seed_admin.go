package utils

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/princinho/storefront/config"
	"github.com/princinho/storefront/models"
)

type AdminSeeder interface {
	InsertIfAbsent(ctx context.Context, user *models.User) (bool, error)
}

func SeedAdminUser(ctx context.Context, store AdminSeeder, cfg config.AdminConfig, bcryptCost int, logger *slog.Logger) error {
	email := NormalizeEmail(cfg.Email)
	if email == "" || cfg.Password == "" {
		return fmt.Errorf("missing ADMIN_EMAIL or ADMIN_PASSWORD env vars")
	}

	admin := &models.User{
		Name:  "Administrator",
		Email: email,
		Role:  models.RoleAdmin,
	}
	if err := admin.SetPassword(cfg.Password, bcryptCost); err != nil {
		return fmt.Errorf("hash admin password: %w", err)
	}

	// Only insert if it doesn't exist
	created, err := store.InsertIfAbsent(ctx, admin)
	if err != nil {
		return fmt.Errorf("seed admin upsert failed: %w", err)
	}

	if created {
		logger.Info("admin user seeded", slog.String("email", email))
	} else {
		logger.Info("admin user already exists", slog.String("email", email))
	}
	return nil
}
