// app/bootstrap.go
package app

import (
	"context"
	"fmt"
	"time"

	"Gin_postgres_redis_asset_tool/config"
	"Gin_postgres_redis_asset_tool/db"
	"Gin_postgres_redis_asset_tool/models"

	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

// BootstrapFirstAdmin creates the configured admin and its location when
// no admin exists yet. It returns whether an account was created.
func BootstrapFirstAdmin(ctx context.Context, cfg config.Config, repo *db.Repo, log *logrus.Logger) (bool, error) {
	if cfg.BootstrapUsername == "" || cfg.BootstrapPassword == "" {
		return false, nil
	}
	n, err := repo.CountAdmins(ctx)
	if err != nil {
		return false, fmt.Errorf("count admins: %w", err)
	}
	if n > 0 {
		return false, nil // 已经有管理员，跳过
	}

	loc, err := repo.FirstOrCreateLocation(ctx, cfg.BootstrapLocation)
	if err != nil {
		return false, fmt.Errorf("bootstrap location: %w", err)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(cfg.BootstrapPassword), bcrypt.DefaultCost)
	if err != nil {
		return false, fmt.Errorf("hash password: %w", err)
	}
	u := &models.User{
		Username:           cfg.BootstrapUsername,
		PasswordHash:       string(hash),
		FirstName:          "Admin",
		LastName:           loc.Name,
		Type:               models.UserAdmin,
		LocationID:         loc.ID,
		MustChangePassword: true,
		JoinedDate:         time.Now().UTC(),
	}
	if err := repo.CreateUser(ctx, u); err != nil {
		return false, fmt.Errorf("bootstrap admin: %w", err)
	}
	log.WithFields(logrus.Fields{"user": u.Username, "location": loc.Name}).Warn("[BOOTSTRAP] no admin found, created the first admin")
	return true, nil
}
