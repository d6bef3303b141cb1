// Package dbtest opens a migrated in-memory SQLite database for tests.
package dbtest

import (
	"fmt"
	"testing"
	"time"

	"Gin_postgres_redis_asset_tool/db"
	"Gin_postgres_redis_asset_tool/lifecycle"
	"Gin_postgres_redis_asset_tool/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Open returns a private database migrated with db.Migrate. SQLite has no
// row locks, so one connection serializes all access.
func Open(t testing.TB) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := conn.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.Migrate(conn))
	return conn
}

const Password = "secret-pass"

type Fixture struct {
	HQ      models.Location
	Branch  models.Location
	Admin   models.User
	Staff   models.User
	Other   models.User // staff in Branch
	Laptop  models.Category
	Monitor models.Category
}

// Seed creates two locations, an admin and a staff member in HQ, a staff
// member in Branch and two categories. Every user's password is Password.
func Seed(t testing.TB, conn *gorm.DB) Fixture {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(Password), bcrypt.MinCost)
	require.NoError(t, err)

	f := Fixture{
		HQ:      models.Location{Name: "HQ"},
		Branch:  models.Location{Name: "Branch"},
		Laptop:  models.Category{Name: "Laptop", Prefix: "LA"},
		Monitor: models.Category{Name: "Monitor", Prefix: "MO"},
	}
	require.NoError(t, conn.Create(&f.HQ).Error)
	require.NoError(t, conn.Create(&f.Branch).Error)
	require.NoError(t, conn.Create(&f.Laptop).Error)
	require.NoError(t, conn.Create(&f.Monitor).Error)

	joined := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	user := func(name string, typ models.UserType, loc uint) models.User {
		u := models.User{
			Username:     name,
			PasswordHash: string(hash),
			FirstName:    name,
			LastName:     "Test",
			Type:         typ,
			LocationID:   loc,
			JoinedDate:   joined,
		}
		require.NoError(t, conn.Create(&u).Error)
		return u
	}
	f.Admin = user("admin", models.UserAdmin, f.HQ.ID)
	f.Staff = user("staff", models.UserStaff, f.HQ.ID)
	f.Other = user("other", models.UserStaff, f.Branch.ID)
	return f
}

// Asset inserts an asset directly, bypassing code generation.
func Asset(t testing.TB, conn *gorm.DB, code string, cat models.Category, loc models.Location, state lifecycle.AssetState) models.Asset {
	t.Helper()
	a := models.Asset{
		Code:          code,
		Name:          code + " device",
		CategoryID:    cat.ID,
		LocationID:    loc.ID,
		InstalledDate: time.Date(2023, 6, 1, 0, 0, 0, 0, time.UTC),
		State:         state,
	}
	require.NoError(t, conn.Create(&a).Error)
	return a
}
