package db

import (
	"fmt"

	"Gin_postgres_redis_asset_tool/lifecycle"
	"Gin_postgres_redis_asset_tool/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func ConnectDB(dsn string) (*gorm.DB, error) {
	conn, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}
	if err := Migrate(conn); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return conn, nil
}

func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.Location{}, &models.Category{}, &models.User{},
		&models.Asset{}, &models.Assignment{}, &models.ReturningRequest{},
	); err != nil {
		return err
	}

	// 同一资产最多一条“占用中”的分配
	if err := db.Exec(fmt.Sprintf(`
	  CREATE UNIQUE INDEX IF NOT EXISTS %s_one_active_per_asset
	  ON %s (asset_id)
	  WHERE deleted_at IS NULL AND state IN ('%s', '%s');
	`, models.AssignmentTable, models.AssignmentTable,
		lifecycle.AssignmentWaitingForAcceptance, lifecycle.AssignmentAccepted)).Error; err != nil {
		return err
	}

	// 同一分配最多一条未完成的归还申请
	if err := db.Exec(fmt.Sprintf(`
	  CREATE UNIQUE INDEX IF NOT EXISTS %s_one_open_per_assignment
	  ON %s (assignment_id)
	  WHERE deleted_at IS NULL AND state = '%s';
	`, models.ReturningRequestTable, models.ReturningRequestTable, lifecycle.ReturningWaiting)).Error; err != nil {
		return err
	}

	return nil
}
