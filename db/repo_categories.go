package db

import (
	"context"

	"Gin_postgres_redis_asset_tool/models"
)

func (r *Repo) CreateCategory(ctx context.Context, c *models.Category) error {
	return r.DB.WithContext(ctx).Create(c).Error
}

func (r *Repo) FindCategoryByID(ctx context.Context, id uint) (*models.Category, error) {
	var c models.Category
	if err := r.DB.WithContext(ctx).First(&c, id).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

// CategoryTaken reports whether name or prefix is already used, case-insensitively.
func (r *Repo) CategoryTaken(ctx context.Context, name, prefix string) (nameTaken, prefixTaken bool, err error) {
	var n int64
	if err = r.DB.WithContext(ctx).Model(&models.Category{}).
		Where("LOWER(name) = LOWER(?)", name).Count(&n).Error; err != nil {
		return
	}
	nameTaken = n > 0
	if err = r.DB.WithContext(ctx).Model(&models.Category{}).
		Where("UPPER(prefix) = UPPER(?)", prefix).Count(&n).Error; err != nil {
		return
	}
	prefixTaken = n > 0
	return
}

func (r *Repo) ListCategories(ctx context.Context) ([]models.Category, error) {
	var cs []models.Category
	err := r.DB.WithContext(ctx).Order("name").Find(&cs).Error
	return cs, err
}
