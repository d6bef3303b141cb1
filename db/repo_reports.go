package db

import (
	"context"

	"Gin_postgres_redis_asset_tool/lifecycle"
	"Gin_postgres_redis_asset_tool/models"
)

type StateCount struct {
	CategoryID   uint
	CategoryName string
	State        lifecycle.AssetState
	N            int64
}

// CountAssetsByCategoryState groups a location's assets by category and
// state. Categories without assets in the location are not returned.
func (r *Repo) CountAssetsByCategoryState(ctx context.Context, locationID uint) ([]StateCount, error) {
	var rows []StateCount
	err := r.DB.WithContext(ctx).
		Table(models.AssetTable+" a").
		Select("c.id AS category_id, c.name AS category_name, a.state, COUNT(*) AS n").
		Joins("JOIN "+models.CategoryTable+" c ON c.id = a.category_id").
		Where("a.deleted_at IS NULL AND a.location_id = ?", locationID).
		Group("c.id, c.name, a.state").
		Order("c.name, a.state").
		Scan(&rows).Error
	return rows, err
}
