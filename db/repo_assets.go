// db/repo_assets.go
package db

import (
	"context"
	"strings"
	"time"

	"Gin_postgres_redis_asset_tool/lifecycle"
	"Gin_postgres_redis_asset_tool/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

func (r *Repo) CreateAsset(ctx context.Context, a *models.Asset) error {
	return r.DB.WithContext(ctx).Create(a).Error
}

func (r *Repo) lockable(ctx context.Context, lock bool) *gorm.DB {
	q := r.DB.WithContext(ctx)
	if lock {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	return q
}

// FindAssetInLocation 按地点查资产；lock=true 时锁住该行（需在事务内）
func (r *Repo) FindAssetInLocation(ctx context.Context, id, locationID uint, lock bool) (*models.Asset, error) {
	var a models.Asset
	if err := r.lockable(ctx, lock).
		Where("id = ? AND location_id = ?", id, locationID).
		First(&a).Error; err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *Repo) FindAssetByID(ctx context.Context, id uint, lock bool) (*models.Asset, error) {
	var a models.Asset
	if err := r.lockable(ctx, lock).First(&a, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &a, nil
}

// UpdateAssetFields writes descriptive columns only; state goes through ApplyPlan.
func (r *Repo) UpdateAssetFields(ctx context.Context, id uint, name, spec string, installed time.Time) error {
	return r.DB.WithContext(ctx).Model(&models.Asset{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"name":           name,
			"specification":  spec,
			"installed_date": installed,
			"updated_at":     time.Now(),
		}).Error
}

// AssetCodesWithPrefix 扫描某前缀下所有编号（含已删除），用于序号恢复
func (r *Repo) AssetCodesWithPrefix(ctx context.Context, prefix string) ([]string, error) {
	var codes []string
	err := r.DB.WithContext(ctx).Unscoped().Model(&models.Asset{}).
		Where("code LIKE ?", prefix+"%").
		Pluck("code", &codes).Error
	return codes, err
}

// CountAssignmentHistory counts every assignment ever made for the asset,
// soft-deleted ones included.
func (r *Repo) CountAssignmentHistory(ctx context.Context, assetID uint) (int64, error) {
	var n int64
	err := r.DB.WithContext(ctx).Unscoped().Model(&models.Assignment{}).
		Where("asset_id = ?", assetID).
		Count(&n).Error
	return n, err
}

type AssetRow struct {
	ID            uint                 `json:"id"`
	Code          string               `json:"code"`
	Name          string               `json:"name"`
	CategoryID    uint                 `json:"categoryId"`
	CategoryName  string               `json:"categoryName"`
	LocationID    uint                 `json:"locationId"`
	Specification string               `json:"specification"`
	InstalledDate time.Time            `json:"installedDate"`
	State         lifecycle.AssetState `json:"state"`
	CreatedAt     time.Time            `json:"createdAt"`
	UpdatedAt     time.Time            `json:"updatedAt"`
}

type AssetsQuery struct {
	LocationID  uint
	Q           string // 模糊搜索：code/name
	States      []lifecycle.AssetState
	CategoryIDs []uint
	Sort        string // code, name, category, state
	Desc        bool
	Page        int
	Size        int
}

type PagedAssets struct {
	Total int64      `json:"total"`
	Items []AssetRow `json:"items"`
}

var assetSorts = map[string]string{
	"code":     "a.code",
	"name":     "a.name",
	"category": "c.name",
	"state":    "a.state",
}

func (r *Repo) ListAssets(ctx context.Context, q AssetsQuery) (*PagedAssets, error) {
	offset, size := pageOf(q.Page, q.Size, 200)

	qry := r.DB.WithContext(ctx).
		Table(models.AssetTable+" a").
		Select(`
			a.id, a.code, a.name, a.category_id, c.name AS category_name, a.location_id,
			a.specification, a.installed_date, a.state, a.created_at, a.updated_at
		`).
		Joins("JOIN "+models.CategoryTable+" c ON c.id = a.category_id").
		Where("a.deleted_at IS NULL AND a.location_id = ?", q.LocationID)

	if s := strings.TrimSpace(q.Q); s != "" {
		pat := "%" + strings.ToLower(s) + "%"
		qry = qry.Where("LOWER(a.code) LIKE ? OR LOWER(a.name) LIKE ?", pat, pat)
	}
	if len(q.States) > 0 {
		qry = qry.Where("a.state IN ?", q.States)
	}
	if len(q.CategoryIDs) > 0 {
		qry = qry.Where("a.category_id IN ?", q.CategoryIDs)
	}
	qry = qry.Session(&gorm.Session{})

	var total int64
	if err := qry.Count(&total).Error; err != nil {
		return nil, err
	}

	col, ok := assetSorts[q.Sort]
	if !ok {
		col = "a.code"
	}
	order := col
	if q.Desc {
		order += " DESC"
	}

	var rows []AssetRow
	if err := qry.Order(order).Order("a.id").Offset(offset).Limit(size).Scan(&rows).Error; err != nil {
		return nil, err
	}
	return &PagedAssets{Total: total, Items: rows}, nil
}

type HistoryRow struct {
	AssignmentID uint                      `json:"assignmentId"`
	AssignedDate time.Time                 `json:"assignedDate"`
	AssignedTo   string                    `json:"assignedTo"`
	AssignedBy   string                    `json:"assignedBy"`
	State        lifecycle.AssignmentState `json:"state"`
	ReturnedDate *time.Time                `json:"returnedDate,omitempty"`
}

// AssetHistory lists the non-deleted assignments of an asset, newest first.
func (r *Repo) AssetHistory(ctx context.Context, assetID uint) ([]HistoryRow, error) {
	var rows []HistoryRow
	err := r.DB.WithContext(ctx).
		Table(models.AssignmentTable+" s").
		Select(`
			s.id AS assignment_id, s.assigned_date, s.state,
			ut.username AS assigned_to, ub.username AS assigned_by,
			rr.returned_date
		`).
		Joins("JOIN "+models.UserTable+" ut ON ut.id = s.assigned_to").
		Joins("JOIN "+models.UserTable+" ub ON ub.id = s.assigned_by").
		Joins("LEFT JOIN "+models.ReturningRequestTable+" rr ON rr.assignment_id = s.id AND rr.deleted_at IS NULL AND rr.state = ?", lifecycle.ReturningCompleted).
		Where("s.asset_id = ? AND s.deleted_at IS NULL", assetID).
		Order("s.assigned_date DESC, s.id DESC").
		Scan(&rows).Error
	return rows, err
}
