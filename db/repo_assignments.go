package db

import (
	"context"
	"strings"
	"time"

	"Gin_postgres_redis_asset_tool/lifecycle"
	"Gin_postgres_redis_asset_tool/models"

	"gorm.io/gorm"
)

func (r *Repo) CreateAssignment(ctx context.Context, a *models.Assignment) error {
	return r.DB.WithContext(ctx).Create(a).Error
}

func (r *Repo) FindAssignment(ctx context.Context, id uint, lock bool) (*models.Assignment, error) {
	var a models.Assignment
	if err := r.lockable(ctx, lock).First(&a, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &a, nil
}

// FindAssignmentInLocation only matches assignments whose asset sits in locationID.
func (r *Repo) FindAssignmentInLocation(ctx context.Context, id, locationID uint, lock bool) (*models.Assignment, error) {
	var a models.Assignment
	if err := r.lockable(ctx, lock).
		Where("id = ? AND asset_id IN (?)", id,
			r.DB.Model(&models.Asset{}).Select("id").Where("location_id = ?", locationID)).
		First(&a).Error; err != nil {
		return nil, err
	}
	return &a, nil
}

// FindAssignmentFor only matches assignments owned by assignee.
func (r *Repo) FindAssignmentFor(ctx context.Context, id, assignee uint, lock bool) (*models.Assignment, error) {
	var a models.Assignment
	if err := r.lockable(ctx, lock).
		Where("id = ? AND assigned_to = ?", id, assignee).
		First(&a).Error; err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *Repo) UpdateAssignmentFields(ctx context.Context, id, assetID, assignedTo uint, date time.Time, note string) error {
	return r.DB.WithContext(ctx).Model(&models.Assignment{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"asset_id":      assetID,
			"assigned_to":   assignedTo,
			"assigned_date": date,
			"note":          note,
			"updated_at":    time.Now(),
		}).Error
}

// CountHeldByUser counts the user's assignments that still hold an asset.
func (r *Repo) CountHeldByUser(ctx context.Context, userID uint) (int64, error) {
	var n int64
	err := r.DB.WithContext(ctx).Model(&models.Assignment{}).
		Where("assigned_to = ? AND state IN ?", userID, []lifecycle.AssignmentState{
			lifecycle.AssignmentWaitingForAcceptance, lifecycle.AssignmentAccepted,
		}).
		Count(&n).Error
	return n, err
}

type AssignmentRow struct {
	ID            uint                      `json:"id"`
	AssetID       uint                      `json:"assetId"`
	AssetCode     string                    `json:"assetCode"`
	AssetName     string                    `json:"assetName"`
	AssignedToID  uint                      `json:"assignedToId"`
	AssignedTo    string                    `json:"assignedTo"`
	AssignedByID  uint                      `json:"assignedById"`
	AssignedBy    string                    `json:"assignedBy"`
	AssignedDate  time.Time                 `json:"assignedDate"`
	Note          string                    `json:"note,omitempty"`
	State         lifecycle.AssignmentState `json:"state"`
	HasOpenReturn bool                      `json:"hasOpenReturn"`
}

type AssignmentsQuery struct {
	LocationID uint // 0 = 不限地点
	AssignedTo uint // 0 = 不限人
	Q          string
	States     []lifecycle.AssignmentState
	From, To   *time.Time
	Page       int
	Size       int
}

type PagedAssignments struct {
	Total int64           `json:"total"`
	Items []AssignmentRow `json:"items"`
}

func (r *Repo) ListAssignments(ctx context.Context, q AssignmentsQuery) (*PagedAssignments, error) {
	offset, size := pageOf(q.Page, q.Size, 200)

	// 子查询：未完成的归还申请
	open := r.DB.Table(models.ReturningRequestTable+" rr").
		Select("1").
		Where("rr.assignment_id = s.id AND rr.deleted_at IS NULL AND rr.state = ?", lifecycle.ReturningWaiting)

	qry := r.DB.WithContext(ctx).
		Table(models.AssignmentTable+" s").
		Select(`
			s.id, s.asset_id, a.code AS asset_code, a.name AS asset_name,
			s.assigned_to AS assigned_to_id, ut.username AS assigned_to,
			s.assigned_by AS assigned_by_id, ub.username AS assigned_by,
			s.assigned_date, s.note, s.state,
			EXISTS (?) AS has_open_return
		`, open).
		Joins("JOIN "+models.AssetTable+" a ON a.id = s.asset_id").
		Joins("JOIN "+models.UserTable+" ut ON ut.id = s.assigned_to").
		Joins("JOIN "+models.UserTable+" ub ON ub.id = s.assigned_by").
		Where("s.deleted_at IS NULL")

	if q.LocationID != 0 {
		qry = qry.Where("a.location_id = ?", q.LocationID)
	}
	if q.AssignedTo != 0 {
		qry = qry.Where("s.assigned_to = ?", q.AssignedTo)
	}
	if s := strings.TrimSpace(q.Q); s != "" {
		pat := "%" + strings.ToLower(s) + "%"
		qry = qry.Where("LOWER(a.code) LIKE ? OR LOWER(a.name) LIKE ? OR LOWER(ut.username) LIKE ?", pat, pat, pat)
	}
	if len(q.States) > 0 {
		qry = qry.Where("s.state IN ?", q.States)
	}
	if q.From != nil {
		qry = qry.Where("s.assigned_date >= ?", *q.From)
	}
	if q.To != nil {
		qry = qry.Where("s.assigned_date <= ?", *q.To)
	}
	qry = qry.Session(&gorm.Session{})

	var total int64
	if err := qry.Count(&total).Error; err != nil {
		return nil, err
	}

	var rows []AssignmentRow
	if err := qry.Order("s.assigned_date DESC, s.id DESC").Offset(offset).Limit(size).Scan(&rows).Error; err != nil {
		return nil, err
	}
	return &PagedAssignments{Total: total, Items: rows}, nil
}
