package db

import (
	"context"
	"strings"
	"time"

	"Gin_postgres_redis_asset_tool/lifecycle"
	"Gin_postgres_redis_asset_tool/models"

	"gorm.io/gorm"
)

func (r *Repo) CreateReturningRequest(ctx context.Context, rr *models.ReturningRequest) error {
	return r.DB.WithContext(ctx).Create(rr).Error
}

func (r *Repo) FindReturningRequest(ctx context.Context, id uint, lock bool) (*models.ReturningRequest, error) {
	var rr models.ReturningRequest
	if err := r.lockable(ctx, lock).First(&rr, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &rr, nil
}

func (r *Repo) HasOpenReturningRequest(ctx context.Context, assignmentID uint) (bool, error) {
	var n int64
	err := r.DB.WithContext(ctx).Model(&models.ReturningRequest{}).
		Where("assignment_id = ? AND state = ?", assignmentID, lifecycle.ReturningWaiting).
		Count(&n).Error
	return n > 0, err
}

// MarkReturnAccepted records who completed the request and when; the state
// itself is moved by ApplyPlan.
func (r *Repo) MarkReturnAccepted(ctx context.Context, id, adminID uint, at time.Time) error {
	return r.DB.WithContext(ctx).Model(&models.ReturningRequest{}).
		Where("id = ?", id).
		Updates(map[string]any{"accepted_by": adminID, "returned_date": at}).Error
}

type ReturningRow struct {
	ID           uint                     `json:"id"`
	AssignmentID uint                     `json:"assignmentId"`
	AssetCode    string                   `json:"assetCode"`
	AssetName    string                   `json:"assetName"`
	RequestedBy  string                   `json:"requestedBy"`
	AssignedDate time.Time                `json:"assignedDate"`
	AcceptedBy   *string                  `json:"acceptedBy,omitempty"`
	ReturnedDate *time.Time               `json:"returnedDate,omitempty"`
	State        lifecycle.ReturningState `json:"state"`
}

type ReturningQuery struct {
	LocationID uint
	Q          string
	States     []lifecycle.ReturningState
	Page       int
	Size       int
}

type PagedReturning struct {
	Total int64          `json:"total"`
	Items []ReturningRow `json:"items"`
}

func (r *Repo) ListReturningRequests(ctx context.Context, q ReturningQuery) (*PagedReturning, error) {
	offset, size := pageOf(q.Page, q.Size, 200)

	qry := r.DB.WithContext(ctx).
		Table(models.ReturningRequestTable+" rr").
		Select(`
			rr.id, rr.assignment_id, a.code AS asset_code, a.name AS asset_name,
			ur.username AS requested_by, s.assigned_date,
			ua.username AS accepted_by, rr.returned_date, rr.state
		`).
		Joins("JOIN "+models.AssignmentTable+" s ON s.id = rr.assignment_id").
		Joins("JOIN "+models.AssetTable+" a ON a.id = s.asset_id").
		Joins("JOIN "+models.UserTable+" ur ON ur.id = rr.requested_by").
		Joins("LEFT JOIN "+models.UserTable+" ua ON ua.id = rr.accepted_by").
		Where("rr.deleted_at IS NULL AND a.location_id = ?", q.LocationID)

	if s := strings.TrimSpace(q.Q); s != "" {
		pat := "%" + strings.ToLower(s) + "%"
		qry = qry.Where("LOWER(a.code) LIKE ? OR LOWER(a.name) LIKE ? OR LOWER(ur.username) LIKE ?", pat, pat, pat)
	}
	if len(q.States) > 0 {
		qry = qry.Where("rr.state IN ?", q.States)
	}
	qry = qry.Session(&gorm.Session{})

	var total int64
	if err := qry.Count(&total).Error; err != nil {
		return nil, err
	}

	var rows []ReturningRow
	if err := qry.Order("rr.id DESC").Offset(offset).Limit(size).Scan(&rows).Error; err != nil {
		return nil, err
	}
	return &PagedReturning{Total: total, Items: rows}, nil
}
