// models/asset.go
package models

import (
	"time"

	"Gin_postgres_redis_asset_tool/lifecycle"

	"gorm.io/gorm"
)

const (
	AssetTable            = "am_assets"
	AssignmentTable       = "am_assignments"
	ReturningRequestTable = "am_returning_requests"
)

type Asset struct {
	ID            uint                 `gorm:"primaryKey" json:"id"`
	Code          string               `gorm:"size:20;uniqueIndex;not null" json:"code"` // 分类前缀 + 6 位序号
	Name          string               `gorm:"size:200;not null" json:"name"`
	CategoryID    uint                 `gorm:"index;not null" json:"categoryId"`
	LocationID    uint                 `gorm:"index;not null" json:"locationId"`
	Specification string               `gorm:"type:text" json:"specification"`
	InstalledDate time.Time            `json:"installedDate"`
	State         lifecycle.AssetState `gorm:"size:30;index;not null" json:"state"`
	CreatedAt     time.Time            `json:"createdAt"`
	UpdatedAt     time.Time            `json:"updatedAt"`
	DeletedAt     gorm.DeletedAt       `gorm:"index" json:"-"`
}

type Assignment struct {
	ID           uint                      `gorm:"primaryKey" json:"id"`
	AssetID      uint                      `gorm:"index;not null" json:"assetId"`
	AssignedTo   uint                      `gorm:"index;not null" json:"assignedTo"`
	AssignedBy   uint                      `gorm:"not null" json:"assignedBy"`
	AssignedDate time.Time                 `gorm:"index;not null" json:"assignedDate"`
	Note         string                    `gorm:"size:500" json:"note,omitempty"`
	State        lifecycle.AssignmentState `gorm:"size:30;index;not null" json:"state"`
	CreatedAt    time.Time                 `json:"createdAt"`
	UpdatedAt    time.Time                 `json:"updatedAt"`
	DeletedAt    gorm.DeletedAt            `gorm:"index" json:"-"`
}

type ReturningRequest struct {
	ID           uint                     `gorm:"primaryKey" json:"id"`
	AssignmentID uint                     `gorm:"index;not null" json:"assignmentId"`
	RequestedBy  uint                     `gorm:"not null" json:"requestedBy"`
	AcceptedBy   *uint                    `json:"acceptedBy,omitempty"`
	ReturnedDate *time.Time               `json:"returnedDate,omitempty"`
	State        lifecycle.ReturningState `gorm:"size:30;index;not null" json:"state"`
	CreatedAt    time.Time                `json:"createdAt"`
	UpdatedAt    time.Time                `json:"updatedAt"`
	DeletedAt    gorm.DeletedAt           `gorm:"index" json:"-"`
}

func (Asset) TableName() string            { return AssetTable }
func (Assignment) TableName() string       { return AssignmentTable }
func (ReturningRequest) TableName() string { return ReturningRequestTable }

func (a Asset) Ref() lifecycle.AssetRef {
	return lifecycle.AssetRef{ID: a.ID, Code: a.Code, State: a.State}
}

func (a Assignment) Ref() lifecycle.AssignmentRef {
	return lifecycle.AssignmentRef{ID: a.ID, AssetID: a.AssetID, AssignedTo: a.AssignedTo, State: a.State}
}

func (r ReturningRequest) Ref() lifecycle.ReturningRef {
	return lifecycle.ReturningRef{ID: r.ID, AssignmentID: r.AssignmentID, State: r.State}
}

// TableFor maps a lifecycle entity to its table.
func TableFor(e lifecycle.Entity) string {
	switch e {
	case lifecycle.EntityAsset:
		return AssetTable
	case lifecycle.EntityAssignment:
		return AssignmentTable
	case lifecycle.EntityReturningRequest:
		return ReturningRequestTable
	}
	return ""
}
