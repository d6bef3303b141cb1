package models

import "time"

const (
	LocationTable = "am_locations"
	CategoryTable = "am_categories"
)

type Location struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"uniqueIndex;size:100;not null" json:"name"`
	CreatedAt time.Time `json:"createdAt"`
}

// Category 资产分类；Prefix 用于生成资产编号，例如 LA000001
type Category struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"uniqueIndex;size:100;not null" json:"name"`
	Prefix    string    `gorm:"uniqueIndex;size:3;not null" json:"prefix"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (Location) TableName() string { return LocationTable }
func (Category) TableName() string { return CategoryTable }
