package models

import (
	"time"
)

type UserType string

const (
	UserAdmin UserType = "Admin"
	UserStaff UserType = "Staff"
)

const UserTable = "am_users"

// User 登录账号；Location 决定管理员可见的资产和用户范围
type User struct {
	ID           uint     `gorm:"primaryKey" json:"id"`
	Username     string   `gorm:"uniqueIndex;size:100;not null" json:"username"`
	PasswordHash string   `gorm:"size:100;not null" json:"-"`
	FirstName    string   `gorm:"size:100;not null" json:"firstName"`
	LastName     string   `gorm:"size:100;not null" json:"lastName"`
	Type         UserType `gorm:"size:10;not null;default:'Staff'" json:"type"`
	LocationID   uint     `gorm:"index;not null" json:"locationId"`

	Disabled           bool `gorm:"not null;default:false" json:"disabled"`
	MustChangePassword bool `gorm:"not null;default:false" json:"mustChangePassword"`

	JoinedDate  time.Time  `json:"joinedDate"`
	LastLoginAt *time.Time `gorm:"index" json:"lastLoginAt,omitempty"`
	LastSeenAt  *time.Time `gorm:"index" json:"lastSeenAt,omitempty"`
	LoginCount  int64      `gorm:"not null;default:0" json:"loginCount"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (User) TableName() string { return UserTable }

func (u User) IsAdmin() bool { return u.Type == UserAdmin }

func (u User) FullName() string { return u.FirstName + " " + u.LastName }
