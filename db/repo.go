package db

import (
	"Gin_postgres_redis_asset_tool/models"
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"
)

type Repo struct{ DB *gorm.DB }

func NewRepo(db *gorm.DB) *Repo { return &Repo{DB: db} }

// Transaction runs fn with a Repo bound to one database transaction.
func (r *Repo) Transaction(ctx context.Context, fn func(tx *Repo) error) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&Repo{DB: tx})
	})
}

func IsNotFound(err error) bool { return errors.Is(err, gorm.ErrRecordNotFound) }

func IsDuplicate(err error) bool { return errors.Is(err, gorm.ErrDuplicatedKey) }

func pageOf(page, size, max int) (int, int) {
	if page <= 0 {
		page = 1
	}
	if size <= 0 || size > max {
		size = 20
	}
	return (page - 1) * size, size
}

// Locations

func (r *Repo) FirstOrCreateLocation(ctx context.Context, name string) (*models.Location, error) {
	loc := models.Location{Name: strings.TrimSpace(name)}
	if err := r.DB.WithContext(ctx).Where("name = ?", loc.Name).FirstOrCreate(&loc).Error; err != nil {
		return nil, err
	}
	return &loc, nil
}

func (r *Repo) FindLocationByID(ctx context.Context, id uint) (*models.Location, error) {
	var loc models.Location
	if err := r.DB.WithContext(ctx).First(&loc, id).Error; err != nil {
		return nil, err
	}
	return &loc, nil
}

// Users

func (r *Repo) CreateUser(ctx context.Context, u *models.User) error {
	return r.DB.WithContext(ctx).Create(u).Error
}

// 登录成功：用数据库时间更准，计数自增
func (r *Repo) TouchUserLogin(ctx context.Context, userID uint) error {
	return r.DB.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", userID).
		Updates(map[string]interface{}{
			"last_login_at": gorm.Expr("CURRENT_TIMESTAMP"),
			"last_seen_at":  gorm.Expr("CURRENT_TIMESTAMP"),
			"login_count":   gorm.Expr("COALESCE(login_count, 0) + 1"),
		}).Error
}

func (r *Repo) TouchUserSeen(ctx context.Context, userID uint) error {
	return r.DB.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", userID).
		Update("last_seen_at", gorm.Expr("CURRENT_TIMESTAMP")).Error
}

func (r *Repo) FindUserByID(ctx context.Context, id uint) (*models.User, error) {
	var u models.User
	if err := r.DB.WithContext(ctx).First(&u, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

// FindUserInLocation only sees enabled users of one location.
func (r *Repo) FindUserInLocation(ctx context.Context, id, locationID uint) (*models.User, error) {
	var u models.User
	if err := r.DB.WithContext(ctx).
		Where("id = ? AND location_id = ? AND disabled = ?", id, locationID, false).
		First(&u).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *Repo) FindUserByUsername(ctx context.Context, username string) (*models.User, error) {
	var u models.User
	if err := r.DB.WithContext(ctx).Where("username = ?", strings.ToLower(username)).First(&u).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *Repo) UsernamesWithPrefix(ctx context.Context, prefix string) ([]string, error) {
	var names []string
	err := r.DB.WithContext(ctx).Model(&models.User{}).
		Where("username LIKE ?", prefix+"%").
		Pluck("username", &names).Error
	return names, err
}

func (r *Repo) SetUserDisabled(ctx context.Context, userID uint, disabled bool) error {
	return r.DB.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", userID).
		Update("disabled", disabled).Error
}

func (r *Repo) UpdatePassword(ctx context.Context, userID uint, hash string) error {
	return r.DB.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", userID).
		Updates(map[string]any{"password_hash": hash, "must_change_password": false}).Error
}

func (r *Repo) CountAdmins(ctx context.Context) (int64, error) {
	var n int64
	err := r.DB.WithContext(ctx).
		Model(&models.User{}).
		Where("type = ?", models.UserAdmin).
		Count(&n).Error
	return n, err
}

// 列表（分页 + 关键词，关键词匹配用户名/姓名）
type UsersQuery struct {
	LocationID uint
	Q          string
	Type       models.UserType
	Page       int
	Size       int
}

type ListUsersResult struct {
	Users []models.User `json:"users"`
	Total int64         `json:"total"`
}

func (r *Repo) ListUsers(ctx context.Context, q UsersQuery) (ListUsersResult, error) {
	offset, size := pageOf(q.Page, q.Size, 100)

	tx := r.DB.WithContext(ctx).Model(&models.User{}).
		Where("location_id = ? AND disabled = ?", q.LocationID, false)
	if s := strings.TrimSpace(q.Q); s != "" {
		like := "%" + strings.ToLower(s) + "%"
		tx = tx.Where("LOWER(username) LIKE ? OR LOWER(first_name || ' ' || last_name) LIKE ?", like, like)
	}
	if q.Type != "" {
		tx = tx.Where("type = ?", q.Type)
	}

	tx = tx.Session(&gorm.Session{})

	var total int64
	if err := tx.Count(&total).Error; err != nil {
		return ListUsersResult{}, err
	}

	var users []models.User
	if err := tx.
		Order("first_name, last_name, id").
		Offset(offset).
		Limit(size).
		Find(&users).Error; err != nil {
		return ListUsersResult{}, err
	}
	return ListUsersResult{Users: users, Total: total}, nil
}
