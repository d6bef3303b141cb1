// Package services implements the asset, assignment and returning-request
// operations on top of the repository and the cache gateway.
package services

import (
	"fmt"
	"strings"

	"Gin_postgres_redis_asset_tool/apperr"
	"Gin_postgres_redis_asset_tool/cache"
	"Gin_postgres_redis_asset_tool/db"
	"Gin_postgres_redis_asset_tool/lifecycle"
	"Gin_postgres_redis_asset_tool/metrics"
	"Gin_postgres_redis_asset_tool/models"
	"Gin_postgres_redis_asset_tool/session"

	"github.com/sirupsen/logrus"
)

// Caller is the authenticated identity an operation runs as.
type Caller struct {
	UserID     uint
	Type       models.UserType
	LocationID uint
}

func (c Caller) IsAdmin() bool { return c.Type == models.UserAdmin }

func (c Caller) requireAdmin() error {
	if c.UserID == 0 {
		return apperr.Unauthorized("unauthorized")
	}
	if !c.IsAdmin() {
		return apperr.Forbidden("admin role required")
	}
	return nil
}

func (c Caller) requireUser() error {
	if c.UserID == 0 {
		return apperr.Unauthorized("unauthorized")
	}
	return nil
}

type Services struct {
	Assets      *AssetService
	Assignments *AssignmentService
	Returning   *ReturningService
	Categories  *CategoryService
	Users       *UserService
	Reports     *ReportService
	Auth        *AuthService
}

func New(repo *db.Repo, gw cache.Gateway, tokens *session.TokenManager, sessions *session.AppSessionStore, log *logrus.Logger) *Services {
	returning := NewReturningService(repo, log)
	return &Services{
		Assets:      NewAssetService(repo, NewCodeGenerator(repo, gw), log),
		Assignments: NewAssignmentService(repo, returning, log),
		Returning:   returning,
		Categories:  NewCategoryService(repo),
		Users:       NewUserService(repo, sessions, log),
		Reports:     NewReportService(repo),
		Auth:        NewAuthService(repo, tokens, sessions, log),
	}
}

// lookup turns a record-not-found into a NotFound error and wraps anything else.
func lookup(err error, format string, args ...any) error {
	if db.IsNotFound(err) {
		return apperr.NotFound(format, args...)
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}

func logPlan(log *logrus.Logger, c Caller, plan lifecycle.Plan) {
	for _, m := range plan {
		metrics.RecordTransition(string(m.Entity), string(m.Event))
		to := m.To
		if m.Remove {
			to = "removed"
		}
		log.WithFields(logrus.Fields{
			"entity": m.Entity,
			"id":     m.ID,
			"event":  m.Event,
			"from":   m.From,
			"to":     to,
			"actor":  c.UserID,
		}).Info(strings.ReplaceAll(string(m.Entity), "_", " ") + " " + string(m.Event))
	}
}
