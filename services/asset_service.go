package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"Gin_postgres_redis_asset_tool/apperr"
	"Gin_postgres_redis_asset_tool/db"
	"Gin_postgres_redis_asset_tool/lifecycle"
	"Gin_postgres_redis_asset_tool/models"

	"github.com/sirupsen/logrus"
)

type AssetService struct {
	repo  *db.Repo
	codes *CodeGenerator
	log   *logrus.Logger
}

func NewAssetService(repo *db.Repo, codes *CodeGenerator, log *logrus.Logger) *AssetService {
	return &AssetService{repo: repo, codes: codes, log: log}
}

type CreateAssetInput struct {
	Name          string
	CategoryID    uint
	Specification string
	InstalledDate time.Time
	State         lifecycle.AssetState
}

type UpdateAssetInput struct {
	Name          string
	Specification string
	InstalledDate time.Time
	State         lifecycle.AssetState
}

func (s *AssetService) Create(ctx context.Context, c Caller, in CreateAssetInput) (*models.Asset, error) {
	if err := c.requireAdmin(); err != nil {
		return nil, err
	}
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, apperr.Invalid("asset name is required")
	}
	if in.State == "" {
		in.State = lifecycle.AssetAvailable
	}
	if in.State != lifecycle.AssetAvailable && in.State != lifecycle.AssetNotAvailable {
		return nil, apperr.Invalid("a new asset must be Available or NotAvailable")
	}

	cat, err := s.repo.FindCategoryByID(ctx, in.CategoryID)
	if err != nil {
		return nil, lookup(err, "category %d not found", in.CategoryID)
	}

	asset := &models.Asset{
		Name:          name,
		CategoryID:    cat.ID,
		LocationID:    c.LocationID,
		Specification: strings.TrimSpace(in.Specification),
		InstalledDate: in.InstalledDate,
		State:         in.State,
	}
	for attempt := 0; ; attempt++ {
		code, err := s.codes.Next(ctx, cat.Prefix)
		if err != nil {
			return nil, err
		}
		asset.Code = code
		err = s.repo.CreateAsset(ctx, asset)
		if err == nil {
			break
		}
		if !db.IsDuplicate(err) || attempt > 0 {
			return nil, fmt.Errorf("create asset: %w", err)
		}
		// 缓存落后于表：按表重新对齐后重试一次
		s.log.WithField("prefix", cat.Prefix).Warn("asset code collision, resyncing sequence")
		if err := s.codes.Resync(ctx, cat.Prefix); err != nil {
			return nil, err
		}
		asset.ID = 0
	}

	s.log.WithFields(logrus.Fields{"asset": asset.Code, "actor": c.UserID}).Info("asset created")
	return asset, nil
}

func (s *AssetService) Get(ctx context.Context, c Caller, id uint) (*models.Asset, error) {
	if err := c.requireAdmin(); err != nil {
		return nil, err
	}
	a, err := s.repo.FindAssetInLocation(ctx, id, c.LocationID, false)
	if err != nil {
		return nil, lookup(err, "asset %d not found", id)
	}
	return a, nil
}

func (s *AssetService) Update(ctx context.Context, c Caller, id uint, in UpdateAssetInput) (*models.Asset, error) {
	if err := c.requireAdmin(); err != nil {
		return nil, err
	}
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, apperr.Invalid("asset name is required")
	}

	var out *models.Asset
	var plan lifecycle.Plan
	err := s.repo.Transaction(ctx, func(tx *db.Repo) error {
		a, err := tx.FindAssetInLocation(ctx, id, c.LocationID, true)
		if err != nil {
			return lookup(err, "asset %d not found", id)
		}
		to := in.State
		if to == "" {
			to = a.State
		}
		history, err := tx.CountAssignmentHistory(ctx, a.ID)
		if err != nil {
			return fmt.Errorf("count history: %w", err)
		}
		plan, err = lifecycle.PlanAssetEdit(a.Ref(), to, history > 0)
		if err != nil {
			return err
		}
		installed := in.InstalledDate
		if installed.IsZero() {
			installed = a.InstalledDate
		}
		if err := tx.UpdateAssetFields(ctx, a.ID, name, strings.TrimSpace(in.Specification), installed); err != nil {
			return fmt.Errorf("update asset: %w", err)
		}
		if err := tx.ApplyPlan(ctx, plan); err != nil {
			return err
		}
		out, err = tx.FindAssetByID(ctx, a.ID, false)
		return err
	})
	if err != nil {
		return nil, err
	}
	logPlan(s.log, c, plan)
	return out, nil
}

func (s *AssetService) Delete(ctx context.Context, c Caller, id uint) error {
	if err := c.requireAdmin(); err != nil {
		return err
	}
	var plan lifecycle.Plan
	err := s.repo.Transaction(ctx, func(tx *db.Repo) error {
		a, err := tx.FindAssetInLocation(ctx, id, c.LocationID, true)
		if err != nil {
			return lookup(err, "asset %d not found", id)
		}
		history, err := tx.CountAssignmentHistory(ctx, a.ID)
		if err != nil {
			return fmt.Errorf("count history: %w", err)
		}
		plan, err = lifecycle.PlanAssetDelete(a.Ref(), history > 0)
		if err != nil {
			return err
		}
		return tx.ApplyPlan(ctx, plan)
	})
	if err != nil {
		return err
	}
	logPlan(s.log, c, plan)
	return nil
}

func (s *AssetService) List(ctx context.Context, c Caller, q db.AssetsQuery) (*db.PagedAssets, error) {
	if err := c.requireAdmin(); err != nil {
		return nil, err
	}
	q.LocationID = c.LocationID
	res, err := s.repo.ListAssets(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("list assets: %w", err)
	}
	return res, nil
}

func (s *AssetService) History(ctx context.Context, c Caller, id uint) ([]db.HistoryRow, error) {
	if _, err := s.Get(ctx, c, id); err != nil {
		return nil, err
	}
	rows, err := s.repo.AssetHistory(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("asset history: %w", err)
	}
	return rows, nil
}
