package services

import (
	"context"
	"fmt"
	"time"

	"Gin_postgres_redis_asset_tool/apperr"
	"Gin_postgres_redis_asset_tool/db"
	"Gin_postgres_redis_asset_tool/lifecycle"
	"Gin_postgres_redis_asset_tool/models"

	"github.com/sirupsen/logrus"
)

type ReturningService struct {
	repo *db.Repo
	log  *logrus.Logger
	now  func() time.Time
}

func NewReturningService(repo *db.Repo, log *logrus.Logger) *ReturningService {
	return &ReturningService{repo: repo, log: log, now: time.Now}
}

// Create opens a returning request as the assignee of an accepted assignment.
func (s *ReturningService) Create(ctx context.Context, c Caller, assignmentID uint) (*models.ReturningRequest, error) {
	if err := c.requireUser(); err != nil {
		return nil, err
	}
	return s.open(ctx, c, assignmentID, false)
}

// CreateByAdmin opens a returning request on behalf of the assignee.
func (s *ReturningService) CreateByAdmin(ctx context.Context, c Caller, assignmentID uint) (*models.ReturningRequest, error) {
	if err := c.requireAdmin(); err != nil {
		return nil, err
	}
	return s.open(ctx, c, assignmentID, true)
}

func (s *ReturningService) open(ctx context.Context, c Caller, assignmentID uint, onBehalf bool) (*models.ReturningRequest, error) {
	var out *models.ReturningRequest
	err := s.repo.Transaction(ctx, func(tx *db.Repo) error {
		var a *models.Assignment
		var err error
		if onBehalf {
			a, err = tx.FindAssignmentInLocation(ctx, assignmentID, c.LocationID, true)
		} else {
			a, err = tx.FindAssignment(ctx, assignmentID, true)
		}
		if err != nil {
			return lookup(err, "assignment %d not found", assignmentID)
		}
		if err := lifecycle.CheckReturnRequest(a.Ref(), c.UserID, onBehalf); err != nil {
			return err
		}
		exists, err := tx.HasOpenReturningRequest(ctx, a.ID)
		if err != nil {
			return fmt.Errorf("check returning requests: %w", err)
		}
		if exists {
			return apperr.Conflict("a returning request already exists for assignment %d", a.ID)
		}
		out = &models.ReturningRequest{
			AssignmentID: a.ID,
			RequestedBy:  c.UserID,
			State:        lifecycle.ReturningWaiting,
		}
		if err := tx.CreateReturningRequest(ctx, out); err != nil {
			if db.IsDuplicate(err) {
				return apperr.Conflict("a returning request already exists for assignment %d", a.ID)
			}
			return fmt.Errorf("create returning request: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.log.WithFields(logrus.Fields{"returning_request": out.ID, "assignment": out.AssignmentID, "actor": c.UserID}).Info("returning request created")
	return out, nil
}

// locate loads a request together with its assignment and asset, all
// locked and scoped to the caller's location.
func (s *ReturningService) locate(ctx context.Context, tx *db.Repo, c Caller, id uint) (*models.ReturningRequest, *models.Assignment, *models.Asset, error) {
	rr, err := tx.FindReturningRequest(ctx, id, true)
	if err != nil {
		return nil, nil, nil, lookup(err, "returning request %d not found", id)
	}
	a, err := tx.FindAssignment(ctx, rr.AssignmentID, true)
	if err != nil {
		return nil, nil, nil, lookup(err, "assignment %d not found", rr.AssignmentID)
	}
	asset, err := tx.FindAssetByID(ctx, a.AssetID, true)
	if err != nil {
		return nil, nil, nil, lookup(err, "asset %d not found", a.AssetID)
	}
	if asset.LocationID != c.LocationID {
		return nil, nil, nil, apperr.NotFound("returning request %d not found", id)
	}
	return rr, a, asset, nil
}

// Cancel withdraws a waiting request. Assignment and asset are untouched.
func (s *ReturningService) Cancel(ctx context.Context, c Caller, id uint) error {
	if err := c.requireAdmin(); err != nil {
		return err
	}
	var plan lifecycle.Plan
	err := s.repo.Transaction(ctx, func(tx *db.Repo) error {
		rr, _, _, err := s.locate(ctx, tx, c, id)
		if err != nil {
			return err
		}
		if rr.State == lifecycle.ReturningCompleted {
			return apperr.NotFound("returning request %d not found", id)
		}
		plan, err = lifecycle.PlanReturnCancel(rr.Ref())
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

// Complete accepts the hand-back: request Completed, assignment Returned,
// asset Available, in one transaction.
func (s *ReturningService) Complete(ctx context.Context, c Caller, id uint) (*models.ReturningRequest, error) {
	if err := c.requireAdmin(); err != nil {
		return nil, err
	}
	var out *models.ReturningRequest
	var plan lifecycle.Plan
	err := s.repo.Transaction(ctx, func(tx *db.Repo) error {
		rr, a, asset, err := s.locate(ctx, tx, c, id)
		if err != nil {
			return err
		}
		plan, err = lifecycle.PlanReturnComplete(rr.Ref(), a.Ref(), asset.Ref())
		if err != nil {
			return err
		}
		if err := tx.ApplyPlan(ctx, plan); err != nil {
			return err
		}
		if err := tx.MarkReturnAccepted(ctx, rr.ID, c.UserID, s.now().UTC()); err != nil {
			return fmt.Errorf("complete returning request: %w", err)
		}
		out, err = tx.FindReturningRequest(ctx, rr.ID, false)
		return err
	})
	if err != nil {
		return nil, err
	}
	logPlan(s.log, c, plan)
	return out, nil
}

func (s *ReturningService) List(ctx context.Context, c Caller, q db.ReturningQuery) (*db.PagedReturning, error) {
	if err := c.requireAdmin(); err != nil {
		return nil, err
	}
	q.LocationID = c.LocationID
	res, err := s.repo.ListReturningRequests(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("list returning requests: %w", err)
	}
	return res, nil
}
