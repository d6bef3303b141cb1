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

type AssignmentService struct {
	repo      *db.Repo
	returning *ReturningService
	log       *logrus.Logger
	now       func() time.Time
}

func NewAssignmentService(repo *db.Repo, returning *ReturningService, log *logrus.Logger) *AssignmentService {
	return &AssignmentService{repo: repo, returning: returning, log: log, now: time.Now}
}

type AssignmentInput struct {
	UserID       uint
	AssetID      uint
	AssignedDate time.Time
	Note         string
}

// Create assigns an available asset to a user of the caller's location.
// The assignment starts WaitingForAcceptance and the asset becomes Assigned.
func (s *AssignmentService) Create(ctx context.Context, c Caller, in AssignmentInput) (*models.Assignment, error) {
	if err := c.requireAdmin(); err != nil {
		return nil, err
	}
	if in.AssignedDate.IsZero() {
		in.AssignedDate = s.now().UTC()
	}

	var out *models.Assignment
	var plan lifecycle.Plan
	err := s.repo.Transaction(ctx, func(tx *db.Repo) error {
		user, err := tx.FindUserInLocation(ctx, in.UserID, c.LocationID)
		if err != nil {
			return lookup(err, "user %d not found", in.UserID)
		}
		asset, err := tx.FindAssetInLocation(ctx, in.AssetID, c.LocationID, true)
		if err != nil {
			return lookup(err, "asset %d not found", in.AssetID)
		}
		plan, err = lifecycle.PlanAssign(asset.Ref())
		if err != nil {
			return err
		}
		out = &models.Assignment{
			AssetID:      asset.ID,
			AssignedTo:   user.ID,
			AssignedBy:   c.UserID,
			AssignedDate: in.AssignedDate,
			Note:         strings.TrimSpace(in.Note),
			State:        lifecycle.AssignmentWaitingForAcceptance,
		}
		if err := tx.CreateAssignment(ctx, out); err != nil {
			if db.IsDuplicate(err) {
				return apperr.Conflict("asset %s is already assigned", asset.Code)
			}
			return fmt.Errorf("create assignment: %w", err)
		}
		return tx.ApplyPlan(ctx, plan)
	})
	if err != nil {
		return nil, err
	}
	logPlan(s.log, c, plan)
	s.log.WithFields(logrus.Fields{"assignment": out.ID, "asset": out.AssetID, "assignee": out.AssignedTo}).Info("assignment created")
	return out, nil
}

// Update edits a waiting assignment. Pointing it at another asset releases
// the old one and holds the new one.
func (s *AssignmentService) Update(ctx context.Context, c Caller, id uint, in AssignmentInput) (*models.Assignment, error) {
	if err := c.requireAdmin(); err != nil {
		return nil, err
	}

	var out *models.Assignment
	var plan lifecycle.Plan
	err := s.repo.Transaction(ctx, func(tx *db.Repo) error {
		a, err := tx.FindAssignmentInLocation(ctx, id, c.LocationID, true)
		if err != nil {
			return lookup(err, "assignment %d not found", id)
		}
		user, err := tx.FindUserInLocation(ctx, in.UserID, c.LocationID)
		if err != nil {
			return lookup(err, "user %d not found", in.UserID)
		}
		next, err := tx.FindAssetByID(ctx, in.AssetID, true)
		if err != nil {
			return lookup(err, "asset %d not found", in.AssetID)
		}
		if a.State != lifecycle.AssignmentWaitingForAcceptance {
			return apperr.Conflict("assignment %d is not in WaitingForAcceptance state", a.ID)
		}
		date := in.AssignedDate
		if date.IsZero() {
			date = a.AssignedDate
		}
		if date.Before(a.AssignedDate) {
			return apperr.Conflict("assigned date cannot be earlier than %s", a.AssignedDate.Format("2006-01-02"))
		}
		if next.LocationID != c.LocationID {
			return apperr.Forbidden("asset %s belongs to another location", next.Code)
		}
		if next.ID != a.AssetID && next.State != lifecycle.AssetAvailable {
			return apperr.Forbidden("asset %s is not available", next.Code)
		}

		current := next
		if next.ID != a.AssetID {
			if current, err = tx.FindAssetByID(ctx, a.AssetID, true); err != nil {
				return lookup(err, "asset %d not found", a.AssetID)
			}
		}
		plan, err = lifecycle.PlanAssignmentEdit(a.Ref(), current.Ref(), next.Ref())
		if err != nil {
			return err
		}
		if err := tx.ApplyPlan(ctx, plan); err != nil {
			return err
		}
		if err := tx.UpdateAssignmentFields(ctx, a.ID, next.ID, user.ID, date, strings.TrimSpace(in.Note)); err != nil {
			return fmt.Errorf("update assignment: %w", err)
		}
		out, err = tx.FindAssignment(ctx, a.ID, false)
		return err
	})
	if err != nil {
		return nil, err
	}
	logPlan(s.log, c, plan)
	return out, nil
}

// Delete removes a waiting or declined assignment.
func (s *AssignmentService) Delete(ctx context.Context, c Caller, id uint) error {
	if err := c.requireAdmin(); err != nil {
		return err
	}
	var plan lifecycle.Plan
	err := s.repo.Transaction(ctx, func(tx *db.Repo) error {
		a, err := tx.FindAssignmentInLocation(ctx, id, c.LocationID, true)
		if err != nil {
			return lookup(err, "assignment %d not found", id)
		}
		asset, err := tx.FindAssetByID(ctx, a.AssetID, true)
		if err != nil {
			return lookup(err, "asset %d not found", a.AssetID)
		}
		plan, err = lifecycle.PlanAssignmentDelete(a.Ref(), asset.Ref())
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

// Accept is the assignee taking the asset; it stays Assigned.
func (s *AssignmentService) Accept(ctx context.Context, c Caller, id uint) (*models.Assignment, error) {
	return s.respond(ctx, c, id, lifecycle.EvAccept)
}

// Decline is the assignee refusing the asset, which becomes Available.
func (s *AssignmentService) Decline(ctx context.Context, c Caller, id uint) (*models.Assignment, error) {
	return s.respond(ctx, c, id, lifecycle.EvDecline)
}

func (s *AssignmentService) respond(ctx context.Context, c Caller, id uint, ev lifecycle.Event) (*models.Assignment, error) {
	if err := c.requireUser(); err != nil {
		return nil, err
	}
	var out *models.Assignment
	var plan lifecycle.Plan
	err := s.repo.Transaction(ctx, func(tx *db.Repo) error {
		a, err := tx.FindAssignmentFor(ctx, id, c.UserID, true)
		if err != nil {
			return lookup(err, "assignment %d not found", id)
		}
		asset, err := tx.FindAssetByID(ctx, a.AssetID, true)
		if err != nil {
			return lookup(err, "asset %d not found", a.AssetID)
		}
		if ev == lifecycle.EvAccept {
			plan, err = lifecycle.PlanAccept(a.Ref())
		} else {
			plan, err = lifecycle.PlanDecline(a.Ref(), asset.Ref())
		}
		if err != nil {
			return err
		}
		if err := tx.ApplyPlan(ctx, plan); err != nil {
			return err
		}
		out, err = tx.FindAssignment(ctx, a.ID, false)
		return err
	})
	if err != nil {
		return nil, err
	}
	logPlan(s.log, c, plan)
	return out, nil
}

// CreateReturningRequest opens a returning request as the assignee.
func (s *AssignmentService) CreateReturningRequest(ctx context.Context, c Caller, id uint) (*models.ReturningRequest, error) {
	return s.returning.Create(ctx, c, id)
}

func (s *AssignmentService) Get(ctx context.Context, c Caller, id uint) (*models.Assignment, error) {
	if err := c.requireUser(); err != nil {
		return nil, err
	}
	var a *models.Assignment
	var err error
	if c.IsAdmin() {
		a, err = s.repo.FindAssignmentInLocation(ctx, id, c.LocationID, false)
	} else {
		a, err = s.repo.FindAssignmentFor(ctx, id, c.UserID, false)
	}
	if err != nil {
		return nil, lookup(err, "assignment %d not found", id)
	}
	return a, nil
}

func (s *AssignmentService) List(ctx context.Context, c Caller, q db.AssignmentsQuery) (*db.PagedAssignments, error) {
	if err := c.requireAdmin(); err != nil {
		return nil, err
	}
	q.LocationID = c.LocationID
	q.AssignedTo = 0
	res, err := s.repo.ListAssignments(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("list assignments: %w", err)
	}
	return res, nil
}

// ListMine lists the caller's assignments that still hold an asset and
// whose assigned date has been reached.
func (s *AssignmentService) ListMine(ctx context.Context, c Caller, page, size int) (*db.PagedAssignments, error) {
	if err := c.requireUser(); err != nil {
		return nil, err
	}
	now := s.now().UTC()
	res, err := s.repo.ListAssignments(ctx, db.AssignmentsQuery{
		AssignedTo: c.UserID,
		States:     []lifecycle.AssignmentState{lifecycle.AssignmentWaitingForAcceptance, lifecycle.AssignmentAccepted},
		To:         &now,
		Page:       page,
		Size:       size,
	})
	if err != nil {
		return nil, fmt.Errorf("list my assignments: %w", err)
	}
	return res, nil
}
