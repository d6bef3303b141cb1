package services

import (
	"context"
	"fmt"

	"Gin_postgres_redis_asset_tool/db"
	"Gin_postgres_redis_asset_tool/lifecycle"
)

type ReportService struct {
	repo *db.Repo
}

func NewReportService(repo *db.Repo) *ReportService {
	return &ReportService{repo: repo}
}

type CategoryReport struct {
	CategoryID   uint                           `json:"categoryId"`
	CategoryName string                         `json:"categoryName"`
	Total        int64                          `json:"total"`
	States       map[lifecycle.AssetState]int64 `json:"states"`
}

// Summary counts the caller's location assets per category and state.
// Every state key is present, zero or not.
func (s *ReportService) Summary(ctx context.Context, c Caller) ([]CategoryReport, error) {
	if err := c.requireAdmin(); err != nil {
		return nil, err
	}
	rows, err := s.repo.CountAssetsByCategoryState(ctx, c.LocationID)
	if err != nil {
		return nil, fmt.Errorf("report summary: %w", err)
	}

	out := []CategoryReport{}
	idx := map[uint]int{}
	for _, r := range rows {
		i, ok := idx[r.CategoryID]
		if !ok {
			rep := CategoryReport{
				CategoryID:   r.CategoryID,
				CategoryName: r.CategoryName,
				States:       make(map[lifecycle.AssetState]int64, len(lifecycle.AssetStates)),
			}
			for _, st := range lifecycle.AssetStates {
				rep.States[st] = 0
			}
			out = append(out, rep)
			i = len(out) - 1
			idx[r.CategoryID] = i
		}
		out[i].States[r.State] += r.N
		out[i].Total += r.N
	}
	return out, nil
}
