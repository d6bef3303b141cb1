package services

import (
	"context"
	"fmt"
	"strings"

	"Gin_postgres_redis_asset_tool/apperr"
	"Gin_postgres_redis_asset_tool/db"
	"Gin_postgres_redis_asset_tool/models"
)

type CategoryService struct {
	repo *db.Repo
}

func NewCategoryService(repo *db.Repo) *CategoryService {
	return &CategoryService{repo: repo}
}

func validPrefix(p string) bool {
	if len(p) < 2 || len(p) > 3 {
		return false
	}
	for _, r := range p {
		if r < 'A' || r > 'Z' {
			return false
		}
	}
	return true
}

func (s *CategoryService) Create(ctx context.Context, c Caller, name, prefix string) (*models.Category, error) {
	if err := c.requireAdmin(); err != nil {
		return nil, err
	}
	name = strings.TrimSpace(name)
	prefix = strings.ToUpper(strings.TrimSpace(prefix))
	if name == "" {
		return nil, apperr.Invalid("category name is required")
	}
	if !validPrefix(prefix) {
		return nil, apperr.Invalid("prefix must be 2 or 3 letters")
	}

	nameTaken, prefixTaken, err := s.repo.CategoryTaken(ctx, name, prefix)
	if err != nil {
		return nil, fmt.Errorf("check category: %w", err)
	}
	switch {
	case nameTaken:
		return nil, apperr.Conflict("category %q already exists", name)
	case prefixTaken:
		return nil, apperr.Conflict("prefix %q is already in use", prefix)
	}

	cat := &models.Category{Name: name, Prefix: prefix}
	if err := s.repo.CreateCategory(ctx, cat); err != nil {
		if db.IsDuplicate(err) {
			return nil, apperr.Conflict("category %q or prefix %q already exists", name, prefix)
		}
		return nil, fmt.Errorf("create category: %w", err)
	}
	return cat, nil
}

func (s *CategoryService) List(ctx context.Context, c Caller) ([]models.Category, error) {
	if err := c.requireUser(); err != nil {
		return nil, err
	}
	cs, err := s.repo.ListCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return cs, nil
}
