// Package category manages the catalog's product groupings. Reference data
// maintained by the deliver side.
package category

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/toychauz/toycha-backend/pkg/db"
	"github.com/toychauz/toycha-backend/pkg/db/models"
	apperrors "github.com/toychauz/toycha-backend/pkg/errors"
)

// CreateInput captures a new category.
type CreateInput struct {
	Name string `json:"name" validate:"required,min=1,max=255"`
}

// UpdateInput renames a category.
type UpdateInput struct {
	Name string `json:"name" validate:"required,min=1,max=255"`
}

// Service defines category operations.
type Service interface {
	Create(ctx context.Context, input CreateInput) (*models.Category, error)
	List(ctx context.Context) ([]models.Category, error)
	Update(ctx context.Context, id uuid.UUID, input UpdateInput) (*models.Category, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Exists(ctx context.Context, id uuid.UUID) (bool, error)
}

type service struct {
	repo Repository
}

// NewService builds a category service.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("category repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) Create(ctx context.Context, input CreateInput) (*models.Category, error) {
	category := &models.Category{Name: input.Name}
	created, err := s.repo.Create(ctx, category)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return nil, apperrors.New(apperrors.CodeConflict, "category name already exists")
		}
		return nil, apperrors.Wrap(apperrors.CodeDependency, err, "create category")
	}
	return created, nil
}

func (s *service) List(ctx context.Context) ([]models.Category, error) {
	categories, err := s.repo.List(ctx)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeDependency, err, "list categories")
	}
	return categories, nil
}

func (s *service) Update(ctx context.Context, id uuid.UUID, input UpdateInput) (*models.Category, error) {
	if _, err := s.get(ctx, id); err != nil {
		return nil, err
	}
	err := s.repo.Update(ctx, id, map[string]any{"name": input.Name})
	if err != nil {
		if db.IsUniqueViolation(err) {
			return nil, apperrors.New(apperrors.CodeConflict, "category name already exists")
		}
		return nil, apperrors.Wrap(apperrors.CodeDependency, err, "update category")
	}
	return s.get(ctx, id)
}

// Delete refuses to remove a category that still has products; the products
// would silently lose their grouping otherwise.
func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.get(ctx, id); err != nil {
		return err
	}
	count, err := s.repo.CountProducts(ctx, id)
	if err != nil {
		return apperrors.Wrap(apperrors.CodeDependency, err, "count category products")
	}
	if count > 0 {
		return apperrors.New(apperrors.CodeConflict, "category still has products").
			WithDetails(map[string]any{"product_count": count})
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return apperrors.Wrap(apperrors.CodeDependency, err, "delete category")
	}
	return nil
}

func (s *service) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	_, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (s *service) get(ctx context.Context, id uuid.UUID) (*models.Category, error) {
	category, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.New(apperrors.CodeNotFound, "category not found")
		}
		return nil, apperrors.Wrap(apperrors.CodeDependency, err, "find category")
	}
	return category, nil
}
