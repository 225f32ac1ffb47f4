package product

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/toychauz/toycha-backend/pkg/db/models"
	apperrors "github.com/toychauz/toycha-backend/pkg/errors"
	"github.com/toychauz/toycha-backend/pkg/pagination"
	"gorm.io/gorm"
)

// Service defines catalog product operations.
type Service interface {
	Create(ctx context.Context, input CreateInput) (*models.Product, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Product, error)
	List(ctx context.Context, params pagination.Params, filters ListFilters) (*pagination.Page[models.Product], error)
	Update(ctx context.Context, id uuid.UUID, input UpdateInput) (*models.Product, error)
	Delete(ctx context.Context, id uuid.UUID) error
	FindActiveByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Product, error)
}

// CategoryReader verifies category references before they are stored.
type CategoryReader interface {
	Exists(ctx context.Context, id uuid.UUID) (bool, error)
}

type service struct {
	repo       Repository
	categories CategoryReader
}

// NewService builds a product service.
func NewService(repo Repository, categories CategoryReader) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("product repository required")
	}
	if categories == nil {
		return nil, fmt.Errorf("category reader required")
	}
	return &service{repo: repo, categories: categories}, nil
}

func (s *service) Create(ctx context.Context, input CreateInput) (*models.Product, error) {
	if !input.Unit.IsValid() {
		return nil, apperrors.New(apperrors.CodeValidation, "unknown unit")
	}
	if input.Price.IsNegative() {
		return nil, apperrors.New(apperrors.CodeValidation, "price cannot be negative")
	}
	if err := s.checkCategory(ctx, input.CategoryID); err != nil {
		return nil, err
	}
	product := &models.Product{
		Name:       input.Name,
		Unit:       input.Unit,
		Price:      input.Price,
		CategoryID: input.CategoryID,
		IsActive:   true,
	}
	created, err := s.repo.Create(ctx, product)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeDependency, err, "create product")
	}
	return created, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	product, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.New(apperrors.CodeNotFound, "product not found")
		}
		return nil, apperrors.Wrap(apperrors.CodeDependency, err, "find product")
	}
	return product, nil
}

func (s *service) List(ctx context.Context, params pagination.Params, filters ListFilters) (*pagination.Page[models.Product], error) {
	page, err := s.repo.List(ctx, params, filters)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeDependency, err, "list products")
	}
	return page, nil
}

func (s *service) Update(ctx context.Context, id uuid.UUID, input UpdateInput) (*models.Product, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}
	updates := map[string]any{}
	if input.Name != nil {
		updates["name"] = *input.Name
	}
	if input.Unit != nil {
		if !input.Unit.IsValid() {
			return nil, apperrors.New(apperrors.CodeValidation, "unknown unit")
		}
		updates["unit"] = *input.Unit
	}
	if input.Price != nil {
		if input.Price.IsNegative() {
			return nil, apperrors.New(apperrors.CodeValidation, "price cannot be negative")
		}
		updates["price"] = *input.Price
	}
	if input.CategoryID != nil {
		if err := s.checkCategory(ctx, input.CategoryID); err != nil {
			return nil, err
		}
		updates["category_id"] = *input.CategoryID
	}
	if input.IsActive != nil {
		updates["is_active"] = *input.IsActive
	}
	if len(updates) == 0 {
		return s.Get(ctx, id)
	}
	if err := s.repo.Update(ctx, id, updates); err != nil {
		return nil, apperrors.Wrap(apperrors.CodeDependency, err, "update product")
	}
	return s.Get(ctx, id)
}

func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return apperrors.Wrap(apperrors.CodeDependency, err, "delete product")
	}
	return nil
}

func (s *service) FindActiveByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Product, error) {
	products, err := s.repo.FindActiveByIDs(ctx, ids)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeDependency, err, "find products")
	}
	return products, nil
}

func (s *service) checkCategory(ctx context.Context, id *uuid.UUID) error {
	if id == nil {
		return nil
	}
	ok, err := s.categories.Exists(ctx, *id)
	if err != nil {
		return apperrors.Wrap(apperrors.CodeDependency, err, "check category")
	}
	if !ok {
		return apperrors.New(apperrors.CodeValidation, "unknown category")
	}
	return nil
}
