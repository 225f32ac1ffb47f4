// Package limits manages per-market, per-product order quotas and enforces
// them over a rolling day window at order creation.
package limits

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/toychauz/toycha-backend/pkg/db"
	"github.com/toychauz/toycha-backend/pkg/db/models"
	apperrors "github.com/toychauz/toycha-backend/pkg/errors"
	"github.com/toychauz/toycha-backend/pkg/pagination"
)

// SetInput creates or replaces one quota row.
type SetInput struct {
	MarketID    uuid.UUID `json:"marketId" validate:"required"`
	ProductID   uuid.UUID `json:"productId" validate:"required"`
	MaxQuantity int       `json:"maxQuantity" validate:"required,gt=0"`
}

// UpdateInput changes the cap on an existing quota row.
type UpdateInput struct {
	MaxQuantity int `json:"maxQuantity" validate:"required,gt=0"`
}

// Service defines quota management plus the enforcement hook used when a
// market places an order.
type Service interface {
	Set(ctx context.Context, input SetInput) (*models.ProductLimit, error)
	Get(ctx context.Context, id uuid.UUID) (*models.ProductLimit, error)
	List(ctx context.Context, params pagination.Params, marketID *uuid.UUID) (*pagination.Page[models.ProductLimit], error)
	Update(ctx context.Context, id uuid.UUID, input UpdateInput) (*models.ProductLimit, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Check(ctx context.Context, marketID, productID uuid.UUID, requested, alreadyOrdered int) error
}

type service struct {
	repo Repository
}

// NewService builds a product limit service.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("limits repository required")
	}
	return &service{repo: repo}, nil
}

// Set upserts the quota for a market/product pair.
func (s *service) Set(ctx context.Context, input SetInput) (*models.ProductLimit, error) {
	if input.MaxQuantity <= 0 {
		return nil, apperrors.New(apperrors.CodeValidation, "max quantity must be a positive integer")
	}
	existing, err := s.repo.FindForMarketProduct(ctx, input.MarketID, input.ProductID)
	switch {
	case err == nil:
		if err := s.repo.Update(ctx, existing.ID, map[string]any{"max_quantity": input.MaxQuantity}); err != nil {
			return nil, apperrors.Wrap(apperrors.CodeDependency, err, "update product limit")
		}
		return s.Get(ctx, existing.ID)
	case errors.Is(err, gorm.ErrRecordNotFound):
		limit := &models.ProductLimit{
			MarketID:    input.MarketID,
			ProductID:   input.ProductID,
			MaxQuantity: input.MaxQuantity,
		}
		created, err := s.repo.Create(ctx, limit)
		if err != nil {
			if db.IsUniqueViolation(err) {
				return nil, apperrors.New(apperrors.CodeConflict, "limit already exists for this market and product")
			}
			return nil, apperrors.Wrap(apperrors.CodeDependency, err, "create product limit")
		}
		return created, nil
	default:
		return nil, apperrors.Wrap(apperrors.CodeDependency, err, "find product limit")
	}
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*models.ProductLimit, error) {
	limit, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.New(apperrors.CodeNotFound, "product limit not found")
		}
		return nil, apperrors.Wrap(apperrors.CodeDependency, err, "find product limit")
	}
	return limit, nil
}

func (s *service) List(ctx context.Context, params pagination.Params, marketID *uuid.UUID) (*pagination.Page[models.ProductLimit], error) {
	page, err := s.repo.List(ctx, params, marketID)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeDependency, err, "list product limits")
	}
	return page, nil
}

func (s *service) Update(ctx context.Context, id uuid.UUID, input UpdateInput) (*models.ProductLimit, error) {
	if input.MaxQuantity <= 0 {
		return nil, apperrors.New(apperrors.CodeValidation, "max quantity must be a positive integer")
	}
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, id, map[string]any{"max_quantity": input.MaxQuantity}); err != nil {
		return nil, apperrors.Wrap(apperrors.CodeDependency, err, "update product limit")
	}
	return s.Get(ctx, id)
}

func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return apperrors.Wrap(apperrors.CodeDependency, err, "delete product limit")
	}
	return nil
}

// Check enforces the quota: alreadyOrdered is the quantity the market has
// consumed inside the rolling window, requested is the new order's line.
// Markets without a quota row for the product are unrestricted.
func (s *service) Check(ctx context.Context, marketID, productID uuid.UUID, requested, alreadyOrdered int) error {
	limit, err := s.repo.FindForMarketProduct(ctx, marketID, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return apperrors.Wrap(apperrors.CodeDependency, err, "find product limit")
	}
	if alreadyOrdered+requested > limit.MaxQuantity {
		return apperrors.New(apperrors.CodeLimitExceeded, "daily order limit exceeded for product").
			WithDetails(map[string]any{
				"product_id":      productID,
				"max_quantity":    limit.MaxQuantity,
				"already_ordered": alreadyOrdered,
				"requested":       requested,
			})
	}
	return nil
}
