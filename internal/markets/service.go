// Package market manages tenant accounts on the deliver side: the shops that
// place orders against the shared catalog.
package market

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/toychauz/toycha-backend/pkg/config"
	"github.com/toychauz/toycha-backend/pkg/db"
	"github.com/toychauz/toycha-backend/pkg/db/models"
	apperrors "github.com/toychauz/toycha-backend/pkg/errors"
	"github.com/toychauz/toycha-backend/pkg/pagination"
	"github.com/toychauz/toycha-backend/pkg/security"
)

// CreateInput registers a market account.
type CreateInput struct {
	Name     string  `json:"name" validate:"required,min=1,max=255"`
	Phone    string  `json:"phone" validate:"required,e164"`
	Password string  `json:"password" validate:"required,min=8"`
	Address  *string `json:"address,omitempty"`
}

// UpdateInput carries a partial market update; nil fields are left alone.
type UpdateInput struct {
	Name     *string `json:"name,omitempty" validate:"omitempty,min=1,max=255"`
	Phone    *string `json:"phone,omitempty" validate:"omitempty,e164"`
	Password *string `json:"password,omitempty" validate:"omitempty,min=8"`
	Address  *string `json:"address,omitempty"`
	IsActive *bool   `json:"isActive,omitempty"`
}

// Service defines market account operations.
type Service interface {
	Create(ctx context.Context, input CreateInput) (*models.Market, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Market, error)
	FindByPhone(ctx context.Context, phone string) (*models.Market, error)
	List(ctx context.Context, params pagination.Params, query string) (*pagination.Page[models.Market], error)
	Update(ctx context.Context, id uuid.UUID, input UpdateInput) (*models.Market, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type service struct {
	repo     Repository
	password config.PasswordConfig
}

// NewService builds a market service.
func NewService(repo Repository, password config.PasswordConfig) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("market repository required")
	}
	return &service{repo: repo, password: password}, nil
}

func (s *service) Create(ctx context.Context, input CreateInput) (*models.Market, error) {
	hash, err := security.HashPassword(input.Password, s.password)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeInternal, err, "hash password")
	}
	market := &models.Market{
		Name:         input.Name,
		Phone:        input.Phone,
		PasswordHash: hash,
		Address:      input.Address,
		IsActive:     true,
	}
	created, err := s.repo.Create(ctx, market)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return nil, apperrors.New(apperrors.CodeConflict, "phone number already registered")
		}
		return nil, apperrors.Wrap(apperrors.CodeDependency, err, "create market")
	}
	return created, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*models.Market, error) {
	market, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.New(apperrors.CodeNotFound, "market not found")
		}
		return nil, apperrors.Wrap(apperrors.CodeDependency, err, "find market")
	}
	return market, nil
}

func (s *service) FindByPhone(ctx context.Context, phone string) (*models.Market, error) {
	market, err := s.repo.FindByPhone(ctx, phone)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.New(apperrors.CodeNotFound, "market not found")
		}
		return nil, apperrors.Wrap(apperrors.CodeDependency, err, "find market by phone")
	}
	return market, nil
}

func (s *service) List(ctx context.Context, params pagination.Params, query string) (*pagination.Page[models.Market], error) {
	page, err := s.repo.List(ctx, params, query)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeDependency, err, "list markets")
	}
	return page, nil
}

func (s *service) Update(ctx context.Context, id uuid.UUID, input UpdateInput) (*models.Market, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}
	updates := map[string]any{}
	if input.Name != nil {
		updates["name"] = *input.Name
	}
	if input.Phone != nil {
		updates["phone"] = *input.Phone
	}
	if input.Address != nil {
		updates["address"] = *input.Address
	}
	if input.IsActive != nil {
		updates["is_active"] = *input.IsActive
	}
	if input.Password != nil {
		hash, err := security.HashPassword(*input.Password, s.password)
		if err != nil {
			return nil, apperrors.Wrap(apperrors.CodeInternal, err, "hash password")
		}
		updates["password_hash"] = hash
	}
	if len(updates) == 0 {
		return s.Get(ctx, id)
	}
	if err := s.repo.Update(ctx, id, updates); err != nil {
		if db.IsUniqueViolation(err) {
			return nil, apperrors.New(apperrors.CodeConflict, "phone number already registered")
		}
		return nil, apperrors.Wrap(apperrors.CodeDependency, err, "update market")
	}
	return s.Get(ctx, id)
}

func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return apperrors.Wrap(apperrors.CodeDependency, err, "delete market")
	}
	return nil
}
