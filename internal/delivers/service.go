// Package deliver manages delivery-side staff accounts.
package deliver

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

// CreateInput registers a deliver staff account.
type CreateInput struct {
	Name     string `json:"name" validate:"required,min=1,max=255"`
	Phone    string `json:"phone" validate:"required,e164"`
	Password string `json:"password" validate:"required,min=8"`
}

// UpdateInput carries a partial deliver update; nil fields are left alone.
type UpdateInput struct {
	Name     *string `json:"name,omitempty" validate:"omitempty,min=1,max=255"`
	Phone    *string `json:"phone,omitempty" validate:"omitempty,e164"`
	Password *string `json:"password,omitempty" validate:"omitempty,min=8"`
	IsActive *bool   `json:"isActive,omitempty"`
}

// Service defines deliver account operations.
type Service interface {
	Create(ctx context.Context, input CreateInput) (*models.Deliver, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Deliver, error)
	FindByPhone(ctx context.Context, phone string) (*models.Deliver, error)
	List(ctx context.Context, params pagination.Params) (*pagination.Page[models.Deliver], error)
	Update(ctx context.Context, id uuid.UUID, input UpdateInput) (*models.Deliver, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type service struct {
	repo     Repository
	password config.PasswordConfig
}

// NewService builds a deliver service.
func NewService(repo Repository, password config.PasswordConfig) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("deliver repository required")
	}
	return &service{repo: repo, password: password}, nil
}

func (s *service) Create(ctx context.Context, input CreateInput) (*models.Deliver, error) {
	hash, err := security.HashPassword(input.Password, s.password)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeInternal, err, "hash password")
	}
	deliver := &models.Deliver{
		Name:         input.Name,
		Phone:        input.Phone,
		PasswordHash: hash,
		IsActive:     true,
	}
	created, err := s.repo.Create(ctx, deliver)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return nil, apperrors.New(apperrors.CodeConflict, "phone number already registered")
		}
		return nil, apperrors.Wrap(apperrors.CodeDependency, err, "create deliver")
	}
	return created, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*models.Deliver, error) {
	deliver, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.New(apperrors.CodeNotFound, "deliver not found")
		}
		return nil, apperrors.Wrap(apperrors.CodeDependency, err, "find deliver")
	}
	return deliver, nil
}

func (s *service) FindByPhone(ctx context.Context, phone string) (*models.Deliver, error) {
	deliver, err := s.repo.FindByPhone(ctx, phone)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.New(apperrors.CodeNotFound, "deliver not found")
		}
		return nil, apperrors.Wrap(apperrors.CodeDependency, err, "find deliver by phone")
	}
	return deliver, nil
}

func (s *service) List(ctx context.Context, params pagination.Params) (*pagination.Page[models.Deliver], error) {
	page, err := s.repo.List(ctx, params)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeDependency, err, "list delivers")
	}
	return page, nil
}

func (s *service) Update(ctx context.Context, id uuid.UUID, input UpdateInput) (*models.Deliver, error) {
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
		return nil, apperrors.Wrap(apperrors.CodeDependency, err, "update deliver")
	}
	return s.Get(ctx, id)
}

func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return apperrors.Wrap(apperrors.CodeDependency, err, "delete deliver")
	}
	return nil
}
