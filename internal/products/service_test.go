package product

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/toychauz/toycha-backend/pkg/db/models"
	"github.com/toychauz/toycha-backend/pkg/enums"
	apperrors "github.com/toychauz/toycha-backend/pkg/errors"
	"github.com/toychauz/toycha-backend/pkg/pagination"
)

type stubProductRepo struct {
	products map[uuid.UUID]*models.Product
	updates  map[string]any
}

func newStubProductRepo() *stubProductRepo {
	return &stubProductRepo{products: make(map[uuid.UUID]*models.Product)}
}

func (s *stubProductRepo) WithTx(tx *gorm.DB) Repository { return s }

func (s *stubProductRepo) Create(_ context.Context, product *models.Product) (*models.Product, error) {
	if product.ID == uuid.Nil {
		product.ID = uuid.New()
	}
	s.products[product.ID] = product
	return product, nil
}

func (s *stubProductRepo) FindByID(_ context.Context, id uuid.UUID) (*models.Product, error) {
	p, ok := s.products[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return p, nil
}

func (s *stubProductRepo) FindActiveByIDs(_ context.Context, ids []uuid.UUID) ([]models.Product, error) {
	var out []models.Product
	for _, id := range ids {
		if p, ok := s.products[id]; ok && p.IsActive {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (s *stubProductRepo) List(_ context.Context, params pagination.Params, _ ListFilters) (*pagination.Page[models.Product], error) {
	var rows []models.Product
	for _, p := range s.products {
		rows = append(rows, *p)
	}
	page := pagination.NewPage(rows, int64(len(rows)), params.Normalize())
	return &page, nil
}

func (s *stubProductRepo) Update(_ context.Context, id uuid.UUID, updates map[string]any) error {
	s.updates = updates
	return nil
}

func (s *stubProductRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(s.products, id)
	return nil
}

type stubCategories struct {
	exists bool
}

func (s *stubCategories) Exists(context.Context, uuid.UUID) (bool, error) {
	return s.exists, nil
}

func TestProductCreate_Validation(t *testing.T) {
	repo := newStubProductRepo()
	svc, err := NewService(repo, &stubCategories{exists: true})
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), CreateInput{
		Name:  "Juice",
		Unit:  enums.Unit("barrel"),
		Price: decimal.NewFromInt(1),
	})
	require.Equal(t, apperrors.CodeValidation, apperrors.As(err).Code())

	_, err = svc.Create(context.Background(), CreateInput{
		Name:  "Juice",
		Unit:  enums.UnitLiter,
		Price: decimal.NewFromInt(-1),
	})
	require.Equal(t, apperrors.CodeValidation, apperrors.As(err).Code())

	created, err := svc.Create(context.Background(), CreateInput{
		Name:  "Juice",
		Unit:  enums.UnitLiter,
		Price: decimal.RequireFromString("12.00"),
	})
	require.NoError(t, err)
	assert.True(t, created.IsActive, "new products start active")
}

func TestProductCreate_UnknownCategoryRejected(t *testing.T) {
	repo := newStubProductRepo()
	svc, err := NewService(repo, &stubCategories{exists: false})
	require.NoError(t, err)

	categoryID := uuid.New()
	_, err = svc.Create(context.Background(), CreateInput{
		Name:       "Juice",
		Unit:       enums.UnitLiter,
		Price:      decimal.NewFromInt(2),
		CategoryID: &categoryID,
	})
	require.Equal(t, apperrors.CodeValidation, apperrors.As(err).Code())
}

func TestProductUpdate_PartialFields(t *testing.T) {
	repo := newStubProductRepo()
	svc, err := NewService(repo, &stubCategories{exists: true})
	require.NoError(t, err)

	created, err := svc.Create(context.Background(), CreateInput{
		Name:  "Flour",
		Unit:  enums.UnitKg,
		Price: decimal.NewFromInt(3),
	})
	require.NoError(t, err)

	name := "Premium Flour"
	inactive := false
	_, err = svc.Update(context.Background(), created.ID, UpdateInput{Name: &name, IsActive: &inactive})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"name": "Premium Flour", "is_active": false}, repo.updates)
}

func TestProductUpdate_NotFound(t *testing.T) {
	repo := newStubProductRepo()
	svc, err := NewService(repo, &stubCategories{exists: true})
	require.NoError(t, err)

	_, err = svc.Update(context.Background(), uuid.New(), UpdateInput{})
	require.Equal(t, apperrors.CodeNotFound, apperrors.As(err).Code())
}

func TestProductDelete_NotFound(t *testing.T) {
	repo := newStubProductRepo()
	svc, err := NewService(repo, &stubCategories{exists: true})
	require.NoError(t, err)

	err = svc.Delete(context.Background(), uuid.New())
	require.Equal(t, apperrors.CodeNotFound, apperrors.As(err).Code())
}
