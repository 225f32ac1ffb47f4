package orders

import (
	"context"
	"testing"
	"time"

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

type stubOrdersRepo struct {
	orders       map[uuid.UUID]*models.Order
	usedQuantity int
	updates      map[string]any
	replaced     []models.OrderItem
	deleted      []uuid.UUID
}

func newStubOrdersRepo() *stubOrdersRepo {
	return &stubOrdersRepo{orders: make(map[uuid.UUID]*models.Order)}
}

func (s *stubOrdersRepo) WithTx(tx *gorm.DB) Repository { return s }

func (s *stubOrdersRepo) Create(_ context.Context, order *models.Order) (*models.Order, error) {
	if order.ID == uuid.Nil {
		order.ID = uuid.New()
	}
	s.orders[order.ID] = order
	return order, nil
}

func (s *stubOrdersRepo) FindByID(_ context.Context, id uuid.UUID) (*models.Order, error) {
	order, ok := s.orders[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return order, nil
}

func (s *stubOrdersRepo) List(_ context.Context, params pagination.Params, filters ListFilters) (*pagination.Page[models.Order], error) {
	params = params.Normalize()
	var rows []models.Order
	for _, o := range s.orders {
		if filters.MarketID != nil && o.MarketID != *filters.MarketID {
			continue
		}
		if filters.Status != nil && o.Status != *filters.Status {
			continue
		}
		rows = append(rows, *o)
	}
	page := pagination.NewPage(rows, int64(len(rows)), params)
	return &page, nil
}

func (s *stubOrdersRepo) ReplaceItems(_ context.Context, orderID uuid.UUID, items []models.OrderItem) error {
	s.replaced = items
	if o, ok := s.orders[orderID]; ok {
		o.Items = items
	}
	return nil
}

func (s *stubOrdersRepo) Update(_ context.Context, orderID uuid.UUID, updates map[string]any) error {
	s.updates = updates
	if o, ok := s.orders[orderID]; ok {
		if st, ok := updates["status"].(enums.OrderStatus); ok {
			o.Status = st
		}
	}
	return nil
}

func (s *stubOrdersRepo) Delete(_ context.Context, orderID uuid.UUID) error {
	s.deleted = append(s.deleted, orderID)
	delete(s.orders, orderID)
	return nil
}

func (s *stubOrdersRepo) OrderedQuantitySince(context.Context, uuid.UUID, uuid.UUID, time.Time) (int, error) {
	return s.usedQuantity, nil
}

type stubTx struct{}

func (stubTx) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error { return fn(nil) }

type stubProducts struct {
	products []models.Product
}

func (s *stubProducts) FindActiveByIDs(_ context.Context, ids []uuid.UUID) ([]models.Product, error) {
	return s.products, nil
}

type stubLimits struct {
	err      error
	checked  int
	lastUsed int
}

func (s *stubLimits) Check(_ context.Context, _, _ uuid.UUID, requested, alreadyOrdered int) error {
	s.checked++
	s.lastUsed = alreadyOrdered
	return s.err
}

func newTestService(t *testing.T, repo *stubOrdersRepo, products *stubProducts, limits *stubLimits) Service {
	t.Helper()
	svc, err := NewService(ServiceParams{
		Repo:     repo,
		Tx:       stubTx{},
		Products: products,
		Limits:   limits,
		Now:      func() time.Time { return time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC) },
	})
	require.NoError(t, err)
	return svc
}

func catalogProduct(price string) models.Product {
	return models.Product{
		ID:       uuid.New(),
		Name:     "test product",
		Unit:     enums.UnitPiece,
		Price:    decimal.RequireFromString(price),
		IsActive: true,
	}
}

func TestCreate_AccumulatesDuplicateLines(t *testing.T) {
	repo := newStubOrdersRepo()
	product := catalogProduct("3.50")
	svc := newTestService(t, repo, &stubProducts{products: []models.Product{product}}, &stubLimits{})

	order, err := svc.Create(context.Background(), CreateInput{
		MarketID: uuid.New(),
		Lines: []LineInput{
			{ProductID: product.ID, Quantity: 2},
			{ProductID: product.ID, Quantity: 3},
		},
	})
	require.NoError(t, err)
	require.Len(t, order.Items, 1, "duplicate product lines must merge")
	assert.Equal(t, 5, order.Items[0].Quantity)
	assert.True(t, order.Total.Equal(decimal.RequireFromString("17.50")), "total %s", order.Total)
	assert.Equal(t, enums.OrderStatusNew, order.Status)
}

func TestCreate_RejectsInvalidLines(t *testing.T) {
	repo := newStubOrdersRepo()
	product := catalogProduct("1.00")
	svc := newTestService(t, repo, &stubProducts{products: []models.Product{product}}, &stubLimits{})

	cases := []struct {
		name  string
		lines []LineInput
	}{
		{"empty", nil},
		{"zero quantity", []LineInput{{ProductID: product.ID, Quantity: 0}}},
		{"negative quantity", []LineInput{{ProductID: product.ID, Quantity: -1}}},
		{"missing product", []LineInput{{Quantity: 2}}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Create(context.Background(), CreateInput{MarketID: uuid.New(), Lines: tc.lines})
			require.Error(t, err)
			require.Equal(t, apperrors.CodeValidation, apperrors.As(err).Code())
		})
	}
}

func TestCreate_UnknownProductRejected(t *testing.T) {
	repo := newStubOrdersRepo()
	svc := newTestService(t, repo, &stubProducts{}, &stubLimits{})

	_, err := svc.Create(context.Background(), CreateInput{
		MarketID: uuid.New(),
		Lines:    []LineInput{{ProductID: uuid.New(), Quantity: 1}},
	})
	require.Error(t, err)
	require.Equal(t, apperrors.CodeValidation, apperrors.As(err).Code())
}

func TestCreate_DailyLimitBlocksOrder(t *testing.T) {
	repo := newStubOrdersRepo()
	repo.usedQuantity = 8
	product := catalogProduct("2.00")
	limits := &stubLimits{err: apperrors.New(apperrors.CodeLimitExceeded, "daily order limit exceeded for product")}
	svc := newTestService(t, repo, &stubProducts{products: []models.Product{product}}, limits)

	_, err := svc.Create(context.Background(), CreateInput{
		MarketID: uuid.New(),
		Lines:    []LineInput{{ProductID: product.ID, Quantity: 5}},
	})
	require.Error(t, err)
	require.Equal(t, apperrors.CodeLimitExceeded, apperrors.As(err).Code())
	assert.Equal(t, 8, limits.lastUsed, "checker must see the quantity already consumed in the window")
	assert.Empty(t, repo.orders, "no order persisted when the limit blocks")
}

func TestReplaceLines_MarketOwnNewOrderOnly(t *testing.T) {
	repo := newStubOrdersRepo()
	product := catalogProduct("4.00")
	marketID := uuid.New()
	order := &models.Order{ID: uuid.New(), MarketID: marketID, Status: enums.OrderStatusNew}
	repo.orders[order.ID] = order
	svc := newTestService(t, repo, &stubProducts{products: []models.Product{product}}, &stubLimits{})

	input := ReplaceLinesInput{
		OrderID: order.ID,
		ActorID: marketID,
		Role:    enums.RoleMarket,
		Lines:   []LineInput{{ProductID: product.ID, Quantity: 3}},
	}
	_, err := svc.ReplaceLines(context.Background(), input)
	require.NoError(t, err)
	require.Len(t, repo.replaced, 1)
	assert.Equal(t, order.ID, repo.replaced[0].OrderID)
	assert.Equal(t, 3, repo.replaced[0].Quantity)

	input.ActorID = uuid.New()
	_, err = svc.ReplaceLines(context.Background(), input)
	require.Equal(t, apperrors.CodeForbidden, apperrors.As(err).Code())

	order.Status = enums.OrderStatusAccepted
	input.ActorID = marketID
	_, err = svc.ReplaceLines(context.Background(), input)
	require.Equal(t, apperrors.CodeStateConflict, apperrors.As(err).Code())
}

func TestReplaceLines_DeliverOnlyWhileNew(t *testing.T) {
	repo := newStubOrdersRepo()
	product := catalogProduct("1.00")
	order := &models.Order{ID: uuid.New(), MarketID: uuid.New(), Status: enums.OrderStatusNew}
	repo.orders[order.ID] = order
	svc := newTestService(t, repo, &stubProducts{products: []models.Product{product}}, &stubLimits{})

	input := ReplaceLinesInput{
		OrderID: order.ID,
		ActorID: uuid.New(),
		Role:    enums.RoleDeliver,
		Lines:   []LineInput{{ProductID: product.ID, Quantity: 2}},
	}
	_, err := svc.ReplaceLines(context.Background(), input)
	require.NoError(t, err)

	for _, status := range []enums.OrderStatus{
		enums.OrderStatusAccepted,
		enums.OrderStatusDelivered,
		enums.OrderStatusRejected,
		enums.OrderStatusCancelled,
	} {
		order.Status = status
		repo.replaced = nil
		_, err = svc.ReplaceLines(context.Background(), input)
		require.Error(t, err, "status %s", status)
		require.Equal(t, apperrors.CodeStateConflict, apperrors.As(err).Code())
		assert.Nil(t, repo.replaced, "no items written for status %s", status)
	}
}

func TestTransitions_FollowTheStatusMachine(t *testing.T) {
	repo := newStubOrdersRepo()
	product := catalogProduct("1.00")
	svc := newTestService(t, repo, &stubProducts{products: []models.Product{product}}, &stubLimits{})

	order := &models.Order{ID: uuid.New(), MarketID: uuid.New(), Status: enums.OrderStatusNew}
	repo.orders[order.ID] = order

	require.NoError(t, svc.Accept(context.Background(), order.ID))
	assert.Equal(t, enums.OrderStatusAccepted, order.Status)
	assert.NotNil(t, repo.updates["accepted_at"])

	err := svc.Reject(context.Background(), order.ID)
	require.Error(t, err, "accepted orders cannot be rejected")
	require.Equal(t, apperrors.CodeStateConflict, apperrors.As(err).Code())

	require.NoError(t, svc.MarkDelivered(context.Background(), order.ID))
	assert.Equal(t, enums.OrderStatusDelivered, order.Status)
	assert.NotNil(t, repo.updates["delivered_at"])
	assert.NotNil(t, repo.updates["closed_at"])

	err = svc.Accept(context.Background(), order.ID)
	require.Error(t, err, "delivered is terminal")
}

func TestCancelByMarket_OwnershipAndStatusChecked(t *testing.T) {
	repo := newStubOrdersRepo()
	product := catalogProduct("1.00")
	svc := newTestService(t, repo, &stubProducts{products: []models.Product{product}}, &stubLimits{})

	marketID := uuid.New()
	order := &models.Order{ID: uuid.New(), MarketID: marketID, Status: enums.OrderStatusNew}
	repo.orders[order.ID] = order

	err := svc.CancelByMarket(context.Background(), uuid.New(), order.ID)
	require.Equal(t, apperrors.CodeForbidden, apperrors.As(err).Code())

	require.NoError(t, svc.CancelByMarket(context.Background(), marketID, order.ID))
	assert.Equal(t, enums.OrderStatusCancelled, order.Status)

	err = svc.CancelByMarket(context.Background(), marketID, order.ID)
	require.Error(t, err, "cancelled is terminal")
}

func TestDeleteByDeliver_RemovesOrder(t *testing.T) {
	repo := newStubOrdersRepo()
	product := catalogProduct("1.00")
	svc := newTestService(t, repo, &stubProducts{products: []models.Product{product}}, &stubLimits{})

	order := &models.Order{ID: uuid.New(), MarketID: uuid.New(), Status: enums.OrderStatusNew}
	repo.orders[order.ID] = order

	require.NoError(t, svc.DeleteByDeliver(context.Background(), order.ID))
	require.Equal(t, []uuid.UUID{order.ID}, repo.deleted)

	err := svc.DeleteByDeliver(context.Background(), order.ID)
	require.Equal(t, apperrors.CodeNotFound, apperrors.As(err).Code())
}

func TestDeleteByDeliver_OnlyWhileNew(t *testing.T) {
	repo := newStubOrdersRepo()
	product := catalogProduct("1.00")
	svc := newTestService(t, repo, &stubProducts{products: []models.Product{product}}, &stubLimits{})

	for _, status := range []enums.OrderStatus{
		enums.OrderStatusAccepted,
		enums.OrderStatusDelivered,
		enums.OrderStatusRejected,
		enums.OrderStatusCancelled,
	} {
		order := &models.Order{ID: uuid.New(), MarketID: uuid.New(), Status: status}
		repo.orders[order.ID] = order

		err := svc.DeleteByDeliver(context.Background(), order.ID)
		require.Error(t, err, "status %s", status)
		require.Equal(t, apperrors.CodeStateConflict, apperrors.As(err).Code())
		assert.Empty(t, repo.deleted, "delete recorded for status %s", status)
	}
}

func TestGet_NotFoundMapped(t *testing.T) {
	repo := newStubOrdersRepo()
	product := catalogProduct("1.00")
	svc := newTestService(t, repo, &stubProducts{products: []models.Product{product}}, &stubLimits{})

	_, err := svc.Get(context.Background(), uuid.New())
	require.Error(t, err)
	require.Equal(t, apperrors.CodeNotFound, apperrors.As(err).Code())
}
