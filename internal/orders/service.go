package orders

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/toychauz/toycha-backend/pkg/db/models"
	"github.com/toychauz/toycha-backend/pkg/enums"
	apperrors "github.com/toychauz/toycha-backend/pkg/errors"
	"github.com/toychauz/toycha-backend/pkg/pagination"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// ProductReader resolves the catalog entries an order refers to.
type ProductReader interface {
	FindActiveByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Product, error)
}

// LimitChecker enforces the per-market, per-product rolling daily cap.
type LimitChecker interface {
	Check(ctx context.Context, marketID, productID uuid.UUID, requested, alreadyOrdered int) error
}

// Service defines order lifecycle operations for both roles.
type Service interface {
	Create(ctx context.Context, input CreateInput) (*models.Order, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Order, error)
	ListForMarket(ctx context.Context, marketID uuid.UUID, params pagination.Params, status *enums.OrderStatus) (*pagination.Page[models.Order], error)
	ListForDeliver(ctx context.Context, params pagination.Params, filters ListFilters) (*pagination.Page[models.Order], error)
	ReplaceLines(ctx context.Context, input ReplaceLinesInput) (*models.Order, error)
	CancelByMarket(ctx context.Context, marketID, orderID uuid.UUID) error
	Accept(ctx context.Context, orderID uuid.UUID) error
	Reject(ctx context.Context, orderID uuid.UUID) error
	MarkDelivered(ctx context.Context, orderID uuid.UUID) error
	DeleteByDeliver(ctx context.Context, orderID uuid.UUID) error
}

type service struct {
	repo     Repository
	tx       txRunner
	products ProductReader
	limits   LimitChecker
	window   time.Duration
	now      func() time.Time
}

// ServiceParams configure the orders service.
type ServiceParams struct {
	Repo        Repository
	Tx          txRunner
	Products    ProductReader
	Limits      LimitChecker
	LimitWindow time.Duration
	Now         func() time.Time
}

const defaultLimitWindow = 24 * time.Hour

// NewService builds an orders service with the required dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if params.Tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if params.Products == nil {
		return nil, fmt.Errorf("product reader required")
	}
	if params.Limits == nil {
		return nil, fmt.Errorf("limit checker required")
	}
	window := params.LimitWindow
	if window <= 0 {
		window = defaultLimitWindow
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &service{
		repo:     params.Repo,
		tx:       params.Tx,
		products: params.Products,
		limits:   params.Limits,
		window:   window,
		now:      now,
	}, nil
}

func (s *service) Create(ctx context.Context, input CreateInput) (*models.Order, error) {
	if input.MarketID == uuid.Nil {
		return nil, apperrors.New(apperrors.CodeValidation, "market id required")
	}
	lines, err := accumulateLines(input.Lines)
	if err != nil {
		return nil, err
	}

	productsByID, err := s.resolveProducts(ctx, lines)
	if err != nil {
		return nil, err
	}

	since := s.now().Add(-s.window)
	for _, line := range lines {
		used, err := s.repo.OrderedQuantitySince(ctx, input.MarketID, line.ProductID, since)
		if err != nil {
			return nil, apperrors.Wrap(apperrors.CodeDependency, err, "check ordered quantity")
		}
		if err := s.limits.Check(ctx, input.MarketID, line.ProductID, line.Quantity, used); err != nil {
			return nil, err
		}
	}

	order := &models.Order{
		MarketID: input.MarketID,
		Status:   enums.OrderStatusNew,
	}
	order.Items, order.Total = buildItems(lines, productsByID)

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		_, err := s.repo.WithTx(tx).Create(ctx, order)
		return err
	})
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeDependency, err, "create order")
	}
	return s.Get(ctx, order.ID)
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	order, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.New(apperrors.CodeNotFound, "order not found")
		}
		return nil, apperrors.Wrap(apperrors.CodeDependency, err, "find order")
	}
	return order, nil
}

func (s *service) ListForMarket(ctx context.Context, marketID uuid.UUID, params pagination.Params, status *enums.OrderStatus) (*pagination.Page[models.Order], error) {
	if marketID == uuid.Nil {
		return nil, apperrors.New(apperrors.CodeValidation, "market id required")
	}
	page, err := s.repo.List(ctx, params, ListFilters{MarketID: &marketID, Status: status})
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeDependency, err, "list market orders")
	}
	return page, nil
}

func (s *service) ListForDeliver(ctx context.Context, params pagination.Params, filters ListFilters) (*pagination.Page[models.Order], error) {
	page, err := s.repo.List(ctx, params, filters)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeDependency, err, "list orders")
	}
	return page, nil
}

// ReplaceLines swaps an order's items for a full revised list. Only
// still-new orders may be amended, by either role; markets additionally must
// own the order.
func (s *service) ReplaceLines(ctx context.Context, input ReplaceLinesInput) (*models.Order, error) {
	order, err := s.Get(ctx, input.OrderID)
	if err != nil {
		return nil, err
	}
	switch input.Role {
	case enums.RoleMarket:
		if order.MarketID != input.ActorID {
			return nil, apperrors.New(apperrors.CodeForbidden, "order belongs to another market")
		}
	case enums.RoleDeliver:
	default:
		return nil, apperrors.New(apperrors.CodeForbidden, "unknown actor role")
	}
	if !order.Status.Editable() {
		return nil, apperrors.New(apperrors.CodeStateConflict, "order can no longer be edited")
	}

	lines, err := accumulateLines(input.Lines)
	if err != nil {
		return nil, err
	}
	productsByID, err := s.resolveProducts(ctx, lines)
	if err != nil {
		return nil, err
	}
	items, total := buildItems(lines, productsByID)
	for i := range items {
		items[i].OrderID = order.ID
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		scoped := s.repo.WithTx(tx)
		if err := scoped.ReplaceItems(ctx, order.ID, items); err != nil {
			return err
		}
		return scoped.Update(ctx, order.ID, map[string]any{"total": total})
	})
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeDependency, err, "replace order lines")
	}
	return s.Get(ctx, order.ID)
}

// CancelByMarket closes a still-new order on the market's behalf. The order
// row is kept so the cancellation stays visible in history.
func (s *service) CancelByMarket(ctx context.Context, marketID, orderID uuid.UUID) error {
	order, err := s.Get(ctx, orderID)
	if err != nil {
		return err
	}
	if order.MarketID != marketID {
		return apperrors.New(apperrors.CodeForbidden, "order belongs to another market")
	}
	return s.transition(ctx, order, enums.OrderStatusCancelled)
}

func (s *service) Accept(ctx context.Context, orderID uuid.UUID) error {
	order, err := s.Get(ctx, orderID)
	if err != nil {
		return err
	}
	return s.transition(ctx, order, enums.OrderStatusAccepted)
}

func (s *service) Reject(ctx context.Context, orderID uuid.UUID) error {
	order, err := s.Get(ctx, orderID)
	if err != nil {
		return err
	}
	return s.transition(ctx, order, enums.OrderStatusRejected)
}

func (s *service) MarkDelivered(ctx context.Context, orderID uuid.UUID) error {
	order, err := s.Get(ctx, orderID)
	if err != nil {
		return err
	}
	return s.transition(ctx, order, enums.OrderStatusDelivered)
}

// DeleteByDeliver removes a still-new order entirely. Once a transition has
// been recorded the order is history and can only be closed, not erased.
func (s *service) DeleteByDeliver(ctx context.Context, orderID uuid.UUID) error {
	order, err := s.Get(ctx, orderID)
	if err != nil {
		return err
	}
	if !order.Status.Editable() {
		return apperrors.New(apperrors.CodeStateConflict, "order can no longer be deleted")
	}
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		return s.repo.WithTx(tx).Delete(ctx, orderID)
	})
	if err != nil {
		return apperrors.Wrap(apperrors.CodeDependency, err, "delete order")
	}
	return nil
}

func (s *service) transition(ctx context.Context, order *models.Order, next enums.OrderStatus) error {
	if !order.Status.CanTransition(next) {
		return apperrors.New(apperrors.CodeStateConflict,
			fmt.Sprintf("order cannot move from %s to %s", order.Status, next))
	}
	now := s.now()
	updates := map[string]any{"status": next}
	switch next {
	case enums.OrderStatusAccepted:
		updates["accepted_at"] = now
	case enums.OrderStatusDelivered:
		updates["delivered_at"] = now
		updates["closed_at"] = now
	case enums.OrderStatusRejected, enums.OrderStatusCancelled:
		updates["closed_at"] = now
	}
	if err := s.repo.Update(ctx, order.ID, updates); err != nil {
		return apperrors.Wrap(apperrors.CodeDependency, err, "update order status")
	}
	return nil
}

func (s *service) resolveProducts(ctx context.Context, lines []LineInput) (map[uuid.UUID]models.Product, error) {
	ids := make([]uuid.UUID, 0, len(lines))
	for _, l := range lines {
		ids = append(ids, l.ProductID)
	}
	found, err := s.products.FindActiveByIDs(ctx, ids)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeDependency, err, "resolve products")
	}
	byID := make(map[uuid.UUID]models.Product, len(found))
	for _, p := range found {
		byID[p.ID] = p
	}
	for _, l := range lines {
		if _, ok := byID[l.ProductID]; !ok {
			return nil, apperrors.New(apperrors.CodeValidation, "unknown or inactive product").
				WithDetails(map[string]any{"product_id": l.ProductID})
		}
	}
	return byID, nil
}

// accumulateLines merges duplicate product ids by summing quantities and
// rejects non-positive quantities and empty lists up front.
func accumulateLines(lines []LineInput) ([]LineInput, error) {
	merged := make([]LineInput, 0, len(lines))
	index := make(map[uuid.UUID]int, len(lines))
	for _, l := range lines {
		if l.ProductID == uuid.Nil {
			return nil, apperrors.New(apperrors.CodeValidation, "product id required on every line")
		}
		if l.Quantity <= 0 {
			return nil, apperrors.New(apperrors.CodeValidation, "quantity must be a positive integer")
		}
		if i, ok := index[l.ProductID]; ok {
			merged[i].Quantity += l.Quantity
			continue
		}
		index[l.ProductID] = len(merged)
		merged = append(merged, l)
	}
	if len(merged) == 0 {
		return nil, apperrors.New(apperrors.CodeValidation, "order must contain at least one product")
	}
	return merged, nil
}

func buildItems(lines []LineInput, productsByID map[uuid.UUID]models.Product) ([]models.OrderItem, decimal.Decimal) {
	items := make([]models.OrderItem, 0, len(lines))
	total := decimal.Zero
	for _, l := range lines {
		price := productsByID[l.ProductID].Price
		items = append(items, models.OrderItem{
			ProductID: l.ProductID,
			Quantity:  l.Quantity,
			UnitPrice: price,
		})
		total = total.Add(price.Mul(decimal.NewFromInt(int64(l.Quantity))))
	}
	return items, total
}
