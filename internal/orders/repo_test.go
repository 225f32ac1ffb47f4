package orders

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/toychauz/toycha-backend/pkg/db/models"
	"github.com/toychauz/toycha-backend/pkg/enums"
	"github.com/toychauz/toycha-backend/pkg/pagination"
)

func openOrdersTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	conn, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		SkipDefaultTransaction: true,
	})
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}
	// Postgres-only column defaults keep these models out of AutoMigrate;
	// the test schema mirrors the migrations by hand.
	ddl := []string{
		`CREATE TABLE markets (
			id TEXT PRIMARY KEY, name TEXT NOT NULL, phone TEXT NOT NULL UNIQUE,
			password_hash TEXT NOT NULL, address TEXT, is_active BOOLEAN NOT NULL DEFAULT 1,
			created_at DATETIME, updated_at DATETIME)`,
		`CREATE TABLE products (
			id TEXT PRIMARY KEY, name TEXT NOT NULL, unit TEXT NOT NULL DEFAULT 'piece',
			price NUMERIC NOT NULL DEFAULT 0, category_id TEXT, is_active BOOLEAN NOT NULL DEFAULT 1,
			created_at DATETIME, updated_at DATETIME)`,
		`CREATE TABLE orders (
			id TEXT PRIMARY KEY, market_id TEXT NOT NULL, status TEXT NOT NULL DEFAULT 'new',
			total NUMERIC NOT NULL DEFAULT 0, accepted_at DATETIME, delivered_at DATETIME,
			closed_at DATETIME, created_at DATETIME, updated_at DATETIME)`,
		`CREATE TABLE order_items (
			id TEXT PRIMARY KEY, order_id TEXT NOT NULL, product_id TEXT NOT NULL,
			quantity INTEGER NOT NULL, unit_price NUMERIC NOT NULL DEFAULT 0, created_at DATETIME)`,
	}
	for _, stmt := range ddl {
		if err := conn.Exec(stmt).Error; err != nil {
			t.Fatalf("create test schema: %v", err)
		}
	}
	return conn
}

func mustCreateMarket(t *testing.T, db *gorm.DB) *models.Market {
	t.Helper()
	market := &models.Market{
		ID:           uuid.New(),
		Name:         "Repo Market",
		Phone:        "+99890" + uuid.NewString()[:7],
		PasswordHash: "hash",
		IsActive:     true,
	}
	require.NoError(t, db.Create(market).Error)
	return market
}

func mustCreateProduct(t *testing.T, db *gorm.DB, price string) *models.Product {
	t.Helper()
	product := &models.Product{
		ID:       uuid.New(),
		Name:     "Repo Product",
		Unit:     enums.UnitPiece,
		Price:    decimal.RequireFromString(price),
		IsActive: true,
	}
	require.NoError(t, db.Create(product).Error)
	return product
}

func mustCreateOrder(t *testing.T, repo Repository, market *models.Market, product *models.Product, qty int, status enums.OrderStatus) *models.Order {
	t.Helper()
	order := &models.Order{
		ID:       uuid.New(),
		MarketID: market.ID,
		Status:   status,
		Total:    product.Price.Mul(decimal.NewFromInt(int64(qty))),
		Items: []models.OrderItem{{
			ID:        uuid.New(),
			ProductID: product.ID,
			Quantity:  qty,
			UnitPrice: product.Price,
		}},
	}
	_, err := repo.Create(context.Background(), order)
	require.NoError(t, err)
	return order
}

func TestRepository_CreateAndFindByID(t *testing.T) {
	db := openOrdersTestDB(t)
	repo := NewRepository(db)
	market := mustCreateMarket(t, db)
	product := mustCreateProduct(t, db, "2.50")

	created := mustCreateOrder(t, repo, market, product, 4, enums.OrderStatusNew)

	found, err := repo.FindByID(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, market.ID, found.MarketID)
	require.Len(t, found.Items, 1)
	assert.Equal(t, 4, found.Items[0].Quantity)
	require.NotNil(t, found.Items[0].Product)
	assert.Equal(t, product.ID, found.Items[0].Product.ID)
	require.NotNil(t, found.Market)
}

func TestRepository_ListFilters(t *testing.T) {
	db := openOrdersTestDB(t)
	repo := NewRepository(db)
	marketA := mustCreateMarket(t, db)
	marketB := mustCreateMarket(t, db)
	product := mustCreateProduct(t, db, "1.00")

	mustCreateOrder(t, repo, marketA, product, 1, enums.OrderStatusNew)
	mustCreateOrder(t, repo, marketA, product, 2, enums.OrderStatusAccepted)
	mustCreateOrder(t, repo, marketB, product, 3, enums.OrderStatusNew)

	page, err := repo.List(context.Background(), pagination.Params{}, ListFilters{MarketID: &marketA.ID})
	require.NoError(t, err)
	assert.EqualValues(t, 2, page.Total)

	status := enums.OrderStatusNew
	page, err = repo.List(context.Background(), pagination.Params{}, ListFilters{Status: &status})
	require.NoError(t, err)
	assert.EqualValues(t, 2, page.Total)

	page, err = repo.List(context.Background(), pagination.Params{}, ListFilters{MarketID: &marketB.ID, Status: &status})
	require.NoError(t, err)
	require.Len(t, page.Data, 1)
	assert.Equal(t, 3, page.Data[0].Items[0].Quantity)
}

func TestRepository_ReplaceItems(t *testing.T) {
	db := openOrdersTestDB(t)
	repo := NewRepository(db)
	market := mustCreateMarket(t, db)
	product := mustCreateProduct(t, db, "1.00")
	other := mustCreateProduct(t, db, "5.00")

	order := mustCreateOrder(t, repo, market, product, 2, enums.OrderStatusNew)

	err := repo.ReplaceItems(context.Background(), order.ID, []models.OrderItem{{
		ID:        uuid.New(),
		OrderID:   order.ID,
		ProductID: other.ID,
		Quantity:  7,
		UnitPrice: other.Price,
	}})
	require.NoError(t, err)

	found, err := repo.FindByID(context.Background(), order.ID)
	require.NoError(t, err)
	require.Len(t, found.Items, 1, "replace is wholesale, not a merge")
	assert.Equal(t, other.ID, found.Items[0].ProductID)
	assert.Equal(t, 7, found.Items[0].Quantity)
}

func TestRepository_OrderedQuantitySince(t *testing.T) {
	db := openOrdersTestDB(t)
	repo := NewRepository(db)
	market := mustCreateMarket(t, db)
	product := mustCreateProduct(t, db, "1.00")

	mustCreateOrder(t, repo, market, product, 3, enums.OrderStatusNew)
	mustCreateOrder(t, repo, market, product, 5, enums.OrderStatusAccepted)
	mustCreateOrder(t, repo, market, product, 9, enums.OrderStatusRejected)
	mustCreateOrder(t, repo, market, product, 11, enums.OrderStatusCancelled)

	since := time.Now().Add(-24 * time.Hour)
	used, err := repo.OrderedQuantitySince(context.Background(), market.ID, product.ID, since)
	require.NoError(t, err)
	assert.Equal(t, 8, used, "rejected and cancelled orders must not consume the limit")

	future := time.Now().Add(time.Hour)
	used, err = repo.OrderedQuantitySince(context.Background(), market.ID, product.ID, future)
	require.NoError(t, err)
	assert.Zero(t, used)
}

func TestRepository_DeleteRemovesItems(t *testing.T) {
	db := openOrdersTestDB(t)
	repo := NewRepository(db)
	market := mustCreateMarket(t, db)
	product := mustCreateProduct(t, db, "1.00")

	order := mustCreateOrder(t, repo, market, product, 2, enums.OrderStatusNew)
	require.NoError(t, repo.Delete(context.Background(), order.ID))

	_, err := repo.FindByID(context.Background(), order.ID)
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)

	var itemCount int64
	require.NoError(t, db.Model(&models.OrderItem{}).Where("order_id = ?", order.ID).Count(&itemCount).Error)
	assert.Zero(t, itemCount)
}
