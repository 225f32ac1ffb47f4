package market

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/toychauz/toycha-backend/pkg/config"
	"github.com/toychauz/toycha-backend/pkg/db/models"
	apperrors "github.com/toychauz/toycha-backend/pkg/errors"
	"github.com/toychauz/toycha-backend/pkg/pagination"
	"github.com/toychauz/toycha-backend/pkg/security"
)

type stubMarketRepo struct {
	markets map[uuid.UUID]*models.Market
	updates map[string]any
}

func newStubMarketRepo() *stubMarketRepo {
	return &stubMarketRepo{markets: make(map[uuid.UUID]*models.Market)}
}

func (s *stubMarketRepo) WithTx(tx *gorm.DB) Repository { return s }

func (s *stubMarketRepo) Create(_ context.Context, market *models.Market) (*models.Market, error) {
	if market.ID == uuid.Nil {
		market.ID = uuid.New()
	}
	s.markets[market.ID] = market
	return market, nil
}

func (s *stubMarketRepo) FindByID(_ context.Context, id uuid.UUID) (*models.Market, error) {
	m, ok := s.markets[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return m, nil
}

func (s *stubMarketRepo) FindByPhone(_ context.Context, phone string) (*models.Market, error) {
	for _, m := range s.markets {
		if m.Phone == phone {
			return m, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubMarketRepo) List(_ context.Context, params pagination.Params, _ string) (*pagination.Page[models.Market], error) {
	var rows []models.Market
	for _, m := range s.markets {
		rows = append(rows, *m)
	}
	page := pagination.NewPage(rows, int64(len(rows)), params.Normalize())
	return &page, nil
}

func (s *stubMarketRepo) Update(_ context.Context, id uuid.UUID, updates map[string]any) error {
	s.updates = updates
	return nil
}

func (s *stubMarketRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(s.markets, id)
	return nil
}

func testPasswordConfig() config.PasswordConfig {
	return config.PasswordConfig{}
}

func TestMarketCreate_HashesPassword(t *testing.T) {
	repo := newStubMarketRepo()
	svc, err := NewService(repo, testPasswordConfig())
	require.NoError(t, err)

	created, err := svc.Create(context.Background(), CreateInput{
		Name:     "Chorsu Market",
		Phone:    "+998901234567",
		Password: "s3cret-pass",
	})
	require.NoError(t, err)
	require.NotEqual(t, "s3cret-pass", created.PasswordHash)
	assert.True(t, created.IsActive)

	ok, err := security.VerifyPassword("s3cret-pass", created.PasswordHash)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestMarketUpdate_RehashesOnPasswordChange(t *testing.T) {
	repo := newStubMarketRepo()
	svc, err := NewService(repo, testPasswordConfig())
	require.NoError(t, err)

	created, err := svc.Create(context.Background(), CreateInput{
		Name:     "Chorsu Market",
		Phone:    "+998901234567",
		Password: "s3cret-pass",
	})
	require.NoError(t, err)

	newPass := "an0ther-pass"
	_, err = svc.Update(context.Background(), created.ID, UpdateInput{Password: &newPass})
	require.NoError(t, err)

	hash, ok := repo.updates["password_hash"].(string)
	require.True(t, ok)
	verified, err := security.VerifyPassword(newPass, hash)
	require.NoError(t, err)
	assert.True(t, verified)
}

func TestMarketGet_NotFound(t *testing.T) {
	svc, err := NewService(newStubMarketRepo(), testPasswordConfig())
	require.NoError(t, err)

	_, err = svc.Get(context.Background(), uuid.New())
	require.Equal(t, apperrors.CodeNotFound, apperrors.As(err).Code())
}

func TestMarketDelete(t *testing.T) {
	repo := newStubMarketRepo()
	svc, err := NewService(repo, testPasswordConfig())
	require.NoError(t, err)

	created, err := svc.Create(context.Background(), CreateInput{
		Name:     "Chorsu Market",
		Phone:    "+998901234567",
		Password: "s3cret-pass",
	})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(context.Background(), created.ID))
	err = svc.Delete(context.Background(), created.ID)
	require.Equal(t, apperrors.CodeNotFound, apperrors.As(err).Code())
}
