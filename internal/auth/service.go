// Package auth authenticates market and deliver accounts by phone number and
// issues session-backed access tokens.
package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/toychauz/toycha-backend/pkg/auth"
	"github.com/toychauz/toycha-backend/pkg/auth/session"
	"github.com/toychauz/toycha-backend/pkg/config"
	"github.com/toychauz/toycha-backend/pkg/db/models"
	"github.com/toychauz/toycha-backend/pkg/enums"
	apperrors "github.com/toychauz/toycha-backend/pkg/errors"
	"github.com/toychauz/toycha-backend/pkg/security"
)

const invalidCredentialsMessage = "invalid phone or password"

// Service defines the behavior needed by the auth controller.
type Service interface {
	MarketLogin(ctx context.Context, req LoginRequest) (*LoginResponse, error)
	DeliverLogin(ctx context.Context, req LoginRequest) (*LoginResponse, error)
	Refresh(ctx context.Context, req RefreshRequest) (*LoginResponse, error)
	Logout(ctx context.Context, jti string) error
}

type marketFinder interface {
	FindByPhone(ctx context.Context, phone string) (*models.Market, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Market, error)
}

type deliverFinder interface {
	FindByPhone(ctx context.Context, phone string) (*models.Deliver, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Deliver, error)
}

type sessionManager interface {
	Generate(ctx context.Context, accessID string) (string, error)
	Rotate(ctx context.Context, oldAccessID, provided string) (string, string, error)
	Revoke(ctx context.Context, accessID string) error
}

// ServiceParams bundles the dependencies required to build an auth service.
type ServiceParams struct {
	Markets        marketFinder
	Delivers       deliverFinder
	SessionManager sessionManager
	JWTConfig      config.JWTConfig
	Now            func() time.Time
}

type service struct {
	markets  marketFinder
	delivers deliverFinder
	session  sessionManager
	jwtCfg   config.JWTConfig
	now      func() time.Time
}

// NewService constructs a login service with the provided dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Markets == nil {
		return nil, fmt.Errorf("market finder is required")
	}
	if params.Delivers == nil {
		return nil, fmt.Errorf("deliver finder is required")
	}
	if params.SessionManager == nil {
		return nil, fmt.Errorf("session manager is required")
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &service{
		markets:  params.Markets,
		delivers: params.Delivers,
		session:  params.SessionManager,
		jwtCfg:   params.JWTConfig,
		now:      now,
	}, nil
}

func (s *service) MarketLogin(ctx context.Context, req LoginRequest) (*LoginResponse, error) {
	market, err := s.markets.FindByPhone(ctx, req.Phone)
	if err != nil {
		return nil, hideLookupError(err)
	}
	if !market.IsActive {
		return nil, apperrors.New(apperrors.CodeUnauthorized, invalidCredentialsMessage)
	}
	if err := s.verify(req.Password, market.PasswordHash); err != nil {
		return nil, err
	}
	return s.issue(ctx, market.ID, enums.RoleMarket, market.Name)
}

func (s *service) DeliverLogin(ctx context.Context, req LoginRequest) (*LoginResponse, error) {
	deliver, err := s.delivers.FindByPhone(ctx, req.Phone)
	if err != nil {
		return nil, hideLookupError(err)
	}
	if !deliver.IsActive {
		return nil, apperrors.New(apperrors.CodeUnauthorized, invalidCredentialsMessage)
	}
	if err := s.verify(req.Password, deliver.PasswordHash); err != nil {
		return nil, err
	}
	return s.issue(ctx, deliver.ID, enums.RoleDeliver, deliver.Name)
}

// Refresh rotates the session tied to an (possibly expired) access token and
// mints a replacement pair. The old jti is invalidated as part of rotation.
func (s *service) Refresh(ctx context.Context, req RefreshRequest) (*LoginResponse, error) {
	claims, err := auth.ParseAccessTokenAllowExpired(s.jwtCfg, req.AccessToken)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeUnauthorized, err, "invalid token")
	}
	if claims.ID == "" {
		return nil, apperrors.New(apperrors.CodeUnauthorized, "missing session id")
	}

	name, err := s.actorName(ctx, claims.ActorID, claims.Role)
	if err != nil {
		return nil, err
	}

	newAccessID, refreshToken, err := s.session.Rotate(ctx, claims.ID, req.RefreshToken)
	if err != nil {
		if errors.Is(err, session.ErrInvalidRefreshToken) {
			return nil, apperrors.New(apperrors.CodeSessionExpired, "session expired")
		}
		return nil, apperrors.Wrap(apperrors.CodeDependency, err, "rotate session")
	}

	token, err := auth.MintAccessToken(s.jwtCfg, s.now(), auth.AccessTokenPayload{
		ActorID: claims.ActorID,
		Role:    claims.Role,
		JTI:     newAccessID,
	})
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeInternal, err, "mint jwt")
	}

	return &LoginResponse{
		AccessToken:  token,
		RefreshToken: refreshToken,
		Role:         claims.Role,
		ActorID:      claims.ActorID,
		Name:         name,
	}, nil
}

// actorName re-reads the account so a refresh also confirms it still exists
// and has not been deactivated since login.
func (s *service) actorName(ctx context.Context, actorID uuid.UUID, role enums.Role) (string, error) {
	switch role {
	case enums.RoleMarket:
		market, err := s.markets.FindByID(ctx, actorID)
		if err != nil {
			return "", hideLookupError(err)
		}
		if !market.IsActive {
			return "", apperrors.New(apperrors.CodeUnauthorized, invalidCredentialsMessage)
		}
		return market.Name, nil
	case enums.RoleDeliver:
		deliver, err := s.delivers.FindByID(ctx, actorID)
		if err != nil {
			return "", hideLookupError(err)
		}
		if !deliver.IsActive {
			return "", apperrors.New(apperrors.CodeUnauthorized, invalidCredentialsMessage)
		}
		return deliver.Name, nil
	default:
		return "", apperrors.New(apperrors.CodeUnauthorized, "unknown role")
	}
}

func (s *service) Logout(ctx context.Context, jti string) error {
	if jti == "" {
		return nil
	}
	if err := s.session.Revoke(ctx, jti); err != nil {
		return apperrors.Wrap(apperrors.CodeDependency, err, "revoke session")
	}
	return nil
}

func (s *service) verify(password, hash string) error {
	ok, err := security.VerifyPassword(password, hash)
	if err != nil {
		return apperrors.Wrap(apperrors.CodeInternal, err, "verify password")
	}
	if !ok {
		return apperrors.New(apperrors.CodeUnauthorized, invalidCredentialsMessage)
	}
	return nil
}

func (s *service) issue(ctx context.Context, actorID uuid.UUID, role enums.Role, name string) (*LoginResponse, error) {
	accessID := session.NewAccessID()
	payload := auth.AccessTokenPayload{
		ActorID: actorID,
		Role:    role,
		JTI:     accessID,
	}
	token, err := auth.MintAccessToken(s.jwtCfg, s.now(), payload)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeInternal, err, "mint jwt")
	}
	refreshToken, err := s.session.Generate(ctx, accessID)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeInternal, err, "store session")
	}
	return &LoginResponse{
		AccessToken:  token,
		RefreshToken: refreshToken,
		Role:         role,
		ActorID:      actorID,
		Name:         name,
	}, nil
}

// hideLookupError collapses a missing account into the same unauthorized
// response a wrong password yields, so login cannot be used to probe for
// registered phone numbers.
func hideLookupError(err error) error {
	if appErr := apperrors.As(err); appErr != nil && appErr.Code() == apperrors.CodeNotFound {
		return apperrors.New(apperrors.CodeUnauthorized, invalidCredentialsMessage)
	}
	return apperrors.Wrap(apperrors.CodeDependency, err, "look up account")
}
