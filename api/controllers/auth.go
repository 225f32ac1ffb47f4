package controllers

import (
	"net/http"

	"github.com/toychauz/toycha-backend/api/middleware"
	"github.com/toychauz/toycha-backend/api/responses"
	"github.com/toychauz/toycha-backend/api/validators"
	"github.com/toychauz/toycha-backend/internal/auth"
	"github.com/toychauz/toycha-backend/pkg/config"
	pkgerrors "github.com/toychauz/toycha-backend/pkg/errors"
	"github.com/toychauz/toycha-backend/pkg/logger"
)

// MarketLogin authenticates a market account and sets the auth cookie.
func MarketLogin(svc auth.Service, jwtCfg config.JWTConfig, logg *logger.Logger) http.HandlerFunc {
	return loginHandler(svc, jwtCfg, logg, func(r *http.Request, body auth.LoginRequest) (*auth.LoginResponse, error) {
		return svc.MarketLogin(r.Context(), body)
	})
}

// DeliverLogin authenticates a deliver account and sets the auth cookie.
func DeliverLogin(svc auth.Service, jwtCfg config.JWTConfig, logg *logger.Logger) http.HandlerFunc {
	return loginHandler(svc, jwtCfg, logg, func(r *http.Request, body auth.LoginRequest) (*auth.LoginResponse, error) {
		return svc.DeliverLogin(r.Context(), body)
	})
}

func loginHandler(svc auth.Service, jwtCfg config.JWTConfig, logg *logger.Logger, login func(*http.Request, auth.LoginRequest) (*auth.LoginResponse, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "auth service unavailable"))
			return
		}

		var body auth.LoginRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := login(r, body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		setAuthCookie(w, jwtCfg, result.AccessToken)
		responses.WriteSuccess(w, result)
	}
}

// AuthRefresh exchanges an expired access token plus refresh token for a new pair.
func AuthRefresh(svc auth.Service, jwtCfg config.JWTConfig, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "auth service unavailable"))
			return
		}

		var body auth.RefreshRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Refresh(r.Context(), body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		setAuthCookie(w, jwtCfg, result.AccessToken)
		responses.WriteSuccess(w, result)
	}
}

// AuthLogout revokes the caller's session and clears the auth cookie.
func AuthLogout(svc auth.Service, jwtCfg config.JWTConfig, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "auth service unavailable"))
			return
		}

		if err := svc.Logout(r.Context(), middleware.JTIFromContext(r.Context())); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		clearAuthCookie(w, jwtCfg)
		responses.WriteSuccess(w, map[string]string{"status": "logged_out"})
	}
}

func setAuthCookie(w http.ResponseWriter, cfg config.JWTConfig, token string) {
	if cfg.CookieName == "" {
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     cfg.CookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(cfg.AccessTokenTTL().Seconds()),
		HttpOnly: true,
		Secure:   cfg.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}

func clearAuthCookie(w http.ResponseWriter, cfg config.JWTConfig) {
	if cfg.CookieName == "" {
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     cfg.CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   cfg.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}
