package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/toychauz/toycha-backend/api/responses"
	pkgAuth "github.com/toychauz/toycha-backend/pkg/auth"
	"github.com/toychauz/toycha-backend/pkg/auth/session"
	"github.com/toychauz/toycha-backend/pkg/config"
	"github.com/toychauz/toycha-backend/pkg/enums"
	pkgerrors "github.com/toychauz/toycha-backend/pkg/errors"
	"github.com/toychauz/toycha-backend/pkg/logger"
)

// Auth validates credentials from the auth cookie or a bearer header and
// seeds the request context with the claims. An expired token maps to the
// session-expired code so clients can distinguish it from a missing login.
func Auth(cfg config.JWTConfig, verifier session.AccessSessionChecker, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := extractToken(r, cfg.CookieName)
			if token == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
				return
			}

			claims, err := pkgAuth.ParseAccessToken(cfg, token)
			if err != nil {
				if pkgAuth.IsExpired(err) {
					responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeSessionExpired, err, "session expired"))
					return
				}
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid token"))
				return
			}

			if claims.ID == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing session id"))
				return
			}

			if verifier != nil {
				ok, err := verifier.HasSession(r.Context(), claims.ID)
				if err != nil {
					responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "validate session"))
					return
				}
				if !ok {
					responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeSessionExpired, "session expired"))
					return
				}
			}

			ctx := context.WithValue(r.Context(), ctxActorID, claims.ActorID.String())
			ctx = context.WithValue(ctx, ctxRole, string(claims.Role))
			ctx = context.WithValue(ctx, ctxJTI, claims.ID)

			if logg != nil {
				switch claims.Role {
				case enums.RoleMarket:
					ctx = logg.WithMarketID(ctx, claims.ActorID.String())
				case enums.RoleDeliver:
					ctx = logg.WithDeliverID(ctx, claims.ActorID.String())
				}
				ctx = logg.WithActorRole(ctx, string(claims.Role))
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// extractToken prefers the auth cookie and falls back to a bearer header for
// non-browser clients.
func extractToken(r *http.Request, cookieName string) string {
	if cookieName != "" {
		if cookie, err := r.Cookie(cookieName); err == nil && cookie.Value != "" {
			return cookie.Value
		}
	}
	raw := strings.TrimSpace(r.Header.Get("Authorization"))
	if raw == "" {
		return ""
	}
	if strings.HasPrefix(strings.ToLower(raw), "bearer ") {
		return strings.TrimSpace(raw[7:])
	}
	return raw
}
