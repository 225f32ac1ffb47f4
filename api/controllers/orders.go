package controllers

import (
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/toychauz/toycha-backend/api/middleware"
	"github.com/toychauz/toycha-backend/api/responses"
	"github.com/toychauz/toycha-backend/api/validators"
	"github.com/toychauz/toycha-backend/internal/orders"
	product "github.com/toychauz/toycha-backend/internal/products"
	"github.com/toychauz/toycha-backend/pkg/enums"
	pkgerrors "github.com/toychauz/toycha-backend/pkg/errors"
	"github.com/toychauz/toycha-backend/pkg/logger"
)

type orderLinesBody struct {
	Lines []orders.LineInput `json:"lines" validate:"required,min=1,dive"`
}

// OrderCreate places a new order for the authenticated market.
func OrderCreate(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		marketID, err := actorUUID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body orderLinesBody
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.Create(r.Context(), orders.CreateInput{
			MarketID: marketID,
			Lines:    body.Lines,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, order)
	}
}

// OrderListForMarket pages through the authenticated market's own orders.
func OrderListForMarket(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		marketID, err := actorUUID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		params, err := parsePageParams(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		status, err := parseOptionalStatus(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		page, err := svc.ListForMarket(r.Context(), marketID, params, status)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, page)
	}
}

// OrderGet returns one order. Markets can only read their own.
func OrderGet(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orderID, err := parseUUIDParam(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.Get(r.Context(), orderID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if middleware.RoleFromContext(r.Context()) == string(enums.RoleMarket) {
			marketID, err := actorUUID(r)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			if order.MarketID != marketID {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeNotFound, "order not found"))
				return
			}
		}

		responses.WriteSuccess(w, order)
	}
}

// OrderReplaceLines applies a market's full revised line list to a pending order.
func OrderReplaceLines(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return replaceLinesHandler(svc, logg, enums.RoleMarket)
}

// OrderCancel lets a market withdraw its own pending order. The row is kept
// with a cancelled status rather than deleted.
func OrderCancel(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		marketID, err := actorUUID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		orderID, err := parseUUIDParam(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.CancelByMarket(r.Context(), marketID, orderID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{"status": string(enums.OrderStatusCancelled)})
	}
}

// MarketCatalog lists active products markets can order from.
func MarketCatalog(svc product.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		params, err := parsePageParams(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		categoryID, err := parseOptionalUUIDQuery(r, "categoryId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		page, err := svc.List(r.Context(), params, product.ListFilters{
			CategoryID: categoryID,
			ActiveOnly: true,
			Query:      strings.TrimSpace(r.URL.Query().Get("q")),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, page)
	}
}

func replaceLinesHandler(svc orders.Service, logg *logger.Logger, role enums.Role) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actorID, err := actorUUID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		orderID, err := parseUUIDParam(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body orderLinesBody
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.ReplaceLines(r.Context(), orders.ReplaceLinesInput{
			OrderID: orderID,
			ActorID: actorID,
			Role:    role,
			Lines:   body.Lines,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, order)
	}
}

func actorUUID(r *http.Request) (uuid.UUID, error) {
	raw := middleware.ActorIDFromContext(r.Context())
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing actor identity")
	}
	return id, nil
}

func parseOptionalStatus(r *http.Request) (*enums.OrderStatus, error) {
	raw := strings.TrimSpace(r.URL.Query().Get("status"))
	if raw == "" {
		return nil, nil
	}
	status, err := enums.ParseOrderStatus(raw)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown order status").WithDetails(map[string]any{"status": raw})
	}
	return &status, nil
}
