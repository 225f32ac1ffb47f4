package controllers

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/toychauz/toycha-backend/api/responses"
	"github.com/toychauz/toycha-backend/internal/orders"
	"github.com/toychauz/toycha-backend/pkg/enums"
	"github.com/toychauz/toycha-backend/pkg/logger"
)

// DeliverOrderList pages through orders across all markets with the full
// filter set the staff dashboard exposes.
func DeliverOrderList(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		params, err := parsePageParams(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		marketID, err := parseOptionalUUIDQuery(r, "marketId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		status, err := parseOptionalStatus(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		from, err := parseOptionalTimeQuery(r, "from")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		to, err := parseOptionalTimeQuery(r, "to")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		page, err := svc.ListForDeliver(r.Context(), params, orders.ListFilters{
			MarketID: marketID,
			Status:   status,
			From:     from,
			To:       to,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, page)
	}
}

// DeliverOrderAccept moves a pending order to accepted.
func DeliverOrderAccept(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return transitionHandler(svc.Accept, enums.OrderStatusAccepted, logg)
}

// DeliverOrderReject closes a pending order as rejected.
func DeliverOrderReject(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return transitionHandler(svc.Reject, enums.OrderStatusRejected, logg)
}

// DeliverOrderDelivered marks an accepted order as delivered.
func DeliverOrderDelivered(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return transitionHandler(svc.MarkDelivered, enums.OrderStatusDelivered, logg)
}

// DeliverOrderReplaceLines applies a staff edit to an order's line list.
func DeliverOrderReplaceLines(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return replaceLinesHandler(svc, logg, enums.RoleDeliver)
}

// DeliverOrderDelete removes an order and its items outright. Staff only;
// markets cancel instead.
func DeliverOrderDelete(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orderID, err := parseUUIDParam(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.DeleteByDeliver(r.Context(), orderID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}

func transitionHandler(transition func(context.Context, uuid.UUID) error, target enums.OrderStatus, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orderID, err := parseUUIDParam(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := transition(r.Context(), orderID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{"status": string(target)})
	}
}
