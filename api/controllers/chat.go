package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/toychauz/toycha-backend/api/responses"
	"github.com/toychauz/toycha-backend/api/validators"
	"github.com/toychauz/toycha-backend/internal/chat"
	"github.com/toychauz/toycha-backend/pkg/enums"
	"github.com/toychauz/toycha-backend/pkg/logger"
)

const chatMessageMaxLen = 4000

// MarketChatThread returns the authenticated market's thread. A since query
// parameter narrows the response to new messages for pollers.
func MarketChatThread(svc chat.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		marketID, err := actorUUID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		writeThread(w, r, svc, logg, marketID)
	}
}

// MarketChatSend appends a market message to its thread.
func MarketChatSend(svc chat.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		marketID, err := actorUUID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		sendMessage(w, r, svc, logg, marketID, enums.ChatSenderMarket)
	}
}

// DeliverChatThread returns one market's thread for staff.
func DeliverChatThread(svc chat.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		marketID, err := parseUUIDParam(r, "marketId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		writeThread(w, r, svc, logg, marketID)
	}
}

// DeliverChatSend appends a staff message to a market's thread.
func DeliverChatSend(svc chat.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		marketID, err := parseUUIDParam(r, "marketId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		sendMessage(w, r, svc, logg, marketID, enums.ChatSenderDeliver)
	}
}

func writeThread(w http.ResponseWriter, r *http.Request, svc chat.Service, logg *logger.Logger, marketID uuid.UUID) {
	since, err := parseOptionalTimeQuery(r, "since")
	if err != nil {
		responses.WriteError(r.Context(), logg, w, err)
		return
	}

	if since != nil {
		messages, err := svc.ThreadSince(r.Context(), marketID, *since)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, messages)
		return
	}

	limit, err := validators.ParseQueryInt(r, "limit", 0, 0, 1000)
	if err != nil {
		responses.WriteError(r.Context(), logg, w, err)
		return
	}

	messages, err := svc.Thread(r.Context(), marketID, limit)
	if err != nil {
		responses.WriteError(r.Context(), logg, w, err)
		return
	}
	responses.WriteSuccess(w, messages)
}

func sendMessage(w http.ResponseWriter, r *http.Request, svc chat.Service, logg *logger.Logger, marketID uuid.UUID, sender enums.ChatSender) {
	var body chat.SendInput
	if err := validators.DecodeJSONBody(r, &body); err != nil {
		responses.WriteError(r.Context(), logg, w, err)
		return
	}
	body.Message = validators.SanitizeString(body.Message, chatMessageMaxLen)

	message, err := svc.Send(r.Context(), marketID, sender, body)
	if err != nil {
		responses.WriteError(r.Context(), logg, w, err)
		return
	}

	responses.WriteSuccessStatus(w, http.StatusCreated, message)
}
