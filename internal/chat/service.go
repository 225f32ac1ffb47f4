// Package chat carries the message thread between each market and the shared
// deliver side. Threads are keyed by market; clients poll for updates on a
// fixed cadence.
package chat

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/toychauz/toycha-backend/pkg/db/models"
	"github.com/toychauz/toycha-backend/pkg/enums"
	apperrors "github.com/toychauz/toycha-backend/pkg/errors"
)

const maxBodyLength = 4000

// SendInput is one outgoing message.
type SendInput struct {
	Message string `json:"message" validate:"required,min=1,max=4000"`
}

// Service defines chat thread operations for both roles.
type Service interface {
	Thread(ctx context.Context, marketID uuid.UUID, limit int) ([]models.ChatMessage, error)
	ThreadSince(ctx context.Context, marketID uuid.UUID, since time.Time) ([]models.ChatMessage, error)
	Send(ctx context.Context, marketID uuid.UUID, sender enums.ChatSender, input SendInput) (*models.ChatMessage, error)
}

type service struct {
	repo Repository
}

// NewService builds a chat service.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("chat repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) Thread(ctx context.Context, marketID uuid.UUID, limit int) ([]models.ChatMessage, error) {
	if marketID == uuid.Nil {
		return nil, apperrors.New(apperrors.CodeValidation, "market id required")
	}
	messages, err := s.repo.ListByMarket(ctx, marketID, limit)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeDependency, err, "list chat messages")
	}
	return messages, nil
}

func (s *service) ThreadSince(ctx context.Context, marketID uuid.UUID, since time.Time) ([]models.ChatMessage, error) {
	if marketID == uuid.Nil {
		return nil, apperrors.New(apperrors.CodeValidation, "market id required")
	}
	messages, err := s.repo.ListByMarketSince(ctx, marketID, since)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeDependency, err, "list chat messages")
	}
	return messages, nil
}

func (s *service) Send(ctx context.Context, marketID uuid.UUID, sender enums.ChatSender, input SendInput) (*models.ChatMessage, error) {
	if marketID == uuid.Nil {
		return nil, apperrors.New(apperrors.CodeValidation, "market id required")
	}
	if !sender.IsValid() {
		return nil, apperrors.New(apperrors.CodeValidation, "unknown sender")
	}
	body := strings.TrimSpace(input.Message)
	if body == "" {
		return nil, apperrors.New(apperrors.CodeValidation, "message cannot be empty")
	}
	if len(body) > maxBodyLength {
		return nil, apperrors.New(apperrors.CodeValidation, "message too long")
	}
	message := &models.ChatMessage{
		MarketID: marketID,
		Sender:   sender,
		Body:     body,
	}
	created, err := s.repo.Create(ctx, message)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeDependency, err, "create chat message")
	}
	return created, nil
}
