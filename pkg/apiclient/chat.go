package apiclient

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/toychauz/toycha-backend/pkg/logger"
	"github.com/toychauz/toycha-backend/pkg/poll"
)

// ChatMessage is the wire shape chat endpoints return.
type ChatMessage struct {
	ID        string    `json:"id"`
	MarketID  string    `json:"marketId"`
	Sender    string    `json:"sender"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"createdAt"`
}

// ChatPollerParams configure a ChatPoller.
type ChatPollerParams struct {
	Client *Client
	Logger *logger.Logger
	// Path is the thread endpoint, e.g. /api/v1/contact/chat.
	Path     string
	Interval time.Duration
	// OnMessages receives each non-empty batch of new messages.
	OnMessages func([]ChatMessage)
	// OnUnauthorized fires when the session guard redirected; polling stops
	// making progress after that, so callers usually cancel the context.
	OnUnauthorized func()
}

// ChatPoller refreshes a chat thread on a fixed cadence, fetching only
// messages newer than the last one seen.
type ChatPoller struct {
	client         *Client
	path           string
	poller         *poll.Poller
	onMessages     func([]ChatMessage)
	onUnauthorized func()
	lastSeen       time.Time
}

// NewChatPoller builds a poller for one thread.
func NewChatPoller(params ChatPollerParams) (*ChatPoller, error) {
	if params.Client == nil {
		return nil, fmt.Errorf("client required")
	}
	if params.Path == "" {
		return nil, fmt.Errorf("path required")
	}
	if params.OnMessages == nil {
		return nil, fmt.Errorf("message handler required")
	}

	cp := &ChatPoller{
		client:         params.Client,
		path:           params.Path,
		onMessages:     params.OnMessages,
		onUnauthorized: params.OnUnauthorized,
	}

	poller, err := poll.NewPoller(poll.PollerParams{
		Logger:   params.Logger,
		Name:     "chat",
		Interval: params.Interval,
		Run:      cp.cycle,
	})
	if err != nil {
		return nil, err
	}
	cp.poller = poller
	return cp, nil
}

// Run blocks until ctx is canceled. The first cycle fires immediately.
func (c *ChatPoller) Run(ctx context.Context) error {
	return c.poller.Run(ctx)
}

func (c *ChatPoller) cycle(ctx context.Context) error {
	path := c.path
	if !c.lastSeen.IsZero() {
		path += "?since=" + url.QueryEscape(c.lastSeen.Format(time.RFC3339))
	}

	result := c.client.Get(ctx, path)
	switch result.Kind {
	case KindUnauthorized:
		if c.onUnauthorized != nil {
			c.onUnauthorized()
		}
		return nil
	case KindError:
		if result.Err != nil {
			return result.Err
		}
		return fmt.Errorf("chat fetch: %s %s", result.Code, result.Message)
	}

	var messages []ChatMessage
	if err := result.DecodeData(&messages); err != nil {
		return fmt.Errorf("decode chat messages: %w", err)
	}
	if len(messages) == 0 {
		return nil
	}

	for _, message := range messages {
		if message.CreatedAt.After(c.lastSeen) {
			c.lastSeen = message.CreatedAt
		}
	}
	c.onMessages(messages)
	return nil
}
