package enums

import "fmt"

// ChatSender marks which side of a market/deliver thread authored a message.
type ChatSender string

const (
	ChatSenderMarket  ChatSender = "market"
	ChatSenderDeliver ChatSender = "deliver"
)

var validChatSenders = []ChatSender{ChatSenderMarket, ChatSenderDeliver}

// IsValid reports whether the value is a known ChatSender.
func (c ChatSender) IsValid() bool {
	for _, candidate := range validChatSenders {
		if candidate == c {
			return true
		}
	}
	return false
}

// ParseChatSender converts raw input into a ChatSender.
func ParseChatSender(value string) (ChatSender, error) {
	for _, candidate := range validChatSenders {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid chat sender %q", value)
}
