package models

import (
	"strings"
	"time"
)

// ConversationSeparator joins the two user ids of a conversation key.
// User ids are UUIDs and never contain it.
const ConversationSeparator = "_"

// ConversationKey is symmetric: ConversationKey(a, b) == ConversationKey(b, a).
func ConversationKey(a, b string) string {
	if b < a {
		a, b = b, a
	}
	return a + ConversationSeparator + b
}

// ParseConversationKey splits a key into its two user ids. It accepts the
// ids in either order and rejects keys that are not exactly two non-empty
// ids joined by a single separator.
func ParseConversationKey(key string) (string, string, bool) {
	if strings.Count(key, ConversationSeparator) != 1 {
		return "", "", false
	}
	a, b, _ := strings.Cut(key, ConversationSeparator)
	if a == "" || b == "" || a == b {
		return "", "", false
	}
	return a, b, true
}

// Conversation is derived from messages on every read and never stored.
type Conversation struct {
	ID           string          `json:"id"`
	Participants []string        `json:"participants"`
	OtherUser    UserSnippet     `json:"otherUser"`
	LastMessage  Message         `json:"lastMessage"`
	UnreadCount  int64           `json:"unreadCount"`
	Product      *ProductSnippet `json:"product,omitempty"`
	UpdatedAt    time.Time       `json:"updatedAt"`
}
