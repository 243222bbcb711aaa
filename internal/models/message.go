package models

import (
	"strings"
	"time"
)

// MaxContentLength is the longest accepted message body, in characters.
const MaxContentLength = 5000

// MessageType describes what Content holds.
type MessageType string

const (
	MessageTypeText  MessageType = "text"
	MessageTypeImage MessageType = "image" // Content is a URL
	MessageTypeFile  MessageType = "file"  // Content is a URL
)

// Valid reports whether t is a known type.
func (t MessageType) Valid() bool {
	switch t {
	case MessageTypeText, MessageTypeImage, MessageTypeFile:
		return true
	}
	return false
}

// Message is one direct message between two users.
// Only Read changes after insert.
type Message struct {
	ID          uint        `gorm:"primaryKey;autoIncrement" json:"id"`
	SenderID    string      `gorm:"type:text;not null;index:idx_messages_pair,priority:1" json:"senderId"`
	ReceiverID  string      `gorm:"type:text;not null;index:idx_messages_pair,priority:2;index:idx_messages_inbox,priority:1" json:"receiverId"`
	Content     string      `gorm:"type:text;not null" json:"content"`
	MessageType MessageType `gorm:"type:text;not null;default:text" json:"messageType"`
	Read        bool        `gorm:"not null;default:false;index:idx_messages_inbox,priority:2" json:"read"`
	ProductID   *string     `gorm:"type:text" json:"productId,omitempty"`
	CreatedAt   time.Time   `gorm:"not null;index:idx_messages_pair,priority:3" json:"createdAt"`
}

// Involves reports whether userID is the sender or the receiver.
func (m *Message) Involves(userID string) bool {
	return m.SenderID == userID || m.ReceiverID == userID
}

// Counterpart returns the participant that is not userID.
func (m *Message) Counterpart(userID string) string {
	if m.SenderID == userID {
		return m.ReceiverID
	}
	return m.SenderID
}

// ConversationKey returns the key of the conversation this message belongs to.
func (m *Message) ConversationKey() string {
	return ConversationKey(m.SenderID, m.ReceiverID)
}

// NormalizeContent trims surrounding whitespace.
func NormalizeContent(s string) string {
	return strings.TrimSpace(s)
}

// MessageView is a Message with the public profiles of both participants.
// A profile is nil when the account no longer exists.
type MessageView struct {
	Message
	Sender   *UserSnippet `json:"sender,omitempty"`
	Receiver *UserSnippet `json:"receiver,omitempty"`
}
