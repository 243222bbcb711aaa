package models

import "encoding/json"

// Live event names. Client->server: EventUserJoin, EventTypingStart, EventTypingStop.
const (
	EventUserJoin           = "user:join"
	EventTypingStart        = "typing:start"
	EventTypingStop         = "typing:stop"
	EventMessageNew         = "message:new"
	EventConversationUpdate = "conversation:update"
	EventMessageSent        = "message:sent"
	EventMessagesRead       = "messages:read"
	EventError              = "error"
)

// LiveEvent is the frame exchanged over a live connection.
type LiveEvent struct {
	Event string `json:"event"`
	Data  any    `json:"data,omitempty"`
}

// InboundEvent is a client frame with the payload left undecoded.
type InboundEvent struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

type MessageEventPayload struct {
	Message        Message `json:"message"`
	ConversationID string  `json:"conversationId"`
}

type ConversationUpdatePayload struct {
	SenderID    string  `json:"senderId"`
	LastMessage Message `json:"lastMessage"`
}

type MessagesReadPayload struct {
	UserID string `json:"userId"`
	Count  int64  `json:"count"`
}

type TypingPayload struct {
	UserID     string `json:"userId"`
	ReceiverID string `json:"receiverId,omitempty"`
}

type ErrorPayload struct {
	Message string `json:"message"`
}
