// Package messaging implements the direct-message operations: validation,
// access checks, persistence and the hand-off to live delivery.
package messaging

import (
	"context"
	"unicode/utf8"

	"marketzone/backend/internal/apperr"
	"marketzone/backend/internal/auth"
	"marketzone/backend/internal/models"
	"marketzone/backend/internal/storage"
)

// LiveNotifier receives events after the durable change has committed.
// Implementations must not block and cannot fail the operation.
type LiveNotifier interface {
	MessageSent(msg models.Message)
	MessagesRead(fromUserID, readerID string, count int64)
}

type noopNotifier struct{}

func (noopNotifier) MessageSent(models.Message)          {}
func (noopNotifier) MessagesRead(string, string, int64) {}

// SendInput is the body of a send request.
type SendInput struct {
	ReceiverID  string             `json:"receiverId"`
	Content     string             `json:"content"`
	ProductID   *string            `json:"productId,omitempty"`
	MessageType models.MessageType `json:"messageType,omitempty"`
}

type Service struct {
	store      storage.MessageStore
	users      storage.UserDirectory
	live       LiveNotifier
	guard      Guard
	Aggregator *Aggregator
}

// NewService wires the messaging operations. live may be nil.
func NewService(store storage.MessageStore, users storage.UserDirectory, products storage.ProductDirectory, live LiveNotifier) *Service {
	if live == nil {
		live = noopNotifier{}
	}
	return &Service{
		store:      store,
		users:      users,
		live:       live,
		Aggregator: NewAggregator(store, users, products),
	}
}

// Send validates and stores a message from the caller, then pushes it live.
func (s *Service) Send(ctx context.Context, id auth.AuthenticatedIdentity, in SendInput) (*models.Message, error) {
	if err := s.guard.authenticated(id); err != nil {
		return nil, err
	}
	content := models.NormalizeContent(in.Content)
	if in.ReceiverID == "" || content == "" {
		return nil, apperr.Validation("Receiver ID and content are required")
	}
	if utf8.RuneCountInString(content) > models.MaxContentLength {
		return nil, apperr.Validation("Message content is too long")
	}
	msgType := in.MessageType
	if msgType == "" {
		msgType = models.MessageTypeText
	}
	if !msgType.Valid() {
		return nil, apperr.Validation("Invalid message type")
	}
	if in.ReceiverID == id.UserID {
		return nil, apperr.InvalidOperation("Cannot send message to yourself")
	}

	ok, err := s.users.UserExists(ctx, in.ReceiverID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apperr.NotFound("Receiver not found")
	}
	ok, err = s.users.UserExists(ctx, id.UserID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apperr.NotFound("Sender not found")
	}

	var productID *string
	if in.ProductID != nil && *in.ProductID != "" {
		productID = in.ProductID
	}
	msg := &models.Message{
		SenderID:    id.UserID,
		ReceiverID:  in.ReceiverID,
		Content:     content,
		MessageType: msgType,
		ProductID:   productID,
	}
	if err := s.store.Insert(ctx, msg); err != nil {
		return nil, err
	}

	s.live.MessageSent(*msg)
	return msg, nil
}

// ListBetween returns the caller's conversation with otherID, oldest first.
func (s *Service) ListBetween(ctx context.Context, id auth.AuthenticatedIdentity, userID, otherID string) ([]models.Message, error) {
	if err := s.guard.RequireSelf(id, userID); err != nil {
		return nil, err
	}
	return s.store.ListBetween(ctx, userID, otherID)
}

func (s *Service) CountUnread(ctx context.Context, id auth.AuthenticatedIdentity, userID string) (int64, error) {
	if err := s.guard.RequireSelf(id, userID); err != nil {
		return 0, err
	}
	return s.store.CountUnread(ctx, userID)
}

// MarkRead marks everything otherID sent to userID as read and tells
// otherID how many messages changed.
func (s *Service) MarkRead(ctx context.Context, id auth.AuthenticatedIdentity, userID, otherID string) (int64, error) {
	if err := s.guard.RequireSelf(id, userID); err != nil {
		return 0, err
	}
	n, err := s.store.MarkRead(ctx, otherID, userID)
	if err != nil {
		return 0, err
	}
	s.live.MessagesRead(otherID, userID, n)
	return n, nil
}

// DeleteConversation removes every message of the conversation named by key.
func (s *Service) DeleteConversation(ctx context.Context, id auth.AuthenticatedIdentity, key string) (int64, error) {
	if err := s.guard.authenticated(id); err != nil {
		return 0, err
	}
	a, b, ok := models.ParseConversationKey(key)
	if !ok {
		return 0, apperr.Validation("Invalid conversation ID format")
	}
	if err := s.guard.RequireParticipant(id, a, b); err != nil {
		return 0, err
	}
	return s.store.DeleteConversation(ctx, a, b)
}

func (s *Service) GetConversations(ctx context.Context, id auth.AuthenticatedIdentity) ([]models.Conversation, error) {
	if err := s.guard.authenticated(id); err != nil {
		return nil, err
	}
	return s.Aggregator.GetConversations(ctx, id.UserID)
}
