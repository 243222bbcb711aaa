package messaging_test

import (
	"context"

	"marketzone/backend/internal/models"

	"github.com/stretchr/testify/mock"
)

type MockStore struct {
	mock.Mock
}

func (m *MockStore) Insert(ctx context.Context, msg *models.Message) error {
	args := m.Called(msg)
	if args.Error(0) == nil {
		msg.ID = 1
	}
	return args.Error(0)
}

func (m *MockStore) ListBetween(ctx context.Context, a, b string) ([]models.Message, error) {
	args := m.Called(a, b)
	return args.Get(0).([]models.Message), args.Error(1)
}

func (m *MockStore) CountUnread(ctx context.Context, userID string) (int64, error) {
	args := m.Called(userID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockStore) CountUnreadFrom(ctx context.Context, fromID, toID string) (int64, error) {
	args := m.Called(fromID, toID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockStore) MarkRead(ctx context.Context, fromID, toID string) (int64, error) {
	args := m.Called(fromID, toID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockStore) DeleteConversation(ctx context.Context, a, b string) (int64, error) {
	args := m.Called(a, b)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockStore) ListAllInvolving(ctx context.Context, userID string) ([]models.Message, error) {
	args := m.Called(userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Message), args.Error(1)
}

type MockUsers struct {
	mock.Mock
}

func (m *MockUsers) UserExists(ctx context.Context, id string) (bool, error) {
	args := m.Called(id)
	return args.Bool(0), args.Error(1)
}

func (m *MockUsers) GetUser(ctx context.Context, id string) (*models.User, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUsers) GetUsers(ctx context.Context, ids []string) (map[string]models.User, error) {
	args := m.Called(ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]models.User), args.Error(1)
}

type MockLive struct {
	mock.Mock
}

func (m *MockLive) MessageSent(msg models.Message) {
	m.Called(msg)
}

func (m *MockLive) MessagesRead(fromUserID, readerID string, count int64) {
	m.Called(fromUserID, readerID, count)
}
