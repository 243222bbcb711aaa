package chathub_test

import (
	"context"

	"marketzone/backend/internal/models"

	"github.com/stretchr/testify/mock"
)

// MockRelay is a testify mock of chathub.Relay.
type MockRelay struct {
	mock.Mock
}

func (m *MockRelay) Publish(ctx context.Context, userID string, evt models.LiveEvent) error {
	args := m.Called(userID, evt)
	return args.Error(0)
}

func (m *MockRelay) SetOnline(ctx context.Context, userID string) error {
	args := m.Called(userID)
	return args.Error(0)
}

func (m *MockRelay) SetOffline(ctx context.Context, userID string) error {
	args := m.Called(userID)
	return args.Error(0)
}

func (m *MockRelay) IsOnline(ctx context.Context, userID string) (bool, error) {
	args := m.Called(userID)
	return args.Bool(0), args.Error(1)
}

// MockNotifier is a testify mock of chathub.OfflineNotifier.
type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) NotifyOffline(ctx context.Context, msg models.Message) {
	m.Called(msg)
}
