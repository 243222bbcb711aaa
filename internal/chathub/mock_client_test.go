package chathub_test

import (
	"sync"

	"marketzone/backend/internal/models"
)

type MockClient struct {
	userID      string
	RecvChannel chan models.LiveEvent

	mu     sync.Mutex
	closed bool
}

func newMockClient(userID string) *MockClient {
	return &MockClient{
		userID:      userID,
		RecvChannel: make(chan models.LiveEvent, 10),
	}
}

func (c *MockClient) GetUserID() string {
	return c.userID
}

func (c *MockClient) Deliver(evt models.LiveEvent) bool {
	select {
	case c.RecvChannel <- evt:
		return true
	default:
		return false
	}
}

func (c *MockClient) Run() {
	// Not needed for testing
}

func (c *MockClient) Close() {
	c.mu.Lock()
	c.closed = true
	c.mu.Unlock()
}

func (c *MockClient) IsClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

// drain returns every event queued so far.
func (c *MockClient) drain() []models.LiveEvent {
	var out []models.LiveEvent
	for {
		select {
		case evt := <-c.RecvChannel:
			out = append(out, evt)
		default:
			return out
		}
	}
}

func eventNames(evts []models.LiveEvent) []string {
	names := make([]string, 0, len(evts))
	for _, e := range evts {
		names = append(names, e.Event)
	}
	return names
}
