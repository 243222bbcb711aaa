package chathub

import (
	"context"
	"sync"
	"time"

	"marketzone/backend/internal/logger"
	"marketzone/backend/internal/models"
)

const (
	relayTimeout  = 2 * time.Second
	notifyTimeout = 10 * time.Second
)

// Relay carries events to users connected to other server instances and
// tracks which users are connected anywhere.
type Relay interface {
	Publish(ctx context.Context, userID string, evt models.LiveEvent) error
	SetOnline(ctx context.Context, userID string) error
	SetOffline(ctx context.Context, userID string) error
	IsOnline(ctx context.Context, userID string) (bool, error)
}

// OfflineNotifier is told about messages whose receiver has no live connection.
type OfflineNotifier interface {
	NotifyOffline(ctx context.Context, msg models.Message)
}

// Gateway pushes live events to connected users. Every method is
// best-effort: nothing here reports an error to the caller, and a missing
// or slow recipient never affects the operation that triggered the event.
type Gateway struct {
	Registry *Registry

	relay    Relay
	notifier OfflineNotifier

	mu     sync.Mutex // guards closed and wg.Add
	closed bool
	wg     sync.WaitGroup
}

func NewGateway(reg *Registry) *Gateway {
	return &Gateway{Registry: reg}
}

func (g *Gateway) SetRelay(r Relay)                      { g.relay = r }
func (g *Gateway) SetOfflineNotifier(n OfflineNotifier) { g.notifier = n }

// Wait blocks until background relay and notifier work has finished.
func (g *Gateway) Wait() { g.wg.Wait() }

// Connect tracks a freshly upgraded connection. It reports false and closes
// c when the gateway is already shut down.
func (g *Gateway) Connect(c Client) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.closed {
		c.Close()
		return false
	}
	g.Registry.Track(c)
	return true
}

// Close stops new background work, closes every connection and waits for
// work already started.
func (g *Gateway) Close() {
	g.mu.Lock()
	g.closed = true
	g.mu.Unlock()

	g.Registry.CloseAll()
	g.wg.Wait()
}

// Join registers c after a successful join handshake.
func (g *Gateway) Join(c Client) {
	userID := c.GetUserID()
	if prev := g.Registry.Register(userID, c); prev != nil {
		logger.Debug().Str("user_id", userID).Msg("live connection replaced")
	}
	if g.relay != nil {
		g.background(relayTimeout, func(ctx context.Context) {
			if err := g.relay.SetOnline(ctx, userID); err != nil {
				logger.Warn().Err(err).Str("user_id", userID).Msg("relay presence update failed")
			}
		})
	}
}

// Touch refreshes relay presence for c while it is still current.
func (g *Gateway) Touch(c Client) {
	if g.relay == nil {
		return
	}
	userID := c.GetUserID()
	if cur, ok := g.Registry.Lookup(userID); !ok || cur != c {
		return
	}
	g.background(relayTimeout, func(ctx context.Context) {
		if err := g.relay.SetOnline(ctx, userID); err != nil {
			logger.Warn().Err(err).Str("user_id", userID).Msg("relay presence refresh failed")
		}
	})
}

// Leave unregisters c if it is still the user's current connection.
func (g *Gateway) Leave(c Client) {
	g.Registry.Untrack(c)
	userID := c.GetUserID()
	if !g.Registry.UnregisterClient(userID, c) {
		return
	}
	if g.relay != nil {
		g.background(relayTimeout, func(ctx context.Context) {
			if err := g.relay.SetOffline(ctx, userID); err != nil {
				logger.Warn().Err(err).Str("user_id", userID).Msg("relay presence update failed")
			}
		})
	}
}

// MessageSent announces a stored message: message:new and
// conversation:update to the receiver, message:sent to the sender.
func (g *Gateway) MessageSent(msg models.Message) {
	convID := msg.ConversationKey()

	receiverLocal := g.emit(msg.ReceiverID, models.LiveEvent{
		Event: models.EventMessageNew,
		Data:  models.MessageEventPayload{Message: msg, ConversationID: convID},
	})
	g.emit(msg.ReceiverID, models.LiveEvent{
		Event: models.EventConversationUpdate,
		Data:  models.ConversationUpdatePayload{SenderID: msg.SenderID, LastMessage: msg},
	})
	g.emit(msg.SenderID, models.LiveEvent{
		Event: models.EventMessageSent,
		Data:  models.MessageEventPayload{Message: msg, ConversationID: convID},
	})

	if !receiverLocal && g.notifier != nil {
		g.background(notifyTimeout, func(ctx context.Context) {
			if g.relay != nil {
				online, err := g.relay.IsOnline(ctx, msg.ReceiverID)
				if err == nil && online {
					return
				}
			}
			g.notifier.NotifyOffline(ctx, msg)
		})
	}
}

// MessagesRead tells fromUserID that readerID has read count of their messages.
func (g *Gateway) MessagesRead(fromUserID, readerID string, count int64) {
	if count <= 0 {
		return
	}
	g.emit(fromUserID, models.LiveEvent{
		Event: models.EventMessagesRead,
		Data:  models.MessagesReadPayload{UserID: readerID, Count: count},
	})
}

func (g *Gateway) TypingStart(userID, receiverID string) {
	g.emit(receiverID, models.LiveEvent{Event: models.EventTypingStart, Data: models.TypingPayload{UserID: userID}})
}

func (g *Gateway) TypingStop(userID, receiverID string) {
	g.emit(receiverID, models.LiveEvent{Event: models.EventTypingStop, Data: models.TypingPayload{UserID: userID}})
}

// DeliverLocal hands evt to userID's connection on this instance only.
// It is the sink for events arriving from the relay.
func (g *Gateway) DeliverLocal(userID string, evt models.LiveEvent) bool {
	c, ok := g.Registry.Lookup(userID)
	if !ok {
		return false
	}
	if !c.Deliver(evt) {
		logger.Warn().Str("user_id", userID).Str("event", evt.Event).Msg("live event dropped")
	}
	return true
}

// emit delivers locally when possible, otherwise forwards to the relay.
// It reports whether userID has a connection on this instance.
func (g *Gateway) emit(userID string, evt models.LiveEvent) bool {
	if g.DeliverLocal(userID, evt) {
		return true
	}
	if g.relay != nil {
		g.background(relayTimeout, func(ctx context.Context) {
			if err := g.relay.Publish(ctx, userID, evt); err != nil {
				logger.Warn().Err(err).Str("user_id", userID).Str("event", evt.Event).Msg("relay publish failed")
			}
		})
	}
	return false
}

// background runs fn off the caller's goroutine. After Close it is a no-op.
func (g *Gateway) background(timeout time.Duration, fn func(ctx context.Context)) {
	g.mu.Lock()
	if g.closed {
		g.mu.Unlock()
		return
	}
	g.wg.Add(1)
	g.mu.Unlock()

	go func() {
		defer g.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		fn(ctx)
	}()
}
