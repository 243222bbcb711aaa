package chathub

import (
	"encoding/json"
	"sync"
	"sync/atomic"
	"time"

	"marketzone/backend/internal/logger"
	"marketzone/backend/internal/models"

	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
	sendBuffer     = 256
)

// WebSocketClient реалізує інтерфейс chathub.Client поверх gorilla/websocket.
type WebSocketClient struct {
	UserID  string // з JWT, не з повідомлень клієнта
	Conn    *websocket.Conn
	Gateway *Gateway

	send      chan models.LiveEvent
	done      chan struct{}
	closeOnce sync.Once
	joined    atomic.Bool
}

func NewWebSocketClient(userID string, conn *websocket.Conn, gw *Gateway) *WebSocketClient {
	return &WebSocketClient{
		UserID:  userID,
		Conn:    conn,
		Gateway: gw,
		send:    make(chan models.LiveEvent, sendBuffer),
		done:    make(chan struct{}),
	}
}

func (c *WebSocketClient) GetUserID() string { return c.UserID }

func (c *WebSocketClient) Deliver(evt models.LiveEvent) bool {
	select {
	case <-c.done:
		return false
	default:
	}
	select {
	case c.send <- evt:
		return true
	default:
		return false
	}
}

// Run запускає 'pumps' для WebSocket
func (c *WebSocketClient) Run() {
	go c.writePump()
	go c.readPump()
}

// Close зупиняє writePump; readPump завершиться, коли закриється Conn.
func (c *WebSocketClient) Close() {
	c.closeOnce.Do(func() { close(c.done) })
}

func (c *WebSocketClient) readPump() {
	defer func() {
		c.Gateway.Leave(c)
		c.Close()
		c.Conn.Close()
	}()

	c.Conn.SetReadLimit(maxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, raw, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logger.Warn().Err(err).Str("user_id", c.UserID).Msg("websocket read failed")
			}
			return
		}

		var evt models.InboundEvent
		if err := json.Unmarshal(raw, &evt); err != nil {
			logger.Debug().Err(err).Str("user_id", c.UserID).Msg("invalid live frame")
			continue // пропускаємо невірне повідомлення
		}
		c.handle(evt)
	}
}

func (c *WebSocketClient) handle(evt models.InboundEvent) {
	switch evt.Event {
	case models.EventUserJoin:
		if joinUserID(evt.Data) != c.UserID {
			logger.Warn().Str("user_id", c.UserID).Msg("join rejected: id does not match token")
			c.Deliver(models.LiveEvent{
				Event: models.EventError,
				Data:  models.ErrorPayload{Message: "Cannot join as another user"},
			})
			return
		}
		c.joined.Store(true)
		c.Gateway.Join(c)

	case models.EventTypingStart, models.EventTypingStop:
		if !c.joined.Load() {
			return
		}
		var p models.TypingPayload
		if err := json.Unmarshal(evt.Data, &p); err != nil || p.ReceiverID == "" {
			return
		}
		if p.UserID != "" && p.UserID != c.UserID {
			return
		}
		if evt.Event == models.EventTypingStart {
			c.Gateway.TypingStart(c.UserID, p.ReceiverID)
		} else {
			c.Gateway.TypingStop(c.UserID, p.ReceiverID)
		}

	default:
		logger.Debug().Str("event", evt.Event).Str("user_id", c.UserID).Msg("unknown live event")
	}
}

// joinUserID accepts either "user-id" or {"userId": "user-id"}.
func joinUserID(data json.RawMessage) string {
	var id string
	if err := json.Unmarshal(data, &id); err == nil {
		return id
	}
	var obj struct {
		UserID string `json:"userId"`
	}
	if err := json.Unmarshal(data, &obj); err == nil {
		return obj.UserID
	}
	return ""
}

func (c *WebSocketClient) writePump() {
	ticker := time.NewTicker(pingPeriod)

	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case evt := <-c.send:
			if err := c.write(evt); err != nil {
				return
			}
			// Вичитуємо те, що вже накопичилось у буфері
			n := len(c.send)
			for i := 0; i < n; i++ {
				if err := c.write(<-c.send); err != nil {
					return
				}
			}

		case <-c.done:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
			return

		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
			if c.joined.Load() {
				c.Gateway.Touch(c)
			}
		}
	}
}

func (c *WebSocketClient) write(evt models.LiveEvent) error {
	c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := c.Conn.WriteJSON(evt); err != nil {
		logger.Debug().Err(err).Str("user_id", c.UserID).Msg("websocket write failed")
		return err
	}
	return nil
}
