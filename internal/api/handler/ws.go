package handler

import (
	"net/http"

	"marketzone/backend/internal/apperr"
	"marketzone/backend/internal/auth"
	"marketzone/backend/internal/chathub"
	"marketzone/backend/internal/logger"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Origin перевіряє CORS на рівні HTTP API; сокет захищений токеном
	CheckOrigin: func(r *http.Request) bool { return true },
}

// ServeWebSocket оновлює HTTP-з'єднання до WebSocket. Клієнт стає
// адресованим лише після події user:join.
func (h *Handler) ServeWebSocket(c *gin.Context) {
	id, err := h.Verifier.Verify(auth.TokenFromRequest(c.Request))
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "message": apperr.PublicMessage(err)})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade вже записав відповідь
		logger.Warn().Err(err).Str("user_id", id.UserID).Msg("websocket upgrade failed")
		return
	}

	client := chathub.NewWebSocketClient(id.UserID, conn, h.Gateway)
	if !h.Gateway.Connect(client) {
		conn.Close()
		return
	}
	client.Run()
}
