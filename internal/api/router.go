// Package api assembles the gin engine.
package api

import (
	"marketzone/backend/internal/api/handler"
	"marketzone/backend/internal/api/middleware"
	"marketzone/backend/internal/ratelimit"

	"github.com/gin-gonic/gin"
)

type RouterConfig struct {
	AllowedOrigins []string
	// TrustedProxies may set X-Forwarded-For. Empty means the client IP
	// is always the socket peer.
	TrustedProxies []string
	// Limiter throttles /api per client IP; nil disables it.
	Limiter *ratelimit.KeyedLimiter
}

// NewRouter registers every route on a fresh engine.
func NewRouter(h *handler.Handler, cfg RouterConfig) (*gin.Engine, error) {
	r := gin.New()
	if err := r.SetTrustedProxies(cfg.TrustedProxies); err != nil {
		return nil, err
	}
	r.Use(middleware.Recovery(), middleware.RequestLogger(), middleware.CORS(cfg.AllowedOrigins))

	r.GET("/health", h.Health)
	r.GET("/ws", h.ServeWebSocket)

	apiGroup := r.Group("/api")
	if cfg.Limiter != nil {
		apiGroup.Use(middleware.RateLimit(cfg.Limiter))
	}
	apiGroup.GET("/health", h.Health)

	messages := apiGroup.Group("/messages", middleware.RequireAuth(h.Verifier))
	{
		messages.GET("/conversations", h.GetConversations)
		messages.GET("/conversation/:userId/:otherId", h.GetConversation)
		messages.POST("/send", h.SendMessage)
		messages.GET("/unread-count/:userId", h.GetUnreadCount)
		messages.PUT("/mark-read/:userId/:otherId", h.MarkAsRead)
		messages.DELETE("/conversation/:conversationId", h.DeleteConversation)
	}

	r.NoRoute(h.NotFound)
	return r, nil
}
