package handler

import (
	"net/http"
	"time"

	"marketzone/backend/internal/api/middleware"
	"marketzone/backend/internal/apperr"
	"marketzone/backend/internal/auth"
	"marketzone/backend/internal/chathub"
	"marketzone/backend/internal/logger"
	"marketzone/backend/internal/messaging"

	"github.com/gin-gonic/gin"
)

// Handler містить залежності HTTP та WebSocket обробників.
type Handler struct {
	Messages *messaging.Service
	Gateway  *chathub.Gateway
	Verifier auth.Verifier

	// Dev adds error details to 5xx responses.
	Dev     bool
	started time.Time
}

func NewHandler(messages *messaging.Service, gw *chathub.Gateway, v auth.Verifier, dev bool) *Handler {
	return &Handler{
		Messages: messages,
		Gateway:  gw,
		Verifier: v,
		Dev:      dev,
		started:  time.Now(),
	}
}

// fail writes err as {success:false, message}.
func (h *Handler) fail(c *gin.Context, err error) {
	status := apperr.HTTPStatus(err)
	body := gin.H{"success": false, "message": apperr.PublicMessage(err)}

	if status >= http.StatusInternalServerError {
		logger.Error().Err(err).Str("path", c.FullPath()).Msg("request failed")
		if h.Dev {
			body["error"] = err.Error()
		}
	}
	c.AbortWithStatusJSON(status, body)
}

// identity is always present behind RequireAuth.
func (h *Handler) identity(c *gin.Context) auth.AuthenticatedIdentity {
	id, _ := middleware.Identity(c)
	return id
}
