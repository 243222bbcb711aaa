package handler

import (
	"net/http"

	"marketzone/backend/internal/apperr"
	"marketzone/backend/internal/messaging"
	"marketzone/backend/internal/models"

	"github.com/gin-gonic/gin"
)

// GetConversations GET /conversations
func (h *Handler) GetConversations(c *gin.Context) {
	convs, err := h.Messages.GetConversations(c.Request.Context(), h.identity(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": convs})
}

// GetConversation GET /conversation/:userId/:otherId
func (h *Handler) GetConversation(c *gin.Context) {
	ctx := c.Request.Context()
	msgs, err := h.Messages.ListBetween(ctx, h.identity(c), c.Param("userId"), c.Param("otherId"))
	if err != nil {
		h.fail(c, err)
		return
	}
	views, err := h.Messages.Populate(ctx, msgs)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": views})
}

// SendMessage POST /send
func (h *Handler) SendMessage(c *gin.Context) {
	var in messaging.SendInput
	if err := c.ShouldBindJSON(&in); err != nil {
		h.fail(c, apperr.Validation("Invalid request body"))
		return
	}

	ctx := c.Request.Context()
	msg, err := h.Messages.Send(ctx, h.identity(c), in)
	if err != nil {
		h.fail(c, err)
		return
	}
	// повідомлення вже збережене; без профілів віддаємо його як є
	data := models.MessageView{Message: *msg}
	if views, err := h.Messages.Populate(ctx, []models.Message{*msg}); err == nil {
		data = views[0]
	}
	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"message": "Message sent successfully",
		"data":    data,
	})
}

// GetUnreadCount GET /unread-count/:userId
func (h *Handler) GetUnreadCount(c *gin.Context) {
	n, err := h.Messages.CountUnread(c.Request.Context(), h.identity(c), c.Param("userId"))
	if err != nil {
		h.fail(c, err)
		return
	}
	// старі клієнти читають "count"
	c.JSON(http.StatusOK, gin.H{"success": true, "unreadCount": n, "count": n})
}

// MarkAsRead PUT /mark-read/:userId/:otherId
func (h *Handler) MarkAsRead(c *gin.Context) {
	n, err := h.Messages.MarkRead(c.Request.Context(), h.identity(c), c.Param("userId"), c.Param("otherId"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":       true,
		"message":       "Messages marked as read",
		"modifiedCount": n,
	})
}

// DeleteConversation DELETE /conversation/:conversationId
func (h *Handler) DeleteConversation(c *gin.Context) {
	n, err := h.Messages.DeleteConversation(c.Request.Context(), h.identity(c), c.Param("conversationId"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":      true,
		"message":      "Conversation deleted successfully",
		"deletedCount": n,
	})
}
