package handlers

import (
	"net/http"

	"lmsplatform/internal/application/usecase"

	"github.com/gin-gonic/gin"
)

type NotificationHandler struct {
	notifications *usecase.NotificationUseCase
}

func NewNotificationHandler(n *usecase.NotificationUseCase) *NotificationHandler {
	return &NotificationHandler{notifications: n}
}

// GET /api/v1/get-all-notifications (админ)
func (h *NotificationHandler) List(c *gin.Context) {
	notifications, err := h.notifications.GetAll(c)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "notifications": notifications})
}

// PUT /api/v1/update-notification/:id (админ)
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	notifications, err := h.notifications.MarkRead(c, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "notifications": notifications})
}
