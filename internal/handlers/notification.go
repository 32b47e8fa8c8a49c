package handlers

import (
	"net/http"
	"strconv"

	"skillgrid/internal/apperr"
	"skillgrid/internal/services"
	"skillgrid/internal/utils"

	"github.com/gin-gonic/gin"
)

type NotificationHandler struct {
	profiles *services.ProfileService
}

func NewNotificationHandler(profiles *services.ProfileService) *NotificationHandler {
	return &NotificationHandler{profiles: profiles}
}

// List (GET /api/me/notifications)
func (h *NotificationHandler) List(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	notifications, err := h.profiles.Notifications(c.Request.Context(), user.ID, utils.StringToInt(c.Query("limit")))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"notifications": notifications})
}

// Read 标记单条通知为已读 (POST /api/me/notifications/:id/read)
func (h *NotificationHandler) Read(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		respondError(c, apperr.New(apperr.NotFound, "Notification not found."))
		return
	}
	if err := h.profiles.MarkNotificationRead(c.Request.Context(), user.ID, uint(id)); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
