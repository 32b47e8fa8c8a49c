package handlers

import (
	"net/http"

	"skillgrid/internal/services"

	"github.com/gin-gonic/gin"
)

type EventHandler struct {
	catalog       *services.CatalogService
	registrations *services.RegistrationService
}

func NewEventHandler(catalog *services.CatalogService, registrations *services.RegistrationService) *EventHandler {
	return &EventHandler{catalog: catalog, registrations: registrations}
}

// List 活动目录 (GET /api/events)
func (h *EventHandler) List(c *gin.Context) {
	events, err := h.catalog.ListEvents(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"events": events})
}

// Detail (GET /api/events/:id)
func (h *EventHandler) Detail(c *gin.Context) {
	event, err := h.catalog.GetEvent(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"event": event})
}

// Register 报名活动 (POST /api/events/:id/register)
func (h *EventHandler) Register(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	reg, err := h.registrations.Register(c.Request.Context(), user.ID, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"registration": reg})
}

// MyRegistrations (GET /api/registrations)
func (h *EventHandler) MyRegistrations(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	regs, err := h.registrations.ListForStudent(c.Request.Context(), user.ID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"registrations": regs})
}

// Rewards 奖励商店，仅标记是否可兑换 (GET /api/rewards)
func (h *EventHandler) Rewards(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	rewards, err := h.catalog.RewardsFor(c.Request.Context(), user.TotalCredits)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"rewards": rewards, "total_credits": user.TotalCredits})
}
