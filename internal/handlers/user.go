package handlers

import (
	"fmt"
	"io"
	"net/http"
	"time"

	"skillgrid/internal/services"
	"skillgrid/internal/utils"

	"github.com/gin-gonic/gin"
)

type UserHandler struct {
	profiles    *services.ProfileService
	leaderboard *services.LeaderboardService
	hub         *services.ProfileHub
}

func NewUserHandler(profiles *services.ProfileService, leaderboard *services.LeaderboardService, hub *services.ProfileHub) *UserHandler {
	return &UserHandler{profiles: profiles, leaderboard: leaderboard, hub: hub}
}

// Me 当前用户资料 (GET /api/me)
func (h *UserHandler) Me(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	unread, err := h.profiles.UnreadCount(c.Request.Context(), user.ID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user, "unread_count": unread})
}

// UpdateMe (PATCH /api/me)
func (h *UserHandler) UpdateMe(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	var in services.ProfileUpdate
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, err)
		return
	}
	updated, err := h.profiles.UpdateProfile(c.Request.Context(), user.ID, in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": updated})
}

// Credits 积分记录 (GET /api/me/credits)
func (h *UserHandler) Credits(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	logs, err := h.profiles.CreditHistory(c.Request.Context(), user.ID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"total_credits": user.TotalCredits, "history": logs})
}

// Stream pushes profile changes as server-sent events (GET /api/me/stream).
// The current profile is sent first.
func (h *UserHandler) Stream(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	updates, cancel := h.hub.Subscribe(user.ID)
	defer cancel()

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no") // nginx

	c.SSEvent("profile", user)
	c.Writer.Flush()

	keepalive := time.NewTicker(25 * time.Second)
	defer keepalive.Stop()

	c.Stream(func(w io.Writer) bool {
		select {
		case u, open := <-updates:
			if !open {
				return false
			}
			c.SSEvent("profile", u)
			return true
		case <-keepalive.C:
			fmt.Fprint(w, ":\n\n")
			return true
		case <-c.Request.Context().Done():
			return false
		}
	})
}

// Leaderboard 排行榜 (GET /api/leaderboard?limit=N)
func (h *UserHandler) Leaderboard(c *gin.Context) {
	entries, err := h.leaderboard.GetLeaderboard(c.Request.Context(), utils.StringToInt(c.Query("limit")))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"leaderboard": entries})
}
