package handlers

import (
	"net/http"

	"skillgrid/internal/services"

	"github.com/gin-gonic/gin"
)

type FacultyHandler struct {
	registrations *services.RegistrationService
	verification  *services.VerificationService
	catalog       *services.CatalogService
	profiles      *services.ProfileService
	leaderboard   *services.LeaderboardService
	onVerified    func()
}

func NewFacultyHandler(
	registrations *services.RegistrationService,
	verification *services.VerificationService,
	catalog *services.CatalogService,
	profiles *services.ProfileService,
	leaderboard *services.LeaderboardService,
) *FacultyHandler {
	return &FacultyHandler{
		registrations: registrations,
		verification:  verification,
		catalog:       catalog,
		profiles:      profiles,
		leaderboard:   leaderboard,
	}
}

// OnVerified registers a callback run after each successful verification.
func (h *FacultyHandler) OnVerified(fn func()) {
	h.onVerified = fn
}

type verifyForm struct {
	SkillKey string `json:"skill_key"`
}

type rejectForm struct {
	Reason string `json:"reason"`
}

// Verifications 审核队列 (GET /api/faculty/verifications)
func (h *FacultyHandler) Verifications(c *gin.Context) {
	queue, err := h.registrations.VerificationQueue(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	pending, history := services.SplitQueue(queue)
	c.JSON(http.StatusOK, gin.H{"pending": pending, "history": history})
}

// Verify (POST /api/faculty/verifications/:studentId/:eventId/verify)
func (h *FacultyHandler) Verify(c *gin.Context) {
	actor, ok := currentUser(c)
	if !ok {
		return
	}
	var in verifyForm
	if err := bindOptionalJSON(c, &in); err != nil {
		badRequest(c, err)
		return
	}

	student, err := h.verification.Verify(c.Request.Context(), actor, c.Param("studentId"), c.Param("eventId"), in.SkillKey)
	if err != nil {
		respondError(c, err)
		return
	}
	if h.onVerified != nil {
		h.onVerified()
	}
	c.JSON(http.StatusOK, gin.H{"student": student})
}

// Reject (POST /api/faculty/verifications/:studentId/:eventId/reject)
func (h *FacultyHandler) Reject(c *gin.Context) {
	actor, ok := currentUser(c)
	if !ok {
		return
	}
	var in rejectForm
	if err := bindOptionalJSON(c, &in); err != nil {
		badRequest(c, err)
		return
	}

	if err := h.verification.Reject(c.Request.Context(), actor, c.Param("studentId"), c.Param("eventId"), in.Reason); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Events (GET /api/faculty/events)
func (h *FacultyHandler) Events(c *gin.Context) {
	events, err := h.catalog.ListEvents(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"events": events})
}

// CreateEvent 发布活动，multipart 表单，image 可选 (POST /api/faculty/events)
func (h *FacultyHandler) CreateEvent(c *gin.Context) {
	actor, ok := currentUser(c)
	if !ok {
		return
	}
	var in services.EventInput
	if err := c.ShouldBind(&in); err != nil {
		badRequest(c, err)
		return
	}
	img, closeImg, err := formImage(c)
	if err != nil {
		respondError(c, err)
		return
	}
	defer closeImg()

	event, err := h.catalog.CreateEvent(c.Request.Context(), actor, in, img)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"event": event})
}

// DeleteEvent (DELETE /api/faculty/events/:id)
func (h *FacultyHandler) DeleteEvent(c *gin.Context) {
	if err := h.catalog.DeleteEvent(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Rewards (GET /api/faculty/rewards)
func (h *FacultyHandler) Rewards(c *gin.Context) {
	rewards, err := h.catalog.ListRewards(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"rewards": rewards})
}

// CreateReward (POST /api/faculty/rewards)
func (h *FacultyHandler) CreateReward(c *gin.Context) {
	var in services.RewardInput
	if err := c.ShouldBind(&in); err != nil {
		badRequest(c, err)
		return
	}
	img, closeImg, err := formImage(c)
	if err != nil {
		respondError(c, err)
		return
	}
	defer closeImg()

	reward, err := h.catalog.AddReward(c.Request.Context(), in, img)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"reward": reward})
}

// DeleteReward (DELETE /api/faculty/rewards/:id)
func (h *FacultyHandler) DeleteReward(c *gin.Context) {
	if err := h.catalog.DeleteReward(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Students 学生名册 (GET /api/faculty/students)
func (h *FacultyHandler) Students(c *gin.Context) {
	students, err := h.profiles.ListStudents(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"students": students})
}

// Leaderboard (GET /api/faculty/leaderboard)
func (h *FacultyHandler) Leaderboard(c *gin.Context) {
	entries, err := h.leaderboard.GetLeaderboard(c.Request.Context(), services.MaxLeaderboardLimit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"leaderboard": entries})
}
