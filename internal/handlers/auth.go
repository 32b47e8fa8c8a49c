package handlers

import (
	"context"
	"net/http"

	"skillgrid/internal/apperr"
	"skillgrid/internal/auth"
	"skillgrid/internal/middleware"
	"skillgrid/internal/models"
	"skillgrid/internal/services"

	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	accounts *services.AccountService
	google   *services.GoogleAuthService
}

// NewAuthHandler builds the sign-in endpoints. google may be nil when Google sign-in is not configured.
func NewAuthHandler(accounts *services.AccountService, google *services.GoogleAuthService) *AuthHandler {
	return &AuthHandler{accounts: accounts, google: google}
}

type loginForm struct {
	Email    string `json:"email" form:"email" binding:"required"`
	Password string `json:"password" form:"password" binding:"required"`
}

type verifyEmailForm struct {
	Email string `json:"email" form:"email" binding:"required"`
	Code  string `json:"code" form:"code" binding:"required"`
}

// Signup (POST /api/auth/signup)
func (h *AuthHandler) Signup(c *gin.Context) {
	var in services.SignupInput
	if err := c.ShouldBind(&in); err != nil {
		badRequest(c, err)
		return
	}
	user, err := h.accounts.SignupStudent(c.Request.Context(), in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"user":     user,
		"message":  "Account created. Enter the code sent to your email to verify it.",
		"redirect": auth.PathStudentLogin,
	})
}

// FacultySignup (POST /api/faculty/auth/signup)
func (h *AuthHandler) FacultySignup(c *gin.Context) {
	var in services.SignupInput
	if err := c.ShouldBind(&in); err != nil {
		badRequest(c, err)
		return
	}
	user, err := h.accounts.SignupFaculty(c.Request.Context(), in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"user":     user,
		"message":  "Faculty account created. Enter the code sent to your email to verify it.",
		"redirect": auth.PathFacultyLogin,
	})
}

// VerifyEmail (POST /api/auth/verify-email)
func (h *AuthHandler) VerifyEmail(c *gin.Context) {
	var in verifyEmailForm
	if err := c.ShouldBind(&in); err != nil {
		badRequest(c, err)
		return
	}
	user, err := h.accounts.VerifyEmail(c.Request.Context(), in.Email, in.Code)
	if err != nil {
		respondError(c, err)
		return
	}

	// 验证不建立会话，仍需密码登录
	redirect := auth.PathStudentLogin
	if user.Role.IsStaff() {
		redirect = auth.PathFacultyLogin
	}
	c.JSON(http.StatusOK, gin.H{"user": user, "message": "Email verified. You can now sign in.", "redirect": redirect})
}

type resendCodeForm struct {
	Email string `json:"email" form:"email" binding:"required"`
}

// ResendCode (POST /api/auth/resend-code)
func (h *AuthHandler) ResendCode(c *gin.Context) {
	var in resendCodeForm
	if err := c.ShouldBind(&in); err != nil {
		badRequest(c, err)
		return
	}
	if err := h.accounts.ResendVerificationCode(c.Request.Context(), in.Email); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "If the account is awaiting verification, a new code has been sent."})
}

// Login (POST /api/auth/login)
func (h *AuthHandler) Login(c *gin.Context) {
	h.login(c, h.accounts.Login)
}

// FacultyLogin (POST /api/faculty/auth/login)
func (h *AuthHandler) FacultyLogin(c *gin.Context) {
	h.login(c, h.accounts.LoginFaculty)
}

func (h *AuthHandler) login(c *gin.Context, check func(ctx context.Context, email, password string) (*models.User, error)) {
	var in loginForm
	if err := c.ShouldBind(&in); err != nil {
		badRequest(c, err)
		return
	}
	user, err := check(c.Request.Context(), in.Email, in.Password)
	if err != nil {
		respondError(c, err)
		return
	}
	h.startSession(c, user)
}

func (h *AuthHandler) startSession(c *gin.Context, user *models.User) {
	if err := middleware.Login(c, user.ID); err != nil {
		respondError(c, apperr.Wrap(apperr.Unknown, err, "Failed to start session."))
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user, "redirect": auth.HomeFor(user.Role)})
}

// Logout (POST /api/auth/logout)
func (h *AuthHandler) Logout(c *gin.Context) {
	user := middleware.CurrentUser(c)
	redirect := auth.PathStudentLogin
	if user != nil && user.Role.IsStaff() {
		redirect = auth.PathFacultyLogin
	}
	if err := middleware.Logout(c); err != nil {
		respondError(c, apperr.Wrap(apperr.Unknown, err, "Failed to end session."))
		return
	}
	c.JSON(http.StatusOK, gin.H{"redirect": redirect})
}
