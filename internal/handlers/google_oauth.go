package handlers

import (
	"net/http"

	"skillgrid/internal/apperr"
	"skillgrid/internal/auth"
	"skillgrid/internal/middleware"
	"skillgrid/internal/services"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

const oauthStateKey = "oauth_state"

// GoogleLogin 发起 Google OAuth 登录 (GET /api/auth/google/login)
func (h *AuthHandler) GoogleLogin(c *gin.Context) {
	if h.google == nil {
		respondError(c, apperr.New(apperr.NotFound, "Google sign-in is not enabled."))
		return
	}

	state, err := services.GenerateStateToken()
	if err != nil {
		respondError(c, apperr.Wrap(apperr.Unknown, err, "Failed to sign in with Google."))
		return
	}

	// 将 state 存储到 session 中,用于验证回调
	session := sessions.Default(c)
	session.Set(oauthStateKey, state)
	session.Save()

	c.Redirect(http.StatusTemporaryRedirect, h.google.AuthCodeURL(state))
}

// GoogleCallback 处理 Google OAuth 回调 (GET /api/auth/google/callback)
func (h *AuthHandler) GoogleCallback(c *gin.Context) {
	if h.google == nil {
		respondError(c, apperr.New(apperr.NotFound, "Google sign-in is not enabled."))
		return
	}

	session := sessions.Default(c)
	savedState, _ := session.Get(oauthStateKey).(string)
	if savedState == "" || c.Query("state") != savedState {
		respondError(c, apperr.New(apperr.Validation, "Invalid sign-in state. Please try again."))
		return
	}

	// 清除 state
	session.Delete(oauthStateKey)
	session.Save()

	user, err := h.google.Exchange(c.Request.Context(), c.Query("code"))
	if err != nil {
		respondError(c, err)
		return
	}

	if err := middleware.Login(c, user.ID); err != nil {
		respondError(c, apperr.Wrap(apperr.Unknown, err, "Failed to start session."))
		return
	}
	c.Redirect(http.StatusFound, auth.HomeFor(user.Role))
}
