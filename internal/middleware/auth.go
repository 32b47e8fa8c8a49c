package middleware

import (
	"net/http"

	"skillgrid/internal/auth"
	"skillgrid/internal/models"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

const CheckUserKey = "user"
const SessionUserKey = "user_id"

// LoadUser retrieves user from session and sets to context
func LoadUser(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		session := sessions.Default(c)
		userID, _ := session.Get(SessionUserKey).(string)

		if userID != "" {
			var user models.User
			result := db.WithContext(c.Request.Context()).First(&user, "id = ?", userID)
			if result.Error == nil {
				c.Set(CheckUserKey, &user)
			} else {
				// 账号不存在时清理会话
				session.Delete(SessionUserKey)
				_ = session.Save()
			}
		}
		c.Next()
	}
}

// CurrentUser returns the signed-in user, or nil.
func CurrentUser(c *gin.Context) *models.User {
	if v, ok := c.Get(CheckUserKey); ok {
		if user, ok := v.(*models.User); ok {
			return user
		}
	}
	return nil
}

func identity(c *gin.Context) auth.Identity {
	user := CurrentUser(c)
	if user == nil {
		return auth.Identity{}
	}
	return auth.Identity{Authenticated: true, Role: user.Role}
}

// RequireArea applies the area access rule. Denied requests get 401 when
// signed out and 403 otherwise, with the page the client should go to.
func RequireArea(area auth.Area) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := identity(c)
		d := auth.Authorize(id, area)
		if d.Allow {
			c.Next()
			return
		}

		status, msg := http.StatusForbidden, "You do not have access to this area."
		switch {
		case !id.Authenticated:
			status, msg = http.StatusUnauthorized, "Please sign in."
		case area == auth.AreaPublicAuth || area == auth.AreaFacultyPublicAuth:
			msg = "You are already signed in."
		}
		c.AbortWithStatusJSON(status, gin.H{"error": msg, "redirect": d.RedirectTo})
	}
}

// AuthRequired ensures a user is logged in
func AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		if CurrentUser(c) == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Please sign in.", "redirect": auth.PathStudentLogin})
			return
		}
		c.Next()
	}
}

// Login stores the user id in the session.
func Login(c *gin.Context, userID string) error {
	session := sessions.Default(c)
	session.Set(SessionUserKey, userID)
	return session.Save()
}

func Logout(c *gin.Context) error {
	session := sessions.Default(c)
	session.Clear()
	return session.Save()
}
