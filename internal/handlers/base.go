package handlers

import (
	"errors"
	"io"
	"log"
	"net/http"

	"skillgrid/internal/apperr"
	"skillgrid/internal/middleware"
	"skillgrid/internal/models"

	"github.com/gin-gonic/gin"
)

// respondError renders err as {"error": ..., "fields": ...} with the status of its kind.
func respondError(c *gin.Context, err error) {
	status := apperr.KindOf(err).Status()
	body := gin.H{"error": apperr.Message(err)}
	if e, ok := apperr.As(err); ok && len(e.Fields) > 0 {
		body["fields"] = e.Fields
	}
	if status >= http.StatusInternalServerError {
		log.Printf("[api] %s %s: %+v", c.Request.Method, c.Request.URL.Path, err)
	}
	c.AbortWithStatusJSON(status, body)
}

func badRequest(c *gin.Context, err error) {
	respondError(c, apperr.Wrap(apperr.Validation, err, "Invalid request body."))
}

// currentUser is set by LoadUser; area guards ensure it is present.
func currentUser(c *gin.Context) (*models.User, bool) {
	user := middleware.CurrentUser(c)
	if user == nil {
		respondError(c, apperr.New(apperr.Unauthenticated, "Please sign in."))
		return nil, false
	}
	return user, true
}

// bindOptionalJSON binds a JSON body when one is sent. An empty body is not an error.
func bindOptionalJSON(c *gin.Context, obj interface{}) error {
	if err := c.ShouldBindJSON(obj); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// Health (GET /healthz)
func Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
