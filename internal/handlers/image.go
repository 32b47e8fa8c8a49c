package handlers

import (
	"errors"
	"net/http"

	"skillgrid/internal/apperr"
	"skillgrid/internal/services"

	"github.com/gin-gonic/gin"
)

// formImage opens the optional "image" file of a multipart form.
// It returns a nil upload when no file was sent; call the close func when done.
func formImage(c *gin.Context) (*services.ImageUpload, func(), error) {
	header, err := c.FormFile("image")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
			return nil, func() {}, nil
		}
		return nil, func() {}, apperr.Wrap(apperr.Validation, err, "Invalid image upload.")
	}

	file, err := header.Open()
	if err != nil {
		return nil, func() {}, apperr.Wrap(apperr.Validation, err, "Invalid image upload.")
	}

	return &services.ImageUpload{
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Size:        header.Size,
		Body:        file,
	}, func() { file.Close() }, nil
}
