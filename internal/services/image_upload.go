package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"path/filepath"
	"strings"
	"time"

	"skillgrid/internal/apperr"
)

const (
	MaxImageSize         = 10 * 1024 * 1024
	DefaultUploadTimeout = 10 * time.Second
)

// ImageUpload is an image received from a form.
type ImageUpload struct {
	Filename    string
	ContentType string
	Size        int64
	Body        io.Reader
}

// Uploader puts images into a store with a hard deadline.
// Some storage clients retry forever on a misconfigured bucket, so the call
// is abandoned when the deadline passes even if the store ignores ctx.
type Uploader struct {
	Store   ImageStore
	Timeout time.Duration
	now     func() time.Time
}

func NewUploader(store ImageStore, timeout time.Duration) *Uploader {
	if timeout <= 0 {
		timeout = DefaultUploadTimeout
	}
	return &Uploader{Store: store, Timeout: timeout, now: time.Now}
}

// Upload validates img and stores it under prefix/, returning its URL.
func (u *Uploader) Upload(ctx context.Context, prefix string, img *ImageUpload) (string, error) {
	if !strings.HasPrefix(img.ContentType, "image/") {
		return "", apperr.Invalid("Only image files can be uploaded.", map[string]string{"image": "must be an image"})
	}
	if img.Size > MaxImageSize {
		return "", apperr.Invalid("Image must be 10MB or smaller.", map[string]string{"image": "too large"})
	}

	key := fmt.Sprintf("%s/%d_%s", prefix, u.now().UnixNano(), sanitizeFilename(img.Filename))

	ctx, cancel := context.WithTimeout(ctx, u.Timeout)
	defer cancel()

	type result struct {
		url string
		err error
	}
	done := make(chan result, 1)
	go func() {
		url, err := u.Store.Put(ctx, key, img.ContentType, img.Body)
		done <- result{url, err}
	}()

	select {
	case r := <-done:
		if r.err != nil {
			if errors.Is(r.err, context.DeadlineExceeded) {
				return "", uploadTimeout(key)
			}
			return "", apperr.Wrap(apperr.Transport, r.err, "Failed to upload image.")
		}
		return r.url, nil
	case <-ctx.Done():
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return "", uploadTimeout(key)
		}
		return "", ctx.Err()
	}
}

func uploadTimeout(key string) error {
	log.Printf("[storage] upload of %s timed out", key)
	return apperr.New(apperr.UploadTimeout, "Upload timed out. Is image storage configured?")
}

func sanitizeFilename(name string) string {
	name = filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	if name == "." || name == "/" || name == "" {
		return "image"
	}
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '-', r == '_':
			return r
		}
		return '_'
	}, name)
}
