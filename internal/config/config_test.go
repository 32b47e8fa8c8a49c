package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDefaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("FACULTY_ACCESS_CODE", "")
	cfg := fromViper(newViper())

	assert.Equal(t, "SKILLGRID2024", cfg.FacultyAccessCode)
	assert.Equal(t, 10*time.Second, cfg.UploadTimeout)
	assert.Equal(t, 5*time.Minute, cfg.RankRefreshInterval)
	assert.False(t, cfg.S3Enabled())
	assert.False(t, cfg.GoogleEnabled())
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("UPLOAD_TIMEOUT", "3s")
	t.Setenv("R2_BUCKET_NAME", "skillgrid")
	t.Setenv("R2_ACCESS_KEY_ID", "id")
	t.Setenv("R2_ACCESS_KEY_SECRET", "secret")
	t.Setenv("SEED_CATALOG", "true")
	cfg := fromViper(newViper())

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, 3*time.Second, cfg.UploadTimeout)
	assert.True(t, cfg.S3Enabled())
	assert.True(t, cfg.SeedCatalog)
}
