package config

import (
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds runtime settings. Values come from the environment (or .env).
type Config struct {
	Port              string
	DatabaseURL       string
	SessionSecret     string
	FacultyAccessCode string

	UploadDir     string
	UploadTimeout time.Duration

	R2AccountID       string
	R2AccessKeyID     string
	R2AccessKeySecret string
	R2Bucket          string
	CDNBaseURL        string

	SMTPHost string
	SMTPPort string
	SMTPUser string
	SMTPPass string
	SMTPFrom string

	GoogleClientID     string
	GoogleClientSecret string
	SiteURL            string

	RankRefreshInterval time.Duration
	CatalogCacheTTL     time.Duration
	SeedCatalog         bool
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetTypeByDefaultValue(true)
	v.SetDefault("PORT", "8080")
	v.SetDefault("DATABASE_URL", "host=localhost user=postgres password=postgres dbname=skillgrid port=5432 sslmode=disable")
	v.SetDefault("SESSION_SECRET", "secret_key_change_me")
	v.SetDefault("FACULTY_ACCESS_CODE", "SKILLGRID2024")
	v.SetDefault("UPLOAD_DIR", "uploads")
	v.SetDefault("UPLOAD_TIMEOUT", 10*time.Second)
	v.SetDefault("SITE_URL", "http://localhost:8080")
	v.SetDefault("RANK_REFRESH_INTERVAL", 5*time.Minute)
	v.SetDefault("CATALOG_CACHE_TTL", 30*time.Second)
	v.SetDefault("SEED_CATALOG", false)
	for _, key := range []string{
		"R2_ACCOUNT_ID", "R2_ACCESS_KEY_ID", "R2_ACCESS_KEY_SECRET", "R2_BUCKET_NAME", "CDN_BASE_URL",
		"SMTP_HOST", "SMTP_PORT", "SMTP_USER", "SMTP_PASS", "SMTP_FROM",
		"GOOGLE_CLIENT_ID", "GOOGLE_CLIENT_SECRET",
	} {
		v.SetDefault(key, "")
	}
	v.AutomaticEnv()
	return v
}

// Load reads .env when present and returns the merged configuration.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		if !os.IsNotExist(err) {
			log.Printf("config: failed to read .env: %v", err)
		} else {
			log.Println("No .env file found, finding env vars from system")
		}
	}
	return fromViper(newViper())
}

func fromViper(v *viper.Viper) *Config {
	return &Config{
		Port:              v.GetString("PORT"),
		DatabaseURL:       v.GetString("DATABASE_URL"),
		SessionSecret:     v.GetString("SESSION_SECRET"),
		FacultyAccessCode: v.GetString("FACULTY_ACCESS_CODE"),

		UploadDir:     v.GetString("UPLOAD_DIR"),
		UploadTimeout: v.GetDuration("UPLOAD_TIMEOUT"),

		R2AccountID:       v.GetString("R2_ACCOUNT_ID"),
		R2AccessKeyID:     v.GetString("R2_ACCESS_KEY_ID"),
		R2AccessKeySecret: v.GetString("R2_ACCESS_KEY_SECRET"),
		R2Bucket:          v.GetString("R2_BUCKET_NAME"),
		CDNBaseURL:        v.GetString("CDN_BASE_URL"),

		SMTPHost: v.GetString("SMTP_HOST"),
		SMTPPort: v.GetString("SMTP_PORT"),
		SMTPUser: v.GetString("SMTP_USER"),
		SMTPPass: v.GetString("SMTP_PASS"),
		SMTPFrom: v.GetString("SMTP_FROM"),

		GoogleClientID:     v.GetString("GOOGLE_CLIENT_ID"),
		GoogleClientSecret: v.GetString("GOOGLE_CLIENT_SECRET"),
		SiteURL:            v.GetString("SITE_URL"),

		RankRefreshInterval: v.GetDuration("RANK_REFRESH_INTERVAL"),
		CatalogCacheTTL:     v.GetDuration("CATALOG_CACHE_TTL"),
		SeedCatalog:         v.GetBool("SEED_CATALOG"),
	}
}

// S3Enabled reports whether object storage credentials are configured.
func (c *Config) S3Enabled() bool {
	return c.R2Bucket != "" && c.R2AccessKeyID != "" && c.R2AccessKeySecret != ""
}

// GoogleEnabled reports whether Google sign-in is configured.
func (c *Config) GoogleEnabled() bool {
	return c.GoogleClientID != "" && c.GoogleClientSecret != ""
}
