package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"skillgrid/internal/config"
	"skillgrid/internal/db"
	"skillgrid/internal/router"
	"skillgrid/internal/services"

	"github.com/gin-contrib/gzip"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
)

func main() {
	cfg := config.Load()

	// Initialize Database
	gdb, err := db.Open(cfg.DatabaseURL)
	if err != nil {
		log.Fatal("Failed to connect to database: ", err)
	}
	log.Println("✅ Database connected and migrated")

	if cfg.SeedCatalog {
		if err := db.SeedCatalog(gdb); err != nil {
			log.Printf("⚠️ Catalog seed failed: %v", err)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := newImageStore(ctx, cfg)
	if err != nil {
		log.Fatal("Failed to initialize image storage: ", err)
	}

	hub := services.NewProfileHub()
	mail := services.NewMailService(cfg)
	profiles := services.NewProfileService(gdb, hub)
	leaderboard := services.NewLeaderboardService(gdb)

	sched, err := services.NewScheduler(leaderboard, cfg.RankRefreshInterval)
	if err != nil {
		log.Fatal("Failed to create scheduler: ", err)
	}
	sched.Start()

	deps := &router.Deps{
		DB:            gdb,
		Hub:           hub,
		Profiles:      profiles,
		Accounts:      services.NewAccountService(profiles, mail, cfg.FacultyAccessCode),
		Registrations: services.NewRegistrationService(gdb),
		Verification:  services.NewVerificationService(gdb, hub, mail),
		Leaderboard:   leaderboard,
		Catalog:       services.NewCatalogService(gdb, services.NewUploader(store, cfg.UploadTimeout), cfg.CatalogCacheTTL),
		Scheduler:     sched,
	}
	if cfg.GoogleEnabled() {
		deps.Google = services.NewGoogleAuthService(cfg.GoogleClientID, cfg.GoogleClientSecret, cfg.SiteURL, profiles)
	} else {
		log.Println("⚠️ Google sign-in disabled: Missing GOOGLE_CLIENT_ID/GOOGLE_CLIENT_SECRET.")
	}

	// Initialize Gin
	r := gin.Default()
	r.MaxMultipartMemory = services.MaxImageSize
	r.Use(gzip.Gzip(gzip.DefaultCompression, gzip.WithExcludedPaths([]string{"/api/me/stream"})))

	// Setup Sessions
	sessionStore := cookie.NewStore([]byte(cfg.SessionSecret))
	sessionStore.Options(sessions.Options{Path: "/", MaxAge: 86400 * 30, HttpOnly: true, SameSite: http.SameSiteLaxMode})
	r.Use(sessions.Sessions("skillgrid_session", sessionStore))

	// 本地上传目录
	if _, ok := store.(*services.LocalStore); ok {
		r.Static("/uploads", cfg.UploadDir)
	}

	router.RegisterRoutes(r, deps)

	srv := &http.Server{Addr: ":" + cfg.Port, Handler: r}
	go func() {
		log.Printf("🚀 SkillGrid server starting on :%s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal(err)
		}
	}()

	<-ctx.Done()
	log.Println("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}
	if err := sched.Shutdown(); err != nil {
		log.Printf("Scheduler shutdown error: %v", err)
	}
	mail.Wait()
}

func newImageStore(ctx context.Context, cfg *config.Config) (services.ImageStore, error) {
	if cfg.S3Enabled() {
		log.Printf("🪣 Image storage: R2 bucket %s", cfg.R2Bucket)
		return services.NewS3Store(ctx, cfg.R2AccountID, cfg.R2AccessKeyID, cfg.R2AccessKeySecret, cfg.R2Bucket, cfg.CDNBaseURL)
	}
	log.Printf("📁 Image storage: local directory %s", cfg.UploadDir)
	return services.NewLocalStore(cfg.UploadDir)
}
