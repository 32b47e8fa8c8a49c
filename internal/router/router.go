package router

import (
	"skillgrid/internal/auth"
	"skillgrid/internal/handlers"
	"skillgrid/internal/middleware"
	"skillgrid/internal/services"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// Deps holds everything the route table needs.
type Deps struct {
	DB            *gorm.DB
	Hub           *services.ProfileHub
	Profiles      *services.ProfileService
	Accounts      *services.AccountService
	Google        *services.GoogleAuthService // nil disables Google sign-in
	Registrations *services.RegistrationService
	Verification  *services.VerificationService
	Leaderboard   *services.LeaderboardService
	Catalog       *services.CatalogService
	Scheduler     *services.Scheduler // nil skips rank refresh after verification
}

func RegisterRoutes(r *gin.Engine, d *Deps) {
	// Handlers
	authHandler := handlers.NewAuthHandler(d.Accounts, d.Google)
	userHandler := handlers.NewUserHandler(d.Profiles, d.Leaderboard, d.Hub)
	notificationHandler := handlers.NewNotificationHandler(d.Profiles)
	eventHandler := handlers.NewEventHandler(d.Catalog, d.Registrations)
	facultyHandler := handlers.NewFacultyHandler(d.Registrations, d.Verification, d.Catalog, d.Profiles, d.Leaderboard)
	if d.Scheduler != nil {
		facultyHandler.OnVerified(d.Scheduler.TriggerRankRefresh)
	}

	r.GET("/healthz", handlers.Health)

	api := r.Group("/api")
	api.Use(middleware.LoadUser(d.DB))

	// 登录注册 (Public Auth)
	publicAuth := api.Group("/auth")
	{
		publicAuth.POST("/signup", middleware.RequireArea(auth.AreaPublicAuth), authHandler.Signup)
		publicAuth.POST("/login", middleware.RequireArea(auth.AreaPublicAuth), authHandler.Login)
		publicAuth.POST("/verify-email", authHandler.VerifyEmail)
		publicAuth.POST("/resend-code", authHandler.ResendCode)
		publicAuth.POST("/logout", authHandler.Logout)
		publicAuth.GET("/google/login", middleware.RequireArea(auth.AreaPublicAuth), authHandler.GoogleLogin)
		publicAuth.GET("/google/callback", authHandler.GoogleCallback)
	}

	facultyAuth := api.Group("/faculty/auth")
	facultyAuth.Use(middleware.RequireArea(auth.AreaFacultyPublicAuth))
	{
		facultyAuth.POST("/signup", authHandler.FacultySignup)
		facultyAuth.POST("/login", authHandler.FacultyLogin)
	}

	// 当前用户 (any signed-in role)
	me := api.Group("/me")
	me.Use(middleware.AuthRequired())
	{
		me.GET("", userHandler.Me)
		me.PATCH("", userHandler.UpdateMe)
		me.GET("/stream", userHandler.Stream)
		me.GET("/credits", userHandler.Credits)
		me.GET("/notifications", notificationHandler.List)
		me.POST("/notifications/:id/read", notificationHandler.Read)
	}

	// 学生区 (Student Area)
	student := api.Group("")
	student.Use(middleware.RequireArea(auth.AreaStudent))
	{
		student.GET("/events", eventHandler.List)
		student.GET("/events/:id", eventHandler.Detail)
		student.POST("/events/:id/register", eventHandler.Register)
		student.GET("/registrations", eventHandler.MyRegistrations)
		student.GET("/leaderboard", userHandler.Leaderboard)
		student.GET("/rewards", eventHandler.Rewards)
	}

	// 教师区 (Faculty Area)
	faculty := api.Group("/faculty")
	faculty.Use(middleware.RequireArea(auth.AreaFaculty))
	{
		faculty.GET("/verifications", facultyHandler.Verifications)
		faculty.POST("/verifications/:studentId/:eventId/verify", facultyHandler.Verify)
		faculty.POST("/verifications/:studentId/:eventId/reject", facultyHandler.Reject)

		faculty.GET("/events", facultyHandler.Events)
		faculty.POST("/events", facultyHandler.CreateEvent)
		faculty.DELETE("/events/:id", facultyHandler.DeleteEvent)

		faculty.GET("/rewards", facultyHandler.Rewards)
		faculty.POST("/rewards", facultyHandler.CreateReward)
		faculty.DELETE("/rewards/:id", facultyHandler.DeleteReward)

		faculty.GET("/students", facultyHandler.Students)
		faculty.GET("/leaderboard", facultyHandler.Leaderboard)
	}
}
