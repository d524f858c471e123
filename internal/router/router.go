package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/evalhub/evalhub-backend/internal/config"
	"github.com/evalhub/evalhub-backend/internal/handler"
	"github.com/evalhub/evalhub-backend/internal/middleware"
	"github.com/evalhub/evalhub-backend/internal/model"
	"github.com/evalhub/evalhub-backend/internal/response"
	"github.com/evalhub/evalhub-backend/internal/service"
)

// Handlers groups all handler instances for route setup.
type Handlers struct {
	Auth      *handler.AuthHandler
	User      *handler.UserHandler
	Exam      *handler.ExamHandler
	Question  *handler.QuestionHandler
	Session   *handler.SessionHandler
	Result    *handler.ResultHandler
	Analytics *handler.AnalyticsHandler
	AI        *handler.AIHandler
	Monitor   *handler.MonitorHandler
	WS        *handler.WSHandler
}

// SetupRouter configures all Gin route groups with appropriate middlewares.
func SetupRouter(
	authService *service.AuthService,
	handlers *Handlers,
	cfg *config.Config,
) *gin.Engine {
	gin.SetMode(cfg.GinMode)
	router := gin.Default()

	// ─── CORS ──────────────────────────────────────────────────────────
	// If AllowedOrigins is set in config, restrict to that list;
	// otherwise allow all (*) so dev works without extra config.
	corsConfig := cors.DefaultConfig()
	if len(cfg.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.AllowedOrigins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"}
	corsConfig.ExposeHeaders = []string{"X-Request-ID"}
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	// Apply request ID middleware globally so every response includes metadata.
	router.Use(response.RequestIDMiddleware())

	// Apply brotli middleware globally.
	router.Use(middleware.Brotli())

	// Health check.
	router.GET("/health", func(c *gin.Context) {
		response.Success(c, http.StatusOK, gin.H{"status": "ok"})
	})

	// Rate limiter for auth routes (30 requests per minute per IP).
	authLimiter := middleware.NewRateLimiter(30, time.Minute)

	// ─── 1. Auth Group (Public, Rate Limited) ──────────────────────────
	auth := router.Group("/api/v1/auth")
	auth.Use(authLimiter.Middleware())
	{
		auth.POST("/register", handlers.Auth.Register)
		auth.POST("/login", handlers.Auth.Login)

		// Authenticated profile routes
		auth.GET("/me", middleware.RequireJWT(authService), handlers.Auth.Me)
		auth.POST("/logout", middleware.RequireJWT(authService), handlers.Auth.Logout)
	}

	// ─── 2. Authoring Group (JWT + Author Role) ────────────────────────
	authoring := router.Group("/api/v1")
	authoring.Use(
		middleware.RequireJWT(authService),
		middleware.RequireAuthorRole(),
	)
	{
		// Exam management
		authoring.GET("/exams", handlers.Exam.List)
		authoring.POST("/exams", handlers.Exam.Create)
		authoring.GET("/exams/:exam_id", handlers.Exam.Get)
		authoring.PUT("/exams/:exam_id", handlers.Exam.Update)
		authoring.DELETE("/exams/:exam_id", handlers.Exam.Delete)
		authoring.PUT("/exams/:exam_id/questions", handlers.Exam.SetQuestions)
		authoring.POST("/exams/:exam_id/publish", handlers.Exam.Publish)
		authoring.POST("/exams/:exam_id/archive", handlers.Exam.Archive)

		// Results and reporting
		authoring.GET("/exams/:exam_id/results", handlers.Result.ListByExam)
		authoring.GET("/exams/:exam_id/analytics", handlers.Analytics.ExamAnalytics)
		authoring.GET("/exams/:exam_id/monitor", handlers.Monitor.Stream)
		authoring.GET("/results/:id", handlers.Result.Get)
		authoring.POST("/results/:id/report", handlers.AI.GenerateReport)

		// Dashboard
		authoring.GET("/dashboard", handlers.Analytics.Dashboard)

		// Question bank
		authoring.GET("/questions", handlers.Question.List)
		authoring.POST("/questions", handlers.Question.Create)
		authoring.GET("/questions/:id", handlers.Question.Get)
		authoring.PUT("/questions/:id", handlers.Question.Update)
		authoring.DELETE("/questions/:id", handlers.Question.Delete)
		authoring.POST("/questions/:id/review", handlers.Question.Review)

		// AI assist
		authoring.POST("/ai/suggest-questions", handlers.AI.SuggestQuestions)
	}

	// ─── 3. Admin Group (JWT + Admin Role) ─────────────────────────────
	adminAPI := router.Group("/api/v1/admin")
	adminAPI.Use(
		middleware.RequireJWT(authService),
		middleware.RequireRole(model.RoleAdmin),
	)
	{
		adminAPI.GET("/users", handlers.User.List)
		adminAPI.GET("/users/:id", handlers.User.Get)
		adminAPI.PUT("/users/:id", handlers.User.Update)
		adminAPI.DELETE("/users/:id", handlers.User.Delete)
		adminAPI.POST("/users/:id/reset-session", handlers.User.ResetSession)
	}

	// ─── 4. Examinee Portal (JWT + Single Device) ──────────────────────
	portal := router.Group("/api/v1/portal")
	portal.Use(
		middleware.RequireJWT(authService),
		middleware.RequireRole(model.RoleExaminee),
		middleware.CheckSingleDeviceSession(authService),
	)
	{
		portal.GET("/exams", handlers.Session.ListAvailable)
		portal.GET("/exams/:exam_id", handlers.Session.GetPayload)
		portal.POST("/exams/:exam_id/session", handlers.Session.Start)
		portal.GET("/exams/:exam_id/session", handlers.Session.State)
		portal.POST("/exams/:exam_id/session/submit", handlers.Session.Submit)
		portal.GET("/results", handlers.Result.ListMine)
		portal.GET("/results/:id", handlers.Result.Get)
	}

	// ─── 5. WebSocket Group (Examinee WS Auth) ─────────────────────────
	ws := router.Group("/ws/v1")
	ws.Use(
		middleware.RequireJWT(authService),
		middleware.RequireRole(model.RoleExaminee),
		middleware.CheckSingleDeviceSession(authService),
	)
	{
		ws.GET("/exams/:exam_id/stream", handlers.WS.ExamStream)
	}

	return router
}
