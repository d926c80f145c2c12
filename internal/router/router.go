package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/campustrack/campustrack-backend/internal/config"
	"github.com/campustrack/campustrack-backend/internal/handler"
	"github.com/campustrack/campustrack-backend/internal/middleware"
	"github.com/campustrack/campustrack-backend/internal/response"
	"github.com/campustrack/campustrack-backend/internal/service"
)

// Handlers groups all handler instances for route setup.
type Handlers struct {
	Auth     *handler.AuthHandler
	Schedule *handler.ScheduleHandler
	Room     *handler.RoomHandler
	Feed     *handler.FeedHandler
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
		auth.POST("/professor/login", handlers.Auth.ProfessorLogin)
		auth.GET("/professor/me", middleware.RequireProfessorJWT(authService), handlers.Auth.GetProfessorProfile)
	}

	// ─── 2. Student Group (Student JWT) ────────────────────────────────
	studentAPI := router.Group("/api/v1/student")
	studentAPI.Use(middleware.RequireStudentJWT(authService))
	{
		studentAPI.POST("/schedule/entries", handlers.Schedule.SubmitEntry)
		studentAPI.GET("/schedule/entries", handlers.Schedule.ListMyEntries)
		studentAPI.DELETE("/schedule/entries/:code", handlers.Schedule.WithdrawEntry)
	}

	// ─── 3. Professor Group (Professor JWT) ────────────────────────────
	professorAPI := router.Group("/api/v1/professor")
	professorAPI.Use(middleware.RequireProfessorJWT(authService))
	{
		professorAPI.POST("/claims", handlers.Schedule.ClaimCode)
		professorAPI.DELETE("/claims/:code", handlers.Schedule.UnclaimCode)
		professorAPI.GET("/schedule", handlers.Schedule.GetFacultySchedule)
	}

	// ─── 4. Rooms Group ────────────────────────────────────────────────
	// Reads are open to any authenticated token; writes are professor-only.
	rooms := router.Group("/api/v1/rooms")
	{
		// Derived vacancy only moves on slot boundaries; a short shared
		// cache absorbs dashboard polling.
		rooms.GET("", middleware.RequireAnyJWT(authService), middleware.CacheControl(15), handlers.Room.ListRooms)
		rooms.GET("/:name/vacancy", middleware.RequireAnyJWT(authService), middleware.CacheControl(15), handlers.Room.GetRoomVacancy)
		rooms.POST("", middleware.RequireProfessorJWT(authService), handlers.Room.CreateRoom)
		rooms.POST("/status", middleware.RequireProfessorJWT(authService), handlers.Room.UpdateRoomStatus)
	}

	// ─── 5. WebSocket Group (Token Query Auth) ─────────────────────────
	ws := router.Group("/ws/v1")
	ws.Use(middleware.RequireWSAuth(authService))
	{
		ws.GET("/feed", handlers.Feed.FeedStream)
	}

	return router
}
