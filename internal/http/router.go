package http

import (
	"github.com/gin-gonic/gin"

	httpH "github.com/yungbote/hive-backend/internal/http/handlers"
	httpMW "github.com/yungbote/hive-backend/internal/http/middleware"
)

type RouterConfig struct {
	AuthHandler    *httpH.AuthHandler
	AuthMiddleware *httpMW.AuthMiddleware

	ActivityHandler *httpH.ActivityHandler
	ScoreHandler    *httpH.ScoreHandler
	LiveHandler     *httpH.LiveHandler

	HealthHandler *httpH.HealthHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.Default()
	r.Use(httpMW.CORS())

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
	}

	// Websocket (authenticates itself from the token query parameter)
	if cfg.LiveHandler != nil {
		r.GET("/ws/live", cfg.LiveHandler.Live)
	}

	api := r.Group("/api")
	{
		// Auth (public)
		if cfg.AuthHandler != nil {
			api.POST("/auth/register", cfg.AuthHandler.Register)
			api.POST("/auth/login", cfg.AuthHandler.Login)
		}

		// The leaderboard is anonymous.
		if cfg.ScoreHandler != nil {
			api.GET("/leaderboard", cfg.ScoreHandler.Leaderboard)
		}
	}

	protected := api.Group("/")
	{
		if cfg.AuthMiddleware != nil {
			protected.Use(cfg.AuthMiddleware.RequireAuth())
		}

		if cfg.AuthHandler != nil {
			protected.POST("/auth/link-device", cfg.AuthHandler.LinkDevice)
			protected.PATCH("/auth/persona", cfg.AuthHandler.UpdatePersona)
		}

		// Ingestion
		if cfg.ActivityHandler != nil {
			protected.POST("/activity/browser", cfg.ActivityHandler.BrowserEvent)
			protected.POST("/activity/mobile", cfg.ActivityHandler.MobileSync)
		}

		// Scores and rankings
		if cfg.ScoreHandler != nil {
			protected.GET("/score", cfg.ScoreHandler.DailyScore)
			protected.GET("/rating", cfg.ScoreHandler.GetRating)
			protected.GET("/ranking/domain", cfg.ScoreHandler.DomainRankings)
			protected.GET("/summary/:date", cfg.ScoreHandler.SummaryForDate)
			protected.GET("/uncategorized", cfg.ScoreHandler.UncategorizedApps)
		}
	}

	return r
}
