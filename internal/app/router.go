package app

import (
	"github.com/gin-gonic/gin"

	internalhttp "github.com/yungbote/hive-backend/internal/http"
)

func wireRouter(handlers Handlers, mw Middleware) *gin.Engine {
	return internalhttp.NewRouter(internalhttp.RouterConfig{
		AuthHandler:     handlers.Auth,
		AuthMiddleware:  mw.Auth,
		ActivityHandler: handlers.Activity,
		ScoreHandler:    handlers.Score,
		LiveHandler:     handlers.Live,
		HealthHandler:   handlers.Health,
	})
}
