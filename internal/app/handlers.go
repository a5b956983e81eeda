package app

import (
	httpH "github.com/yungbote/hive-backend/internal/http/handlers"
	"github.com/yungbote/hive-backend/internal/pkg/logger"
)

type Handlers struct {
	Auth     *httpH.AuthHandler
	Activity *httpH.ActivityHandler
	Score    *httpH.ScoreHandler
	Live     *httpH.LiveHandler
	Health   *httpH.HealthHandler
}

func wireHandlers(log *logger.Logger, svcs Services) Handlers {
	log.Info("Wiring handlers...")
	return Handlers{
		Auth:     httpH.NewAuthHandler(svcs.Auth),
		Activity: httpH.NewActivityHandler(log, svcs.Activity),
		Score:    httpH.NewScoreHandler(log, svcs.Score),
		Live:     httpH.NewLiveHandler(log, svcs.Auth, svcs.Live),
		Health:   httpH.NewHealthHandler(),
	}
}
