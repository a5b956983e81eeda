package app

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/yungbote/hive-backend/internal/categorize"
	"github.com/yungbote/hive-backend/internal/clients/openai"
	"github.com/yungbote/hive-backend/internal/pkg/logger"
	"github.com/yungbote/hive-backend/internal/realtime"
	"github.com/yungbote/hive-backend/internal/services"
	"github.com/yungbote/hive-backend/internal/tracker"
)

type Services struct {
	Auth     services.AuthService
	Activity services.ActivityService
	Score    services.ScoreService
	Live     services.LiveService
	EOD      services.EODService

	Resolver *categorize.Resolver
}

func wireServices(
	db *gorm.DB,
	log *logger.Logger,
	cfg Config,
	repos Repos,
	sessions *tracker.Table,
	hub *realtime.Hub,
	send func(realtime.Message),
) (Services, error) {
	log.Info("Wiring services...")

	embedder, err := openai.NewClient(log)
	if err != nil {
		return Services{}, fmt.Errorf("init embedding client: %w", err)
	}
	resolver := categorize.NewResolver(embedder, repos.AppCategory, repos.Uncategorized, log)

	authService := services.NewAuthService(db, log, repos.User, repos.Device, cfg.JWTSecretKey, cfg.TokenTTL)
	liveService := services.NewLiveService(log, sessions, repos.Activity, hub, send)
	activityService := services.NewActivityService(
		db, log, sessions, repos.Device, repos.Activity, resolver, liveService,
		cfg.MinSessionSeconds, cfg.StaleSessionMs,
	)
	scoreService := services.NewScoreService(db, log, repos.User, repos.Activity, repos.Uncategorized, cfg.TMin)
	eodService := services.NewEODService(
		db, log, repos.User, repos.Activity, scoreService, liveService,
		cfg.TMin, cfg.SigmaObs,
	)

	return Services{
		Auth:     authService,
		Activity: activityService,
		Score:    scoreService,
		Live:     liveService,
		EOD:      eodService,
		Resolver: resolver,
	}, nil
}
