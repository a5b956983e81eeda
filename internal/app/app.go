package app

import (
	"context"
	"fmt"
	"os"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/yungbote/hive-backend/internal/data/db"
	"github.com/yungbote/hive-backend/internal/pkg/logger"
	"github.com/yungbote/hive-backend/internal/realtime"
	"github.com/yungbote/hive-backend/internal/realtime/bus"
	"github.com/yungbote/hive-backend/internal/tracker"
)

type App struct {
	Log      *logger.Logger
	DB       *gorm.DB
	Router   *gin.Engine
	Cfg      Config
	Repos    Repos
	Services Services
	Hub      *realtime.Hub
	Sessions *tracker.Table

	bus    bus.Bus
	cancel context.CancelFunc
}

func New() (*App, error) {
	logMode := os.Getenv("LOG_MODE")
	if logMode == "" {
		logMode = "development"
	}
	log, err := logger.New(logMode)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	cfg := LoadConfig(log)

	pg, err := db.NewPostgresService(log)
	if err != nil {
		log.Sync()
		return nil, fmt.Errorf("init postgres: %w", err)
	}
	if err := pg.AutoMigrateAll(); err != nil {
		log.Sync()
		return nil, fmt.Errorf("postgres automigrate: %w", err)
	}
	theDB := pg.DB()

	sessions := tracker.NewTable()
	hub := realtime.NewHub(log)

	// With REDIS_ADDR set, broadcasts go through the bus so every server
	// instance delivers them. Without it, straight to the local hub.
	var liveBus bus.Bus
	var send func(realtime.Message)
	if os.Getenv("REDIS_ADDR") != "" {
		liveBus, err = bus.NewRedisBus(log)
		if err != nil {
			log.Sync()
			return nil, fmt.Errorf("init live bus: %w", err)
		}
		send = func(m realtime.Message) {
			if err := liveBus.Publish(context.Background(), m); err != nil {
				log.Warn("Live bus publish failed", "error", err.Error())
			}
		}
	}

	reposet := wireRepos(theDB, log)

	serviceset, err := wireServices(theDB, log, cfg, reposet, sessions, hub, send)
	if err != nil {
		log.Sync()
		return nil, err
	}

	handlerset := wireHandlers(log, serviceset)
	middleware := wireMiddleware(log, serviceset)
	router := wireRouter(handlerset, middleware)

	return &App{
		Log:      log,
		DB:       theDB,
		Router:   router,
		Cfg:      cfg,
		Repos:    reposet,
		Services: serviceset,
		Hub:      hub,
		Sessions: sessions,
		bus:      liveBus,
	}, nil
}

// Start launches background work: seed embeddings, the live broadcast loop,
// the end-of-day scheduler and, when configured, the bus forwarder.
func (a *App) Start() error {
	if a == nil || a.cancel != nil {
		return nil
	}
	ctx, cancel := context.WithCancel(context.Background())
	a.cancel = cancel

	if err := a.Services.Resolver.EnsureSeeds(ctx); err != nil {
		a.Log.Error("Seeding app categories failed", "error", err.Error())
	}

	a.Services.Live.Start(ctx)
	a.Services.EOD.StartScheduler(ctx)

	if a.bus != nil {
		if err := a.bus.StartForwarder(ctx, a.Hub.Broadcast); err != nil {
			return fmt.Errorf("start live bus forwarder: %w", err)
		}
	}
	return nil
}

func (a *App) Run(addr string) error {
	if a == nil || a.Router == nil {
		return fmt.Errorf("app not initialized")
	}
	return a.Router.Run(addr)
}

func (a *App) Close() {
	if a == nil {
		return
	}
	if a.cancel != nil {
		a.cancel()
		a.cancel = nil
	}
	if a.bus != nil {
		if err := a.bus.Close(); err != nil {
			a.Log.Warn("Live bus close failed", "error", err.Error())
		}
	}
	if a.Log != nil {
		a.Log.Sync()
	}
}
