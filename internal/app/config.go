package app

import (
	"time"

	"github.com/yungbote/hive-backend/internal/pkg/logger"
	"github.com/yungbote/hive-backend/internal/platform/envutil"
)

type Config struct {
	Port         string
	JWTSecretKey string
	TokenTTL     time.Duration

	// Scoring knobs. TMin is the minutes floor for the streak check,
	// SigmaObs the observation noise of the daily rating update.
	TMin     float64
	SigmaObs float64

	// Session lifecycle.
	MinSessionSeconds int
	StaleSessionMs    int64
}

func LoadConfig(log *logger.Logger) Config {
	log.Info("Loading environment variables...")
	tokenTTLHours := envutil.Int("TOKEN_TTL_HOURS", 168)
	return Config{
		Port:              envutil.String("PORT", "8080"),
		JWTSecretKey:      envutil.String("JWT_SECRET", "defaultsecret"),
		TokenTTL:          time.Duration(tokenTTLHours) * time.Hour,
		TMin:              envutil.Float("T_MIN", 60),
		SigmaObs:          envutil.Float("SIGMA_OBS", 5),
		MinSessionSeconds: envutil.Int("MIN_SESSION_SECONDS", 60),
		StaleSessionMs:    int64(envutil.Int("STALE_SESSION_MS", 12*60*60*1000)),
	}
}
