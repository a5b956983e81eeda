package testutil

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/hive-backend/internal/catalog"
	"github.com/yungbote/hive-backend/internal/domain"
	"github.com/yungbote/hive-backend/internal/rating"
)

func SeedUser(tb testing.TB, ctx context.Context, tx *gorm.DB, email string) *domain.User {
	tb.Helper()
	u := &domain.User{
		ID:            uuid.New(),
		Email:         email,
		Password:      "pw",
		Name:          "Test User",
		PersonaRole:   catalog.RoleGeneral,
		Mu:            rating.InitialMu,
		Sigma:         rating.InitialSigma,
		DisplayRating: rating.DisplayRating(rating.InitialMu, rating.InitialSigma),
		Tier:          rating.TierBronze,
	}
	if err := tx.WithContext(ctx).Create(u).Error; err != nil {
		tb.Fatalf("seed user: %v", err)
	}
	return u
}

func SeedDevice(tb testing.TB, ctx context.Context, tx *gorm.DB, userID uuid.UUID, deviceID string) *domain.Device {
	tb.Helper()
	d := &domain.Device{
		ID:         uuid.New(),
		DeviceID:   deviceID,
		UserID:     userID,
		DeviceType: "extension",
	}
	if err := tx.WithContext(ctx).Create(d).Error; err != nil {
		tb.Fatalf("seed device: %v", err)
	}
	return d
}

func SeedDailyActivity(tb testing.TB, ctx context.Context, tx *gorm.DB, userID uuid.UUID, date, category string, minutes float64) *domain.DailyActivity {
	tb.Helper()
	row := &domain.DailyActivity{
		ID:           uuid.New(),
		UserID:       userID,
		Date:         date,
		Category:     category,
		TotalMinutes: minutes,
	}
	if err := tx.WithContext(ctx).Create(row).Error; err != nil {
		tb.Fatalf("seed daily activity: %v", err)
	}
	return row
}
