package activity

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/hive-backend/internal/domain"
	"github.com/yungbote/hive-backend/internal/pkg/logger"
)

type ActivityRepo interface {
	// AddCategoryTime accumulates minutes into the (user, date, category)
	// ledger row, creating it when absent. Totals only ever grow.
	AddCategoryTime(ctx context.Context, tx *gorm.DB, userID uuid.UUID, date, category string, minutes float64) error
	DailyTotals(ctx context.Context, tx *gorm.DB, userID uuid.UUID, date string) (map[string]float64, error)
	ActiveUserIDs(ctx context.Context, tx *gorm.DB, date string) ([]uuid.UUID, error)
	// CategoryScores returns every user's total for the category that date,
	// ascending, for percentile computation.
	CategoryScores(ctx context.Context, tx *gorm.DB, date, category string) ([]float64, error)
	// CategoryScoresByPersona restricts CategoryScores to users with the
	// given persona role.
	CategoryScoresByPersona(ctx context.Context, tx *gorm.DB, date, category, personaRole string) ([]float64, error)

	CreateBrowserEvent(ctx context.Context, tx *gorm.DB, ev *domain.BrowserEvent) error
	CreateUsageReport(ctx context.Context, tx *gorm.DB, r *domain.UsageReport) error
}

type activityRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewActivityRepo(db *gorm.DB, baseLog *logger.Logger) ActivityRepo {
	return &activityRepo{db: db, log: baseLog.With("repo", "ActivityRepo")}
}

func (ar *activityRepo) conn(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return ar.db
}

func (ar *activityRepo) AddCategoryTime(ctx context.Context, tx *gorm.DB, userID uuid.UUID, date, category string, minutes float64) error {
	return ar.conn(tx).WithContext(ctx).Exec(`
		INSERT INTO daily_activity (id, user_id, date, category, total_minutes, created_at, updated_at)
		VALUES (uuid_generate_v4(), ?, ?, ?, ?, now(), now())
		ON CONFLICT (user_id, date, category)
		DO UPDATE SET total_minutes = daily_activity.total_minutes + EXCLUDED.total_minutes,
		              updated_at = now()`,
		userID, date, category, minutes,
	).Error
}

func (ar *activityRepo) DailyTotals(ctx context.Context, tx *gorm.DB, userID uuid.UUID, date string) (map[string]float64, error) {
	var rows []domain.DailyActivity
	if err := ar.conn(tx).WithContext(ctx).
		Where("user_id = ? AND date = ?", userID, date).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	totals := make(map[string]float64, len(rows))
	for _, r := range rows {
		totals[r.Category] = r.TotalMinutes
	}
	return totals, nil
}

func (ar *activityRepo) ActiveUserIDs(ctx context.Context, tx *gorm.DB, date string) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	if err := ar.conn(tx).WithContext(ctx).
		Model(&domain.DailyActivity{}).
		Distinct("user_id").
		Where("date = ?", date).
		Pluck("user_id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

func (ar *activityRepo) CategoryScores(ctx context.Context, tx *gorm.DB, date, category string) ([]float64, error) {
	var scores []float64
	if err := ar.conn(tx).WithContext(ctx).
		Model(&domain.DailyActivity{}).
		Where("date = ? AND category = ?", date, category).
		Order("total_minutes ASC").
		Pluck("total_minutes", &scores).Error; err != nil {
		return nil, err
	}
	return scores, nil
}

func (ar *activityRepo) CategoryScoresByPersona(ctx context.Context, tx *gorm.DB, date, category, personaRole string) ([]float64, error) {
	var scores []float64
	if err := ar.conn(tx).WithContext(ctx).
		Model(&domain.DailyActivity{}).
		Joins(`JOIN "user" ON "user".id = daily_activity.user_id`).
		Where(`daily_activity.date = ? AND daily_activity.category = ? AND "user".persona_role = ?`, date, category, personaRole).
		Order("daily_activity.total_minutes ASC").
		Pluck("daily_activity.total_minutes", &scores).Error; err != nil {
		return nil, err
	}
	return scores, nil
}

func (ar *activityRepo) CreateBrowserEvent(ctx context.Context, tx *gorm.DB, ev *domain.BrowserEvent) error {
	return ar.conn(tx).WithContext(ctx).Create(ev).Error
}

func (ar *activityRepo) CreateUsageReport(ctx context.Context, tx *gorm.DB, r *domain.UsageReport) error {
	return ar.conn(tx).WithContext(ctx).Create(r).Error
}
