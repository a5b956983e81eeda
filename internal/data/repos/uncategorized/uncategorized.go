package uncategorized

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/yungbote/hive-backend/internal/domain"
	"github.com/yungbote/hive-backend/internal/pkg/logger"
)

type UncategorizedRepo interface {
	// Enqueue records a name for review. Re-sightings are no-ops.
	Enqueue(ctx context.Context, tx *gorm.DB, name, sourceKind string) error
	List(ctx context.Context, tx *gorm.DB, limit int) ([]domain.UncategorizedApp, error)
	Remove(ctx context.Context, tx *gorm.DB, name string) error
}

type uncategorizedRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewUncategorizedRepo(db *gorm.DB, baseLog *logger.Logger) UncategorizedRepo {
	return &uncategorizedRepo{db: db, log: baseLog.With("repo", "UncategorizedRepo")}
}

func (r *uncategorizedRepo) conn(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *uncategorizedRepo) Enqueue(ctx context.Context, tx *gorm.DB, name, sourceKind string) error {
	row := domain.UncategorizedApp{Name: name, SourceKind: sourceKind}
	return r.conn(tx).WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "name"}}, DoNothing: true}).
		Create(&row).Error
}

func (r *uncategorizedRepo) List(ctx context.Context, tx *gorm.DB, limit int) ([]domain.UncategorizedApp, error) {
	if limit <= 0 {
		limit = 100
	}
	var rows []domain.UncategorizedApp
	err := r.conn(tx).WithContext(ctx).
		Order("created_at ASC").
		Limit(limit).
		Find(&rows).Error
	return rows, err
}

func (r *uncategorizedRepo) Remove(ctx context.Context, tx *gorm.DB, name string) error {
	return r.conn(tx).WithContext(ctx).
		Where("name = ?", name).
		Delete(&domain.UncategorizedApp{}).Error
}
