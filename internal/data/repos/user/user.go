package user

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/hive-backend/internal/domain"
	pkgerrors "github.com/yungbote/hive-backend/internal/pkg/errors"
	"github.com/yungbote/hive-backend/internal/pkg/logger"
)

type UserRepo interface {
	Create(ctx context.Context, tx *gorm.DB, u *domain.User) (*domain.User, error)
	GetByID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (*domain.User, error)
	GetByEmail(ctx context.Context, tx *gorm.DB, email string) (*domain.User, error)
	EmailExists(ctx context.Context, tx *gorm.DB, email string) (bool, error)
	UpdateRating(ctx context.Context, tx *gorm.DB, userID uuid.UUID, mu, sigma, displayRating float64, tier string) error
	UpdateStreak(ctx context.Context, tx *gorm.DB, userID uuid.UUID, streak int) error
	UpdatePersona(ctx context.Context, tx *gorm.DB, userID uuid.UUID, personaRole string) error
	ListByDisplayRating(ctx context.Context, tx *gorm.DB) ([]*domain.User, error)
}

type userRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewUserRepo(db *gorm.DB, baseLog *logger.Logger) UserRepo {
	return &userRepo{db: db, log: baseLog.With("repo", "UserRepo")}
}

func (ur *userRepo) conn(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return ur.db
}

func (ur *userRepo) Create(ctx context.Context, tx *gorm.DB, u *domain.User) (*domain.User, error) {
	if err := ur.conn(tx).WithContext(ctx).Create(u).Error; err != nil {
		return nil, err
	}
	return u, nil
}

func (ur *userRepo) GetByID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (*domain.User, error) {
	var u domain.User
	err := ur.conn(tx).WithContext(ctx).Where("id = ?", userID).First(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (ur *userRepo) GetByEmail(ctx context.Context, tx *gorm.DB, email string) (*domain.User, error) {
	var u domain.User
	err := ur.conn(tx).WithContext(ctx).Where("email = ?", email).First(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (ur *userRepo) EmailExists(ctx context.Context, tx *gorm.DB, email string) (bool, error) {
	var count int64
	if err := ur.conn(tx).WithContext(ctx).
		Model(&domain.User{}).
		Where("email = ?", email).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (ur *userRepo) UpdateRating(ctx context.Context, tx *gorm.DB, userID uuid.UUID, mu, sigma, displayRating float64, tier string) error {
	return ur.conn(tx).WithContext(ctx).
		Model(&domain.User{}).
		Where("id = ?", userID).
		Updates(map[string]any{
			"mu":             mu,
			"sigma":          sigma,
			"display_rating": displayRating,
			"tier":           tier,
		}).Error
}

func (ur *userRepo) UpdateStreak(ctx context.Context, tx *gorm.DB, userID uuid.UUID, streak int) error {
	return ur.conn(tx).WithContext(ctx).
		Model(&domain.User{}).
		Where("id = ?", userID).
		Update("streak", streak).Error
}

func (ur *userRepo) UpdatePersona(ctx context.Context, tx *gorm.DB, userID uuid.UUID, personaRole string) error {
	return ur.conn(tx).WithContext(ctx).
		Model(&domain.User{}).
		Where("id = ?", userID).
		Update("persona_role", personaRole).Error
}

func (ur *userRepo) ListByDisplayRating(ctx context.Context, tx *gorm.DB) ([]*domain.User, error) {
	var users []*domain.User
	if err := ur.conn(tx).WithContext(ctx).
		Order("display_rating DESC").
		Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}
