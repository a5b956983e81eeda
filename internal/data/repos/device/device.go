package device

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/yungbote/hive-backend/internal/domain"
	pkgerrors "github.com/yungbote/hive-backend/internal/pkg/errors"
	"github.com/yungbote/hive-backend/internal/pkg/logger"
)

type DeviceRepo interface {
	// Link binds a device to a user, re-binding when the device already
	// exists (a device can be handed to a new account).
	Link(ctx context.Context, tx *gorm.DB, deviceID string, userID uuid.UUID, deviceType string) error
	GetUserID(ctx context.Context, tx *gorm.DB, deviceID string) (uuid.UUID, error)
}

type deviceRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewDeviceRepo(db *gorm.DB, baseLog *logger.Logger) DeviceRepo {
	return &deviceRepo{db: db, log: baseLog.With("repo", "DeviceRepo")}
}

func (dr *deviceRepo) conn(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return dr.db
}

func (dr *deviceRepo) Link(ctx context.Context, tx *gorm.DB, deviceID string, userID uuid.UUID, deviceType string) error {
	d := domain.Device{
		ID:         uuid.New(),
		DeviceID:   deviceID,
		UserID:     userID,
		DeviceType: deviceType,
	}
	return dr.conn(tx).WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "device_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"user_id"}),
		}).
		Create(&d).Error
}

func (dr *deviceRepo) GetUserID(ctx context.Context, tx *gorm.DB, deviceID string) (uuid.UUID, error) {
	var d domain.Device
	err := dr.conn(tx).WithContext(ctx).Where("device_id = ?", deviceID).First(&d).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return uuid.Nil, pkgerrors.ErrDeviceNotLinked
	}
	if err != nil {
		return uuid.Nil, err
	}
	return d.UserID, nil
}
