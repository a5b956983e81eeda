package app

import (
	"gorm.io/gorm"

	"github.com/yungbote/hive-backend/internal/data/repos/activity"
	"github.com/yungbote/hive-backend/internal/data/repos/appcategory"
	"github.com/yungbote/hive-backend/internal/data/repos/device"
	"github.com/yungbote/hive-backend/internal/data/repos/uncategorized"
	"github.com/yungbote/hive-backend/internal/data/repos/user"
	"github.com/yungbote/hive-backend/internal/pkg/logger"
)

type Repos struct {
	User          user.UserRepo
	Device        device.DeviceRepo
	Activity      activity.ActivityRepo
	AppCategory   appcategory.AppCategoryRepo
	Uncategorized uncategorized.UncategorizedRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	log.Info("Wiring repos...")
	return Repos{
		User:          user.NewUserRepo(db, log),
		Device:        device.NewDeviceRepo(db, log),
		Activity:      activity.NewActivityRepo(db, log),
		AppCategory:   appcategory.NewAppCategoryRepo(db, log),
		Uncategorized: uncategorized.NewUncategorizedRepo(db, log),
	}
}
