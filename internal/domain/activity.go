package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// DailyActivity is the append-only per-user/date/category minute ledger the
// scoring pipeline reads from. TotalMinutes only ever grows.
type DailyActivity struct {
	ID           uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	UserID       uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_daily_activity_user_date_category;column:user_id" json:"user_id"`
	Date         string    `gorm:"type:date;not null;uniqueIndex:idx_daily_activity_user_date_category;column:date" json:"date"`
	Category     string    `gorm:"not null;uniqueIndex:idx_daily_activity_user_date_category;column:category" json:"category"`
	TotalMinutes float64   `gorm:"not null;default:0;column:total_minutes" json:"total_minutes"`

	CreatedAt time.Time `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:now()" json:"updated_at"`
}

func (DailyActivity) TableName() string { return "daily_activity" }

// BrowserEvent is the raw audit row for every accepted extension event.
type BrowserEvent struct {
	ID          uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	UserID      uuid.UUID `gorm:"type:uuid;not null;index;column:user_id" json:"user_id"`
	DeviceID    string    `gorm:"not null;index;column:device_id" json:"device_id"`
	Site        string    `gorm:"not null;column:site" json:"site"`
	State       string    `gorm:"not null;column:state" json:"state"`
	IdleState   string    `gorm:"not null;column:idle_state" json:"idle_state"`
	TimestampMs int64     `gorm:"not null;column:timestamp_ms" json:"timestamp_ms"`

	CreatedAt time.Time `gorm:"not null;default:now()" json:"created_at"`
}

func (BrowserEvent) TableName() string { return "browser_event" }

// UsageReport stores one raw mobile batch sync as submitted, apps payload
// included, for audit and replay.
type UsageReport struct {
	ID       uuid.UUID      `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	UserID   uuid.UUID      `gorm:"type:uuid;not null;index;column:user_id" json:"user_id"`
	DeviceID string         `gorm:"not null;column:device_id" json:"device_id"`
	Date     string         `gorm:"type:date;not null;column:date" json:"date"`
	Apps     datatypes.JSON `gorm:"column:apps" json:"apps"`

	CreatedAt time.Time `gorm:"not null;default:now()" json:"created_at"`
}

func (UsageReport) TableName() string { return "usage_report" }
