package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type User struct {
	ID          uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	Email       string    `gorm:"uniqueIndex;not null;column:email" json:"email"`
	Password    string    `gorm:"not null;column:password" json:"-"`
	Name        string    `gorm:"not null;column:name" json:"name"`
	PersonaRole string    `gorm:"not null;default:GENERAL;column:persona_role" json:"persona_role"`

	// Bayesian skill posterior and its public projection, updated once per
	// day by the end-of-day job.
	Mu            float64 `gorm:"not null;column:mu" json:"mu"`
	Sigma         float64 `gorm:"not null;column:sigma" json:"sigma"`
	DisplayRating float64 `gorm:"not null;default:0;column:display_rating" json:"display_rating"`
	Tier          string  `gorm:"not null;default:BRONZE;column:tier" json:"tier"`
	Streak        int     `gorm:"not null;default:0;column:streak" json:"streak"`

	CreatedAt time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null;default:now()" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (User) TableName() string { return "user" }

type Device struct {
	ID         uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	DeviceID   string    `gorm:"uniqueIndex;not null;column:device_id" json:"device_id"`
	UserID     uuid.UUID `gorm:"type:uuid;not null;index;column:user_id" json:"user_id"`
	DeviceType string    `gorm:"not null;column:device_type" json:"device_type"`

	CreatedAt time.Time `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:now()" json:"updated_at"`
}

func (Device) TableName() string { return "device" }
