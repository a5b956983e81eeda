package domain

import (
	"time"

	"github.com/google/uuid"
)

// Category mapping provenance, in overwrite-precedence order. An auto write
// never replaces a seed, manual or label entry.
const (
	SourceSeed   = "seed"
	SourceManual = "manual"
	SourceLabel  = "label"
	SourceAuto   = "auto"
)

// Overwrites is the pure precedence rule for index writes: seed, manual and
// label writes always win; an auto write only replaces another auto entry
// (or fills a gap). Redundant auto-over-auto writes are idempotent by
// construction.
func Overwrites(incomingSource, existingSource string) bool {
	if incomingSource != SourceAuto {
		return true
	}
	return existingSource == SourceAuto || existingSource == ""
}

// AppCategory is one (name -> category) entry of the app category index with
// its embedding vector. Label rows (source=label) carry category description
// embeddings rather than real app names and are excluded from ordinary
// nearest-neighbor matching.
type AppCategory struct {
	ID       uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	Name     string    `gorm:"uniqueIndex;not null;column:name" json:"name"`
	Category string    `gorm:"not null;column:category" json:"category"`
	// Stored as a pgvector literal; all similarity math happens in SQL.
	Embedding string `gorm:"type:vector(384);column:embedding" json:"-"`
	Source    string `gorm:"not null;index;column:source" json:"source"`

	CreatedAt time.Time `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:now()" json:"updated_at"`
}

func (AppCategory) TableName() string { return "app_category" }

// UncategorizedApp queues a name for human review after both similarity
// tiers fell below threshold. One row per name, first sighting wins.
type UncategorizedApp struct {
	ID         uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	Name       string    `gorm:"uniqueIndex;not null;column:name" json:"name"`
	SourceKind string    `gorm:"not null;column:source_kind" json:"source_kind"`

	CreatedAt time.Time `gorm:"not null;default:now()" json:"created_at"`
}

func (UncategorizedApp) TableName() string { return "uncategorized_app" }
