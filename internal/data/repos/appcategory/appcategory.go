// Package appcategory persists the (name -> category, embedding, provenance)
// index and runs cosine nearest-neighbor queries against pgvector.
package appcategory

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"gorm.io/gorm"

	"github.com/yungbote/hive-backend/internal/domain"
	pkgerrors "github.com/yungbote/hive-backend/internal/pkg/errors"
	"github.com/yungbote/hive-backend/internal/pkg/logger"
)

// Scope selects which provenance tier a nearest-neighbor query runs over.
type Scope string

const (
	// ScopeKnown matches against real app/site entries (everything but
	// label rows).
	ScopeKnown Scope = "known"
	// ScopeLabel matches against the category description embeddings only.
	ScopeLabel Scope = "label"
)

// Match is one nearest-neighbor result. Similarity is cosine (1 - distance).
type Match struct {
	Name       string
	Category   string
	Similarity float64
}

type AppCategoryRepo interface {
	// Upsert writes an index entry subject to provenance precedence: an
	// auto write never replaces a seed, manual or label entry.
	Upsert(ctx context.Context, tx *gorm.DB, name, category string, embedding []float32, source string) error
	FindByName(ctx context.Context, tx *gorm.DB, name string) (*domain.AppCategory, error)
	Nearest(ctx context.Context, tx *gorm.DB, embedding []float32, scope Scope) (*Match, error)
	SeedCount(ctx context.Context, tx *gorm.DB) (int64, error)
}

type appCategoryRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewAppCategoryRepo(db *gorm.DB, baseLog *logger.Logger) AppCategoryRepo {
	return &appCategoryRepo{db: db, log: baseLog.With("repo", "AppCategoryRepo")}
}

func (r *appCategoryRepo) conn(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

// VectorLiteral renders a pgvector input literal: [0.1,0.2,...].
func VectorLiteral(embedding []float32) string {
	var b strings.Builder
	b.WriteByte('[')
	for i, f := range embedding {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.FormatFloat(float64(f), 'f', -1, 32))
	}
	b.WriteByte(']')
	return b.String()
}

func (r *appCategoryRepo) Upsert(ctx context.Context, tx *gorm.DB, name, category string, embedding []float32, source string) error {
	vec := VectorLiteral(embedding)
	if source == domain.SourceAuto {
		// The WHERE clause is the SQL shape of domain.Overwrites: auto only
		// replaces auto.
		return r.conn(tx).WithContext(ctx).Exec(`
			INSERT INTO app_category (id, name, category, embedding, source, created_at, updated_at)
			VALUES (uuid_generate_v4(), ?, ?, ?::vector, ?, now(), now())
			ON CONFLICT (name) DO UPDATE
			  SET category = EXCLUDED.category,
			      embedding = EXCLUDED.embedding,
			      source = EXCLUDED.source,
			      updated_at = now()
			  WHERE app_category.source = 'auto'`,
			name, category, vec, source,
		).Error
	}
	return r.conn(tx).WithContext(ctx).Exec(`
		INSERT INTO app_category (id, name, category, embedding, source, created_at, updated_at)
		VALUES (uuid_generate_v4(), ?, ?, ?::vector, ?, now(), now())
		ON CONFLICT (name) DO UPDATE
		  SET category = EXCLUDED.category,
		      embedding = EXCLUDED.embedding,
		      source = EXCLUDED.source,
		      updated_at = now()`,
		name, category, vec, source,
	).Error
}

func (r *appCategoryRepo) FindByName(ctx context.Context, tx *gorm.DB, name string) (*domain.AppCategory, error) {
	var entry domain.AppCategory
	err := r.conn(tx).WithContext(ctx).
		Select("id", "name", "category", "source", "created_at", "updated_at").
		Where("name = ?", name).
		First(&entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

func (r *appCategoryRepo) Nearest(ctx context.Context, tx *gorm.DB, embedding []float32, scope Scope) (*Match, error) {
	vec := VectorLiteral(embedding)

	sourceFilter := `source <> 'label'`
	if scope == ScopeLabel {
		sourceFilter = `source = 'label'`
	}

	var row struct {
		Name       string
		Category   string
		Similarity float64
	}
	err := r.conn(tx).WithContext(ctx).Raw(`
		SELECT name, category, 1 - (embedding <=> ?::vector) AS similarity
		FROM app_category
		WHERE `+sourceFilter+`
		ORDER BY embedding <=> ?::vector
		LIMIT 1`,
		vec, vec,
	).Scan(&row).Error
	if err != nil {
		return nil, err
	}
	if row.Name == "" && row.Category == "" {
		return nil, pkgerrors.ErrNotFound
	}
	return &Match{Name: row.Name, Category: row.Category, Similarity: row.Similarity}, nil
}

func (r *appCategoryRepo) SeedCount(ctx context.Context, tx *gorm.DB) (int64, error) {
	var count int64
	if err := r.conn(tx).WithContext(ctx).
		Model(&domain.AppCategory{}).
		Where("source = ?", domain.SourceSeed).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
