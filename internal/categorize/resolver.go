// Package categorize resolves app and site names to activity categories
// through a tiered pipeline: exact index hit, nearest-neighbor over known
// entries, nearest-neighbor over category label embeddings, then an
// uncategorized fallback that queues the name for review.
package categorize

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/yungbote/hive-backend/internal/catalog"
	"github.com/yungbote/hive-backend/internal/data/repos/appcategory"
	"github.com/yungbote/hive-backend/internal/data/repos/uncategorized"
	"github.com/yungbote/hive-backend/internal/domain"
	pkgerrors "github.com/yungbote/hive-backend/internal/pkg/errors"
	"github.com/yungbote/hive-backend/internal/pkg/logger"
	"github.com/yungbote/hive-backend/internal/platform/envutil"
)

// Method records which tier produced a categorization.
const (
	MethodExact          = "exact"
	MethodKnownMatch     = "known_match"
	MethodLabelMatch     = "label_match"
	MethodBelowThreshold = "below_threshold"
)

// Result is one resolved categorization. Confidence is 1 for exact hits,
// cosine similarity for nearest-neighbor hits, and the best similarity seen
// for fallback results.
type Result struct {
	Category   string
	Confidence float64
	Method     string
}

// Embedder is the slice of the OpenAI client the resolver needs.
type Embedder interface {
	Embed(ctx context.Context, inputs []string) ([][]float32, error)
}

// Index is the slice of the app category repo the resolver needs.
type Index interface {
	Upsert(ctx context.Context, tx *gorm.DB, name, category string, embedding []float32, source string) error
	FindByName(ctx context.Context, tx *gorm.DB, name string) (*domain.AppCategory, error)
	Nearest(ctx context.Context, tx *gorm.DB, embedding []float32, scope appcategory.Scope) (*appcategory.Match, error)
	SeedCount(ctx context.Context, tx *gorm.DB) (int64, error)
}

type Resolver struct {
	embedder Embedder
	index    Index
	queue    uncategorized.UncategorizedRepo
	log      *logger.Logger

	threshold float64
	timeout   time.Duration
}

func NewResolver(embedder Embedder, index Index, queue uncategorized.UncategorizedRepo, baseLog *logger.Logger) *Resolver {
	return &Resolver{
		embedder:  embedder,
		index:     index,
		queue:     queue,
		log:       baseLog.With("service", "CategorizeResolver"),
		threshold: envutil.Float("SIMILARITY_THRESHOLD", 0.5),
		timeout:   envutil.Duration("CATEGORIZE_TIMEOUT", 10*time.Second),
	}
}

// Normalize lowercases and trims a raw app or site name so index lookups
// agree on a single key per app.
func Normalize(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// Categorize resolves one name. Every call checks the index first, so a
// write-back or a manual review entry takes effect on the very next
// sighting. Failures in the embedding or index path degrade to an
// uncategorized result rather than failing the caller: time must still be
// banked even when categorization is unavailable.
func (r *Resolver) Categorize(ctx context.Context, name, sourceKind string) Result {
	key := Normalize(name)
	if key == "" {
		return Result{Category: catalog.CategoryUncat, Confidence: 0, Method: MethodBelowThreshold}
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	res, err := r.resolve(ctx, key, sourceKind)
	if err != nil {
		r.log.Warn("Categorization degraded to UNCAT", "name", key, "error", err.Error())
		return Result{Category: catalog.CategoryUncat, Confidence: 0, Method: MethodBelowThreshold}
	}
	return res
}

func (r *Resolver) resolve(ctx context.Context, key, sourceKind string) (Result, error) {
	entry, err := r.index.FindByName(ctx, nil, key)
	if err == nil && entry.Source != domain.SourceLabel {
		return Result{Category: entry.Category, Confidence: 1, Method: MethodExact}, nil
	}
	if err != nil && !errors.Is(err, pkgerrors.ErrNotFound) {
		return Result{}, err
	}

	vecs, err := r.embedder.Embed(ctx, []string{key})
	if err != nil {
		return Result{}, err
	}
	vec := vecs[0]

	best := 0.0

	known, err := r.index.Nearest(ctx, nil, vec, appcategory.ScopeKnown)
	if err != nil && !errors.Is(err, pkgerrors.ErrNotFound) {
		return Result{}, err
	}
	if known != nil {
		if known.Similarity >= r.threshold {
			r.writeBack(ctx, key, known.Category, vec)
			return Result{Category: known.Category, Confidence: known.Similarity, Method: MethodKnownMatch}, nil
		}
		best = known.Similarity
	}

	label, err := r.index.Nearest(ctx, nil, vec, appcategory.ScopeLabel)
	if err != nil && !errors.Is(err, pkgerrors.ErrNotFound) {
		return Result{}, err
	}
	if label != nil {
		if label.Similarity >= r.threshold {
			r.writeBack(ctx, key, label.Category, vec)
			return Result{Category: label.Category, Confidence: label.Similarity, Method: MethodLabelMatch}, nil
		}
		if label.Similarity > best {
			best = label.Similarity
		}
	}

	// Persisting the UNCAT entry makes the next sighting an exact hit; the
	// auto source lets a later manual review replace it.
	r.writeBack(ctx, key, catalog.CategoryUncat, vec)
	if err := r.queue.Enqueue(ctx, nil, key, sourceKind); err != nil {
		r.log.Warn("Failed to queue uncategorized app", "name", key, "error", err.Error())
	}
	return Result{Category: catalog.CategoryUncat, Confidence: best, Method: MethodBelowThreshold}, nil
}

// writeBack persists a similarity hit as an auto entry so the next sighting
// is an exact hit. Provenance keeps it from clobbering curated entries.
func (r *Resolver) writeBack(ctx context.Context, key, category string, vec []float32) {
	if err := r.index.Upsert(ctx, nil, key, category, vec, domain.SourceAuto); err != nil {
		r.log.Warn("Failed to persist auto categorization", "name", key, "error", err.Error())
	}
}

// EnsureSeeds bootstraps the index on an empty database: every seed mapping
// and every category label text is embedded and written once. Subsequent
// starts are no-ops.
func (r *Resolver) EnsureSeeds(ctx context.Context) error {
	count, err := r.index.SeedCount(ctx, nil)
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	names := make([]string, 0, len(catalog.SeedMappings))
	for _, s := range catalog.SeedMappings {
		names = append(names, Normalize(s.Name))
	}
	vecs, err := r.embedder.Embed(ctx, names)
	if err != nil {
		return err
	}
	for i, s := range catalog.SeedMappings {
		if err := r.index.Upsert(ctx, nil, names[i], s.Category, vecs[i], domain.SourceSeed); err != nil {
			return err
		}
	}

	labelCats := make([]string, 0, len(catalog.Labels))
	labelTexts := make([]string, 0, len(catalog.Labels))
	for _, cat := range catalog.Categories() {
		text, ok := catalog.Labels[cat]
		if !ok {
			continue
		}
		labelCats = append(labelCats, cat)
		labelTexts = append(labelTexts, text)
	}
	labelVecs, err := r.embedder.Embed(ctx, labelTexts)
	if err != nil {
		return err
	}
	for i, cat := range labelCats {
		if err := r.index.Upsert(ctx, nil, catalog.LabelPrefix+cat, cat, labelVecs[i], domain.SourceLabel); err != nil {
			return err
		}
	}

	r.log.Info("Seeded app category index",
		"seeds", len(catalog.SeedMappings),
		"labels", len(labelCats),
	)
	return nil
}
