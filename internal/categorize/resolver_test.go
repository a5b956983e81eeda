package categorize

import (
	"context"
	"errors"
	"sync"
	"testing"

	"gorm.io/gorm"

	"github.com/yungbote/hive-backend/internal/catalog"
	"github.com/yungbote/hive-backend/internal/data/repos/appcategory"
	"github.com/yungbote/hive-backend/internal/domain"
	pkgerrors "github.com/yungbote/hive-backend/internal/pkg/errors"
	"github.com/yungbote/hive-backend/internal/pkg/logger"
)

type fakeEmbedder struct {
	calls int
	fail  bool
}

func (f *fakeEmbedder) Embed(ctx context.Context, inputs []string) ([][]float32, error) {
	f.calls++
	if f.fail {
		return nil, errors.New("embeddings unavailable")
	}
	out := make([][]float32, len(inputs))
	for i := range inputs {
		out[i] = []float32{1, 0, 0}
	}
	return out, nil
}

type indexEntry struct {
	category string
	source   string
}

// fakeIndex serves exact lookups from a map and nearest-neighbor queries
// from fixed per-scope matches.
type fakeIndex struct {
	mu      sync.Mutex
	entries map[string]indexEntry
	known   *appcategory.Match
	label   *appcategory.Match
	writes  []string
}

func newFakeIndex() *fakeIndex {
	return &fakeIndex{entries: map[string]indexEntry{}}
}

func (f *fakeIndex) Upsert(ctx context.Context, tx *gorm.DB, name, category string, embedding []float32, source string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if existing, ok := f.entries[name]; !ok || domain.Overwrites(source, existing.source) {
		f.entries[name] = indexEntry{category: category, source: source}
	}
	f.writes = append(f.writes, name)
	return nil
}

func (f *fakeIndex) FindByName(ctx context.Context, tx *gorm.DB, name string) (*domain.AppCategory, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	e, ok := f.entries[name]
	if !ok {
		return nil, pkgerrors.ErrNotFound
	}
	return &domain.AppCategory{Name: name, Category: e.category, Source: e.source}, nil
}

func (f *fakeIndex) Nearest(ctx context.Context, tx *gorm.DB, embedding []float32, scope appcategory.Scope) (*appcategory.Match, error) {
	m := f.known
	if scope == appcategory.ScopeLabel {
		m = f.label
	}
	if m == nil {
		return nil, pkgerrors.ErrNotFound
	}
	return m, nil
}

func (f *fakeIndex) SeedCount(ctx context.Context, tx *gorm.DB) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for _, e := range f.entries {
		if e.source == domain.SourceSeed {
			n++
		}
	}
	return n, nil
}

type fakeQueue struct {
	mu    sync.Mutex
	names []string
}

func (f *fakeQueue) Enqueue(ctx context.Context, tx *gorm.DB, name, sourceKind string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.names = append(f.names, name)
	return nil
}

func (f *fakeQueue) List(ctx context.Context, tx *gorm.DB, limit int) ([]domain.UncategorizedApp, error) {
	return nil, nil
}

func (f *fakeQueue) Remove(ctx context.Context, tx *gorm.DB, name string) error { return nil }

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New("test")
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	return log
}

func newTestResolver(t *testing.T, emb *fakeEmbedder, idx *fakeIndex, q *fakeQueue) *Resolver {
	t.Helper()
	return NewResolver(emb, idx, q, testLogger(t))
}

func TestCategorizeExactHit(t *testing.T) {
	emb := &fakeEmbedder{}
	idx := newFakeIndex()
	idx.entries["github.com"] = indexEntry{category: catalog.CategoryDev, source: domain.SourceSeed}

	r := newTestResolver(t, emb, idx, &fakeQueue{})
	got := r.Categorize(context.Background(), "  GitHub.com ", "browser")
	if got.Category != catalog.CategoryDev || got.Method != MethodExact || got.Confidence != 1 {
		t.Fatalf("exact hit: unexpected result %+v", got)
	}
	if emb.calls != 0 {
		t.Fatalf("exact hit must not embed, got %d calls", emb.calls)
	}
}

func TestCategorizeKnownSimilarity(t *testing.T) {
	emb := &fakeEmbedder{}
	idx := newFakeIndex()
	idx.known = &appcategory.Match{Name: "gitlab.com", Category: catalog.CategoryDev, Similarity: 0.82}

	r := newTestResolver(t, emb, idx, &fakeQueue{})
	got := r.Categorize(context.Background(), "git.example.com", "browser")
	if got.Category != catalog.CategoryDev || got.Method != MethodKnownMatch {
		t.Fatalf("known similarity: unexpected result %+v", got)
	}
	if got.Confidence != 0.82 {
		t.Fatalf("confidence: expected 0.82, got %v", got.Confidence)
	}

	// The hit is written back as auto so the next sighting is exact.
	e, ok := idx.entries["git.example.com"]
	if !ok || e.source != domain.SourceAuto || e.category != catalog.CategoryDev {
		t.Fatalf("write-back missing or wrong: %+v", idx.entries)
	}
}

func TestCategorizeLabelFallback(t *testing.T) {
	emb := &fakeEmbedder{}
	idx := newFakeIndex()
	idx.known = &appcategory.Match{Name: "x", Category: catalog.CategoryEnt, Similarity: 0.3}
	idx.label = &appcategory.Match{Name: catalog.LabelPrefix + catalog.CategoryEdu, Category: catalog.CategoryEdu, Similarity: 0.61}

	r := newTestResolver(t, emb, idx, &fakeQueue{})
	got := r.Categorize(context.Background(), "coursera-clone.org", "browser")
	if got.Category != catalog.CategoryEdu || got.Method != MethodLabelMatch {
		t.Fatalf("label similarity: unexpected result %+v", got)
	}
}

func TestCategorizeBelowThresholdQueues(t *testing.T) {
	emb := &fakeEmbedder{}
	idx := newFakeIndex()
	idx.known = &appcategory.Match{Name: "x", Category: catalog.CategoryEnt, Similarity: 0.42}
	idx.label = &appcategory.Match{Name: "y", Category: catalog.CategoryEdu, Similarity: 0.35}
	q := &fakeQueue{}

	r := newTestResolver(t, emb, idx, q)
	got := r.Categorize(context.Background(), "mystery.app", "mobile")
	if got.Category != catalog.CategoryUncat || got.Method != MethodBelowThreshold {
		t.Fatalf("fallback: unexpected result %+v", got)
	}
	if got.Confidence != 0.42 {
		t.Fatalf("fallback confidence should be best similarity seen, got %v", got.Confidence)
	}
	if len(q.names) != 1 || q.names[0] != "mystery.app" {
		t.Fatalf("queue: expected one entry, got %v", q.names)
	}

	// The miss is persisted as an auto UNCAT entry so the next sighting is
	// an exact hit, and a manual review can still replace it.
	e, ok := idx.entries["mystery.app"]
	if !ok || e.category != catalog.CategoryUncat || e.source != domain.SourceAuto {
		t.Fatalf("UNCAT write-back missing: %+v", idx.entries)
	}

	// The persisted entry serves the second sighting as an exact hit
	// without another embedding call.
	got2 := r.Categorize(context.Background(), "mystery.app", "mobile")
	if got2.Category != catalog.CategoryUncat || got2.Method != MethodExact || got2.Confidence != 1 {
		t.Fatalf("second lookup: %+v", got2)
	}
	if emb.calls != 1 {
		t.Fatalf("second lookup should not embed again, embed calls = %d", emb.calls)
	}
}

func TestCategorizeManualReviewOverridesAuto(t *testing.T) {
	emb := &fakeEmbedder{}
	idx := newFakeIndex()
	idx.known = &appcategory.Match{Name: "x", Category: catalog.CategoryEnt, Similarity: 0.42}
	q := &fakeQueue{}

	r := newTestResolver(t, emb, idx, q)
	got := r.Categorize(context.Background(), "mystery.app", "mobile")
	if got.Category != catalog.CategoryUncat || got.Method != MethodBelowThreshold {
		t.Fatalf("first lookup: %+v", got)
	}

	// A reviewer resolves the queued name. The next lookup must answer
	// with the manual entry, not the old UNCAT result.
	if err := idx.Upsert(context.Background(), nil, "mystery.app", catalog.CategoryDev, []float32{1, 0, 0}, domain.SourceManual); err != nil {
		t.Fatalf("manual upsert: %v", err)
	}

	got2 := r.Categorize(context.Background(), "mystery.app", "mobile")
	if got2.Category != catalog.CategoryDev || got2.Method != MethodExact || got2.Confidence != 1 {
		t.Fatalf("after manual review: %+v", got2)
	}
}

func TestCategorizeEmbedErrorDegrades(t *testing.T) {
	emb := &fakeEmbedder{fail: true}
	idx := newFakeIndex()
	q := &fakeQueue{}

	r := newTestResolver(t, emb, idx, q)
	got := r.Categorize(context.Background(), "whatever.com", "browser")
	if got.Category != catalog.CategoryUncat || got.Confidence != 0 {
		t.Fatalf("degraded result: %+v", got)
	}
	if len(q.names) != 0 {
		t.Fatalf("errors must not queue for review: %v", q.names)
	}
}

func TestCategorizeEmptyName(t *testing.T) {
	r := newTestResolver(t, &fakeEmbedder{}, newFakeIndex(), &fakeQueue{})
	got := r.Categorize(context.Background(), "   ", "browser")
	if got.Category != catalog.CategoryUncat {
		t.Fatalf("empty name: %+v", got)
	}
}

func TestEnsureSeeds(t *testing.T) {
	emb := &fakeEmbedder{}
	idx := newFakeIndex()

	r := newTestResolver(t, emb, idx, &fakeQueue{})
	if err := r.EnsureSeeds(context.Background()); err != nil {
		t.Fatalf("EnsureSeeds: %v", err)
	}

	seeds, _ := idx.SeedCount(context.Background(), nil)
	if seeds != int64(len(catalog.SeedMappings)) {
		t.Fatalf("seed count: expected %d, got %d", len(catalog.SeedMappings), seeds)
	}
	if _, ok := idx.entries[catalog.LabelPrefix+catalog.CategoryDev]; !ok {
		t.Fatalf("label entries missing: %v", idx.entries)
	}

	// Second call is a no-op.
	callsAfterFirst := emb.calls
	if err := r.EnsureSeeds(context.Background()); err != nil {
		t.Fatalf("EnsureSeeds (second): %v", err)
	}
	if emb.calls != callsAfterFirst {
		t.Fatalf("second EnsureSeeds should not embed")
	}
}
