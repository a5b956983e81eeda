package appcategory

import (
	"context"
	"errors"
	"testing"

	"github.com/yungbote/hive-backend/internal/catalog"
	"github.com/yungbote/hive-backend/internal/data/repos/testutil"
	"github.com/yungbote/hive-backend/internal/domain"
	pkgerrors "github.com/yungbote/hive-backend/internal/pkg/errors"
)

func TestVectorLiteral(t *testing.T) {
	got := VectorLiteral([]float32{0.5, -1, 0.25})
	want := "[0.5,-1,0.25]"
	if got != want {
		t.Fatalf("VectorLiteral: got %q, want %q", got, want)
	}
	if VectorLiteral(nil) != "[]" {
		t.Fatalf("VectorLiteral(nil): got %q", VectorLiteral(nil))
	}
}

// axisVec points along one of the 384 axes so cosine similarity between
// test vectors is exactly 0 or 1.
func axisVec(axis int) []float32 {
	v := make([]float32, 384)
	v[axis] = 1
	return v
}

func TestAppCategoryRepoProvenance(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)

	repo := NewAppCategoryRepo(db, testutil.Logger(t))
	ctx := context.Background()

	if err := repo.Upsert(ctx, tx, "leetcode.com", catalog.CategoryCP, axisVec(0), domain.SourceSeed); err != nil {
		t.Fatalf("Upsert seed: %v", err)
	}

	// Auto must not replace seed.
	if err := repo.Upsert(ctx, tx, "leetcode.com", catalog.CategoryEnt, axisVec(1), domain.SourceAuto); err != nil {
		t.Fatalf("Upsert auto over seed: %v", err)
	}
	got, err := repo.FindByName(ctx, tx, "leetcode.com")
	if err != nil {
		t.Fatalf("FindByName: %v", err)
	}
	if got.Category != catalog.CategoryCP || got.Source != domain.SourceSeed {
		t.Fatalf("auto overwrote seed entry: %+v", got)
	}

	// Manual replaces anything.
	if err := repo.Upsert(ctx, tx, "leetcode.com", catalog.CategoryDev, axisVec(2), domain.SourceManual); err != nil {
		t.Fatalf("Upsert manual: %v", err)
	}
	got, err = repo.FindByName(ctx, tx, "leetcode.com")
	if err != nil {
		t.Fatalf("FindByName after manual: %v", err)
	}
	if got.Category != catalog.CategoryDev || got.Source != domain.SourceManual {
		t.Fatalf("manual upsert not applied: %+v", got)
	}

	// Auto replaces auto.
	if err := repo.Upsert(ctx, tx, "somesite.io", catalog.CategoryEnt, axisVec(3), domain.SourceAuto); err != nil {
		t.Fatalf("Upsert auto: %v", err)
	}
	if err := repo.Upsert(ctx, tx, "somesite.io", catalog.CategorySoc, axisVec(3), domain.SourceAuto); err != nil {
		t.Fatalf("Upsert auto over auto: %v", err)
	}
	got, err = repo.FindByName(ctx, tx, "somesite.io")
	if err != nil {
		t.Fatalf("FindByName auto: %v", err)
	}
	if got.Category != catalog.CategorySoc {
		t.Fatalf("auto over auto not applied: %+v", got)
	}

	if _, err := repo.FindByName(ctx, tx, "missing.example"); !errors.Is(err, pkgerrors.ErrNotFound) {
		t.Fatalf("FindByName (missing): expected ErrNotFound, got %v", err)
	}
}

func TestAppCategoryRepoNearestScopes(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)

	repo := NewAppCategoryRepo(db, testutil.Logger(t))
	ctx := context.Background()

	if err := repo.Upsert(ctx, tx, "github.com", catalog.CategoryDev, axisVec(0), domain.SourceSeed); err != nil {
		t.Fatalf("Upsert known: %v", err)
	}
	if err := repo.Upsert(ctx, tx, catalog.LabelPrefix+catalog.CategoryEnt, catalog.CategoryEnt, axisVec(1), domain.SourceLabel); err != nil {
		t.Fatalf("Upsert label: %v", err)
	}

	// A query along axis 1 is orthogonal to the only known entry but
	// identical to the label entry.
	known, err := repo.Nearest(ctx, tx, axisVec(1), ScopeKnown)
	if err != nil {
		t.Fatalf("Nearest known: %v", err)
	}
	if known.Name != "github.com" || known.Similarity > 0.01 {
		t.Fatalf("Nearest known: unexpected match %+v", known)
	}

	label, err := repo.Nearest(ctx, tx, axisVec(1), ScopeLabel)
	if err != nil {
		t.Fatalf("Nearest label: %v", err)
	}
	if label.Category != catalog.CategoryEnt || label.Similarity < 0.99 {
		t.Fatalf("Nearest label: unexpected match %+v", label)
	}

	count, err := repo.SeedCount(ctx, tx)
	if err != nil {
		t.Fatalf("SeedCount: %v", err)
	}
	if count != 1 {
		t.Fatalf("SeedCount: expected 1, got %d", count)
	}
}
