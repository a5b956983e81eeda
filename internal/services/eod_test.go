package services

import (
	"context"
	"math"
	"sync"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/hive-backend/internal/catalog"
	"github.com/yungbote/hive-backend/internal/domain"
	"github.com/yungbote/hive-backend/internal/rating"
	"github.com/yungbote/hive-backend/internal/realtime"
	"github.com/yungbote/hive-backend/internal/scoring"
)

type fakeLiveService struct {
	mu        sync.Mutex
	summaries map[uuid.UUID]*EODSummary
}

func newFakeLiveService() *fakeLiveService {
	return &fakeLiveService{summaries: make(map[uuid.UUID]*EODSummary)}
}

func (f *fakeLiveService) NotifyChange() {}

func (f *fakeLiveService) Connect(userID uuid.UUID) *realtime.Client { return nil }

func (f *fakeLiveService) Hub() *realtime.Hub { return nil }

func (f *fakeLiveService) BuildGlobalStats() GlobalStats { return GlobalStats{} }
func (f *fakeLiveService) BuildLiveRanking(ctx context.Context, userID uuid.UUID) (map[string]LiveRankingEntry, error) {
	return nil, nil
}
func (f *fakeLiveService) Snapshot(ctx context.Context, userID uuid.UUID) *LiveStatsPayload {
	return nil
}
func (f *fakeLiveService) Start(ctx context.Context) {}

func (f *fakeLiveService) PushEODSummary(userID uuid.UUID, summary *EODSummary) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.summaries[userID] = summary
}

func (f *fakeLiveService) summaryFor(userID uuid.UUID) *EODSummary {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.summaries[userID]
}

type fakeUncategorizedRepo struct{}

func (f *fakeUncategorizedRepo) Enqueue(ctx context.Context, tx *gorm.DB, name, sourceKind string) error {
	return nil
}
func (f *fakeUncategorizedRepo) List(ctx context.Context, tx *gorm.DB, limit int) ([]domain.UncategorizedApp, error) {
	return nil, nil
}
func (f *fakeUncategorizedRepo) Remove(ctx context.Context, tx *gorm.DB, name string) error {
	return nil
}

const (
	testTMin     = 60.0
	testSigmaObs = 5.0
)

func almostEqual(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func TestRunForDate(t *testing.T) {
	ctx := context.Background()
	date := "2026-03-14"

	users := newFakeUserRepo()
	ledger := newFakeActivityRepo()
	live := newFakeLiveService()
	scores := NewScoreService(nil, testLogger(t), users, ledger, &fakeUncategorizedRepo{}, testTMin)
	eod := NewEODService(nil, testLogger(t), users, ledger, scores, live, testTMin, testSigmaObs)

	alice, _ := users.Create(ctx, nil, &domain.User{
		Email: "alice@example.com", PersonaRole: catalog.RoleCS,
		Mu: rating.InitialMu, Sigma: rating.InitialSigma, Streak: 3,
	})
	bob, _ := users.Create(ctx, nil, &domain.User{
		Email: "bob@example.com", PersonaRole: catalog.RoleGeneral,
		Mu: rating.InitialMu, Sigma: rating.InitialSigma, Streak: 5,
	})
	ledger.personaOf[alice.ID] = catalog.RoleCS
	ledger.personaOf[bob.ID] = catalog.RoleGeneral

	// Alice: 2h of DEV clears the streak floor. Bob: 30min of ENT does not.
	_ = ledger.AddCategoryTime(ctx, nil, alice.ID, date, catalog.CategoryDev, 120)
	_ = ledger.AddCategoryTime(ctx, nil, bob.ID, date, catalog.CategoryEnt, 30)

	if err := eod.RunForDate(ctx, date); err != nil {
		t.Fatalf("RunForDate: %v", err)
	}

	aliceScore := scoring.Compute(map[string]float64{catalog.CategoryDev: 120}, testTMin, catalog.RoleCS)
	wantMu, wantSigma := rating.BayesianUpdate(rating.InitialMu, rating.InitialSigma, aliceScore.WeightedScore, testSigmaObs)

	gotAlice, err := users.GetByID(ctx, nil, alice.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if !almostEqual(gotAlice.Mu, wantMu) || !almostEqual(gotAlice.Sigma, wantSigma) {
		t.Fatalf("alice rating: got (%v, %v), want (%v, %v)", gotAlice.Mu, gotAlice.Sigma, wantMu, wantSigma)
	}
	if !almostEqual(gotAlice.DisplayRating, rating.DisplayRating(wantMu, wantSigma)) {
		t.Fatalf("alice display rating: %v", gotAlice.DisplayRating)
	}
	if gotAlice.Streak != 4 {
		t.Fatalf("alice streak: got %d, want 4", gotAlice.Streak)
	}

	gotBob, _ := users.GetByID(ctx, nil, bob.ID)
	if gotBob.Streak != 0 {
		t.Fatalf("bob streak must reset, got %d", gotBob.Streak)
	}
	if gotBob.DisplayRating >= gotAlice.DisplayRating {
		t.Fatalf("negative day must rate below positive day: bob %v, alice %v", gotBob.DisplayRating, gotAlice.DisplayRating)
	}

	// Two users: the higher rating lands at percentile 1.0, the lower at 0.5.
	if gotAlice.Tier != rating.TierDiamond {
		t.Fatalf("alice tier: got %q", gotAlice.Tier)
	}
	if gotBob.Tier != rating.TierSilver {
		t.Fatalf("bob tier: got %q", gotBob.Tier)
	}

	aliceSummary := live.summaryFor(alice.ID)
	if aliceSummary == nil || aliceSummary.Rating == nil {
		t.Fatalf("alice summary missing: %+v", aliceSummary)
	}
	if aliceSummary.Date != date || aliceSummary.Rating.Tier != rating.TierDiamond || aliceSummary.Rating.Streak != 4 {
		t.Fatalf("alice summary: %+v rating %+v", aliceSummary, aliceSummary.Rating)
	}
	if len(aliceSummary.TopCategories) != 1 || aliceSummary.TopCategories[0].Category != catalog.CategoryDev {
		t.Fatalf("alice top categories: %+v", aliceSummary.TopCategories)
	}
	if live.summaryFor(bob.ID) == nil {
		t.Fatal("bob summary missing")
	}
}

func TestRunForDateNoActivity(t *testing.T) {
	ctx := context.Background()
	users := newFakeUserRepo()
	ledger := newFakeActivityRepo()
	live := newFakeLiveService()
	scores := NewScoreService(nil, testLogger(t), users, ledger, &fakeUncategorizedRepo{}, testTMin)
	eod := NewEODService(nil, testLogger(t), users, ledger, scores, live, testTMin, testSigmaObs)

	if err := eod.RunForDate(ctx, "2026-03-14"); err != nil {
		t.Fatalf("RunForDate on empty day: %v", err)
	}
	if len(live.summaries) != 0 {
		t.Fatalf("no summaries expected, got %d", len(live.summaries))
	}
}

func TestRunForDateSkipsUnknownUser(t *testing.T) {
	ctx := context.Background()
	date := "2026-03-14"
	users := newFakeUserRepo()
	ledger := newFakeActivityRepo()
	live := newFakeLiveService()
	scores := NewScoreService(nil, testLogger(t), users, ledger, &fakeUncategorizedRepo{}, testTMin)
	eod := NewEODService(nil, testLogger(t), users, ledger, scores, live, testTMin, testSigmaObs)

	// Ledger rows for a user the user table no longer has.
	ghost := uuid.New()
	_ = ledger.AddCategoryTime(ctx, nil, ghost, date, catalog.CategoryDev, 90)

	if err := eod.RunForDate(ctx, date); err != nil {
		t.Fatalf("RunForDate: %v", err)
	}
	if live.summaryFor(ghost) != nil {
		t.Fatal("ghost user must be skipped")
	}
}
